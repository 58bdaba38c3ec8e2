package http

import (
	"errors"
	"net/http"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server exposes the dispatch engine over HTTP. It is a thin adapter: every
// handler binds the request, builds a command or query, and delegates to the
// application layer.
type Server struct {
	// Command handlers
	createOrderHandler       commands.CreateOrderCommandHandler
	cancelOrderHandler       commands.CancelOrderCommandHandler
	markPickedUpHandler      commands.MarkOrderPickedUpCommandHandler
	completeOrderHandler     commands.CompleteOrderCommandHandler
	setCourierOnlineHandler  commands.SetCourierOnlineCommandHandler
	setCourierOfflineHandler commands.SetCourierOfflineCommandHandler
	acceptOfferHandler       commands.AcceptOfferCommandHandler
	declineOfferHandler      commands.DeclineOfferCommandHandler
	reportLocationHandler    commands.ReportLocationCommandHandler

	// Query handlers
	getActiveOrdersHandler      queries.GetActiveOrdersQueryHandler
	getAvailableCouriersHandler queries.GetAvailableCouriersQueryHandler
}

// NewServer creates an HTTP server delegating to the given handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	cancelOrderHandler commands.CancelOrderCommandHandler,
	markPickedUpHandler commands.MarkOrderPickedUpCommandHandler,
	completeOrderHandler commands.CompleteOrderCommandHandler,
	setCourierOnlineHandler commands.SetCourierOnlineCommandHandler,
	setCourierOfflineHandler commands.SetCourierOfflineCommandHandler,
	acceptOfferHandler commands.AcceptOfferCommandHandler,
	declineOfferHandler commands.DeclineOfferCommandHandler,
	reportLocationHandler commands.ReportLocationCommandHandler,
	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler,
	getAvailableCouriersHandler queries.GetAvailableCouriersQueryHandler,
) *Server {
	return &Server{
		createOrderHandler:          createOrderHandler,
		cancelOrderHandler:          cancelOrderHandler,
		markPickedUpHandler:         markPickedUpHandler,
		completeOrderHandler:        completeOrderHandler,
		setCourierOnlineHandler:     setCourierOnlineHandler,
		setCourierOfflineHandler:    setCourierOfflineHandler,
		acceptOfferHandler:          acceptOfferHandler,
		declineOfferHandler:         declineOfferHandler,
		reportLocationHandler:       reportLocationHandler,
		getActiveOrdersHandler:      getActiveOrdersHandler,
		getAvailableCouriersHandler: getAvailableCouriersHandler,
	}
}

// RegisterRoutes mounts every route on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	v1 := e.Group("/api/v1")
	v1.POST("/orders", s.CreateOrder)
	v1.POST("/orders/:id/cancel", s.CancelOrder)
	v1.POST("/orders/:id/pickup", s.MarkOrderPickedUp)
	v1.POST("/orders/:id/complete", s.CompleteOrder)
	v1.GET("/orders/active", s.GetActiveOrders)
	v1.POST("/couriers/:id/online", s.SetCourierOnline)
	v1.POST("/couriers/:id/offline", s.SetCourierOffline)
	v1.POST("/couriers/:id/location", s.ReportLocation)
	v1.GET("/couriers/available", s.GetAvailableCouriers)
	v1.POST("/offers/:id/accept", s.AcceptOffer)
	v1.POST("/offers/:id/decline", s.DeclineOffer)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateOrder handles POST /api/v1/orders. The order enters the dispatch
// queue as Pending; the dispatch job picks it up on its next tick.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	pickup, err := kernel.NewLocation(req.Pickup.Latitude, req.Pickup.Longitude)
	if err != nil {
		return errorJSON(ctx, err)
	}
	dropoff, err := kernel.NewLocation(req.Dropoff.Latitude, req.Dropoff.Longitude)
	if err != nil {
		return errorJSON(ctx, err)
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, pickup, dropoff)
	if err != nil {
		return errorJSON(ctx, err)
	}

	if err = s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreateOrderResponse{ID: orderID.String()})
}

// CancelOrder handles POST /api/v1/orders/:id/cancel.
func (s *Server) CancelOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid order id")
	}

	cmd, err := commands.NewCancelOrderCommand(orderID)
	if err != nil {
		return errorJSON(ctx, err)
	}

	if err = s.cancelOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// MarkOrderPickedUp handles POST /api/v1/orders/:id/pickup.
func (s *Server) MarkOrderPickedUp(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid order id")
	}

	var req CourierActionRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}
	courierID, err := kernel.UUIDFromString(req.CourierID)
	if err != nil {
		return badRequest(ctx, "invalid courier id")
	}

	cmd, err := commands.NewMarkOrderPickedUpCommand(orderID, courierID)
	if err != nil {
		return errorJSON(ctx, err)
	}

	if err = s.markPickedUpHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CompleteOrder handles POST /api/v1/orders/:id/complete.
func (s *Server) CompleteOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid order id")
	}

	var req CourierActionRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}
	courierID, err := kernel.UUIDFromString(req.CourierID)
	if err != nil {
		return badRequest(ctx, "invalid courier id")
	}

	cmd, err := commands.NewCompleteOrderCommand(orderID, courierID)
	if err != nil {
		return errorJSON(ctx, err)
	}

	if err = s.completeOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetActiveOrders handles GET /api/v1/orders/active.
func (s *Server) GetActiveOrders(ctx echo.Context) error {
	query := queries.NewGetActiveOrdersQuery()

	orders, err := s.getActiveOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return errorJSON(ctx, err)
	}

	response := make([]OrderResponse, len(orders))
	for i, o := range orders {
		item := OrderResponse{
			ID:      o.ID.String(),
			Status:  o.Status.String(),
			Pickup:  LocationPayload{Latitude: o.Pickup.Latitude(), Longitude: o.Pickup.Longitude()},
			Dropoff: LocationPayload{Latitude: o.Dropoff.Latitude(), Longitude: o.Dropoff.Longitude()},
		}
		if o.CourierID != nil {
			courierID := o.CourierID.String()
			item.CourierID = &courierID
		}
		response[i] = item
	}

	return ctx.JSON(http.StatusOK, response)
}

// SetCourierOnline handles POST /api/v1/couriers/:id/online. A courier not
// seen before is registered on the spot from the request body.
func (s *Server) SetCourierOnline(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid courier id")
	}

	var req SetCourierOnlineRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}
	vehicle, err := courier.VehicleTypeFromString(req.Vehicle)
	if err != nil {
		return errorJSON(ctx, err)
	}

	cmd, err := commands.NewSetCourierOnlineCommand(courierID, req.Name, vehicle)
	if err != nil {
		return errorJSON(ctx, err)
	}

	if err = s.setCourierOnlineHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// SetCourierOffline handles POST /api/v1/couriers/:id/offline.
func (s *Server) SetCourierOffline(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid courier id")
	}

	cmd, err := commands.NewSetCourierOfflineCommand(courierID)
	if err != nil {
		return errorJSON(ctx, err)
	}

	if err = s.setCourierOfflineHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ReportLocation handles POST /api/v1/couriers/:id/location. A missing
// sampled_at defaults to the server clock.
func (s *Server) ReportLocation(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid courier id")
	}

	var req ReportLocationRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	location, err := kernel.NewLocation(req.Latitude, req.Longitude)
	if err != nil {
		return errorJSON(ctx, err)
	}

	sampledAt := req.SampledAt
	if sampledAt.IsZero() {
		sampledAt = time.Now()
	}

	cmd, err := commands.NewReportLocationCommand(courierID, location, sampledAt)
	if err != nil {
		return errorJSON(ctx, err)
	}

	if err = s.reportLocationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetAvailableCouriers handles GET /api/v1/couriers/available.
func (s *Server) GetAvailableCouriers(ctx echo.Context) error {
	query := queries.NewGetAvailableCouriersQuery()

	couriers, err := s.getAvailableCouriersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return errorJSON(ctx, err)
	}

	response := make([]CourierResponse, len(couriers))
	for i, c := range couriers {
		item := CourierResponse{
			ID:      c.ID.String(),
			Name:    c.Name,
			Vehicle: c.Vehicle.String(),
		}
		if c.Location != nil {
			item.Location = &LocationPayload{
				Latitude:  c.Location.Latitude(),
				Longitude: c.Location.Longitude(),
			}
			seenAt := c.LocationSeenAt
			item.LocationSeenAt = &seenAt
		}
		response[i] = item
	}

	return ctx.JSON(http.StatusOK, response)
}

// AcceptOffer handles POST /api/v1/offers/:id/accept.
func (s *Server) AcceptOffer(ctx echo.Context) error {
	offerID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid offer id")
	}

	var req CourierActionRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}
	courierID, err := kernel.UUIDFromString(req.CourierID)
	if err != nil {
		return badRequest(ctx, "invalid courier id")
	}

	cmd, err := commands.NewAcceptOfferCommand(offerID, courierID)
	if err != nil {
		return errorJSON(ctx, err)
	}

	if err = s.acceptOfferHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// DeclineOffer handles POST /api/v1/offers/:id/decline.
func (s *Server) DeclineOffer(ctx echo.Context) error {
	offerID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid offer id")
	}

	var req CourierActionRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}
	courierID, err := kernel.UUIDFromString(req.CourierID)
	if err != nil {
		return badRequest(ctx, "invalid courier id")
	}

	cmd, err := commands.NewDeclineOfferCommand(offerID, courierID)
	if err != nil {
		return errorJSON(ctx, err)
	}

	if err = s.declineOfferHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// errorJSON maps an application error onto an HTTP status. Late offer
// responses and courier mismatches are conflicts, not client mistakes.
func errorJSON(ctx echo.Context, err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		code = http.StatusNotFound
	case errors.Is(err, offer.ErrStaleOffer),
		errors.Is(err, commands.ErrOrderCourierMismatch):
		code = http.StatusConflict
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		code = http.StatusBadRequest
	}

	return ctx.JSON(code, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}
