package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/timer"

	"gorm.io/gorm"
)

// CompositionRoot wires the application together. The availability
// registry, geo index, tracking aggregator, and dispatcher are singletons
// shared by every handler; unit of work instances are created per command.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory

	registry   *services.AvailabilityRegistry
	geoIndex   *services.GeoIndex
	tracker    *services.TrackingAggregator
	dispatcher *services.Dispatcher
	publisher  ports.EventPublisher

	logger *slog.Logger
}

// NewCompositionRoot builds the object graph. The event publisher and offer
// notifier are externally owned connections; the caller closes them.
func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	publisher ports.EventPublisher,
	notifier ports.OfferNotifier,
	logger *slog.Logger,
) (*CompositionRoot, error) {
	uowFactory := postgres.NewGormUnitOfWorkFactory(gormDB)

	policy, err := services.NewMatchingPolicy(config.MaxRadiusKm, config.DistanceWeight, config.RateWeight)
	if err != nil {
		return nil, fmt.Errorf("invalid matching policy: %w", err)
	}

	registry := services.NewAvailabilityRegistry()
	geoIndex := services.NewGeoIndex()
	tracker := services.NewTrackingAggregator(
		publisher, config.TrackingMinMoveMeters, config.TrackingMinInterval, logger)

	dispatcher := services.NewDispatcher(
		registry,
		geoIndex,
		policy,
		postgres.NewGormDispatchStore(uowFactory),
		publisher,
		notifier,
		timer.NewWallClockScheduler(),
		config.OfferTTL,
		logger,
	)

	return &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: uowFactory,
		registry:   registry,
		geoIndex:   geoIndex,
		tracker:    tracker,
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
	}, nil
}

// WarmUp restores in-memory state from storage after a restart: every known
// courier re-enters the availability registry (couriers with a location also
// re-enter the geo index), and orders in flight resume tracking.
func (c *CompositionRoot) WarmUp(ctx context.Context) error {
	uow := c.uowFactory.Create()

	couriers, err := uow.CourierRepository().GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load couriers: %w", err)
	}
	for _, stored := range couriers {
		if err = c.registry.Register(stored); err != nil {
			return fmt.Errorf("failed to register courier %s: %w", stored.ID(), err)
		}
		if loc := stored.Location(); loc != nil {
			if _, err = c.geoIndex.Upsert(stored.ID(), *loc, stored.LocationSeenAt()); err != nil {
				return fmt.Errorf("failed to index courier %s: %w", stored.ID(), err)
			}
		}
	}

	for _, status := range []order.Status{order.StatusAssigned, order.StatusPickedUp} {
		inFlight, err := uow.OrderRepository().GetAllInStatus(ctx, status)
		if err != nil {
			return fmt.Errorf("failed to load orders in status %s: %w", status, err)
		}
		for _, o := range inFlight {
			courierID := o.Courier()
			if courierID == nil {
				continue
			}
			view, err := c.registry.View(*courierID)
			if err != nil {
				c.logger.Warn("skipping tracking restore for order with unknown courier",
					"order_id", o.ID(), "courier_id", *courierID, "error", err)
				continue
			}
			if err = c.tracker.Track(o, *courierID, view.Vehicle); err != nil {
				return fmt.Errorf("failed to restore tracking for order %s: %w", o.ID(), err)
			}
		}
	}

	c.logger.Info("warm-up complete",
		"couriers", len(couriers), "tracked_orders", c.tracker.Tracked())
	return nil
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateDispatchOrderCommandHandler() commands.DispatchOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewDispatchOrderCommandHandler(f, c.dispatcher)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelOrderCommandHandler(f, c.dispatcher, c.registry, c.tracker, c.publisher)
}

func (c *CompositionRoot) CreateMarkOrderPickedUpCommandHandler() commands.MarkOrderPickedUpCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewMarkOrderPickedUpCommandHandler(f, c.tracker)
}

func (c *CompositionRoot) CreateCompleteOrderCommandHandler() commands.CompleteOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCompleteOrderCommandHandler(f, c.registry, c.tracker, c.publisher)
}

func (c *CompositionRoot) CreateSetCourierOnlineCommandHandler() commands.SetCourierOnlineCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSetCourierOnlineCommandHandler(f, c.registry)
}

func (c *CompositionRoot) CreateSetCourierOfflineCommandHandler() commands.SetCourierOfflineCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSetCourierOfflineCommandHandler(f, c.registry, c.geoIndex)
}

func (c *CompositionRoot) CreateAcceptOfferCommandHandler() commands.AcceptOfferCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAcceptOfferCommandHandler(f, c.dispatcher, c.registry, c.tracker)
}

func (c *CompositionRoot) CreateDeclineOfferCommandHandler() commands.DeclineOfferCommandHandler {
	return commands.NewDeclineOfferCommandHandler(c.dispatcher)
}

func (c *CompositionRoot) CreateReportLocationCommandHandler() commands.ReportLocationCommandHandler {
	return commands.NewReportLocationCommandHandler(c.registry, c.geoIndex, c.tracker)
}

func (c *CompositionRoot) CreateSweepStaleCouriersCommandHandler() commands.SweepStaleCouriersCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSweepStaleCouriersCommandHandler(f, c.registry, c.geoIndex, c.logger)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAvailableCouriersQueryHandler() queries.GetAvailableCouriersQueryHandler {
	return queries.NewGetAvailableCouriersQueryHandler(c.gormDB)
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
