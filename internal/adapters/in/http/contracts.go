package http

import "time"

// LocationPayload is the wire form of a geographic point.
type LocationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CreateOrderRequest is the body of POST /api/v1/orders.
type CreateOrderRequest struct {
	Pickup  LocationPayload `json:"pickup"`
	Dropoff LocationPayload `json:"dropoff"`
}

// CreateOrderResponse carries the ID of the created order.
type CreateOrderResponse struct {
	ID string `json:"id"`
}

// CourierActionRequest identifies the courier acting on an order or offer.
type CourierActionRequest struct {
	CourierID string `json:"courier_id"`
}

// SetCourierOnlineRequest is the body of POST /api/v1/couriers/:id/online.
// The first online call for an unknown courier registers them, so the body
// carries the courier's profile.
type SetCourierOnlineRequest struct {
	Name    string `json:"name"`
	Vehicle string `json:"vehicle"`
}

// ReportLocationRequest is the body of POST /api/v1/couriers/:id/location.
type ReportLocationRequest struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	SampledAt time.Time `json:"sampled_at"`
}

// OrderResponse is one entry of GET /api/v1/orders/active.
type OrderResponse struct {
	ID        string          `json:"id"`
	CourierID *string         `json:"courier_id,omitempty"`
	Status    string          `json:"status"`
	Pickup    LocationPayload `json:"pickup"`
	Dropoff   LocationPayload `json:"dropoff"`
}

// CourierResponse is one entry of GET /api/v1/couriers/available.
type CourierResponse struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Vehicle        string           `json:"vehicle"`
	Location       *LocationPayload `json:"location,omitempty"`
	LocationSeenAt *time.Time       `json:"location_seen_at,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
