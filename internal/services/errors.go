package services

import "errors"

// Caller-visible errors. Handlers match these with errors.Is and map them to
// stable HTTP status codes; anything else is treated as a transient storage
// failure.
var (
	ErrInvalidTransition   = errors.New("invalid order status transition")
	ErrUnauthorized        = errors.New("actor not allowed to perform this action")
	ErrOrderNotFound       = errors.New("order not found")
	ErrTrackingNotFound    = errors.New("tracking record not found")
	ErrEmployeeNotFound    = errors.New("delivery employee not found")
	ErrTrackingExists      = errors.New("tracking record already exists for this order")
	ErrNoAvailableEmployee = errors.New("no delivery employee available")
	ErrEmployeeNotAssigned = errors.New("order has no assigned delivery employee")
	ErrInvalidOrder        = errors.New("invalid order")
	ErrLocationUnknown     = errors.New("employee location unknown")
)
