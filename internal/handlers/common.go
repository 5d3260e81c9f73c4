package handlers

import (
	"errors"
	"net/http"

	"freshcart/internal/services"
)

// statusForError maps the service-layer error taxonomy onto stable HTTP
// status codes. Anything unrecognized is treated as a transient storage
// failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrTrackingExists):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrTrackingNotFound),
		errors.Is(err, services.ErrEmployeeNotFound),
		errors.Is(err, services.ErrLocationUnknown):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNoAvailableEmployee),
		errors.Is(err, services.ErrEmployeeNotAssigned):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidOrder):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
