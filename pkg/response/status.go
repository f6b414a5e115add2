package response

import (
	"errors"
	"net/http"

	"marketplace/domain"
)

// StatusFor maps an error kind to its HTTP status and error code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrAuthorization):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrStateConflict):
		return http.StatusConflict, "STATE_CONFLICT"
	case errors.Is(err, domain.ErrCapacity):
		return http.StatusUnprocessableEntity, "CAPACITY_EXCEEDED"
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusInternalServerError, "PERSISTENCE_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// FromError builds the error body for err. Unclassified errors never leak
// their message.
func FromError(err error) (int, ErrorResponse) {
	status, code := StatusFor(err)
	msg := err.Error()
	if code == "INTERNAL_ERROR" {
		msg = http.StatusText(status)
	}
	return status, Error(code, msg, nil)
}
