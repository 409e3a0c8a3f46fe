package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lernia/review-api/internal/domain"
	"github.com/lernia/review-api/internal/domain/srs"
	"github.com/lernia/review-api/internal/service/review"
	"github.com/lernia/review-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found
	case errors.Is(err, review.ErrCardNotFound),
		errors.Is(err, review.ErrSessionNotFound),
		errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, store.ErrSessionNotFound):
		return http.StatusNotFound

	// Conflicts with current resource state
	case errors.Is(err, review.ErrSessionClosed),
		errors.Is(err, review.ErrCardNotInSession),
		errors.Is(err, srs.ErrCardRetired),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, review.ErrInvalidOptions),
		errors.Is(err, srs.ErrInvalidDays),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Special case, handled by callers as an empty response
	case errors.Is(err, review.ErrNoCardsDue):
		return http.StatusNoContent

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, review.ErrCardNotFound),
		errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, review.ErrSessionNotFound),
		errors.Is(err, store.ErrSessionNotFound):
		return "Session not found or expired"

	case errors.Is(err, review.ErrSessionClosed):
		return "Session is already closed"

	case errors.Is(err, review.ErrCardNotInSession):
		return "Card is not part of this session"

	case errors.Is(err, srs.ErrCardRetired):
		return "Card is retired"

	case errors.Is(err, srs.ErrInvalidDays):
		return "Postpone days must be at least 1"

	case errors.Is(err, review.ErrInvalidOptions):
		return "Invalid session options"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a user-friendly
// message without echoing submitted values back.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example: "Key: 'StartSessionRequest.TargetCards' Error:Field
		// validation for 'TargetCards' failed on the 'min' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "value too small"
	case "max":
		return "value too large"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "must be a valid UUID"
	default:
		return "validation failed"
	}
}
