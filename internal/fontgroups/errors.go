package fontgroups

import (
	"errors"
	"net/http"

	"github.com/typevault/typevault/pkg/handlers"
)

// Domain errors for font group operations.
var (
	ErrNotFound  = errors.New("font group not found")
	ErrDuplicate = errors.New("font group already exists")
	ErrGroupSize = errors.New("at least two unique fonts required")
	ErrInvalidID = errors.New("invalid font group id")
)

// MapHTTPStatus maps font group domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrGroupSize) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidID) {
		return http.StatusBadRequest
	}

	var verrs handlers.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
