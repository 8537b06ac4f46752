package fonts

import (
	"errors"
	"net/http"

	"github.com/typevault/typevault/pkg/handlers"
)

// Domain errors for font operations.
var (
	ErrNotFound     = errors.New("font not found")
	ErrDuplicate    = errors.New("font already exists")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrInvalidFile  = errors.New("only .ttf files are accepted")
	ErrInvalidID    = errors.New("invalid font id")
	ErrForbidden    = errors.New("operation not permitted")
)

// MapHTTPStatus maps font domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidFile) || errors.Is(err, ErrInvalidID) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}

	var verrs handlers.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
