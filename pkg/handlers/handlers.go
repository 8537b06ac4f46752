// Package handlers provides JSON response helpers shared by HTTP handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// FieldError describes a validation failure on a single request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors aggregates per-field validation failures.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already written; nothing left to do but note it
		slog.Error("encode response failed", "error", err)
	}
}

// RespondError logs the error and writes a JSON error body with the given
// status. Validation errors carry their field details; 5xx responses mask
// the cause behind a generic message while the full error is logged.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("request failed", "status", status, "error", err)

	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		RespondJSON(w, status, map[string]any{"errors": verrs})
	case status >= http.StatusInternalServerError:
		RespondJSON(w, status, map[string]string{"error": "internal server error"})
	default:
		RespondJSON(w, status, map[string]string{"error": err.Error()})
	}
}
