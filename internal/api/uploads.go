package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/typevault/typevault/internal/fonts"
	"github.com/typevault/typevault/pkg/handlers"
	"github.com/typevault/typevault/pkg/storage"
)

// UploadsHandler serves stored font binaries from the public path their
// records point at.
type UploadsHandler struct {
	store  storage.System
	logger *slog.Logger
}

// NewUploadsHandler creates an UploadsHandler backed by the given storage system.
func NewUploadsHandler(store storage.System, logger *slog.Logger) *UploadsHandler {
	return &UploadsHandler{
		store:  store,
		logger: logger.With("handler", "uploads"),
	}
}

// ServeFont streams the font binary named by the filename path parameter.
func (h *UploadsHandler) ServeFont(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	body, err := h.store.Download(r.Context(), fonts.StorageKey(filename))
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "font/ttf")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("font stream interrupted", "filename", filename, "error", err)
	}
}
