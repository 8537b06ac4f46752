package fonts

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/typevault/typevault/pkg/handlers"
	"github.com/typevault/typevault/pkg/pagination"
	"github.com/typevault/typevault/pkg/routes"
)

const (
	uploadField      = "font"
	batchUploadField = "fonts"
	defaultMimeType  = "font/ttf"

	// concurrent uploads per batch request
	batchConcurrency = 4
)

// Handler provides HTTP endpoints for font operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, pagination
// config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "fonts"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for font endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/font",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "POST", Pattern: "/batch", Handler: h.BatchUpload},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of fonts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single font by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	font, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, font)
}

// Upload processes a multipart form upload containing a single .ttf file
// in the "font" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, handlers.ValidationErrors{
			{Field: uploadField, Message: "font file is required"},
		})
		return
	}
	defer file.Close()

	cmd, err := readUpload(file, header)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	font, err := h.sys.CreateFromUpload(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, font)
}

// BatchUpload processes a multipart form upload containing multiple .ttf
// files in the repeated "fonts" field. Files are uploaded concurrently and
// each reports its own result; one bad file does not fail the batch.
func (h *Handler) BatchUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File[batchUploadField]) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, handlers.ValidationErrors{
			{Field: batchUploadField, Message: "at least one font file is required"},
		})
		return
	}

	headers := r.MultipartForm.File[batchUploadField]
	results := make([]BatchResult, len(headers))

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(batchConcurrency)

	for i, header := range headers {
		g.Go(func() error {
			results[i] = BatchResult{Filename: header.Filename}

			file, err := header.Open()
			if err != nil {
				results[i].Error = ErrInvalidFile.Error()
				return nil
			}
			defer file.Close()

			cmd, err := readUpload(file, header)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}

			font, err := h.sys.CreateFromUpload(ctx, cmd)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}

			results[i].Font = font
			return nil
		})
	}

	// per-file errors are reported in results, never returned
	_ = g.Wait()

	handlers.RespondJSON(w, http.StatusOK, results)
}

// Delete removes a font by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func readUpload(file multipart.File, header *multipart.FileHeader) (UploadCommand, error) {
	if !strings.EqualFold(filepath.Ext(header.Filename), Extension) {
		return UploadCommand{}, ErrInvalidFile
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return UploadCommand{}, ErrInvalidFile
	}

	contentType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = defaultMimeType
	}

	return UploadCommand{
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType,
	}, nil
}
