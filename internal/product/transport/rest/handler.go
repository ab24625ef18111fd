// Package rest provides HTTP handlers for catalog operations.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/catalog/internal/platform/web"
	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/abgdnv/catalog/internal/product/model"
	"github.com/abgdnv/catalog/internal/product/search"
	"github.com/abgdnv/catalog/internal/product/service"
	"github.com/abgdnv/catalog/internal/product/upload"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// FileField is the multipart field carrying an uploaded image.
const FileField = "file"

// Extractor describes a product from its photo.
type Extractor interface {
	Enabled() bool
	Extract(ctx context.Context, contentType string, image []byte) (model.Product, error)
}

// Options tunes the handler.
type Options struct {
	// MaxUploadBytes caps a multipart request body.
	MaxUploadBytes int64
	// StreamDebounce is the query debounce of stream views.
	StreamDebounce time.Duration
	// StreamKeepAlive is the interval of comment lines sent on idle streams.
	StreamKeepAlive time.Duration
	// Done ends open streams when closed. Nil keeps them open until the client leaves.
	Done <-chan struct{}
}

type Handler struct {
	service   service.ProductService
	extractor Extractor
	validate  *validator.Validate
	opts      Options
	logger    *slog.Logger
}

// NewHandler creates a Handler. A nil extractor disables the analyze endpoint.
func NewHandler(service service.ProductService, extractor Extractor, opts Options, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		extractor: extractor,
		validate:  model.NewValidator(),
		opts:      opts,
		logger:    logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes of the catalog.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/upload", h.Upload)
		r.Post("/analyze", h.Analyze)
		r.Get("/stream", h.Stream)

		r.Route("/{reference}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// List returns the products matching the q parameter, optionally sorted.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	column, order, ok := parseSort(w, r, mLogger)
	if !ok {
		return
	}
	query := r.URL.Query().Get("q")
	mLogger.DebugContext(r.Context(), "Received request to list products", "query", query, "sort", column, "order", order)

	result := h.service.List(query, column, order)
	mLogger.DebugContext(r.Context(), "Successfully listed products", "visible", result.Visible, "total", result.Total)
	web.RespondJSON(w, mLogger, http.StatusOK, result)
}

// Get retrieves a product by its reference.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	reference := chi.URLParam(r, "reference")

	found, err := h.service.Get(reference)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "reference", reference)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with reference %s not found", reference))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "reference", reference, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with reference %s", reference))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Create adds a product from a JSON body.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var product model.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create product", "product", product)
	if err := h.validate.Struct(product); err != nil {
		web.RespondValidationError(w, r, mLogger, err)
		return
	}

	created, err := h.service.Create(r.Context(), product)
	if err != nil {
		if errors.Is(err, perrors.ErrDuplicateReference) {
			mLogger.WarnContext(r.Context(), "Duplicate product reference", "reference", product.Reference)
			web.RespondError(w, mLogger, http.StatusConflict, fmt.Sprintf("Product with reference %s already exists", product.Reference))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "reference", created.Reference, "name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// Update replaces the product addressed by the path reference.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	reference := chi.URLParam(r, "reference")
	var product model.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	product.Reference = reference
	if err := h.validate.Struct(product); err != nil {
		web.RespondValidationError(w, r, mLogger, err)
		return
	}

	updated, err := h.service.Update(r.Context(), product)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for update", "reference", reference)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with reference %s not found", reference))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating product", "reference", reference, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with reference %s", reference))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "reference", updated.Reference)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// Delete removes every product with the path reference.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	reference := chi.URLParam(r, "reference")

	removed, err := h.service.Delete(r.Context(), reference)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for deletion", "reference", reference)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with reference %s not found", reference))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "reference", reference, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with reference %s", reference))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "reference", reference, "removed", removed)
	w.WriteHeader(http.StatusNoContent)
}

// Upload turns an image into a placeholder product and starts its analysis.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	file, content, ok := h.readFile(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received image upload", "file", file.Name, "type", file.Type, "size", file.Size)

	created, err := h.service.Upload(r.Context(), file, content)
	if err != nil {
		var validationErr *upload.ValidationError
		if errors.As(err, &validationErr) {
			mLogger.WarnContext(r.Context(), "Image rejected", "file", file.Name, "reason", validationErr.Reason)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]string{
				"error":  validationErr.Message,
				"reason": string(validationErr.Reason),
			})
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product from image", "file", file.Name, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product from image")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created from image", "reference", created.Reference, "file", file.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// Analyze describes the uploaded image with the language model.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	if h.extractor == nil || !h.extractor.Enabled() {
		web.RespondError(w, mLogger, http.StatusServiceUnavailable, "Image analysis is not available")
		return
	}
	file, content, ok := h.readFile(w, r, mLogger)
	if !ok {
		return
	}
	var validationErr *upload.ValidationError
	if err := upload.Validate(file); errors.As(err, &validationErr) {
		mLogger.WarnContext(r.Context(), "Image rejected for analysis", "file", file.Name, "reason", validationErr.Reason)
		web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]string{
			"error":  validationErr.Message,
			"reason": string(validationErr.Reason),
		})
		return
	}

	product, err := h.extractor.Extract(r.Context(), file.Type, content)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error analyzing image", "file", file.Name, "error", err)
		web.RespondError(w, mLogger, http.StatusBadGateway, "Failed to analyze image")
		return
	}
	mLogger.InfoContext(r.Context(), "Image analyzed", "file", file.Name, "reference", product.Reference)
	web.RespondJSON(w, mLogger, http.StatusOK, product)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// readFile reads the FileField part of a multipart request.
func (h *Handler) readFile(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger) (upload.File, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			mLogger.WarnContext(r.Context(), "Upload body too large", "limit", maxBytesErr.Limit)
			web.RespondJSON(w, mLogger, http.StatusRequestEntityTooLarge, map[string]string{
				"error":  upload.MessageTooLarge,
				"reason": string(upload.ReasonSize),
			})
			return upload.File{}, nil, false
		}
		mLogger.WarnContext(r.Context(), "Error parsing multipart form", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid multipart form")
		return upload.File{}, nil, false
	}

	part, header, err := r.FormFile(FileField)
	if err != nil {
		mLogger.WarnContext(r.Context(), "No file in upload", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "No file provided")
		return upload.File{}, nil, false
	}
	defer func() { _ = part.Close() }()

	content, err := io.ReadAll(part)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error reading uploaded file", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Failed to read file")
		return upload.File{}, nil, false
	}
	return upload.FromMultipart(header, content), content, true
}

// parseSort reads the sort and order parameters. Missing values mean insertion order, ascending.
func parseSort(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger) (search.Column, search.Order, bool) {
	column, ok := search.ParseColumn(r.URL.Query().Get("sort"))
	if !ok {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid sort column")
		return "", "", false
	}
	order, ok := search.ParseOrder(r.URL.Query().Get("order"))
	if !ok {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid sort order")
		return "", "", false
	}
	return column, order, true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
