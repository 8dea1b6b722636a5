/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package httpapi serves the catalog unit of work over HTTP.
//
//	GET    /products         list the snapshot
//	POST   /products         add a product (Id 0 assigns the next Id)
//	GET    /products/{id}    fetch one product
//	PUT    /products/{id}    replace a product
//	DELETE /products/{id}    remove a product
//	POST   /save             write the snapshot to the data store
//	POST   /reload           discard unsaved changes
//	GET    /status           active data source and version
//	GET    /metrics          Prometheus metrics, when configured
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/suparena/persistence"
	"github.com/suparena/persistence/catalog"
	"github.com/suparena/persistence/errors"
	"github.com/suparena/persistence/repository"
)

// Options configures the HTTP surface
type Options struct {
	AllowedOrigins []string

	// Metrics is mounted at /metrics when set
	Metrics http.Handler

	// RequestTimeout bounds each request, including data store I/O
	RequestTimeout time.Duration

	Logger *zap.Logger
}

// Handler serves the catalog
type Handler struct {
	uow    *catalog.UnitOfWork
	logger *zap.Logger
}

// ErrorResponse is returned for failures that are not operation results
type ErrorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

// StatusResponse describes the running service
type StatusResponse struct {
	Source   string                  `json:"source"`
	Kind     string                  `json:"kind"`
	Provider string                  `json:"provider"`
	Location string                  `json:"location"`
	Version  persistence.VersionInfo `json:"version"`
}

// SaveResponse reports a SaveChanges call
type SaveResponse struct {
	Saved int `json:"saved"`
}

// New returns the router for uow
func New(uow *catalog.UnitOfWork, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	h := &Handler{uow: uow, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(CORS(opts.AllowedOrigins))

	r.Get("/healthz", h.Healthz)
	r.Get("/status", h.Status)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.AddProduct)
		r.Get("/{id}", h.GetProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})
	r.Post("/save", h.Save)
	r.Post("/reload", h.Reload)

	return r
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	source := h.uow.Source()
	h.writeJSON(w, http.StatusOK, StatusResponse{
		Source:   source.String(),
		Kind:     source.Kind,
		Provider: source.Provider,
		Location: source.Location,
		Version:  persistence.GetVersionInfo(),
	})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.uow.Products.GetAll(r.Context())
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	product, err := h.uow.Products.GetByID(r.Context(), id)
	switch {
	case errors.IsNotFound(err):
		h.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case err != nil:
		h.writeStorageError(w, err)
	default:
		h.writeJSON(w, http.StatusOK, product)
	}
}

func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	product.Touch()
	result, err := h.uow.Products.Add(r.Context(), product)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	if !result.Success {
		h.writeJSON(w, http.StatusConflict, result)
		return
	}
	h.writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	product, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	product.ID = id
	product.Touch()
	h.writeResult(w, r, product, h.uow.Products.Update)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.writeResult(w, r, &catalog.Product{ID: id}, h.uow.Products.Delete)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	n, err := h.uow.SaveChanges(r.Context())
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, SaveResponse{Saved: n})
}

func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.uow.Reload(r.Context()); err != nil {
		h.writeStorageError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, repository.Ok())
}

type mutation func(ctx context.Context, p *catalog.Product) (repository.OperationResult, error)

func (h *Handler) writeResult(w http.ResponseWriter, r *http.Request, product *catalog.Product, op mutation) {
	result, err := op(r.Context(), product)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	if !result.Success {
		h.writeJSON(w, http.StatusNotFound, result)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeProduct(w http.ResponseWriter, r *http.Request) (*catalog.Product, bool) {
	var product catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid product: " + err.Error()})
		return nil, false
	}
	return &product, true
}

// writeStorageError maps wrapped data store errors onto status codes. The
// message is the wrapped message, never the backend cause.
func (h *Handler) writeStorageError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsTransient(err):
		status = http.StatusServiceUnavailable
	case errors.IsIntegrity(err):
		status = http.StatusConflict
	case errors.IsValidationError(err):
		status = http.StatusBadRequest
	}
	h.logger.Warn("request failed", zap.Int("status", status), zap.Error(err))
	h.writeJSON(w, status, ErrorResponse{Error: err.Error(), Retryable: errors.IsTransient(err)})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Debug("failed to write response", zap.Error(err))
	}
}
