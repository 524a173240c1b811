// Package api provides HTTP handlers for the wheel specification API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/artpar/wheelspec/internal/core/domain"
	"github.com/artpar/wheelspec/internal/core/validation"
	apimw "github.com/artpar/wheelspec/internal/shell/api/middleware"
	"github.com/artpar/wheelspec/internal/shell/api/openapi"
	"github.com/artpar/wheelspec/internal/shell/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// FormsPath is the collection route of wheel specification forms.
	FormsPath = "/api/forms/wheel-specifications"

	maxBodyBytes = 1 << 20

	msgCreated   = "Wheel specification created successfully"
	msgListed    = "Wheel specifications retrieved successfully"
	msgRetrieved = "Wheel specification retrieved successfully"
)

// =============================================================================
// Handler
// =============================================================================

// Handler provides HTTP handlers for the API.
type Handler struct {
	store    store.Store
	logger   *slog.Logger
	metrics  *apimw.Metrics
	registry *prometheus.Registry
	docs     *openapi.Generator
	now      func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock sets the clock used to reject future submission dates.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// WithRegistry sets the Prometheus registry served on /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(h *Handler) {
		h.registry = reg
	}
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, l *slog.Logger, opts ...Option) *Handler {
	if l == nil {
		l = slog.Default()
	}
	h := &Handler{
		store:  s,
		logger: l,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.registry == nil {
		h.registry = prometheus.NewRegistry()
		h.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	h.metrics = apimw.NewMetrics(h.registry)
	h.docs = newAPIDocument()
	return h
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(h.requestID)
	r.Use(middleware.RealIP)
	r.Use(apimw.RequestLogger(h.logger))
	r.Use(h.metrics.Handler)
	r.Use(middleware.Recoverer)
	r.Use(h.jsonContentType)

	// Health endpoints
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)

	// Operational endpoints
	r.Handle("/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
	r.Get("/openapi.json", h.docs.Handler())

	// Form routes
	r.Route(FormsPath, func(r chi.Router) {
		r.Post("/", h.handleCreateWheelSpecification)
		r.Get("/", h.handleListWheelSpecifications)
		r.Get("/{formNumber}", h.handleGetWheelSpecification)
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestID keeps an incoming X-Request-ID or assigns a UUID, stores it
// where middleware.GetReqID finds it and echoes it on the response.
func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(middleware.RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, reqID)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		checks["database"] = "failed"
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{
			Status: "not_ready",
			Checks: checks,
		})
		return
	}
	checks["database"] = "ok"

	h.writeJSON(w, http.StatusOK, ReadyResponse{
		Status: "ready",
		Checks: checks,
	})
}

// =============================================================================
// Wheel Specification Handlers
// =============================================================================

func (h *Handler) handleCreateWheelSpecification(w http.ResponseWriter, r *http.Request) {
	var req CreateWheelSpecificationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.metrics.FormSubmitted(apimw.OutcomeInvalid)
		h.writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}

	spec, err := validation.ValidateCreate(req.toInput(), h.now())
	if err != nil {
		h.metrics.FormSubmitted(apimw.OutcomeInvalid)
		var verrs validation.ValidationErrors
		errors.As(err, &verrs)
		h.writeError(w, http.StatusBadRequest, err.Error(), verrs)
		return
	}

	if err := h.store.CreateWheelSpecification(r.Context(), spec); err != nil {
		if errors.Is(err, store.ErrDuplicateFormNumber) {
			h.metrics.FormSubmitted(apimw.OutcomeDuplicate)
			h.writeError(w, http.StatusConflict,
				"Wheel specification with form number "+spec.FormNumber+" already exists", nil)
			return
		}
		h.metrics.FormSubmitted(apimw.OutcomeError)
		h.logger.Error("failed to create wheel specification", "form_number", spec.FormNumber, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to create wheel specification", nil)
		return
	}

	h.metrics.FormSubmitted(apimw.OutcomeCreated)
	h.logger.Info("wheel specification created", "form_number", spec.FormNumber, "submitted_by", spec.SubmittedBy)
	h.writeJSON(w, http.StatusCreated, Envelope{
		Data:    toCreated(spec),
		Message: msgCreated,
		Success: true,
	})
}

func (h *Handler) handleListWheelSpecifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.Filter{
		FormNumber:  q.Get("formNumber"),
		SubmittedBy: q.Get("submittedBy"),
	}
	if raw := q.Get("submittedDate"); raw != "" {
		d, ferr := validation.ParseDate("submittedDate", raw)
		if ferr != nil {
			h.writeError(w, http.StatusBadRequest, ferr.Error(), validation.ValidationErrors{*ferr})
			return
		}
		filter.SubmittedDate = &d
	}

	specs, err := h.store.ListWheelSpecifications(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list wheel specifications", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to retrieve wheel specifications", nil)
		return
	}

	data := make([]WheelSpecificationSummary, 0, len(specs))
	for i := range specs {
		data = append(data, toSummary(&specs[i]))
	}

	h.writeJSON(w, http.StatusOK, Envelope{
		Data:    data,
		Message: msgListed,
		Success: true,
	})
}

func (h *Handler) handleGetWheelSpecification(w http.ResponseWriter, r *http.Request) {
	formNumber := domain.NormalizeFormNumber(chi.URLParam(r, "formNumber"))

	spec, err := h.store.GetWheelSpecification(r.Context(), formNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Wheel specification not found", nil)
			return
		}
		h.logger.Error("failed to get wheel specification", "form_number", formNumber, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to retrieve wheel specification", nil)
		return
	}

	h.writeJSON(w, http.StatusOK, Envelope{
		Data:    toResponse(spec),
		Message: msgRetrieved,
		Success: true,
	})
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, errs validation.ValidationErrors) {
	h.writeJSON(w, status, Envelope{
		Data:    nil,
		Message: message,
		Success: false,
		Errors:  errs,
	})
}
