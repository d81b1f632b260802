package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

const serviceName = "card-lifecycle"

// readyTimeout bounds the dependency check behind /readyz.
const readyTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides HTTP health check endpoints for the card lifecycle service.
type HealthHandler struct {
	store   Pinger
	metrics http.Handler
	logger  *slog.Logger
}

// NewHealthHandler creates a new HealthHandler. metrics may be nil.
func NewHealthHandler(store Pinger, metrics http.Handler, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// healthResponse represents the health check response body.
type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Error   string `json:"error,omitempty"`
}

// RegisterRoutes registers the health check routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /readyz", h.Ready)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
}

// Health is the liveness probe endpoint.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	h.write(w, http.StatusOK, healthResponse{Status: "UP", Service: serviceName})
}

// Ready is the readiness probe endpoint. It fails while the card store is unreachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", slog.String("error", err.Error()))
		h.write(w, http.StatusServiceUnavailable, healthResponse{
			Status:  "NOT_READY",
			Service: serviceName,
			Error:   "card store unavailable",
		})
		return
	}

	h.write(w, http.StatusOK, healthResponse{Status: "READY", Service: serviceName})
}

func (h *HealthHandler) write(w http.ResponseWriter, code int, resp healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode health response", slog.String("error", err.Error()))
	}
}
