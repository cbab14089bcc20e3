package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OpsHandler serves the operational surface: liveness, readiness and
// Prometheus metrics. The marketplace itself is driven through the service
// layer, not HTTP; this server exists for orchestration and monitoring.
type OpsHandler struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	router chi.Router
}

// NewOpsHandler creates the handler with all routes configured. pool may be
// nil when the mirror is disabled; readiness then only reports process
// liveness.
func NewOpsHandler(pool *pgxpool.Pool, logger *slog.Logger) *OpsHandler {
	h := &OpsHandler{pool: pool, logger: logger}
	r := chi.NewRouter()

	r.Get("/healthz", h.handleHealthz)
	r.Get("/readyz", h.handleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *OpsHandler) Router() http.Handler {
	return h.router
}

func (h *OpsHandler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *OpsHandler) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pool.Ping(ctx); err != nil {
			h.logger.Warn("readiness probe failed", slog.Any("error", err))
			http.Error(w, "mirror database unreachable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
