// Package httptransport assembles the HTTP surface: shared middleware,
// operational endpoints and the bounded-context handlers.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dErrors "crm/pkg/domain-errors"
	"crm/pkg/platform/httputil"
	authmw "crm/pkg/platform/middleware/auth"
	request "crm/pkg/platform/middleware/request"
	"crm/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

// Registrar mounts a bounded context's routes on an authenticated router.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Logger        *slog.Logger
	Authenticator authmw.Authenticator
	CookieName    string
	// Activity wraps every authenticated request; nil disables idle tracking.
	Activity func(http.Handler) http.Handler
	Handlers []Registrar
	// Realtime is served on GET /ws for authenticated agents.
	Realtime http.Handler
	Health   map[string]HealthCheck
}

// NewRouter wires the middleware chain: recovery, request id, request time
// and access logging for everything; authentication and activity tracking
// for the API. Permission gates are applied by each handler's routes.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(logger))

	r.Get("/healthz", healthHandler(cfg.Health, logger))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(cfg.Authenticator, cfg.CookieName, logger))
		if cfg.Activity != nil {
			r.Use(cfg.Activity)
		}
		for _, h := range cfg.Handlers {
			h.Register(r)
		}
		if cfg.Realtime != nil {
			r.Get("/ws", cfg.Realtime.ServeHTTP)
		}
	})
	return r
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed",
					"dependency", name,
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, name+" unavailable"))
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
