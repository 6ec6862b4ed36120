// Package httptransport assembles the gateway's HTTP surface: the auth
// endpoints, the session-guarded upstream proxy and the ops endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "portalgate/internal/auth/handler"
	"portalgate/internal/session"
	"portalgate/internal/slo"
	"portalgate/pkg/platform/middleware/metadata"
	"portalgate/pkg/platform/middleware/requestid"
	"portalgate/pkg/platform/middleware/requesttime"
)

// Deps carries everything the router wires together.
type Deps struct {
	AuthHandler *authhandler.Handler
	Sessions    session.Store
	Index       slo.Index
	Cookies     *session.CookieCodec
	SessionTTL  time.Duration
	Proxy       http.Handler // nil when no upstream is configured
	Ready       func(r *http.Request) error
	Logger      *slog.Logger
}

// NewRouter builds the gateway router. Session resolution runs on every
// route; the proxy subtree additionally requires an authenticated principal.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(session.Middleware(deps.Sessions, deps.Index, deps.Cookies, deps.SessionTTL, deps.Logger))

	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(deps.Ready))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	deps.AuthHandler.Register(r)

	if deps.Proxy != nil {
		r.Route("/api", func(r chi.Router) {
			r.Use(session.RequireAuth)
			r.Handle("/*", deps.Proxy)
		})
	}

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReadyz reports readiness, delegating to the store health check when
// one is wired.
func handleReadyz(ready func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
