package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	audithttp "github.com/benchdesk/benchdesk/internal/audit/http"
	"github.com/benchdesk/benchdesk/internal/bench"
	"github.com/benchdesk/benchdesk/internal/guard"
	"github.com/benchdesk/benchdesk/internal/hotlists"
	"github.com/benchdesk/benchdesk/internal/identity"
	"github.com/benchdesk/benchdesk/internal/observability"
	"github.com/benchdesk/benchdesk/internal/shared"
	"github.com/benchdesk/benchdesk/internal/vendors"
	"github.com/benchdesk/benchdesk/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	Permissions     PermissionLoader
	Guard           guard.Middleware
	IdentityHandler *identity.Handler
	BenchHandler    *bench.Handler
	HotlistsHandler *hotlists.Handler
	VendorsHandler  *vendors.Handler
	AuditHandler    *audithttp.Handler
	JobsHandler     *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with platform defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Permissions:    params.Permissions,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.IdentityHandler.Routes)
	if params.BenchHandler != nil {
		r.Route("/bench", func(r chi.Router) {
			params.BenchHandler.MountRoutes(r, params.Guard)
		})
	}
	if params.HotlistsHandler != nil {
		r.Route("/hotlists", func(r chi.Router) {
			params.HotlistsHandler.MountRoutes(r, params.Guard)
		})
	}
	if params.VendorsHandler != nil {
		r.Route("/vendors", func(r chi.Router) {
			params.VendorsHandler.MountRoutes(r, params.Guard)
		})
	}
	if params.AuditHandler != nil {
		params.AuditHandler.MountRoutes(r)
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", func(r chi.Router) {
			params.JobsHandler.MountRoutes(r, params.Guard)
		})
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
