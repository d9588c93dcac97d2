package bench

import (
	"github.com/go-chi/chi/v5"

	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/guard"
	"github.com/benchdesk/benchdesk/internal/shared"
)

// MountRoutes registers the bench endpoints under /bench. Updates are
// owner-only: the guard evaluates the conditional grant and the
// ownership rule against the stored row before the handler runs.
func (h *Handler) MountRoutes(r chi.Router, mw guard.Middleware) {
	perm := func(name string) authz.Permission { return authz.MustPermission(name) }

	r.Group(func(gr chi.Router) {
		gr.Use(mw.RequireHeld("bench.read", perm(shared.PermBenchRead)))
		gr.Get("/", h.handleList)
		gr.Get("/{id}", h.handleGet)
	})
	r.Group(func(gr chi.Router) {
		gr.Use(mw.RequireWith(authz.Endpoint{
			Name:                "bench.update",
			RequiredPermissions: []authz.Permission{perm(shared.PermBenchUpdate)},
			Validation:          authz.Validation{RequiresOwnership: true},
		}, h.resourceContext))
		gr.Put("/{id}", h.handleUpdate)
	})
}
