package hotlists

import (
	"github.com/go-chi/chi/v5"

	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/guard"
	"github.com/benchdesk/benchdesk/internal/shared"
)

// MountRoutes registers the hotlist endpoints under /hotlists. The
// grants here are account-conditional, so routes gate on the grant
// being held and the service evaluates the condition against the
// loaded hotlist.
func (h *Handler) MountRoutes(r chi.Router, mw guard.Middleware) {
	perm := func(name string) authz.Permission { return authz.MustPermission(name) }

	r.Group(func(gr chi.Router) {
		gr.Use(mw.RequireHeld("hotlists.read", perm(shared.PermHotlistsRead)))
		gr.Get("/", h.handleList)
		gr.Get("/{id}", h.handleGet)
	})
	r.Group(func(gr chi.Router) {
		gr.Use(mw.RequireHeld("hotlists.create", perm(shared.PermHotlistsCreate)))
		gr.Post("/", h.handleCreate)
	})
	r.Group(func(gr chi.Router) {
		gr.Use(mw.RequireHeld("hotlists.update", perm(shared.PermHotlistsUpdate)))
		gr.Put("/{id}", h.handleUpdate)
	})
	r.Group(func(gr chi.Router) {
		gr.Use(mw.RequireHeld("hotlists.delete", perm(shared.PermHotlistsDelete)))
		gr.Delete("/{id}", h.handleDelete)
	})
}
