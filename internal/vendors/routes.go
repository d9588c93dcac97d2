package vendors

import (
	"github.com/go-chi/chi/v5"

	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/guard"
	"github.com/benchdesk/benchdesk/internal/shared"
)

// MountRoutes registers the vendor endpoints under /vendors. Reads are
// scoped in the service; writes are gated here.
func (h *Handler) MountRoutes(r chi.Router, mw guard.Middleware) {
	perm := func(name string) authz.Permission { return authz.MustPermission(name) }

	r.Group(func(gr chi.Router) {
		gr.Use(mw.RequireHeld("vendor.view", perm(shared.PermVendorView)))
		gr.Get("/", h.handleList)
		gr.Get("/{id}", h.handleGet)
	})
	r.Group(func(gr chi.Router) {
		gr.Use(mw.Require(authz.Endpoint{
			Name:                "vendor.create",
			RequiredPermissions: []authz.Permission{perm(shared.PermVendorCreate)},
		}))
		gr.Post("/", h.handleCreate)
	})
	r.Group(func(gr chi.Router) {
		gr.Use(mw.Require(authz.Endpoint{
			Name:                "vendor.update",
			RequiredPermissions: []authz.Permission{perm(shared.PermVendorUpdate)},
		}))
		gr.Put("/{id}", h.handleUpdate)
	})
	r.Group(func(gr chi.Router) {
		gr.Use(mw.Require(authz.Endpoint{
			Name:                "vendor.commission",
			RequiredPermissions: []authz.Permission{perm(shared.PermVendorCommission)},
		}))
		gr.Put("/{id}/commission", h.handleCommission)
	})
	r.Group(func(gr chi.Router) {
		gr.Use(mw.Require(authz.Endpoint{
			Name:                "vendor.delete",
			RequiredPermissions: []authz.Permission{perm(shared.PermVendorDelete)},
		}))
		gr.Delete("/{id}", h.handleDelete)
	})
}
