package guard

import (
	"log/slog"
	"net/http"

	"github.com/benchdesk/benchdesk/internal/audit"
	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/observability"
	"github.com/benchdesk/benchdesk/internal/platform/httpx"
	"github.com/benchdesk/benchdesk/internal/shared"
)

// ContextFunc derives the permission context for a request. Endpoints
// whose grants carry conditions need one; unconditional endpoints pass
// nil and the evaluator sees no resource.
type ContextFunc func(r *http.Request) (*authz.Context, error)

// Middleware wires endpoint access checks for HTTP handlers. Every
// denial is counted and lands in the audit trail; the response body
// never carries the denial reason.
type Middleware struct {
	Guard   *authz.Guard
	Audit   *audit.Logger
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Require gates the endpoint with its declared rules.
func (m Middleware) Require(ep authz.Endpoint) func(http.Handler) http.Handler {
	return m.RequireWith(ep, nil)
}

// RequireWith gates the endpoint and derives the permission context per
// request via ctxOf before evaluating.
func (m Middleware) RequireWith(ep authz.Endpoint, ctxOf ContextFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := shared.UserFromContext(r.Context())

			var pc *authz.Context
			if ctxOf != nil {
				var err error
				pc, err = ctxOf(r)
				if err != nil {
					if m.Logger != nil {
						m.Logger.Error("guard context", slog.String("endpoint", ep.Name), slog.Any("error", err))
					}
					httpx.RespondError(w, err)
					return
				}
			}

			decision := m.Guard.ValidateAccess(r.Context(), u, ep, pc)
			if !decision.Allowed {
				m.deny(r, u, ep, pc, decision)
				httpx.RespondError(w, shared.ErrPermissionDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireHeld gates the endpoint on the caller merely holding grants
// for the permissions, conditions untested. Listing and scoped-read
// routes use this; the per-resource conditions are applied against each
// row once it is loaded.
func (m Middleware) RequireHeld(name string, perms ...authz.Permission) func(http.Handler) http.Handler {
	ep := authz.Endpoint{Name: name, RequiredPermissions: perms}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := shared.UserFromContext(r.Context())
			for _, p := range perms {
				if !u.HoldsGrant(p) {
					m.deny(r, u, ep, nil, authz.Deny("permission not granted"))
					httpx.RespondError(w, shared.ErrPermissionDenied)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) deny(r *http.Request, u *authz.UserPermissions, ep authz.Endpoint, pc *authz.Context, d authz.Decision) {
	if m.Metrics != nil {
		m.Metrics.CountDenial(ep.Name)
	}
	if m.Audit == nil {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	var sessionID string
	if sess != nil {
		sessionID = sess.ID
	}
	entry := audit.Entry{
		Type:         audit.EventUnauthorizedAccess,
		Action:       ep.Name,
		Success:      false,
		ErrorMessage: d.Reason,
	}
	if pc != nil {
		entry.ResourceType = pc.Resource.Type
		entry.ResourceID = pc.Resource.ID
	}
	m.Audit.Log(r.Context(), u, entry, audit.MetaFromRequest(r, sessionID))
}
