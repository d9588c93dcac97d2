package authz

import (
	"context"
	"log/slog"
)

// OwnershipLookup resolves the current owner of a resource. Implemented
// outside the core; the guard encodes the rule, not the lookup.
type OwnershipLookup interface {
	OwnerOf(ctx context.Context, resourceType, resourceID string) (string, error)
}

// ApprovalChecker answers whether an action on a resource has been
// approved by the external approval workflow.
type ApprovalChecker interface {
	IsApproved(ctx context.Context, module, ref string) (bool, error)
}

// Validation lists the additional rules an endpoint requires beyond its
// permission set.
type Validation struct {
	RequiresOwnership    bool
	RequiresVendorAccess bool
	RequiresApproval     bool
}

// Endpoint declares the access rules of one API boundary.
type Endpoint struct {
	Name                string
	RequiredPermissions []Permission
	Validation          Validation
}

// Decision is a guard verdict. Denials are results, never errors, so the
// hot path has nothing to throw.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the verdict for an unconditionally permitted access.
func Allow() Decision { return Decision{Allowed: true} }

// Deny builds a denial with the given reason.
func Deny(reason string) Decision { return Decision{Reason: reason} }

// Guard gates API boundaries by composing the evaluator with ownership,
// vendor-access and approval rules.
type Guard struct {
	Ownership OwnershipLookup
	Approvals ApprovalChecker
	Logger    *slog.Logger
}

// PermVendorView is re-checked by the vendor-access rule.
var PermVendorView = Permission{Resource: "vendor", Action: "view"}

// ValidateAccess evaluates the endpoint's rules in fixed short-circuit
// order: permissions, then ownership, then vendor access, then approval.
// External lookups run last so the cheap checks reject first and denial
// reasons stay deterministic.
func (g *Guard) ValidateAccess(ctx context.Context, u *UserPermissions, ep Endpoint, pc *Context) Decision {
	if !u.HasAllPermissions(ep.RequiredPermissions, pc) {
		return Deny("insufficient permissions")
	}

	if ep.Validation.RequiresOwnership {
		if d := g.checkOwnership(ctx, u, pc); !d.Allowed {
			return d
		}
	}

	if ep.Validation.RequiresVendorAccess {
		vendorCtx := Context{Resource: Resource{
			Type:       "vendor",
			ID:         pc.resourceVendorID(),
			VendorID:   pc.resourceVendorID(),
			VendorType: pc.resourceVendorType(),
		}}
		if !u.HasPermission(PermVendorView, &vendorCtx) {
			return Deny("no access to this vendor")
		}
	}

	if ep.Validation.RequiresApproval {
		if g.Approvals == nil {
			return Deny("approval status unavailable")
		}
		approved, err := g.Approvals.IsApproved(ctx, ep.Name, pc.resourceID())
		if err != nil {
			if g.Logger != nil {
				g.Logger.Error("approval lookup", slog.String("endpoint", ep.Name), slog.Any("error", err))
			}
			return Deny("approval status unavailable")
		}
		if !approved {
			return Deny("action requires approval")
		}
	}

	return Allow()
}

func (g *Guard) checkOwnership(ctx context.Context, u *UserPermissions, pc *Context) Decision {
	if u == nil {
		return Deny("no active session")
	}
	if pc == nil || pc.Resource.ID == "" {
		return Deny("ownership could not be verified")
	}
	if g.Ownership == nil {
		return Deny("ownership could not be verified")
	}
	owner, err := g.Ownership.OwnerOf(ctx, pc.Resource.Type, pc.Resource.ID)
	if err != nil {
		if g.Logger != nil {
			g.Logger.Error("ownership lookup", slog.String("resource", pc.Resource.ID), slog.Any("error", err))
		}
		return Deny("ownership could not be verified")
	}
	if owner == "" || owner != u.UserID {
		return Deny("caller does not own this resource")
	}
	return Allow()
}

func (c *Context) resourceID() string {
	if c == nil {
		return ""
	}
	return c.Resource.ID
}

func (c *Context) resourceVendorID() string {
	if c == nil {
		return ""
	}
	return c.Resource.VendorID
}

func (c *Context) resourceVendorType() string {
	if c == nil {
		return ""
	}
	return c.Resource.VendorType
}
