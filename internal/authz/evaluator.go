package authz

// Verdict is the outcome of an explained permission check. Reason is
// populated on denial for audit detail; it is never shown to end users.
type Verdict struct {
	Allowed bool
	Reason  string
}

const (
	reasonNoSession      = "no active session"
	reasonNotGranted     = "permission not granted"
	reasonMissingContext = "conditional permission without context"
)

// HasPermission reports whether the user may perform the requested
// permission against the given context. A nil receiver, a grant whose
// condition cannot be proven, or a context missing a field the condition
// needs all deny; the evaluator never fails open.
func (u *UserPermissions) HasPermission(perm Permission, ctx *Context) bool {
	return u.Explain(perm, ctx).Allowed
}

// Explain evaluates like HasPermission but keeps the denial reason.
func (u *UserPermissions) Explain(perm Permission, ctx *Context) Verdict {
	if u == nil {
		return Verdict{Reason: reasonNoSession}
	}

	// Wildcard grants short-circuit: a role with universal access needs
	// no context at all.
	for _, g := range u.Grants {
		if g.Permission.IsWildcard() && g.Permission.Matches(perm) {
			return Verdict{Allowed: true}
		}
	}

	matched := false
	var denied Verdict
	for _, g := range u.Grants {
		if !g.Permission.Matches(perm) {
			continue
		}
		matched = true
		v := u.evaluateCondition(g.Condition, ctx)
		if v.Allowed {
			return v
		}
		denied = v
	}
	if !matched {
		return Verdict{Reason: reasonNotGranted}
	}
	return denied
}

// HasAnyPermission short-circuits true on the first permission that
// evaluates true.
func (u *UserPermissions) HasAnyPermission(perms []Permission, ctx *Context) bool {
	for _, p := range perms {
		if u.HasPermission(p, ctx) {
			return true
		}
	}
	return false
}

// HasAllPermissions short-circuits false on the first permission that
// evaluates false.
func (u *UserPermissions) HasAllPermissions(perms []Permission, ctx *Context) bool {
	for _, p := range perms {
		if !u.HasPermission(p, ctx) {
			return false
		}
	}
	return true
}

// HoldsGrant reports whether any grant covers the permission, with
// conditions left untested. Listing endpoints gate on this and scope
// the rows afterwards; a contextual check would fail closed before any
// row exists to evaluate against.
func (u *UserPermissions) HoldsGrant(perm Permission) bool {
	if u == nil {
		return false
	}
	for _, g := range u.Grants {
		if g.Permission.Matches(perm) {
			return true
		}
	}
	return false
}

// HasRole is a direct membership test, independent of grant resolution.
func (u *UserPermissions) HasRole(role string) bool {
	if u == nil {
		return false
	}
	return contains(u.Roles, role)
}

// HasAnyRole reports whether the user holds at least one of the roles.
func (u *UserPermissions) HasAnyRole(roles ...string) bool {
	if u == nil {
		return false
	}
	for _, role := range roles {
		if contains(u.Roles, role) {
			return true
		}
	}
	return false
}

func (u *UserPermissions) evaluateCondition(kind ConditionKind, ctx *Context) Verdict {
	if kind == CondNone {
		return Verdict{Allowed: true}
	}
	if ctx == nil {
		return Verdict{Reason: reasonMissingContext}
	}
	res := ctx.Resource
	switch kind {
	case CondOwnOnly:
		if res.OwnerID == "" {
			return Verdict{Reason: "context missing resource owner"}
		}
		if res.OwnerID != u.UserID {
			return Verdict{Reason: "resource not owned by caller"}
		}
		return Verdict{Allowed: true}
	case CondOwnAccounts:
		if res.AccountID == "" {
			return Verdict{Reason: "context missing account id"}
		}
		if !contains(u.Restrictions.AccountIDs, res.AccountID) {
			return Verdict{Reason: "account outside caller scope"}
		}
		return Verdict{Allowed: true}
	case CondVendorTypeIn:
		if res.VendorType == "" {
			return Verdict{Reason: "context missing vendor type"}
		}
		if !contains(u.Restrictions.VendorTypes, res.VendorType) {
			return Verdict{Reason: "vendor type outside caller scope"}
		}
		return Verdict{Allowed: true}
	case CondPOCRoleIn:
		if res.POCRole == "" {
			return Verdict{Reason: "context missing poc role"}
		}
		if !contains(u.Restrictions.POCRoles, res.POCRole) {
			return Verdict{Reason: "poc role outside caller scope"}
		}
		return Verdict{Allowed: true}
	}
	// Unknown condition kinds deny rather than grant.
	return Verdict{Reason: "unrecognized grant condition"}
}
