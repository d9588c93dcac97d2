// Package authz implements the platform authorization core: a role
// registry with inheritance, a fail-closed permission evaluator with
// contextual conditions, a collection filter reusing that evaluator, and
// an endpoint guard composing permission, ownership, vendor-access and
// approval rules.
//
// Decisions are synchronous and do no I/O. Everything the evaluator
// needs travels in an explicit *UserPermissions value; there is no
// hidden current-user state, and a nil *UserPermissions denies every
// check.
package authz

// ConditionKind enumerates the contextual conditions a grant may carry.
// The set is closed: evaluation switches exhaustively over these kinds
// and an unrecognised kind denies.
type ConditionKind int

const (
	// CondNone grants unconditionally.
	CondNone ConditionKind = iota
	// CondOwnOnly limits the grant to resources owned by the caller.
	CondOwnOnly
	// CondOwnAccounts limits the grant to resources in the caller's
	// restricted account set.
	CondOwnAccounts
	// CondVendorTypeIn limits the grant to vendors whose type is in the
	// caller's restricted vendor-type set.
	CondVendorTypeIn
	// CondPOCRoleIn limits the grant to resources whose point-of-contact
	// role is in the caller's restricted PoC-role set.
	CondPOCRoleIn
)

// Grant couples a permission with the condition under which it applies.
type Grant struct {
	Permission Permission    `json:"permission"`
	Condition  ConditionKind `json:"condition"`
}

// RoleDefinition describes a role's direct grants and the roles it
// inherits from. Definitions are build-time data; the registry validates
// and flattens them once at construction.
type RoleDefinition struct {
	Grants   []Grant
	Inherits []string
}

// Restrictions narrow otherwise-granted permissions for one user. The
// identity provider supplies them when the session is initialized.
type Restrictions struct {
	VendorIDs   []string `json:"vendor_ids,omitempty"`
	VendorTypes []string `json:"vendor_types,omitempty"`
	POCRoles    []string `json:"poc_roles,omitempty"`
	AccountIDs  []string `json:"account_ids,omitempty"`
}

// UserPermissions is the resolved authorization context for one
// authenticated session: the user's roles, the flattened grant set
// resolved through the registry, and any per-user restrictions. It is
// built once per session and only read afterwards, so it is safe to
// share across goroutines.
type UserPermissions struct {
	UserID       string       `json:"user_id"`
	Roles        []string     `json:"roles"`
	Grants       []Grant      `json:"grants"`
	Restrictions Restrictions `json:"restrictions"`
}

// Resource carries the per-decision facts about the target of a
// conditional permission check.
type Resource struct {
	ID         string
	Type       string
	OwnerID    string
	AccountID  string
	VendorID   string
	VendorType string
	POCRole    string
}

// Context wraps the target resource for one decision. It is constructed
// per call and never persisted.
type Context struct {
	Resource Resource
}

func contains(set []string, want string) bool {
	for _, s := range set {
		if s == want {
			return true
		}
	}
	return false
}
