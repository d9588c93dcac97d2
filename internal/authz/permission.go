package authz

import (
	"fmt"
	"strings"
)

// Wildcard matches any resource or action when used on that side of a
// permission.
const Wildcard = "*"

// Permission is an atomic resource:action capability. Either side may be
// the wildcard "*", so "vendor:*" grants every action on vendors and
// "*:view" grants viewing of everything.
type Permission struct {
	Resource string
	Action   string
}

// ParsePermission parses the canonical "resource:action" form.
func ParsePermission(s string) (Permission, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Permission{}, fmt.Errorf("authz: invalid permission %q, want resource:action", s)
	}
	return Permission{Resource: strings.ToLower(parts[0]), Action: strings.ToLower(parts[1])}, nil
}

// MustPermission parses s and panics on malformed input. Intended for
// static catalogs and tests, never for request data.
func MustPermission(s string) Permission {
	p, err := ParsePermission(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the canonical "resource:action" form.
func (p Permission) String() string {
	return p.Resource + ":" + p.Action
}

// IsWildcard reports whether either side of the permission is wildcarded.
func (p Permission) IsWildcard() bool {
	return p.Resource == Wildcard || p.Action == Wildcard
}

// Matches reports whether this grant pattern satisfies the required
// permission. The required side is always concrete; wildcards live on
// the grant side only.
func (p Permission) Matches(required Permission) bool {
	if p.Resource != Wildcard && p.Resource != required.Resource {
		return false
	}
	if p.Action != Wildcard && p.Action != required.Action {
		return false
	}
	return true
}
