package authz

import (
	"sort"
	"strconv"
)

// Registry holds every role definition and its flattened grant set. It
// is built once at startup, validated for undefined references and
// cyclic inheritance, and treated as immutable afterwards, so reads need
// no synchronization.
type Registry struct {
	defs     map[string]RoleDefinition
	resolved map[string][]Grant
}

// NewRegistry validates the role graph and precomputes the transitive
// grant set of every role. An inheritance cycle or a reference to an
// undefined role fails construction with a *ConfigurationError.
func NewRegistry(defs map[string]RoleDefinition) (*Registry, error) {
	r := &Registry{
		defs:     make(map[string]RoleDefinition, len(defs)),
		resolved: make(map[string][]Grant, len(defs)),
	}
	for name, def := range defs {
		for _, g := range def.Grants {
			// A conditional wildcard is a contradiction: the wildcard
			// short-circuit in the evaluator never reads conditions.
			if g.Permission.IsWildcard() && g.Condition != CondNone {
				return nil, &ConfigurationError{Role: name, Detail: "wildcard grant " + g.Permission.String() + " cannot carry a condition"}
			}
		}
		r.defs[name] = def
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(defs))

	var visit func(name string) ([]Grant, error)
	visit = func(name string) ([]Grant, error) {
		def, ok := r.defs[name]
		if !ok {
			return nil, &ConfigurationError{Role: name, Detail: "role is not defined"}
		}
		switch state[name] {
		case done:
			return r.resolved[name], nil
		case visiting:
			return nil, &ConfigurationError{Role: name, Detail: "cyclic role inheritance"}
		}
		state[name] = visiting

		seen := make(map[string]struct{})
		var grants []Grant
		add := func(g Grant) {
			key := g.Permission.String() + "#" + strconv.Itoa(int(g.Condition))
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}
			grants = append(grants, g)
		}
		for _, g := range def.Grants {
			add(g)
		}
		for _, parent := range def.Inherits {
			inherited, err := visit(parent)
			if err != nil {
				if cfg, ok := err.(*ConfigurationError); ok && cfg.Role == parent && cfg.Detail == "role is not defined" {
					return nil, &ConfigurationError{Role: name, Detail: "inherits undefined role " + parent}
				}
				return nil, err
			}
			for _, g := range inherited {
				add(g)
			}
		}

		state[name] = done
		r.resolved[name] = grants
		return grants, nil
	}

	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := visit(name); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Resolve returns the flattened, deduplicated grant set of a role. The
// result is a copy; callers may keep it. Unknown roles resolve to nil.
func (r *Registry) Resolve(role string) []Grant {
	grants, ok := r.resolved[role]
	if !ok {
		return nil
	}
	out := make([]Grant, len(grants))
	copy(out, grants)
	return out
}

// RolePermissions returns the permissions a role ends up with after
// inheritance, without their conditions.
func (r *Registry) RolePermissions(role string) []Permission {
	grants := r.resolved[role]
	perms := make([]Permission, 0, len(grants))
	seen := make(map[string]struct{}, len(grants))
	for _, g := range grants {
		key := g.Permission.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		perms = append(perms, g.Permission)
	}
	return perms
}

// Roles lists every defined role, sorted.
func (r *Registry) Roles() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defined reports whether a role exists in the registry.
func (r *Registry) Defined(role string) bool {
	_, ok := r.defs[role]
	return ok
}

// DefaultRoles is the built-in role catalog for the staffing platform.
func DefaultRoles() map[string]RoleDefinition {
	return map[string]RoleDefinition{
		"admin": {
			Grants: []Grant{{Permission: Permission{Resource: Wildcard, Action: Wildcard}}},
		},
		"hr_manager": {
			Grants: []Grant{
				{Permission: MustPermission("employee:create")},
				{Permission: MustPermission("employee:update")},
				{Permission: MustPermission("employee:delete")},
				{Permission: MustPermission("document:create")},
				{Permission: MustPermission("document:update")},
				{Permission: MustPermission("document:delete")},
				{Permission: MustPermission("audit:view")},
			},
			Inherits: []string{"recruiter"},
		},
		"account_manager": {
			Grants: []Grant{
				{Permission: MustPermission("hotlists:create"), Condition: CondOwnAccounts},
				{Permission: MustPermission("hotlists:update"), Condition: CondOwnAccounts},
				{Permission: MustPermission("hotlists:delete"), Condition: CondOwnAccounts},
			},
			Inherits: []string{"recruiter"},
		},
		"vendor_manager": {
			Grants: []Grant{
				{Permission: MustPermission("vendor:view")},
				{Permission: MustPermission("vendor:create")},
				{Permission: MustPermission("vendor:update")},
				{Permission: MustPermission("vendor:delete")},
				{Permission: MustPermission("vendor:commission")},
			},
		},
		"recruiter": {
			Grants: []Grant{
				{Permission: MustPermission("hotlists:read"), Condition: CondOwnAccounts},
				{Permission: MustPermission("vendor:view"), Condition: CondVendorTypeIn},
				{Permission: MustPermission("document:read"), Condition: CondPOCRoleIn},
			},
			Inherits: []string{"viewer"},
		},
		"viewer": {
			Grants: []Grant{
				{Permission: MustPermission("bench_resources:read")},
			},
		},
		"employee": {
			Grants: []Grant{
				{Permission: MustPermission("bench_resources:read"), Condition: CondOwnOnly},
				{Permission: MustPermission("bench_resources:update"), Condition: CondOwnOnly},
				{Permission: MustPermission("document:read"), Condition: CondOwnOnly},
			},
		},
		"auditor": {
			Grants: []Grant{
				{Permission: MustPermission("audit:view")},
				{Permission: MustPermission("audit:export")},
			},
		},
	}
}
