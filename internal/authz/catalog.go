package authz

// CheckCatalog cross-validates a built registry against the platform
// permission catalog: every catalog entry must parse as
// resource:action, and every concrete grant resolved by the registry
// must name a catalog permission. Wildcard grants are exempt since they
// match catalog entries by construction. Runs at startup next to
// NewRegistry; a mismatch is a *ConfigurationError.
func CheckCatalog(r *Registry, scopes []string) error {
	known := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		p, err := ParsePermission(s)
		if err != nil {
			return &ConfigurationError{Role: "catalog", Detail: "invalid catalog permission " + s}
		}
		known[p.String()] = struct{}{}
	}
	for _, role := range r.Roles() {
		for _, g := range r.Resolve(role) {
			if g.Permission.IsWildcard() {
				continue
			}
			if _, ok := known[g.Permission.String()]; !ok {
				return &ConfigurationError{Role: role, Detail: "grant " + g.Permission.String() + " is not in the permission catalog"}
			}
		}
	}
	return nil
}
