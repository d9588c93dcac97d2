package authz

// Filter returns the items the user may access under perm, deriving a
// decision context for each item via ctxOf. It applies the exact same
// evaluator as single-item checks, preserves input order, and never
// mutates the input slice, so "can I see this list" and "can I see this
// one item" always agree.
func Filter[T any](items []T, u *UserPermissions, perm Permission, ctxOf func(T) Context) []T {
	if len(items) == 0 {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		ctx := ctxOf(item)
		if u.HasPermission(perm, &ctx) {
			out = append(out, item)
		}
	}
	return out
}
