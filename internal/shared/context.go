package shared

import (
	"context"

	"github.com/benchdesk/benchdesk/internal/authz"
)

type sessionContextKey struct{}

type userContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithUser stores the resolved authorization context for the
// request. Handlers read it back with UserFromContext; a missing value
// means no session, which the evaluator treats as deny-everything.
func ContextWithUser(ctx context.Context, u *authz.UserPermissions) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFromContext extracts the resolved user permissions, nil when the
// request is unauthenticated.
func UserFromContext(ctx context.Context) *authz.UserPermissions {
	u, _ := ctx.Value(userContextKey{}).(*authz.UserPermissions)
	return u
}
