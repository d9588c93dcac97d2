// Package identity is the session-facing collaborator of the
// authorization core: it authenticates accounts, resolves a user's
// roles and restrictions into an authz.UserPermissions value at session
// start, and tears that value down at logout. The core trusts its
// output as ground truth for the session.
package identity

import (
	"context"
	"time"

	"github.com/benchdesk/benchdesk/internal/authz"
)

// Account represents a platform login.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository loads accounts and their authorization inputs.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByID(ctx context.Context, id string) (Account, error)
	RolesFor(ctx context.Context, userID string) ([]string, error)
	RestrictionsFor(ctx context.Context, userID string) (authz.Restrictions, error)
}
