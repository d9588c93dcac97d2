package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/shared"
)

// PostgresRepository provides PostgreSQL backed persistence.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// FindByEmail fetches an account by email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	return r.scanAccount(ctx, `SELECT id, email, password_hash, is_active, created_at, updated_at
FROM users WHERE lower(email) = lower($1)`, email)
}

// FindByID fetches an account by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Account, error) {
	return r.scanAccount(ctx, `SELECT id, email, password_hash, is_active, created_at, updated_at
FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) scanAccount(ctx context.Context, query string, arg any) (Account, error) {
	var acc Account
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&acc.ID, &acc.Email, &acc.PasswordHash, &acc.IsActive, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrNotFound
		}
		return Account{}, err
	}
	return acc, nil
}

// RolesFor returns the role names assigned to a user.
func (r *PostgresRepository) RolesFor(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// RestrictionsFor returns the per-user scoping limits.
func (r *PostgresRepository) RestrictionsFor(ctx context.Context, userID string) (authz.Restrictions, error) {
	rows, err := r.pool.Query(ctx, `SELECT kind, value FROM user_restrictions WHERE user_id = $1 ORDER BY kind, value`, userID)
	if err != nil {
		return authz.Restrictions{}, err
	}
	defer rows.Close()

	var res authz.Restrictions
	for rows.Next() {
		var kind, value string
		if err := rows.Scan(&kind, &value); err != nil {
			return authz.Restrictions{}, err
		}
		switch kind {
		case "vendor_id":
			res.VendorIDs = append(res.VendorIDs, value)
		case "vendor_type":
			res.VendorTypes = append(res.VendorTypes, value)
		case "poc_role":
			res.POCRoles = append(res.POCRoles, value)
		case "account_id":
			res.AccountIDs = append(res.AccountIDs, value)
		}
	}
	return res, rows.Err()
}
