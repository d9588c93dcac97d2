// Package ownership resolves the current owner of a resource for the
// endpoint guard's ownership rule.
package ownership

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benchdesk/benchdesk/internal/shared"
)

// source names the table and owner column for one resource type. Only
// listed types can be ownership-checked; anything else denies.
type source struct {
	table  string
	column string
}

var sources = map[string]source{
	"bench_resources": {table: "bench_resources", column: "owner_id"},
	"hotlists":        {table: "hotlists", column: "created_by"},
	"vendor":          {table: "vendors", column: "owner_id"},
	"document":        {table: "documents", column: "owner_id"},
}

// Lookup implements authz.OwnershipLookup over the platform tables.
type Lookup struct {
	pool *pgxpool.Pool
}

// NewLookup constructs a Lookup.
func NewLookup(pool *pgxpool.Pool) *Lookup {
	return &Lookup{pool: pool}
}

// OwnerOf returns the current owner of the resource, or ErrNotFound
// when the resource does not exist.
func (l *Lookup) OwnerOf(ctx context.Context, resourceType, resourceID string) (string, error) {
	src, ok := sources[resourceType]
	if !ok {
		return "", fmt.Errorf("ownership: unknown resource type %q", resourceType)
	}
	var owner string
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, src.column, src.table)
	if err := l.pool.QueryRow(ctx, query, resourceID).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return owner, nil
}
