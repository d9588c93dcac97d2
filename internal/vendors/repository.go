package vendors

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benchdesk/benchdesk/internal/shared"
)

// Repository persists vendors.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Vendor, int, error)
	Get(ctx context.Context, id string) (Vendor, error)
	Create(ctx context.Context, v Vendor) (Vendor, error)
	Update(ctx context.Context, id string, v Vendor) error
	UpdateCommission(ctx context.Context, id string, percent float64) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the postgres-backed vendor repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const vendorColumns = `id, name, type, owner_id, poc_name, poc_email, poc_role, commission_percent, active, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Vendor, int, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM vendors WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR poc_name ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.Type != "" {
		argCount++
		clause := ` AND type = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Type)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Vendor, error) {
	row := r.db.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id)
	v, err := scanVendor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vendor{}, shared.ErrNotFound
	}
	return v, err
}

func (r *repository) Create(ctx context.Context, v Vendor) (Vendor, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	_, err := r.db.Exec(ctx, `INSERT INTO vendors (`+vendorColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		v.ID, v.Name, v.Type, v.OwnerID, v.POCName, v.POCEmail, v.POCRole, v.CommissionPercent, v.Active, v.CreatedAt, v.UpdatedAt)
	if isUniqueViolation(err) {
		return Vendor{}, shared.ErrDuplicate
	}
	if err != nil {
		return Vendor{}, err
	}
	return v, nil
}

func (r *repository) Update(ctx context.Context, id string, v Vendor) error {
	tag, err := r.db.Exec(ctx, `UPDATE vendors
SET name = $1, type = $2, poc_name = $3, poc_email = $4, poc_role = $5, active = $6, updated_at = $7
WHERE id = $8`,
		v.Name, v.Type, v.POCName, v.POCEmail, v.POCRole, v.Active, time.Now().UTC(), id)
	if isUniqueViolation(err) {
		return shared.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) UpdateCommission(ctx context.Context, id string, percent float64) error {
	tag, err := r.db.Exec(ctx, `UPDATE vendors SET commission_percent = $1, updated_at = $2 WHERE id = $3`,
		percent, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanVendor(row pgx.Row) (Vendor, error) {
	var v Vendor
	err := row.Scan(&v.ID, &v.Name, &v.Type, &v.OwnerID, &v.POCName, &v.POCEmail, &v.POCRole,
		&v.CommissionPercent, &v.Active, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
