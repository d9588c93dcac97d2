package hotlists

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

// Repository persists hotlists.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Hotlist, int, error)
	Get(ctx context.Context, id string) (Hotlist, error)
	Create(ctx context.Context, h Hotlist) (Hotlist, error)
	Update(ctx context.Context, id string, h Hotlist) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the postgres-backed hotlist repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const hotlistColumns = `id, name, account_id, created_by, note, resource_ids, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Hotlist, int, error) {
	query := `SELECT ` + hotlistColumns + ` FROM hotlists WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM hotlists WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.AccountID != "" {
		argCount++
		clause := ` AND account_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.AccountID)
	}
	if filters.Search != "" {
		argCount++
		clause := ` AND name ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY updated_at DESC`
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

	var out []Hotlist
	for rows.Next() {
		h, err := scanHotlist(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, h)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Hotlist, error) {
	row := r.db.QueryRow(ctx, `SELECT `+hotlistColumns+` FROM hotlists WHERE id = $1`, id)
	h, err := scanHotlist(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Hotlist{}, shared.ErrNotFound
	}
	return h, err
}

func (r *repository) Create(ctx context.Context, h Hotlist) (Hotlist, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	h.CreatedAt = now
	h.UpdatedAt = now
	_, err := r.db.Exec(ctx, `INSERT INTO hotlists (`+hotlistColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.ID, h.Name, h.AccountID, h.CreatedBy, h.Note, h.ResourceIDs, h.CreatedAt, h.UpdatedAt)
	if isUniqueViolation(err) {
		return Hotlist{}, shared.ErrDuplicate
	}
	if err != nil {
		return Hotlist{}, err
	}
	return h, nil
}

func (r *repository) Update(ctx context.Context, id string, h Hotlist) error {
	tag, err := r.db.Exec(ctx, `UPDATE hotlists
SET name = $1, note = $2, resource_ids = $3, updated_at = $4
WHERE id = $5`,
		h.Name, h.Note, h.ResourceIDs, time.Now().UTC(), id)
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

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM hotlists WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanHotlist(row pgx.Row) (Hotlist, error) {
	var h Hotlist
	err := row.Scan(&h.ID, &h.Name, &h.AccountID, &h.CreatedBy, &h.Note, &h.ResourceIDs, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
