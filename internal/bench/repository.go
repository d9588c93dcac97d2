package bench

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benchdesk/benchdesk/internal/shared"
)

// Repository persists bench resources. Profiles are provisioned by HR
// onboarding, so there is no create or delete here.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Resource, int, error)
	Get(ctx context.Context, id string) (Resource, error)
	Update(ctx context.Context, id string, res Resource) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the postgres-backed bench repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const resourceColumns = `id, owner_id, name, title, skills, status, available_from, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Resource, int, error) {
	query := `SELECT ` + resourceColumns + ` FROM bench_resources WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM bench_resources WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Status != "" {
		argCount++
		clause := ` AND status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Status)
	}
	if filters.Skill != "" {
		argCount++
		clause := ` AND $` + strconv.Itoa(argCount) + ` = ANY(skills)`
		query += clause
		countQuery += clause
		args = append(args, filters.Skill)
	}
	if filters.Search != "" {
		argCount++
		clause := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR title ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY available_from ASC, name ASC`
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

	var out []Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, res)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Resource, error) {
	row := r.db.QueryRow(ctx, `SELECT `+resourceColumns+` FROM bench_resources WHERE id = $1`, id)
	res, err := scanResource(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Resource{}, shared.ErrNotFound
	}
	return res, err
}

func (r *repository) Update(ctx context.Context, id string, res Resource) error {
	tag, err := r.db.Exec(ctx, `UPDATE bench_resources
SET title = $1, skills = $2, status = $3, available_from = $4, updated_at = $5
WHERE id = $6`,
		res.Title, res.Skills, res.Status, res.AvailableFrom, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanResource(row pgx.Row) (Resource, error) {
	var res Resource
	err := row.Scan(&res.ID, &res.OwnerID, &res.Name, &res.Title, &res.Skills, &res.Status, &res.AvailableFrom, &res.CreatedAt, &res.UpdatedAt)
	return res, err
}
