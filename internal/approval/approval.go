// Package approval is the client side of the external approval
// workflow. The platform never creates or advances approvals here; it
// records what the workflow decided and answers "has this action been
// approved?" for the endpoint guard.
package approval

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Action enumerates approval log actions.
type Action string

const (
	// ActionSubmit marks a submit action.
	ActionSubmit Action = "SUBMIT"
	// ActionApprove marks an approve action.
	ActionApprove Action = "APPROVE"
	// ActionReject marks a reject action.
	ActionReject Action = "REJECT"
)

// Log represents a single approval record.
type Log struct {
	ID      int64
	Module  string
	RefID   string
	ActorID string
	Action  Action
	Note    string
	At      time.Time
}

// withDefaults stamps the record time when the caller left it unset.
// pgx encodes a zero time.Time as year 1, not NULL, which would defeat
// the ORDER BY at DESC that IsApproved relies on.
func (l Log) withDefaults() Log {
	if l.At.IsZero() {
		l.At = time.Now().UTC()
	}
	return l
}

// Recorder persists approval history.
type Recorder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRecorder constructs a Recorder.
func NewRecorder(pool *pgxpool.Pool, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{pool: pool, logger: logger}
}

// Record writes an approval entry to the database.
func (r *Recorder) Record(ctx context.Context, log Log) error {
	if r == nil {
		return errors.New("approval recorder not initialised")
	}
	if log.Module == "" {
		return errors.New("approval module required")
	}
	if log.ActorID == "" {
		return errors.New("approval actor required")
	}
	if log.RefID == "" {
		return errors.New("approval ref id required")
	}
	if log.Action == "" {
		return errors.New("approval action required")
	}
	log = log.withDefaults()
	_, err := r.pool.Exec(ctx, `INSERT INTO approvals (module, ref_id, actor_id, action, note, at)
VALUES ($1, $2, $3, $4, $5, $6)`, log.Module, log.RefID, log.ActorID, string(log.Action), log.Note, log.At)
	if err != nil {
		r.logger.Error("record approval", slog.Any("error", err))
		return err
	}
	return nil
}

// Checker answers approval queries for the endpoint guard. It satisfies
// authz.ApprovalChecker.
type Checker struct {
	pool *pgxpool.Pool
}

// NewChecker constructs a Checker over the approvals table.
func NewChecker(pool *pgxpool.Pool) *Checker {
	return &Checker{pool: pool}
}

// IsApproved reports whether the latest decision for module/ref is an
// approval. No history at all means not approved.
func (c *Checker) IsApproved(ctx context.Context, module, ref string) (bool, error) {
	var action string
	err := c.pool.QueryRow(ctx, `SELECT action FROM approvals
WHERE module = $1 AND ref_id = $2 AND action IN ('APPROVE','REJECT')
ORDER BY at DESC LIMIT 1`, module, ref).Scan(&action)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return Action(action) == ActionApprove, nil
}
