package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists audit events in the audit_events table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a store over the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Append inserts the event. The primary key on id makes redelivery a
// no-op, which the retrying writer relies on.
func (s *PostgresStore) Append(ctx context.Context, ev Event) error {
	roles, err := json.Marshal(ev.UserRoles)
	if err != nil {
		return fmt.Errorf("audit: marshal roles: %w", err)
	}
	meta, err := json.Marshal(ev.Metadata)
	if err != nil {
		return fmt.Errorf("audit: marshal metadata: %w", err)
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO audit_events
(id, event_type, user_id, user_roles, occurred_at, resource_type, resource_id, action, details, ip_address, user_agent, session_id, success, error_message, security_level, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (id) DO NOTHING`,
		ev.ID, string(ev.Type), ev.UserID, roles, ev.Timestamp,
		ev.ResourceType, ev.ResourceID, ev.Action, ev.Details,
		ev.IPAddress, ev.UserAgent, ev.SessionID, ev.Success,
		ev.ErrorMessage, string(ev.SecurityLevel), meta)
	if err != nil {
		return fmt.Errorf("audit: insert event: %w", err)
	}
	return nil
}

// Query selects matching events newest-first.
func (s *PostgresStore) Query(ctx context.Context, f Filter) ([]Event, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.Type != "" {
		where = append(where, "event_type = "+arg(string(f.Type)))
	}
	if f.UserID != "" {
		where = append(where, "user_id = "+arg(f.UserID))
	}
	if f.ResourceType != "" {
		where = append(where, "resource_type = "+arg(f.ResourceType))
	}
	if f.ResourceID != "" {
		where = append(where, "resource_id = "+arg(f.ResourceID))
	}
	if !f.From.IsZero() {
		where = append(where, "occurred_at >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "occurred_at <= "+arg(f.To))
	}

	query := `SELECT id, event_type, user_id, user_roles, occurred_at, resource_type, resource_id, action, details, ip_address, user_agent, session_id, success, error_message, security_level, metadata FROM audit_events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY occurred_at DESC, id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev        Event
			eventType string
			level     string
			roles     []byte
			meta      []byte
		)
		if err := rows.Scan(&ev.ID, &eventType, &ev.UserID, &roles, &ev.Timestamp,
			&ev.ResourceType, &ev.ResourceID, &ev.Action, &ev.Details,
			&ev.IPAddress, &ev.UserAgent, &ev.SessionID, &ev.Success,
			&ev.ErrorMessage, &level, &meta); err != nil {
			return nil, fmt.Errorf("audit: scan event: %w", err)
		}
		ev.Type = EventType(eventType)
		ev.SecurityLevel = SecurityLevel(level)
		if len(roles) > 0 {
			if err := json.Unmarshal(roles, &ev.UserRoles); err != nil {
				return nil, fmt.Errorf("audit: decode roles: %w", err)
			}
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &ev.Metadata); err != nil {
				return nil, fmt.Errorf("audit: decode metadata: %w", err)
			}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
