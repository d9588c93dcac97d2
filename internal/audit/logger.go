package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/shared"
)

// Store is an append-only audit sink. Append must be idempotent on the
// event id, so at-least-once delivery never duplicates records. Query
// returns matching events newest-first.
type Store interface {
	Append(ctx context.Context, ev Event) error
	Query(ctx context.Context, f Filter) ([]Event, error)
}

// Entry is what a calling boundary supplies when logging an action.
type Entry struct {
	Type         EventType
	Action       string
	Details      string
	ResourceType string
	ResourceID   string
	Success      bool
	ErrorMessage string
	Metadata     map[string]any
}

// RequestMeta carries request context the boundary already has. The
// logger never derives it itself.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	SessionID string
}

// PermAuditView gates reading the trail back. It never gates writing.
var PermAuditView = authz.Permission{Resource: "audit", Action: "view"}

// Logger builds and appends audit events.
type Logger struct {
	store     Store
	logger    *slog.Logger
	onFailure func()
	now       func() time.Time
}

// NewLogger constructs a Logger over the given store. onFailure, when
// non-nil, is invoked once per failed append so callers can count
// failures in metrics; the failure itself never propagates.
func NewLogger(store Store, logger *slog.Logger, onFailure func()) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{
		store:     store,
		logger:    logger,
		onFailure: onFailure,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Log records one action, success or failure alike, and returns the
// built event. The append is unconditional: no permission check guards
// it, and a store failure is reported through the side channel rather
// than to the guarded action.
func (l *Logger) Log(ctx context.Context, u *authz.UserPermissions, e Entry, meta RequestMeta) Event {
	ev := Event{
		ID:            uuid.NewString(),
		Type:          e.Type,
		Timestamp:     l.now(),
		ResourceType:  e.ResourceType,
		ResourceID:    e.ResourceID,
		Action:        e.Action,
		Details:       e.Details,
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
		SessionID:     meta.SessionID,
		Success:       e.Success,
		ErrorMessage:  e.ErrorMessage,
		SecurityLevel: Classify(e.Type),
		Metadata:      e.Metadata,
	}
	if u != nil {
		ev.UserID = u.UserID
		ev.UserRoles = append([]string(nil), u.Roles...)
	}

	if err := l.store.Append(ctx, ev); err != nil {
		l.logger.Error("audit append",
			slog.String("event_id", ev.ID),
			slog.String("event_type", string(ev.Type)),
			slog.Any("error", err))
		if l.onFailure != nil {
			l.onFailure()
		}
	}
	return ev
}

// Events returns the trail matching the filter, newest-first. The caller
// must hold audit:view; anyone else gets shared.ErrPermissionDenied no
// matter what they ask for.
func (l *Logger) Events(ctx context.Context, u *authz.UserPermissions, f Filter) ([]Event, error) {
	if !u.HasPermission(PermAuditView, nil) {
		return nil, shared.ErrPermissionDenied
	}
	return l.store.Query(ctx, f)
}
