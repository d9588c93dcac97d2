package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/shared"
)

func auditor(t *testing.T) *authz.UserPermissions {
	t.Helper()
	reg, err := authz.NewRegistry(authz.DefaultRoles())
	require.NoError(t, err)
	return &authz.UserPermissions{
		UserID: "aud-1",
		Roles:  []string{"auditor"},
		Grants: reg.Resolve("auditor"),
	}
}

func employee(userID string) *authz.UserPermissions {
	return &authz.UserPermissions{
		UserID: userID,
		Roles:  []string{"employee"},
		Grants: []authz.Grant{{Permission: authz.MustPermission("bench_resources:read"), Condition: authz.CondOwnOnly}},
	}
}

func TestClassification(t *testing.T) {
	cases := map[EventType]SecurityLevel{
		EventRecordDelete:       SecurityRestricted,
		EventSessionRevoke:      SecurityRestricted,
		EventUnauthorizedAccess: SecurityRestricted,
		EventSettingsChange:     SecurityRestricted,
		EventPermissionGrant:    SecurityRestricted,
		EventPermissionRevoke:   SecurityRestricted,
		EventConsentCollected:   SecurityConfidential,
		EventDataExport:         SecurityConfidential,
		EventLogin:              SecurityInternal,
		EventAccessGranted:      SecurityInternal,
		EventType("custom"):     SecurityInternal,
	}
	for eventType, want := range cases {
		assert.Equal(t, want, Classify(eventType), string(eventType))
		// Deterministic: same type, same level, every time.
		assert.Equal(t, Classify(eventType), Classify(eventType))
	}
}

func TestLogAppendsExactlyOneEventPerCall(t *testing.T) {
	store := NewMemoryStore()
	logger := NewLogger(store, nil, nil)
	u := employee("emp-1")

	logger.Log(context.Background(), u, Entry{Type: EventAccessGranted, Action: "bench.read", Success: true}, RequestMeta{})
	logger.Log(context.Background(), u, Entry{Type: EventUnauthorizedAccess, Action: "vendor.delete", Success: false, ErrorMessage: "insufficient permissions"}, RequestMeta{})

	assert.Equal(t, 2, store.Len(), "failure events must be recorded too")
}

func TestLogBuildsFullEvent(t *testing.T) {
	store := NewMemoryStore()
	logger := NewLogger(store, nil, nil)
	logger.now = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }

	u := employee("emp-1")
	ev := logger.Log(context.Background(), u, Entry{
		Type:         EventRecordDelete,
		Action:       "vendors.delete",
		Details:      "vendor removed",
		ResourceType: "vendor",
		ResourceID:   "v-1",
		Success:      true,
		Metadata:     map[string]any{"commission": 3.0},
	}, RequestMeta{IPAddress: "10.0.0.9", UserAgent: "curl/8", SessionID: "sess-1"})

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "emp-1", ev.UserID)
	assert.Equal(t, []string{"employee"}, ev.UserRoles)
	assert.Equal(t, SecurityRestricted, ev.SecurityLevel)
	assert.Equal(t, "10.0.0.9", ev.IPAddress)
	assert.Equal(t, "sess-1", ev.SessionID)
	assert.Equal(t, time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC), ev.Timestamp)
}

type failingStore struct {
	queried bool
}

func (s *failingStore) Append(ctx context.Context, ev Event) error {
	return errors.New("sink unavailable")
}

func (s *failingStore) Query(ctx context.Context, f Filter) ([]Event, error) {
	s.queried = true
	return nil, nil
}

func TestLogStoreFailureNeverPropagates(t *testing.T) {
	failures := 0
	logger := NewLogger(&failingStore{}, nil, func() { failures++ })

	ev := logger.Log(context.Background(), employee("emp-1"), Entry{Type: EventLogin, Action: "login", Success: true}, RequestMeta{})
	assert.NotEmpty(t, ev.ID, "caller still gets the built event")
	assert.Equal(t, 1, failures, "failure surfaces through the side channel")
}

func TestEventsRequiresAuditView(t *testing.T) {
	store := NewMemoryStore()
	logger := NewLogger(store, nil, nil)

	_, err := logger.Events(context.Background(), employee("emp-1"), Filter{})
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	_, err = logger.Events(context.Background(), nil, Filter{})
	assert.ErrorIs(t, err, shared.ErrPermissionDenied, "missing session fails closed")

	_, err = logger.Events(context.Background(), auditor(t), Filter{})
	assert.NoError(t, err)
}

func TestLoggingIsNotGatedByAuditView(t *testing.T) {
	store := NewMemoryStore()
	logger := NewLogger(store, nil, nil)

	// The employee cannot read the trail back, but their denied attempt
	// is still recorded.
	logger.Log(context.Background(), employee("emp-1"), Entry{Type: EventUnauthorizedAccess, Action: "audit.view"}, RequestMeta{})
	assert.Equal(t, 1, store.Len())
}

func TestEventsConjunctiveFilteringNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	logger := NewLogger(store, nil, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	step := 0
	logger.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	logger.Log(context.Background(), employee("emp-1"), Entry{Type: EventRecordUpdate, Action: "a"}, RequestMeta{})
	logger.Log(context.Background(), employee("emp-2"), Entry{Type: EventRecordUpdate, Action: "b"}, RequestMeta{})
	logger.Log(context.Background(), employee("emp-1"), Entry{Type: EventRecordDelete, Action: "c"}, RequestMeta{})
	logger.Log(context.Background(), employee("emp-1"), Entry{Type: EventRecordUpdate, Action: "d"}, RequestMeta{})

	reader := auditor(t)

	got, err := logger.Events(context.Background(), reader, Filter{Type: EventRecordUpdate, UserID: "emp-1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].Action, "newest first")
	assert.Equal(t, "a", got[1].Action)

	all, err := logger.Events(context.Background(), reader, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i-1].Timestamp.Before(all[i].Timestamp))
	}

	ranged, err := logger.Events(context.Background(), reader, Filter{
		From: base.Add(2 * time.Minute),
		To:   base.Add(3 * time.Minute),
	})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)
}

func TestMemoryStoreIdempotentOnID(t *testing.T) {
	store := NewMemoryStore()
	ev := Event{ID: "fixed", Type: EventLogin, Timestamp: time.Now()}
	require.NoError(t, store.Append(context.Background(), ev))
	require.NoError(t, store.Append(context.Background(), ev))
	assert.Equal(t, 1, store.Len())
}
