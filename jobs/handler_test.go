package jobs

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/guard"
	"github.com/benchdesk/benchdesk/internal/shared"
)

type stubEnqueuer struct {
	denialScans []DenialScanPayload
	exports     []AuditExportPayload
}

func (s *stubEnqueuer) EnqueueDenialScan(_ context.Context, payload DenialScanPayload) (*asynq.TaskInfo, error) {
	s.denialScans = append(s.denialScans, payload)
	return &asynq.TaskInfo{ID: "t-1", Queue: QueueDefault}, nil
}

func (s *stubEnqueuer) EnqueueAuditExport(_ context.Context, payload AuditExportPayload) (*asynq.TaskInfo, error) {
	s.exports = append(s.exports, payload)
	return &asynq.TaskInfo{ID: "t-2", Queue: QueueDefault}, nil
}

func operator(perms ...string) *authz.UserPermissions {
	grants := make([]authz.Grant, 0, len(perms))
	for _, p := range perms {
		grants = append(grants, authz.Grant{Permission: authz.MustPermission(p)})
	}
	return &authz.UserPermissions{UserID: "op-1", Roles: []string{"admin"}, Grants: grants}
}

func newJobsServer(t *testing.T, enqueuer Enqueuer, u *authz.UserPermissions) *httptest.Server {
	t.Helper()
	h := NewHandler(nil, enqueuer, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithUser(req.Context(), u)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.MountRoutes(r, guard.Middleware{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestTriggerDenialScanEnqueues(t *testing.T) {
	stub := &stubEnqueuer{}
	srv := newJobsServer(t, stub, operator(shared.PermJobsRun))

	body := strings.NewReader(`{"window_hours": 6, "threshold": 3}`)
	resp, err := http.Post(srv.URL+"/denial-scan", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Len(t, stub.denialScans, 1)
	assert.Equal(t, 6*time.Hour, stub.denialScans[0].Window)
	assert.Equal(t, 3, stub.denialScans[0].Threshold)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "t-1")
}

func TestTriggerAuditExportEnqueues(t *testing.T) {
	stub := &stubEnqueuer{}
	srv := newJobsServer(t, stub, operator(shared.PermJobsRun))

	resp, err := http.Post(srv.URL+"/export", "application/json", strings.NewReader(`{"window_hours": 48}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Len(t, stub.exports, 1)
	assert.Equal(t, 48*time.Hour, stub.exports[0].Window)
}

func TestTriggerDeniesWithoutJobsRun(t *testing.T) {
	stub := &stubEnqueuer{}
	srv := newJobsServer(t, stub, operator(shared.PermBenchRead))

	resp, err := http.Post(srv.URL+"/denial-scan", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, stub.denialScans)
}

func TestTriggerDenialScanRejectsMalformedBody(t *testing.T) {
	stub := &stubEnqueuer{}
	srv := newJobsServer(t, stub, operator(shared.PermJobsRun))

	resp, err := http.Post(srv.URL+"/denial-scan", "application/json", strings.NewReader(`{"window_hours":`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, stub.denialScans)
}