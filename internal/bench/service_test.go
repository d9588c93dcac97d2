package bench

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/shared"
)

type stubRepo struct {
	resources map[string]Resource
}

func newStubRepo(rs ...Resource) *stubRepo {
	r := &stubRepo{resources: make(map[string]Resource)}
	for _, res := range rs {
		r.resources[res.ID] = res
	}
	return r
}

func (r *stubRepo) List(ctx context.Context, filters ListFilters) ([]Resource, int, error) {
	var out []Resource
	for _, res := range r.resources {
		if filters.Status != "" && res.Status != filters.Status {
			continue
		}
		out = append(out, res)
	}
	return out, len(out), nil
}

func (r *stubRepo) Get(ctx context.Context, id string) (Resource, error) {
	res, ok := r.resources[id]
	if !ok {
		return Resource{}, shared.ErrNotFound
	}
	return res, nil
}

func (r *stubRepo) Update(ctx context.Context, id string, res Resource) error {
	cur, ok := r.resources[id]
	if !ok {
		return shared.ErrNotFound
	}
	cur.Title = res.Title
	cur.Skills = res.Skills
	cur.Status = res.Status
	cur.AvailableFrom = res.AvailableFrom
	r.resources[id] = cur
	return nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func recruiter() *authz.UserPermissions {
	return &authz.UserPermissions{
		UserID: "rec-1",
		Roles:  []string{"recruiter"},
		Grants: []authz.Grant{
			{Permission: authz.MustPermission(shared.PermBenchRead)},
		},
	}
}

func employee(id string) *authz.UserPermissions {
	return &authz.UserPermissions{
		UserID: id,
		Roles:  []string{"employee"},
		Grants: []authz.Grant{
			{Permission: authz.MustPermission(shared.PermBenchRead), Condition: authz.CondOwnOnly},
			{Permission: authz.MustPermission(shared.PermBenchUpdate), Condition: authz.CondOwnOnly},
		},
	}
}

func TestListRecruiterSeesWholeBench(t *testing.T) {
	repo := newStubRepo(
		Resource{ID: "r-1", OwnerID: "emp-1", Name: "Dana", Status: "available"},
		Resource{ID: "r-2", OwnerID: "emp-2", Name: "Lee", Status: "engaged"},
	)
	svc := newTestService(repo)

	all, _, err := svc.List(context.Background(), recruiter(), ListFilters{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListEmployeeSeesOnlyOwnProfile(t *testing.T) {
	repo := newStubRepo(
		Resource{ID: "r-1", OwnerID: "emp-1", Name: "Dana", Status: "available"},
		Resource{ID: "r-2", OwnerID: "emp-2", Name: "Lee", Status: "engaged"},
	)
	svc := newTestService(repo)

	own, pagination, err := svc.List(context.Background(), employee("emp-1"), ListFilters{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "r-1", own[0].ID)
	assert.Equal(t, 1, pagination.Total)
}

func TestGetForeignProfileReadsAsNotFound(t *testing.T) {
	repo := newStubRepo(Resource{ID: "r-2", OwnerID: "emp-2", Name: "Lee", Status: "engaged"})
	svc := newTestService(repo)

	_, err := svc.Get(context.Background(), employee("emp-1"), "r-2")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	res, err := svc.Get(context.Background(), recruiter(), "r-2")
	require.NoError(t, err)
	assert.Equal(t, "r-2", res.ID)
}

func TestUpdateOwnProfile(t *testing.T) {
	repo := newStubRepo(Resource{ID: "r-1", OwnerID: "emp-1", Name: "Dana", Status: "available"})
	svc := newTestService(repo)

	res, err := svc.Update(context.Background(), employee("emp-1"), "r-1", Resource{
		Title:  "Senior Java Developer",
		Status: "interviewing",
	})
	require.NoError(t, err)
	assert.Equal(t, "interviewing", res.Status)
	assert.Equal(t, "Senior Java Developer", res.Title)
}

func TestUpdateForeignProfileDenied(t *testing.T) {
	repo := newStubRepo(Resource{ID: "r-2", OwnerID: "emp-2", Name: "Lee", Status: "engaged"})
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), employee("emp-1"), "r-2", Resource{Status: "available"})
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	// Recruiters read the bench but never edit profiles.
	_, err = svc.Update(context.Background(), recruiter(), "r-2", Resource{Status: "available"})
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	repo := newStubRepo(Resource{ID: "r-1", OwnerID: "emp-1", Name: "Dana", Status: "available"})
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), employee("emp-1"), "r-1", Resource{Status: "on vacation"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
