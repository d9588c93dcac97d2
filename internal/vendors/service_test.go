package vendors

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchdesk/benchdesk/internal/approval"
	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/shared"
)

type stubRepo struct {
	vendors map[string]Vendor
}

func newStubRepo(vs ...Vendor) *stubRepo {
	r := &stubRepo{vendors: make(map[string]Vendor)}
	for _, v := range vs {
		r.vendors[v.ID] = v
	}
	return r
}

func (r *stubRepo) List(ctx context.Context, filters ListFilters) ([]Vendor, int, error) {
	var out []Vendor
	for _, v := range r.vendors {
		if filters.Type != "" && v.Type != filters.Type {
			continue
		}
		out = append(out, v)
	}
	return out, len(out), nil
}

func (r *stubRepo) Get(ctx context.Context, id string) (Vendor, error) {
	v, ok := r.vendors[id]
	if !ok {
		return Vendor{}, shared.ErrNotFound
	}
	return v, nil
}

func (r *stubRepo) Create(ctx context.Context, v Vendor) (Vendor, error) {
	for _, existing := range r.vendors {
		if existing.Name == v.Name {
			return Vendor{}, shared.ErrDuplicate
		}
	}
	if v.ID == "" {
		v.ID = "v-" + v.Name
	}
	r.vendors[v.ID] = v
	return v, nil
}

func (r *stubRepo) Update(ctx context.Context, id string, v Vendor) error {
	cur, ok := r.vendors[id]
	if !ok {
		return shared.ErrNotFound
	}
	v.ID = id
	v.OwnerID = cur.OwnerID
	v.CommissionPercent = cur.CommissionPercent
	r.vendors[id] = v
	return nil
}

func (r *stubRepo) UpdateCommission(ctx context.Context, id string, percent float64) error {
	v, ok := r.vendors[id]
	if !ok {
		return shared.ErrNotFound
	}
	v.CommissionPercent = percent
	r.vendors[id] = v
	return nil
}

func (r *stubRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.vendors[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.vendors, id)
	return nil
}

type stubApprovals struct {
	approved map[string]bool
	recorded []approval.Log
}

func (s *stubApprovals) IsApproved(ctx context.Context, module, ref string) (bool, error) {
	return s.approved[module+"/"+ref], nil
}

func (s *stubApprovals) Record(ctx context.Context, log approval.Log) error {
	s.recorded = append(s.recorded, log)
	return nil
}

func newTestService(repo Repository, approvals *stubApprovals) *Service {
	return NewService(repo, approval.NewCommissionPolicy(0), approvals, approvals,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func vendorManager() *authz.UserPermissions {
	return &authz.UserPermissions{
		UserID: "mgr-1",
		Roles:  []string{"vendor_manager"},
		Grants: []authz.Grant{
			{Permission: authz.MustPermission(shared.PermVendorView)},
			{Permission: authz.MustPermission(shared.PermVendorCreate)},
			{Permission: authz.MustPermission(shared.PermVendorUpdate)},
			{Permission: authz.MustPermission(shared.PermVendorDelete)},
			{Permission: authz.MustPermission(shared.PermVendorCommission)},
		},
	}
}

func scopedRecruiter(types ...string) *authz.UserPermissions {
	return &authz.UserPermissions{
		UserID: "rec-1",
		Roles:  []string{"recruiter"},
		Grants: []authz.Grant{
			{Permission: authz.MustPermission(shared.PermVendorView), Condition: authz.CondVendorTypeIn},
		},
		Restrictions: authz.Restrictions{VendorTypes: types},
	}
}

func TestListScopesByVendorType(t *testing.T) {
	repo := newStubRepo(
		Vendor{ID: "v-1", Name: "Acme Staffing", Type: "prime"},
		Vendor{ID: "v-2", Name: "Globex Partners", Type: "sub"},
		Vendor{ID: "v-3", Name: "Initech Talent", Type: "prime"},
	)
	svc := newTestService(repo, &stubApprovals{})

	visible, pagination, err := svc.List(context.Background(), scopedRecruiter("prime"), ListFilters{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, visible, 2)
	for _, v := range visible {
		assert.Equal(t, "prime", v.Type)
	}
	assert.Equal(t, 2, pagination.Total)

	all, _, err := svc.List(context.Background(), vendorManager(), ListFilters{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGetOutOfScopeReadsAsNotFound(t *testing.T) {
	repo := newStubRepo(Vendor{ID: "v-2", Name: "Globex Partners", Type: "sub"})
	svc := newTestService(repo, &stubApprovals{})

	_, err := svc.Get(context.Background(), scopedRecruiter("prime"), "v-2")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	v, err := svc.Get(context.Background(), scopedRecruiter("sub"), "v-2")
	require.NoError(t, err)
	assert.Equal(t, "v-2", v.ID)
}

func TestCreateSetsOwner(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubApprovals{})

	v, err := svc.Create(context.Background(), vendorManager(), Vendor{Name: "Acme Staffing", Type: "prime"})
	require.NoError(t, err)
	assert.Equal(t, "mgr-1", v.OwnerID)

	_, err = svc.Create(context.Background(), vendorManager(), Vendor{Name: "Acme Staffing", Type: "sub"})
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestCreateRejectsBlankName(t *testing.T) {
	svc := newTestService(newStubRepo(), &stubApprovals{})
	_, err := svc.Create(context.Background(), vendorManager(), Vendor{Name: "  ", Type: "prime"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestSetCommissionAtStandardRateAppliesDirectly(t *testing.T) {
	repo := newStubRepo(Vendor{ID: "v-1", Name: "Acme Staffing", Type: "prime", CommissionPercent: 5})
	approvals := &stubApprovals{}
	svc := newTestService(repo, approvals)

	v, err := svc.SetCommission(context.Background(), vendorManager(), "v-1", approval.DefaultCommissionThreshold)
	require.NoError(t, err)
	assert.Equal(t, approval.DefaultCommissionThreshold, v.CommissionPercent)
	assert.Empty(t, approvals.recorded)
}

func TestSetCommissionOffRateSubmitsForApproval(t *testing.T) {
	repo := newStubRepo(Vendor{ID: "v-1", Name: "Acme Staffing", Type: "prime", CommissionPercent: 3})
	approvals := &stubApprovals{approved: map[string]bool{}}
	svc := newTestService(repo, approvals)

	_, err := svc.SetCommission(context.Background(), vendorManager(), "v-1", 7.5)
	assert.ErrorIs(t, err, shared.ErrApprovalRequired)

	require.Len(t, approvals.recorded, 1)
	assert.Equal(t, approval.ActionSubmit, approvals.recorded[0].Action)
	assert.Equal(t, "vendor.commission", approvals.recorded[0].Module)
	assert.Equal(t, "v-1", approvals.recorded[0].RefID)

	// Rate unchanged until the workflow signs off.
	v, gerr := repo.Get(context.Background(), "v-1")
	require.NoError(t, gerr)
	assert.Equal(t, 3.0, v.CommissionPercent)
}

func TestSetCommissionOffRateAppliesOnceApproved(t *testing.T) {
	repo := newStubRepo(Vendor{ID: "v-1", Name: "Acme Staffing", Type: "prime", CommissionPercent: 3})
	approvals := &stubApprovals{approved: map[string]bool{"vendor.commission/v-1": true}}
	svc := newTestService(repo, approvals)

	v, err := svc.SetCommission(context.Background(), vendorManager(), "v-1", 7.5)
	require.NoError(t, err)
	assert.Equal(t, 7.5, v.CommissionPercent)
	assert.Empty(t, approvals.recorded)
}

func TestSetCommissionRejectsOutOfRange(t *testing.T) {
	svc := newTestService(newStubRepo(), &stubApprovals{})
	_, err := svc.SetCommission(context.Background(), vendorManager(), "v-1", 120)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteOutOfScopeReadsAsNotFound(t *testing.T) {
	repo := newStubRepo(Vendor{ID: "v-2", Name: "Globex Partners", Type: "sub"})
	svc := newTestService(repo, &stubApprovals{})

	err := svc.Delete(context.Background(), scopedRecruiter("prime"), "v-2")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
