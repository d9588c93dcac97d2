package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubOwnership struct {
	owner string
	err   error
	calls int
}

func (s *stubOwnership) OwnerOf(ctx context.Context, resourceType, resourceID string) (string, error) {
	s.calls++
	return s.owner, s.err
}

type stubApprovals struct {
	approved bool
	err      error
	calls    int
}

func (s *stubApprovals) IsApproved(ctx context.Context, module, ref string) (bool, error) {
	s.calls++
	return s.approved, s.err
}

func TestValidateAccessDeniesOnMissingPermissionFirst(t *testing.T) {
	owners := &stubOwnership{owner: "emp-1"}
	approvals := &stubApprovals{approved: true}
	guard := &Guard{Ownership: owners, Approvals: approvals}

	emp := userWithRoles(t, "emp-1", Restrictions{}, "employee")
	ep := Endpoint{
		Name:                "vendors.delete",
		RequiredPermissions: []Permission{MustPermission("vendor:delete")},
		Validation:          Validation{RequiresOwnership: true, RequiresApproval: true},
	}

	d := guard.ValidateAccess(context.Background(), emp, ep, &Context{Resource: Resource{ID: "v1", Type: "vendor"}})
	assert.False(t, d.Allowed)
	assert.Equal(t, "insufficient permissions", d.Reason)
	// Short-circuit: the external lookups must never have run.
	assert.Zero(t, owners.calls)
	assert.Zero(t, approvals.calls)
}

func TestValidateAccessOwnership(t *testing.T) {
	guard := &Guard{Ownership: &stubOwnership{owner: "someone-else"}}
	emp := userWithRoles(t, "emp-1", Restrictions{}, "employee")
	ep := Endpoint{
		Name:                "bench.update",
		RequiredPermissions: []Permission{MustPermission("bench_resources:update")},
		Validation:          Validation{RequiresOwnership: true},
	}
	ctx := &Context{Resource: Resource{ID: "br-1", Type: "bench_resources", OwnerID: "emp-1"}}

	d := guard.ValidateAccess(context.Background(), emp, ep, ctx)
	assert.False(t, d.Allowed)
	assert.Equal(t, "caller does not own this resource", d.Reason)

	guard.Ownership = &stubOwnership{owner: "emp-1"}
	assert.True(t, guard.ValidateAccess(context.Background(), emp, ep, ctx).Allowed)
}

func TestValidateAccessOwnershipLookupFailureDenies(t *testing.T) {
	guard := &Guard{Ownership: &stubOwnership{err: errors.New("db down")}}
	emp := userWithRoles(t, "emp-1", Restrictions{}, "employee")
	ep := Endpoint{
		Name:                "bench.update",
		RequiredPermissions: []Permission{MustPermission("bench_resources:update")},
		Validation:          Validation{RequiresOwnership: true},
	}
	ctx := &Context{Resource: Resource{ID: "br-1", Type: "bench_resources", OwnerID: "emp-1"}}

	d := guard.ValidateAccess(context.Background(), emp, ep, ctx)
	assert.False(t, d.Allowed)
	assert.Equal(t, "ownership could not be verified", d.Reason)
}

func TestValidateAccessVendorAccess(t *testing.T) {
	guard := &Guard{}
	rec := userWithRoles(t, "rec-1", Restrictions{VendorTypes: []string{"staffing"}}, "recruiter")
	ep := Endpoint{
		Name:                "vendors.view",
		RequiredPermissions: []Permission{MustPermission("vendor:view")},
		Validation:          Validation{RequiresVendorAccess: true},
	}

	allowed := &Context{Resource: Resource{ID: "v1", Type: "vendor", VendorID: "v1", VendorType: "staffing"}}
	denied := &Context{Resource: Resource{ID: "v2", Type: "vendor", VendorID: "v2", VendorType: "offshore"}}

	assert.True(t, guard.ValidateAccess(context.Background(), rec, ep, allowed).Allowed)
	d := guard.ValidateAccess(context.Background(), rec, ep, denied)
	assert.False(t, d.Allowed)
	assert.Equal(t, "no access to this vendor", d.Reason)
}

func TestValidateAccessApproval(t *testing.T) {
	approvals := &stubApprovals{approved: false}
	guard := &Guard{Approvals: approvals}
	vm := userWithRoles(t, "vm-1", Restrictions{}, "vendor_manager")
	ep := Endpoint{
		Name:                "vendors.commission",
		RequiredPermissions: []Permission{MustPermission("vendor:commission")},
		Validation:          Validation{RequiresApproval: true},
	}
	ctx := &Context{Resource: Resource{ID: "v1", Type: "vendor", VendorID: "v1"}}

	d := guard.ValidateAccess(context.Background(), vm, ep, ctx)
	assert.False(t, d.Allowed)
	assert.Equal(t, "action requires approval", d.Reason)

	approvals.approved = true
	assert.True(t, guard.ValidateAccess(context.Background(), vm, ep, ctx).Allowed)
}

func TestValidateAccessApprovalLookupFailureDenies(t *testing.T) {
	guard := &Guard{Approvals: &stubApprovals{err: errors.New("timeout")}}
	vm := userWithRoles(t, "vm-1", Restrictions{}, "vendor_manager")
	ep := Endpoint{
		Name:                "vendors.commission",
		RequiredPermissions: []Permission{MustPermission("vendor:commission")},
		Validation:          Validation{RequiresApproval: true},
	}

	d := guard.ValidateAccess(context.Background(), vm, ep, &Context{Resource: Resource{ID: "v1"}})
	assert.False(t, d.Allowed)
	assert.Equal(t, "approval status unavailable", d.Reason)
}

func TestValidateAccessAllRulesPass(t *testing.T) {
	guard := &Guard{
		Ownership: &stubOwnership{owner: "emp-1"},
		Approvals: &stubApprovals{approved: true},
	}
	admin := userWithRoles(t, "emp-1", Restrictions{}, "admin")
	ep := Endpoint{
		Name:                "bench.update",
		RequiredPermissions: []Permission{MustPermission("bench_resources:update")},
		Validation:          Validation{RequiresOwnership: true, RequiresVendorAccess: true, RequiresApproval: true},
	}
	ctx := &Context{Resource: Resource{ID: "br-1", Type: "bench_resources", OwnerID: "emp-1", VendorID: "v1", VendorType: "staffing"}}

	assert.True(t, guard.ValidateAccess(context.Background(), admin, ep, ctx).Allowed)
}

func TestValidateAccessNilUserDenies(t *testing.T) {
	guard := &Guard{}
	ep := Endpoint{RequiredPermissions: []Permission{MustPermission("vendor:view")}}
	d := guard.ValidateAccess(context.Background(), nil, ep, nil)
	assert.False(t, d.Allowed)
	assert.Equal(t, "insufficient permissions", d.Reason)
}
