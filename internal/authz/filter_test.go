package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type benchRow struct {
	ID      string
	OwnerID string
	Name    string
}

func benchCtx(r benchRow) Context {
	return Context{Resource: Resource{ID: r.ID, Type: "bench_resources", OwnerID: r.OwnerID}}
}

func TestFilterKeepsOnlyAccessibleItems(t *testing.T) {
	emp := userWithRoles(t, "emp-1", Restrictions{}, "employee")
	rows := []benchRow{
		{ID: "1", OwnerID: "emp-1", Name: "alpha"},
		{ID: "2", OwnerID: "emp-2", Name: "beta"},
		{ID: "3", OwnerID: "emp-1", Name: "gamma"},
	}

	got := Filter(rows, emp, MustPermission("bench_resources:read"), benchCtx)
	assert.Equal(t, []benchRow{rows[0], rows[2]}, got)
}

func TestFilterPreservesOrderAndInput(t *testing.T) {
	admin := userWithRoles(t, "u-admin", Restrictions{}, "admin")
	rows := []benchRow{
		{ID: "3", OwnerID: "a"},
		{ID: "1", OwnerID: "b"},
		{ID: "2", OwnerID: "c"},
	}
	snapshot := make([]benchRow, len(rows))
	copy(snapshot, rows)

	got := Filter(rows, admin, MustPermission("bench_resources:read"), benchCtx)
	assert.Equal(t, snapshot, rows, "input must not be mutated")
	assert.Equal(t, snapshot, got)
	assert.LessOrEqual(t, len(got), len(rows))
}

func TestFilterWithNilUserReturnsNothing(t *testing.T) {
	rows := []benchRow{{ID: "1", OwnerID: "emp-1"}}
	got := Filter(rows, nil, MustPermission("bench_resources:read"), benchCtx)
	assert.Empty(t, got)
}

func TestFilterAgreesWithSingleItemChecks(t *testing.T) {
	am := userWithRoles(t, "am-1", Restrictions{AccountIDs: []string{"acc1"}}, "account_manager")
	type hotlist struct{ ID, AccountID string }
	lists := []hotlist{{"h1", "acc1"}, {"h2", "acc2"}, {"h3", "acc1"}}
	ctxOf := func(h hotlist) Context {
		return Context{Resource: Resource{ID: h.ID, AccountID: h.AccountID}}
	}

	perm := MustPermission("hotlists:read")
	got := Filter(lists, am, perm, ctxOf)
	for _, h := range lists {
		ctx := ctxOf(h)
		if am.HasPermission(perm, &ctx) {
			assert.Contains(t, got, h)
		} else {
			assert.NotContains(t, got, h)
		}
	}
}
