package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryResolvesInheritedGrants(t *testing.T) {
	reg, err := NewRegistry(map[string]RoleDefinition{
		"viewer": {Grants: []Grant{{Permission: MustPermission("bench_resources:read")}}},
		"editor": {
			Grants:   []Grant{{Permission: MustPermission("bench_resources:update")}},
			Inherits: []string{"viewer"},
		},
		"lead": {
			Grants:   []Grant{{Permission: MustPermission("hotlists:create")}},
			Inherits: []string{"editor"},
		},
	})
	require.NoError(t, err)

	perms := reg.RolePermissions("lead")
	assert.Len(t, perms, 3)
	assert.Contains(t, perms, MustPermission("bench_resources:read"))
	assert.Contains(t, perms, MustPermission("bench_resources:update"))
	assert.Contains(t, perms, MustPermission("hotlists:create"))
}

func TestRegistryResolveIsIdempotent(t *testing.T) {
	reg, err := NewRegistry(DefaultRoles())
	require.NoError(t, err)

	for _, role := range reg.Roles() {
		first := reg.Resolve(role)
		second := reg.Resolve(role)
		assert.Equal(t, first, second, "role %s", role)
	}
}

func TestRegistryResolveReturnsCopy(t *testing.T) {
	reg, err := NewRegistry(DefaultRoles())
	require.NoError(t, err)

	grants := reg.Resolve("employee")
	require.NotEmpty(t, grants)
	grants[0] = Grant{Permission: MustPermission("tampered:grant")}
	assert.NotContains(t, reg.Resolve("employee"), Grant{Permission: MustPermission("tampered:grant")})
}

func TestRegistryDeduplicatesDiamondInheritance(t *testing.T) {
	reg, err := NewRegistry(map[string]RoleDefinition{
		"base":  {Grants: []Grant{{Permission: MustPermission("document:read")}}},
		"left":  {Inherits: []string{"base"}},
		"right": {Inherits: []string{"base"}},
		"top":   {Inherits: []string{"left", "right"}},
	})
	require.NoError(t, err)
	assert.Len(t, reg.Resolve("top"), 1)
}

func TestRegistryRejectsCyclicInheritance(t *testing.T) {
	_, err := NewRegistry(map[string]RoleDefinition{
		"a": {Inherits: []string{"b"}},
		"b": {Inherits: []string{"a"}},
	})
	require.Error(t, err)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Detail, "cyclic")
}

func TestRegistryRejectsSelfInheritance(t *testing.T) {
	_, err := NewRegistry(map[string]RoleDefinition{
		"a": {Inherits: []string{"a"}},
	})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestRegistryRejectsUndefinedInheritedRole(t *testing.T) {
	_, err := NewRegistry(map[string]RoleDefinition{
		"a": {Inherits: []string{"ghost"}},
	})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "a", cfgErr.Role)
	assert.Contains(t, cfgErr.Detail, "ghost")
}

func TestRegistryRejectsConditionedWildcard(t *testing.T) {
	_, err := NewRegistry(map[string]RoleDefinition{
		"scoped_admin": {
			Grants: []Grant{
				{Permission: MustPermission("vendor:*"), Condition: CondVendorTypeIn},
			},
		},
	})
	require.Error(t, err)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "scoped_admin", cfgErr.Role)
	assert.Contains(t, cfgErr.Detail, "wildcard")
}

func TestDefaultRolesBuild(t *testing.T) {
	reg, err := NewRegistry(DefaultRoles())
	require.NoError(t, err)
	assert.True(t, reg.Defined("admin"))
	assert.True(t, reg.Defined("employee"))
	assert.True(t, reg.Defined("viewer"))

	// Bench read sits on viewer and flows up the inheritance chain
	// viewer -> recruiter -> hr_manager.
	assert.Contains(t, reg.RolePermissions("viewer"), MustPermission("bench_resources:read"))
	assert.Contains(t, reg.RolePermissions("recruiter"), MustPermission("bench_resources:read"))
	assert.Contains(t, reg.RolePermissions("hr_manager"), MustPermission("bench_resources:read"))
}
