package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCatalogAcceptsCoveredRegistry(t *testing.T) {
	reg, err := NewRegistry(map[string]RoleDefinition{
		"admin":  {Grants: []Grant{{Permission: Permission{Resource: Wildcard, Action: Wildcard}}}},
		"reader": {Grants: []Grant{{Permission: MustPermission("document:read")}}},
	})
	require.NoError(t, err)

	assert.NoError(t, CheckCatalog(reg, []string{"document:read", "document:update"}))
}

func TestCheckCatalogRejectsUncataloguedGrant(t *testing.T) {
	reg, err := NewRegistry(map[string]RoleDefinition{
		"reader": {Grants: []Grant{{Permission: MustPermission("document:read")}}},
	})
	require.NoError(t, err)

	err = CheckCatalog(reg, []string{"document:update"})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "reader", cfgErr.Role)
	assert.Contains(t, cfgErr.Detail, "document:read")
}

func TestCheckCatalogRejectsMalformedEntry(t *testing.T) {
	reg, err := NewRegistry(map[string]RoleDefinition{})
	require.NoError(t, err)

	err = CheckCatalog(reg, []string{"not-a-permission"})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Detail, "not-a-permission")
}
