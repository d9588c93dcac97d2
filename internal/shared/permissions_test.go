package shared

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benchdesk/benchdesk/internal/authz"
)

// Every grant the built-in roles resolve to must be a catalogued
// permission; the same check runs at server startup.
func TestCatalogCoversDefaultRoles(t *testing.T) {
	reg, err := authz.NewRegistry(authz.DefaultRoles())
	require.NoError(t, err)

	require.NoError(t, authz.CheckCatalog(reg, CatalogScopes()))
}
