package shared

// Platform permission catalog. Permissions follow the resource:action
// form understood by the authz evaluator.
const (
	PermBenchRead   = "bench_resources:read"
	PermBenchUpdate = "bench_resources:update"

	PermHotlistsRead   = "hotlists:read"
	PermHotlistsCreate = "hotlists:create"
	PermHotlistsUpdate = "hotlists:update"
	PermHotlistsDelete = "hotlists:delete"

	PermVendorView       = "vendor:view"
	PermVendorCreate     = "vendor:create"
	PermVendorUpdate     = "vendor:update"
	PermVendorDelete     = "vendor:delete"
	PermVendorCommission = "vendor:commission"

	PermEmployeeCreate = "employee:create"
	PermEmployeeUpdate = "employee:update"
	PermEmployeeDelete = "employee:delete"

	PermDocumentRead   = "document:read"
	PermDocumentCreate = "document:create"
	PermDocumentUpdate = "document:update"
	PermDocumentDelete = "document:delete"

	PermAuditView   = "audit:view"
	PermAuditExport = "audit:export"

	PermJobsRun = "jobs:run"
)

// CatalogScopes lists every permission the platform ships with.
func CatalogScopes() []string {
	return []string{
		PermBenchRead, PermBenchUpdate,
		PermHotlistsRead, PermHotlistsCreate, PermHotlistsUpdate, PermHotlistsDelete,
		PermVendorView, PermVendorCreate, PermVendorUpdate, PermVendorDelete, PermVendorCommission,
		PermEmployeeCreate, PermEmployeeUpdate, PermEmployeeDelete,
		PermDocumentRead, PermDocumentCreate, PermDocumentUpdate, PermDocumentDelete,
		PermAuditView, PermAuditExport,
		PermJobsRun,
	}
}
