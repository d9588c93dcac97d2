// Package vendors manages the vendor directory: the staffing partners
// bench resources are marketed through. Reads are scoped by the
// caller's vendor-type restrictions; commission changes off the
// standard rate go through the approval workflow.
package vendors

import (
	"time"

	"github.com/benchdesk/benchdesk/internal/authz"
)

// Vendor is one staffing partner record.
type Vendor struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Type              string    `json:"type"`
	OwnerID           string    `json:"owner_id"`
	POCName           string    `json:"poc_name"`
	POCEmail          string    `json:"poc_email"`
	POCRole           string    `json:"poc_role"`
	CommissionPercent float64   `json:"commission_percent"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AuthzContext builds the permission context for evaluating access to
// this vendor.
func (v Vendor) AuthzContext() authz.Context {
	return authz.Context{Resource: authz.Resource{
		Type:       "vendor",
		ID:         v.ID,
		OwnerID:    v.OwnerID,
		VendorID:   v.ID,
		VendorType: v.Type,
		POCRole:    v.POCRole,
	}}
}

// ListFilters narrows vendor listings.
type ListFilters struct {
	Search string
	Type   string
	Page   int
	Limit  int
}
