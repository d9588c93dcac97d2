// Package hotlists manages curated shortlists of bench resources
// marketed to client accounts. Every hotlist belongs to one account and
// access follows the caller's account scope.
package hotlists

import (
	"time"

	"github.com/benchdesk/benchdesk/internal/authz"
)

// Hotlist is one curated shortlist.
type Hotlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AccountID   string    `json:"account_id"`
	CreatedBy   string    `json:"created_by"`
	Note        string    `json:"note,omitempty"`
	ResourceIDs []string  `json:"resource_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AuthzContext builds the permission context for evaluating access to
// this hotlist.
func (h Hotlist) AuthzContext() authz.Context {
	return authz.Context{Resource: authz.Resource{
		Type:      "hotlists",
		ID:        h.ID,
		OwnerID:   h.CreatedBy,
		AccountID: h.AccountID,
	}}
}

// ListFilters narrows hotlist listings.
type ListFilters struct {
	AccountID string
	Search    string
	Page      int
	Limit     int
}
