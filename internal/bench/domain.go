// Package bench manages bench resources: the consultants currently
// between engagements. Employees see and edit their own profile;
// recruiting roles read the whole bench.
package bench

import (
	"time"

	"github.com/benchdesk/benchdesk/internal/authz"
)

// Resource is one consultant profile on the bench.
type Resource struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	Title         string    `json:"title"`
	Skills        []string  `json:"skills"`
	Status        string    `json:"status"`
	AvailableFrom time.Time `json:"available_from"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AuthzContext builds the permission context for evaluating access to
// this resource.
func (res Resource) AuthzContext() authz.Context {
	return authz.Context{Resource: authz.Resource{
		Type:    "bench_resources",
		ID:      res.ID,
		OwnerID: res.OwnerID,
	}}
}

// ListFilters narrows bench listings.
type ListFilters struct {
	Status string
	Skill  string
	Search string
	Page   int
	Limit  int
}
