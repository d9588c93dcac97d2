package bench

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/shared"
)

var (
	permRead   = authz.MustPermission(shared.PermBenchRead)
	permUpdate = authz.MustPermission(shared.PermBenchUpdate)
)

var validStatuses = []string{"available", "engaged", "interviewing", "unavailable"}

// Service applies bench business rules.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs the bench service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// List returns the bench resources the caller may see. Recruiting
// roles see everything; an employee's own-only grant narrows the list
// to their own profile.
func (s *Service) List(ctx context.Context, u *authz.UserPermissions, filters ListFilters) ([]Resource, shared.Pagination, error) {
	all, _, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	visible := authz.Filter(all, u, permRead, Resource.AuthzContext)
	return visible, shared.NewPagination(filters.Page, filters.Limit, len(visible)), nil
}

// Get returns one bench resource inside the caller's scope.
func (s *Service) Get(ctx context.Context, u *authz.UserPermissions, id string) (Resource, error) {
	res, err := s.repo.Get(ctx, id)
	if err != nil {
		return Resource{}, err
	}
	pc := res.AuthzContext()
	if !u.HasPermission(permRead, &pc) {
		return Resource{}, shared.ErrNotFound
	}
	return res, nil
}

// Update replaces the profile's mutable fields. Ownership was already
// validated at the endpoint; the contextual permission is re-checked
// against the stored row so a stale route guard can never widen access.
func (s *Service) Update(ctx context.Context, u *authz.UserPermissions, id string, res Resource) (Resource, error) {
	if err := validate(res); err != nil {
		return Resource{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Resource{}, err
	}
	pc := current.AuthzContext()
	if !u.HasPermission(permUpdate, &pc) {
		return Resource{}, shared.ErrPermissionDenied
	}
	if err := s.repo.Update(ctx, id, res); err != nil {
		return Resource{}, err
	}
	return s.repo.Get(ctx, id)
}

func validate(res Resource) error {
	if strings.TrimSpace(res.Status) == "" {
		return fmt.Errorf("%w: status is required", shared.ErrValidation)
	}
	for _, s := range validStatuses {
		if res.Status == s {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown status %q", shared.ErrValidation, res.Status)
}
