package hotlists

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/shared"
)

var (
	permRead   = authz.MustPermission(shared.PermHotlistsRead)
	permCreate = authz.MustPermission(shared.PermHotlistsCreate)
	permUpdate = authz.MustPermission(shared.PermHotlistsUpdate)
	permDelete = authz.MustPermission(shared.PermHotlistsDelete)
)

// Service applies hotlist business rules. All operations evaluate the
// caller's account scope against the hotlist's account.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs the hotlist service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// List returns the hotlists within the caller's account scope.
func (s *Service) List(ctx context.Context, u *authz.UserPermissions, filters ListFilters) ([]Hotlist, shared.Pagination, error) {
	all, _, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	visible := authz.Filter(all, u, permRead, Hotlist.AuthzContext)
	return visible, shared.NewPagination(filters.Page, filters.Limit, len(visible)), nil
}

// Get returns one hotlist if it sits inside the caller's scope.
func (s *Service) Get(ctx context.Context, u *authz.UserPermissions, id string) (Hotlist, error) {
	h, err := s.repo.Get(ctx, id)
	if err != nil {
		return Hotlist{}, err
	}
	pc := h.AuthzContext()
	if !u.HasPermission(permRead, &pc) {
		return Hotlist{}, shared.ErrNotFound
	}
	return h, nil
}

// Create stores a new hotlist. The target account must be inside the
// caller's scope before anything is written.
func (s *Service) Create(ctx context.Context, u *authz.UserPermissions, h Hotlist) (Hotlist, error) {
	if err := validate(h); err != nil {
		return Hotlist{}, err
	}
	if strings.TrimSpace(h.AccountID) == "" {
		return Hotlist{}, fmt.Errorf("%w: account id is required", shared.ErrValidation)
	}
	pc := authz.Context{Resource: authz.Resource{Type: "hotlists", AccountID: h.AccountID}}
	if !u.HasPermission(permCreate, &pc) {
		return Hotlist{}, shared.ErrPermissionDenied
	}
	h.CreatedBy = u.UserID
	return s.repo.Create(ctx, h)
}

// Update replaces the hotlist's mutable fields. The account binding is
// immutable; moving a list between accounts means recreating it.
func (s *Service) Update(ctx context.Context, u *authz.UserPermissions, id string, h Hotlist) (Hotlist, error) {
	if err := validate(h); err != nil {
		return Hotlist{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Hotlist{}, err
	}
	pc := current.AuthzContext()
	if !u.HasPermission(permUpdate, &pc) {
		return Hotlist{}, shared.ErrPermissionDenied
	}
	if err := s.repo.Update(ctx, id, h); err != nil {
		return Hotlist{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a hotlist inside the caller's scope.
func (s *Service) Delete(ctx context.Context, u *authz.UserPermissions, id string) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	pc := current.AuthzContext()
	if !u.HasPermission(permDelete, &pc) {
		return shared.ErrPermissionDenied
	}
	return s.repo.Delete(ctx, id)
}

func validate(h Hotlist) error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("%w: hotlist name is required", shared.ErrValidation)
	}
	return nil
}
