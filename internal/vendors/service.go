package vendors

import (
	"context"
	"log/slog"

	"github.com/benchdesk/benchdesk/internal/approval"
	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/shared"
)

// ApprovalGate answers whether a pending change has been approved.
type ApprovalGate interface {
	IsApproved(ctx context.Context, module, ref string) (bool, error)
}

// ApprovalRecorder appends to the approval history.
type ApprovalRecorder interface {
	Record(ctx context.Context, log approval.Log) error
}

const commissionModule = "vendor.commission"

// Service applies vendor business rules. Listing and reads are scoped
// to the caller's vendor-type restrictions; writes assume the endpoint
// guard already checked permissions.
type Service struct {
	repo     Repository
	policy   approval.CommissionPolicy
	gate     ApprovalGate
	recorder ApprovalRecorder
	logger   *slog.Logger
}

// NewService constructs the vendor service.
func NewService(repo Repository, policy approval.CommissionPolicy, gate ApprovalGate, recorder ApprovalRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, policy: policy, gate: gate, recorder: recorder, logger: logger}
}

// List returns the vendors the caller may see, with the total counted
// after scoping.
func (s *Service) List(ctx context.Context, u *authz.UserPermissions, filters ListFilters) ([]Vendor, shared.Pagination, error) {
	all, _, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	visible := authz.Filter(all, u, authz.PermVendorView, Vendor.AuthzContext)
	return visible, shared.NewPagination(filters.Page, filters.Limit, len(visible)), nil
}

// Get returns one vendor if the caller's scope covers it. Out-of-scope
// vendors read as not found rather than forbidden.
func (s *Service) Get(ctx context.Context, u *authz.UserPermissions, id string) (Vendor, error) {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return Vendor{}, err
	}
	pc := v.AuthzContext()
	if !u.HasPermission(authz.PermVendorView, &pc) {
		return Vendor{}, shared.ErrNotFound
	}
	return v, nil
}

// Create stores a new vendor owned by the caller.
func (s *Service) Create(ctx context.Context, u *authz.UserPermissions, v Vendor) (Vendor, error) {
	if err := validate(v); err != nil {
		return Vendor{}, err
	}
	v.OwnerID = u.UserID
	return s.repo.Create(ctx, v)
}

// Update replaces the vendor's profile fields. The commission rate has
// its own operation.
func (s *Service) Update(ctx context.Context, u *authz.UserPermissions, id string, v Vendor) (Vendor, error) {
	if err := validate(v); err != nil {
		return Vendor{}, err
	}
	if _, err := s.Get(ctx, u, id); err != nil {
		return Vendor{}, err
	}
	if err := s.repo.Update(ctx, id, v); err != nil {
		return Vendor{}, err
	}
	return s.repo.Get(ctx, id)
}

// SetCommission changes a vendor's commission rate. Rates off the
// standard threshold only apply once the approval workflow has signed
// off; the first attempt submits the request and reports pending.
func (s *Service) SetCommission(ctx context.Context, u *authz.UserPermissions, id string, percent float64) (Vendor, error) {
	if percent < 0 || percent > 100 {
		return Vendor{}, shared.ErrValidation
	}
	if _, err := s.Get(ctx, u, id); err != nil {
		return Vendor{}, err
	}

	if s.policy.RequiresApproval(percent) {
		approved, err := s.gate.IsApproved(ctx, commissionModule, id)
		if err != nil {
			return Vendor{}, err
		}
		if !approved {
			if err := s.recorder.Record(ctx, approval.Log{
				Module:  commissionModule,
				RefID:   id,
				ActorID: u.UserID,
				Action:  approval.ActionSubmit,
				Note:    "commission rate change requested",
			}); err != nil {
				s.logger.Error("submit commission approval", slog.String("vendor", id), slog.Any("error", err))
			}
			return Vendor{}, shared.ErrApprovalRequired
		}
	}

	if err := s.repo.UpdateCommission(ctx, id, percent); err != nil {
		return Vendor{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a vendor from the directory.
func (s *Service) Delete(ctx context.Context, u *authz.UserPermissions, id string) error {
	if _, err := s.Get(ctx, u, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
