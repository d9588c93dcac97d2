package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness conflict.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPermissionDenied indicates the caller lacks access. Boundaries
	// surface it as a generic "not authorized"; the specific reason stays
	// in the audit trail.
	ErrPermissionDenied = errors.New("not authorized")
	// ErrValidation indicates a rejected request payload.
	ErrValidation = errors.New("validation failed")
	// ErrApprovalRequired indicates the change was submitted but must be
	// approved before it takes effect.
	ErrApprovalRequired = errors.New("approval required")
)
