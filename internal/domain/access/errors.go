package access

import (
	"errors"
	"fmt"

	"github.com/sgt-project/sgt-api/internal/domain"
)

// ErrForbidden is the sentinel for every permission denial. Specific
// denials wrap it so callers can map any of them to a 403.
var ErrForbidden = errors.New("forbidden")

// ForbiddenError is a permission denial carrying the acting role and the
// denied action for diagnostics. The role name is reported to the caller
// but never grants partial access.
type ForbiddenError struct {
	Role   domain.Role
	Action string
}

// Error implements the error interface.
func (e *ForbiddenError) Error() string {
	role := string(e.Role)
	if role == "" {
		role = "none"
	}
	return fmt.Sprintf("forbidden: role %s may not %s", role, e.Action)
}

// Unwrap supports errors.Is(err, ErrForbidden).
func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// NewForbiddenError builds a ForbiddenError for the given role and action.
func NewForbiddenError(role domain.Role, action string) *ForbiddenError {
	return &ForbiddenError{Role: role, Action: action}
}

// ForbiddenFieldError is returned when a partial task update names a
// field outside the role's editable set. The whole update fails before
// any mutation; no field is silently dropped.
type ForbiddenFieldError struct {
	Role  domain.Role
	Field TaskField
}

// Error implements the error interface.
func (e *ForbiddenFieldError) Error() string {
	return fmt.Sprintf("forbidden: role %s may not edit field %q", e.Role, e.Field)
}

// Unwrap supports errors.Is(err, ErrForbidden).
func (e *ForbiddenFieldError) Unwrap() error {
	return ErrForbidden
}
