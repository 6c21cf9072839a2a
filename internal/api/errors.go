package api

import (
	"errors"
	"net/http"

	"github.com/sgt-project/sgt-api/internal/domain"
	"github.com/sgt-project/sgt-api/internal/domain/access"
	"github.com/sgt-project/sgt-api/internal/service"
	"github.com/sgt-project/sgt-api/internal/service/auth"
	"github.com/sgt-project/sgt-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErr *domain.ValidationError
	var forbiddenErr *access.ForbiddenError

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors, including forbidden-field denials
	case errors.Is(err, access.ErrForbidden),
		errors.As(err, &forbiddenErr):
		return http.StatusForbidden

	// Not found errors; the entity sentinels all wrap store.ErrNotFound
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, service.ErrSelfDeletion),
		errors.Is(err, service.ErrLastAdministrator):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrStateNotInTemplate),
		errors.Is(err, domain.ErrUnknownRole),
		errors.As(err, &validationErr),
		isDomainFieldError(err):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// isDomainFieldError reports whether the error is one of the domain's
// entity field validation sentinels, which services surface unchanged.
func isDomainFieldError(err error) bool {
	fieldErrors := []error{
		domain.ErrEmptyTaskTitle,
		domain.ErrEmptyTaskBoard,
		domain.ErrEmptyTaskState,
		domain.ErrEmptyBoardName,
		domain.ErrEmptyBoardTemplate,
		domain.ErrEmptyUsername,
		domain.ErrEmptyEmail,
		domain.ErrInvalidEmail,
		domain.ErrEmptyUserFullName,
		domain.ErrEmptyPassword,
		domain.ErrPasswordTooShort,
		domain.ErrPasswordTooLong,
		domain.ErrEmptyTemplateName,
		domain.ErrEmptyStateName,
		domain.ErrNoStates,
	}
	for _, sentinel := range fieldErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal
// details while keeping permission denials diagnosable.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var forbiddenErr *access.ForbiddenError
	var fieldErr *access.ForbiddenFieldError
	var validationErr *domain.ValidationError

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	// Authorization errors keep the role and action; the evaluator
	// builds these messages without internal detail.
	case errors.As(err, &fieldErr):
		return "Field not editable: " + string(fieldErr.Field)

	case errors.As(err, &forbiddenErr):
		return forbiddenErr.Error()

	case errors.Is(err, access.ErrForbidden):
		return "Forbidden"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrBoardNotFound):
		return "Board not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrTemplateNotFound):
		return "Workflow template not found"
	case errors.Is(err, store.ErrStateNotFound):
		return "Workflow state not found"
	case errors.Is(err, store.ErrAssignmentNotFound):
		return "Assignment not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrUsernameExists):
		return "Username already exists"
	case errors.Is(err, store.ErrAlreadyAssigned):
		return "User is already assigned to this board"
	case errors.Is(err, service.ErrSelfDeletion):
		return "Users cannot delete their own account"
	case errors.Is(err, service.ErrLastAdministrator):
		return "Cannot remove the last administrator"

	// Bad request errors
	case errors.Is(err, domain.ErrStateNotInTemplate):
		return "State does not belong to the board's workflow template"
	case errors.Is(err, domain.ErrInvalidDateRange):
		return "End date cannot be before start date"
	case errors.Is(err, domain.ErrUnknownRole):
		return "Unknown role"
	case errors.As(err, &validationErr):
		return "Invalid " + validationErr.Field
	case isDomainFieldError(err):
		return err.Error()
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}
