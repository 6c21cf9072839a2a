package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/domain"
)

// Common request/response structures

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`

	Username string `json:"username"`

	Role domain.Role `json:"role"`

	// AccessToken is the JWT used for API authorization.
	AccessToken string `json:"token"`

	// RefreshToken is the JWT used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token
// refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CreateUserRequest defines the payload for the user creation endpoint.
type CreateUserRequest struct {
	Username  string `json:"username"   validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
	Role      string `json:"role"       validate:"required"`
}

// UpdateUserRequest defines the payload for partial user updates. Absent
// fields are left unchanged.
type UpdateUserRequest struct {
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"      validate:"omitempty,email"`
	Password  *string `json:"password,omitempty"   validate:"omitempty,min=8,max=72"`
	Role      *string `json:"role,omitempty"`
}

// UserResponse is the public shape of a user. The password hash never
// leaves the server.
type UserResponse struct {
	ID        uuid.UUID   `json:"id"`
	Username  string      `json:"username"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewUserResponse converts a domain user to its public shape.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// RoleResponse is one entry of the role catalog.
type RoleResponse struct {
	Name        domain.Role `json:"name"`
	Description string      `json:"description"`
}

// CreateWorkflowRequest defines the payload for workflow template
// creation. States are named in flow order; positions are assigned
// 1..N from the slice order.
type CreateWorkflowRequest struct {
	Name   string   `json:"name"   validate:"required"`
	States []string `json:"states" validate:"required,min=1,dive,required"`
}

// CreateBoardRequest defines the payload for board creation.
type CreateBoardRequest struct {
	Name        string    `json:"name"        validate:"required"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	TemplateID  uuid.UUID `json:"template_id" validate:"required"`
}

// UpdateBoardRequest defines the payload for partial board updates.
type UpdateBoardRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	IsArchived  *bool   `json:"is_archived,omitempty"`
}

// AssignUserRequest defines the payload for adding a user to a board.
type AssignUserRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// CreateTaskRequest defines the payload for task creation. StateID is
// optional; when absent the task starts in the template's initial state.
type CreateTaskRequest struct {
	Title        string            `json:"title"    validate:"required"`
	Description  string            `json:"description"`
	BoardID      uuid.UUID         `json:"board_id" validate:"required"`
	StateID      *uuid.UUID        `json:"state_id,omitempty"`
	AssignedToID *uuid.UUID        `json:"assigned_to_id,omitempty"`
	StartDate    *time.Time        `json:"start_date,omitempty"`
	EndDate      *time.Time        `json:"end_date,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// UpdateTaskRequest defines the payload for partial task updates. The
// raw JSON is inspected to distinguish absent fields from explicit
// nulls on the clearable ones.
type UpdateTaskRequest struct {
	Title        *string            `json:"title,omitempty"`
	Description  *string            `json:"description,omitempty"`
	StateID      *uuid.UUID         `json:"state_id,omitempty"`
	AssignedToID *uuid.UUID         `json:"assigned_to_id"`
	StartDate    *time.Time         `json:"start_date"`
	EndDate      *time.Time         `json:"end_date"`
	CustomFields *map[string]string `json:"custom_fields,omitempty"`
}

// AddRecordRequest defines the payload for the task comment endpoint.
type AddRecordRequest struct {
	Doc string `json:"doc" validate:"required"`
}
