package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Board
var (
	ErrEmptyBoardID       = errors.New("board ID cannot be empty")
	ErrEmptyBoardName     = errors.New("board name cannot be empty")
	ErrEmptyBoardTemplate = errors.New("board template ID cannot be empty")
	ErrEmptyBoardOwner    = errors.New("board owner ID cannot be empty")
)

// Board is a workspace containing tasks, governed by one workflow
// template. The owner always has full view/edit rights regardless of
// explicit assignment rows; other users gain access through
// BoardAssignment rows.
type Board struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	TemplateID  uuid.UUID `json:"template_id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	IsArchived  bool      `json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewBoard creates a new Board owned by ownerID with the given template.
// It generates a new UUID for the board ID and sets the timestamps.
// Returns an error if validation fails.
func NewBoard(name, description, color string, templateID, ownerID uuid.UUID) (*Board, error) {
	board := &Board{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Color:       color,
		TemplateID:  templateID,
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := board.Validate(); err != nil {
		return nil, err
	}

	return board, nil
}

// Validate checks if the Board has valid data.
func (b *Board) Validate() error {
	if b.ID == uuid.Nil {
		return ErrEmptyBoardID
	}

	if b.Name == "" {
		return ErrEmptyBoardName
	}

	if b.TemplateID == uuid.Nil {
		return ErrEmptyBoardTemplate
	}

	if b.OwnerID == uuid.Nil {
		return ErrEmptyBoardOwner
	}

	return nil
}

// BoardAssignment grants a user access to a board they do not own.
// At most one assignment may exist per (board, user) pair; the service
// creation path checks for duplicates and the store backs that up with a
// unique constraint.
type BoardAssignment struct {
	ID        uuid.UUID `json:"id"`
	BoardID   uuid.UUID `json:"board_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBoardAssignment creates an assignment of userID to boardID.
func NewBoardAssignment(boardID, userID uuid.UUID) (*BoardAssignment, error) {
	if boardID == uuid.Nil {
		return nil, ErrEmptyBoardID
	}
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}

	return &BoardAssignment{
		ID:        uuid.New(),
		BoardID:   boardID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}, nil
}
