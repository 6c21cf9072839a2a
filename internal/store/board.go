package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/domain"
)

// BoardStore defines the interface for board and board-assignment persistence.
type BoardStore interface {
	// Create saves a new board to the store.
	// Returns validation errors from the domain Board if data is invalid.
	Create(ctx context.Context, board *domain.Board) error

	// GetByID retrieves a board by its unique ID.
	// Returns ErrBoardNotFound if the board does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error)

	// List returns all boards, newest first. Used by roles whose board
	// visibility is unrestricted.
	List(ctx context.Context) ([]*domain.Board, error)

	// ListForUser returns the boards the user owns or is assigned to,
	// newest first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)

	// Update modifies an existing board's details.
	// Returns ErrBoardNotFound if the board does not exist.
	Update(ctx context.Context, board *domain.Board) error

	// Delete removes a board by its ID. Tasks and assignments on the
	// board are removed by ON DELETE CASCADE constraints in the schema.
	// Returns ErrBoardNotFound if the board does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddAssignment records that a user is a member of a board.
	// Returns ErrAlreadyAssigned if the pair already exists.
	AddAssignment(ctx context.Context, assignment *domain.BoardAssignment) error

	// RemoveAssignment removes a user from a board's member list.
	// Returns ErrAssignmentNotFound if the pair does not exist.
	RemoveAssignment(ctx context.Context, boardID, userID uuid.UUID) error

	// ListAssignments returns all assignments for a board.
	ListAssignments(ctx context.Context, boardID uuid.UUID) ([]*domain.BoardAssignment, error)

	// IsAssigned reports whether the user is assigned to the board.
	IsAssigned(ctx context.Context, boardID, userID uuid.UUID) (bool, error)

	// WithTx returns a new BoardStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) BoardStore
}
