package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/domain"
)

// TaskFilter narrows task listings. Nil fields are ignored, so the
// zero value matches every task.
type TaskFilter struct {
	BoardID      *uuid.UUID
	StateID      *uuid.UUID
	AssignedToID *uuid.UUID
	CreatedByID  *uuid.UUID
	// BoardIDs restricts results to a set of boards. Used when a role
	// sees only the boards it is a member of. An empty non-nil slice
	// matches nothing.
	BoardIDs []uuid.UUID
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store. The task's Record and
	// CustomFields are persisted as JSONB.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID, including its full
	// history record.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns tasks matching the filter, newest first.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Update replaces an existing task's row wholesale, including the
	// serialized history record. Callers append to Record via the domain
	// helper before calling Update so the new entry is persisted.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
