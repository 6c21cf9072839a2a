package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/domain"
)

// WorkflowStore defines the interface for workflow template persistence.
// Templates are a mostly static catalog: they are seeded at install time
// and read when boards are created or analytics resolve state names.
type WorkflowStore interface {
	// Create saves a new template together with its ordered states.
	// Must run inside a transaction when called with WithTx so the
	// template and its states land atomically.
	Create(ctx context.Context, template *domain.WorkflowTemplate) error

	// GetByID retrieves a template and its states by template ID.
	// Returns ErrTemplateNotFound if the template does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkflowTemplate, error)

	// List returns all templates with their states, ordered by name.
	List(ctx context.Context) ([]*domain.WorkflowTemplate, error)

	// StatesByTemplate returns the states of a template ordered by their
	// position in the flow.
	// Returns ErrTemplateNotFound if the template does not exist.
	StatesByTemplate(ctx context.Context, templateID uuid.UUID) ([]domain.WorkflowState, error)

	// GetState retrieves a single workflow state by its ID.
	// Returns ErrStateNotFound if the state does not exist.
	GetState(ctx context.Context, id uuid.UUID) (*domain.WorkflowState, error)

	// WithTx returns a new WorkflowStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) WorkflowStore
}
