package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/domain"
	"github.com/sgt-project/sgt-api/internal/platform/logger"
	"github.com/sgt-project/sgt-api/internal/store"
)

// PostgresWorkflowStore implements the store.WorkflowStore interface
// using a PostgreSQL database as the storage backend.
type PostgresWorkflowStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWorkflowStore creates a new PostgreSQL implementation of the
// WorkflowStore interface. If logger is nil, a default logger will be used.
func NewPostgresWorkflowStore(db store.DBTX, logger *slog.Logger) *PostgresWorkflowStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWorkflowStore{
		db:     db,
		logger: logger.With(slog.String("component", "workflow_store")),
	}
}

// Ensure PostgresWorkflowStore implements store.WorkflowStore interface
var _ store.WorkflowStore = (*PostgresWorkflowStore)(nil)

// Create implements store.WorkflowStore.Create
// The template row and its state rows are inserted together. Callers run
// this inside a transaction via WithTx so the insert is atomic.
func (s *PostgresWorkflowStore) Create(ctx context.Context, template *domain.WorkflowTemplate) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := template.Validate(); err != nil {
		log.Warn("template validation failed during create",
			slog.String("error", err.Error()),
			slog.String("template_id", template.ID.String()))
		return err
	}

	query := `INSERT INTO workflow_templates (id, name) VALUES ($1, $2)`
	if _, err := s.db.ExecContext(ctx, query, template.ID, template.Name); err != nil {
		log.Error("failed to create workflow template",
			slog.String("error", err.Error()),
			slog.String("template_id", template.ID.String()))
		return MapError(err)
	}

	stateQuery := `INSERT INTO workflow_states (id, template_id, name, position) VALUES ($1, $2, $3, $4)`
	for _, state := range template.States {
		if _, err := s.db.ExecContext(ctx, stateQuery, state.ID, state.TemplateID, state.Name, state.Order); err != nil {
			log.Error("failed to create workflow state",
				slog.String("error", err.Error()),
				slog.String("template_id", template.ID.String()),
				slog.String("state_name", state.Name))
			return MapError(err)
		}
	}

	log.Info("workflow template created",
		slog.String("template_id", template.ID.String()),
		slog.String("name", template.Name),
		slog.Int("states", len(template.States)))
	return nil
}

// GetByID implements store.WorkflowStore.GetByID
// Returns store.ErrTemplateNotFound if the template does not exist.
func (s *PostgresWorkflowStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkflowTemplate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var template domain.WorkflowTemplate
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM workflow_templates WHERE id = $1`, id).
		Scan(&template.ID, &template.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("workflow template not found", slog.String("template_id", id.String()))
			return nil, store.ErrTemplateNotFound
		}
		log.Error("failed to get workflow template",
			slog.String("error", err.Error()),
			slog.String("template_id", id.String()))
		return nil, err
	}

	states, err := s.statesFor(ctx, id)
	if err != nil {
		return nil, err
	}
	template.States = states

	return &template, nil
}

// List implements store.WorkflowStore.List
func (s *PostgresWorkflowStore) List(ctx context.Context) ([]*domain.WorkflowTemplate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM workflow_templates ORDER BY name`)
	if err != nil {
		log.Error("failed to list workflow templates", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	templates := []*domain.WorkflowTemplate{}
	for rows.Next() {
		var template domain.WorkflowTemplate
		if err := rows.Scan(&template.ID, &template.Name); err != nil {
			log.Error("failed to scan template row", slog.String("error", err.Error()))
			return nil, err
		}
		templates = append(templates, &template)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	for _, template := range templates {
		states, err := s.statesFor(ctx, template.ID)
		if err != nil {
			return nil, err
		}
		template.States = states
	}

	return templates, nil
}

// StatesByTemplate implements store.WorkflowStore.StatesByTemplate
// Returns store.ErrTemplateNotFound if the template does not exist.
func (s *PostgresWorkflowStore) StatesByTemplate(ctx context.Context, templateID uuid.UUID) ([]domain.WorkflowState, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM workflow_templates WHERE id = $1)`, templateID).
		Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, store.ErrTemplateNotFound
	}

	return s.statesFor(ctx, templateID)
}

func (s *PostgresWorkflowStore) statesFor(ctx context.Context, templateID uuid.UUID) ([]domain.WorkflowState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, template_id, name, position
		FROM workflow_states
		WHERE template_id = $1
		ORDER BY position
	`
	rows, err := s.db.QueryContext(ctx, query, templateID)
	if err != nil {
		log.Error("failed to query workflow states",
			slog.String("error", err.Error()),
			slog.String("template_id", templateID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	states := []domain.WorkflowState{}
	for rows.Next() {
		var state domain.WorkflowState
		if err := rows.Scan(&state.ID, &state.TemplateID, &state.Name, &state.Order); err != nil {
			log.Error("failed to scan state row", slog.String("error", err.Error()))
			return nil, err
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return states, nil
}

// GetState implements store.WorkflowStore.GetState
// Returns store.ErrStateNotFound if the state does not exist.
func (s *PostgresWorkflowStore) GetState(ctx context.Context, id uuid.UUID) (*domain.WorkflowState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var state domain.WorkflowState
	err := s.db.QueryRowContext(ctx,
		`SELECT id, template_id, name, position FROM workflow_states WHERE id = $1`, id).
		Scan(&state.ID, &state.TemplateID, &state.Name, &state.Order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("workflow state not found", slog.String("state_id", id.String()))
			return nil, store.ErrStateNotFound
		}
		log.Error("failed to get workflow state",
			slog.String("error", err.Error()),
			slog.String("state_id", id.String()))
		return nil, err
	}

	return &state, nil
}

// WithTx implements store.WorkflowStore.WithTx
func (s *PostgresWorkflowStore) WithTx(tx *sql.Tx) store.WorkflowStore {
	return &PostgresWorkflowStore{
		db:     tx,
		logger: s.logger,
	}
}
