package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/domain"
	"github.com/sgt-project/sgt-api/internal/domain/access"
	"github.com/sgt-project/sgt-api/internal/platform/logger"
	"github.com/sgt-project/sgt-api/internal/store"
)

// WorkflowService manages the workflow template catalog. Any
// authenticated role may browse and create templates; states are fixed
// once created, as tasks reference them by ID.
type WorkflowService interface {
	// CreateTemplate creates a template whose states take the given
	// names in order.
	CreateTemplate(ctx context.Context, actor Actor, name string, stateNames []string) (*domain.WorkflowTemplate, error)

	// GetTemplate retrieves a template with its states.
	GetTemplate(ctx context.Context, actor Actor, templateID uuid.UUID) (*domain.WorkflowTemplate, error)

	// ListTemplates returns the full catalog ordered by name.
	ListTemplates(ctx context.Context, actor Actor) ([]*domain.WorkflowTemplate, error)
}

// workflowServiceImpl implements the WorkflowService interface
type workflowServiceImpl struct {
	db        *sql.DB
	workflows store.WorkflowStore
	logger    *slog.Logger
}

// NewWorkflowService creates a new WorkflowService.
// It returns an error if any of the required dependencies are nil.
func NewWorkflowService(db *sql.DB, workflows store.WorkflowStore, logger *slog.Logger) (WorkflowService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if workflows == nil {
		return nil, domain.NewValidationError("workflows", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		return nil, domain.NewValidationError("logger", "cannot be nil", domain.ErrValidation)
	}
	return &workflowServiceImpl{
		db:        db,
		workflows: workflows,
		logger:    logger.With(slog.String("component", "workflow_service")),
	}, nil
}

func (s *workflowServiceImpl) CreateTemplate(ctx context.Context, actor Actor, name string, stateNames []string) (*domain.WorkflowTemplate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !actor.Role.IsValid() {
		return nil, access.NewForbiddenError(actor.Role, "create workflow template")
	}

	template, err := domain.NewWorkflowTemplate(name, stateNames)
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.workflows.WithTx(tx).Create(ctx, template)
	})
	if err != nil {
		log.Error("failed to create workflow template",
			slog.String("error", err.Error()),
			slog.String("name", name))
		return nil, err
	}

	log.Info("workflow template created",
		slog.String("template_id", template.ID.String()),
		slog.String("name", template.Name),
		slog.Int("states", len(template.States)))
	return template, nil
}

func (s *workflowServiceImpl) GetTemplate(ctx context.Context, actor Actor, templateID uuid.UUID) (*domain.WorkflowTemplate, error) {
	if !actor.Role.IsValid() {
		return nil, access.NewForbiddenError(actor.Role, "view workflow template")
	}
	return s.workflows.GetByID(ctx, templateID)
}

func (s *workflowServiceImpl) ListTemplates(ctx context.Context, actor Actor) ([]*domain.WorkflowTemplate, error) {
	if !actor.Role.IsValid() {
		return nil, access.NewForbiddenError(actor.Role, "list workflow templates")
	}
	return s.workflows.List(ctx)
}
