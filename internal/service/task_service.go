package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/domain"
	"github.com/sgt-project/sgt-api/internal/domain/access"
	"github.com/sgt-project/sgt-api/internal/platform/logger"
	"github.com/sgt-project/sgt-api/internal/store"
)

// TaskCreate holds the inputs for creating a task. StateID is optional;
// when absent the task starts in the template's initial state.
type TaskCreate struct {
	Title        string
	Description  string
	BoardID      uuid.UUID
	StateID      *uuid.UUID
	AssignedToID *uuid.UUID
	StartDate    *time.Time
	EndDate      *time.Time
	CustomFields map[string]string
}

// TaskUpdate holds the mutable task fields of a partial update. Nil
// fields are left unchanged. AssignedToID and the dates distinguish
// "not present" (outer nil) from "clear the value" (inner nil).
type TaskUpdate struct {
	Title        *string
	Description  *string
	StateID      *uuid.UUID
	AssignedToID **uuid.UUID
	StartDate    **time.Time
	EndDate      **time.Time
	CustomFields *map[string]string
}

// fields returns the identifiers of the fields present in the update,
// for field-level permission enforcement.
func (u TaskUpdate) fields() []access.TaskField {
	var fields []access.TaskField
	if u.Title != nil {
		fields = append(fields, access.FieldTitle)
	}
	if u.Description != nil {
		fields = append(fields, access.FieldDescription)
	}
	if u.StateID != nil {
		fields = append(fields, access.FieldStateID)
	}
	if u.AssignedToID != nil {
		fields = append(fields, access.FieldAssignedToID)
	}
	if u.StartDate != nil {
		fields = append(fields, access.FieldStartDate)
	}
	if u.EndDate != nil {
		fields = append(fields, access.FieldEndDate)
	}
	if u.CustomFields != nil {
		fields = append(fields, access.FieldCustomFields)
	}
	return fields
}

// TaskService provides task operations gated by the permission evaluator,
// with automatic history recording on creation and state changes.
type TaskService interface {
	// CreateTask creates a task on a board the actor can see. The task's
	// record starts with one synthetic creation entry.
	CreateTask(ctx context.Context, actor Actor, input TaskCreate) (*domain.Task, error)

	// GetTask retrieves a task on a board the actor may view.
	GetTask(ctx context.Context, actor Actor, taskID uuid.UUID) (*domain.Task, error)

	// ListTasks returns tasks matching the filter, narrowed to the actor's
	// visibility scope. Agente sees only self-assigned tasks.
	ListTasks(ctx context.Context, actor Actor, filter store.TaskFilter) ([]*domain.Task, error)

	// UpdateTask applies a partial update. Every present field must be in
	// the actor's editable set or the whole update fails before any
	// mutation. A state change appends a history entry.
	UpdateTask(ctx context.Context, actor Actor, taskID uuid.UUID, update TaskUpdate) (*domain.Task, error)

	// DeleteTask removes a task. Administrators may delete any task,
	// managers and supervisors tasks they can edit, and creators their own.
	DeleteTask(ctx context.Context, actor Actor, taskID uuid.UUID) error

	// AddRecord appends an explicit comment entry to the task's history.
	// The entry carries the task's current state name.
	AddRecord(ctx context.Context, actor Actor, taskID uuid.UUID, doc string) (*domain.Task, error)

	// ListRecord returns the task's history entries in insertion order.
	ListRecord(ctx context.Context, actor Actor, taskID uuid.UUID) ([]domain.RecordEntry, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	db         *sql.DB
	taskStore  store.TaskStore
	boardStore store.BoardStore
	workflows  store.WorkflowStore
	logger     *slog.Logger
	now        func() time.Time
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	db *sql.DB,
	taskStore store.TaskStore,
	boardStore store.BoardStore,
	workflows store.WorkflowStore,
	logger *slog.Logger,
) (TaskService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if boardStore == nil {
		return nil, domain.NewValidationError("boardStore", "cannot be nil", domain.ErrValidation)
	}
	if workflows == nil {
		return nil, domain.NewValidationError("workflows", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		db:         db,
		taskStore:  taskStore,
		boardStore: boardStore,
		workflows:  workflows,
		logger:     logger.With(slog.String("component", "task_service")),
		now:        time.Now,
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(ctx context.Context, actor Actor, input TaskCreate) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !access.CanCreateTask(actor.Role) {
		log.Debug("task creation denied",
			slog.String("user_id", actor.ID.String()),
			slog.String("role", string(actor.Role)))
		return nil, access.NewForbiddenError(actor.Role, "create task")
	}

	board, err := s.boardStore.GetByID(ctx, input.BoardID)
	if err != nil {
		return nil, err
	}
	m, err := resolveMembership(ctx, s.boardStore, board, actor)
	if err != nil {
		return nil, err
	}
	if !access.CanViewBoard(actor.Access(), m) {
		return nil, access.NewForbiddenError(actor.Role, "create task")
	}

	states, err := s.workflows.StatesByTemplate(ctx, board.TemplateID)
	if err != nil {
		return nil, err
	}

	// Default to the template's initial state; an explicit state must
	// belong to the board's template.
	var state *domain.WorkflowState
	if input.StateID != nil {
		state = domain.StateByID(states, *input.StateID)
		if state == nil {
			return nil, domain.ErrStateNotInTemplate
		}
	} else {
		state = domain.InitialState(states)
		if state == nil {
			return nil, store.ErrStateNotFound
		}
	}

	task, err := domain.NewTask(
		input.Title,
		input.Description,
		board.ID,
		state.ID,
		input.AssignedToID,
		actor.ID,
		input.StartDate,
		input.EndDate,
		input.CustomFields,
	)
	if err != nil {
		return nil, err
	}

	task.AppendRecord(domain.NewRecordEntry(
		s.now(),
		actor.Username,
		state.Name,
		domain.CreationRecordDoc(actor.Username),
	))

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).Create(ctx, task)
	})
	if err != nil {
		return nil, NewServiceError("task", "create", "failed to save task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("board_id", board.ID.String()),
		slog.String("created_by", actor.ID.String()))
	return task, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, actor Actor, taskID uuid.UUID) (*domain.Task, error) {
	task, _, m, err := s.loadTaskWithMembership(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if !access.CanViewBoard(actor.Access(), m) {
		return nil, access.NewForbiddenError(actor.Role, "view task")
	}
	return task, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context, actor Actor, filter store.TaskFilter) ([]*domain.Task, error) {
	switch access.TaskListScope(actor.Role) {
	case access.ScopeAll:
		// Listing within a board still requires board visibility.
		if filter.BoardID != nil {
			board, err := s.boardStore.GetByID(ctx, *filter.BoardID)
			if err != nil {
				return nil, err
			}
			m, err := resolveMembership(ctx, s.boardStore, board, actor)
			if err != nil {
				return nil, err
			}
			if !access.CanViewBoard(actor.Access(), m) {
				return nil, access.NewForbiddenError(actor.Role, "list tasks")
			}
		}
	case access.ScopeSelfAssigned:
		self := actor.ID
		filter.AssignedToID = &self
	default:
		return nil, access.NewForbiddenError(actor.Role, "list tasks")
	}

	return s.taskStore.List(ctx, filter)
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	actor Actor,
	taskID uuid.UUID,
	update TaskUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, board, m, err := s.loadTaskWithMembership(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	assignedToActor := task.AssignedToID != nil && *task.AssignedToID == actor.ID
	if !access.CanEditTask(actor.Access(), m, assignedToActor) {
		log.Debug("task edit denied",
			slog.String("task_id", taskID.String()),
			slog.String("user_id", actor.ID.String()),
			slog.String("role", string(actor.Role)))
		return nil, access.NewForbiddenError(actor.Role, "edit task")
	}

	// Every requested field must be editable by the role or nothing is
	// applied.
	if err := access.CheckFieldEdits(actor.Role, update.fields()); err != nil {
		return nil, err
	}

	states, err := s.workflows.StatesByTemplate(ctx, board.TemplateID)
	if err != nil {
		return nil, err
	}

	oldState := domain.StateByID(states, task.StateID)

	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.AssignedToID != nil {
		task.AssignedToID = *update.AssignedToID
	}
	if update.StartDate != nil {
		task.StartDate = *update.StartDate
	}
	if update.EndDate != nil {
		task.EndDate = *update.EndDate
	}
	if update.CustomFields != nil {
		task.CustomFields = *update.CustomFields
	}

	var newState *domain.WorkflowState
	if update.StateID != nil && *update.StateID != task.StateID {
		newState = domain.StateByID(states, *update.StateID)
		if newState == nil {
			return nil, domain.ErrStateNotInTemplate
		}
		task.StateID = newState.ID
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if newState != nil && oldState != nil {
		task.AppendRecord(domain.NewRecordEntry(
			s.now(),
			actor.Username,
			newState.Name,
			domain.StateChangeRecordDoc(oldState.Name, newState.Name),
		))
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).Update(ctx, task)
	})
	if err != nil {
		return nil, NewServiceError("task", "update", "failed to save task", err)
	}

	log.Info("task updated",
		slog.String("task_id", task.ID.String()),
		slog.Bool("state_changed", newState != nil))
	return task, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, actor Actor, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, _, m, err := s.loadTaskWithMembership(ctx, actor, taskID)
	if err != nil {
		return err
	}

	assignedToActor := task.AssignedToID != nil && *task.AssignedToID == actor.ID
	isCreator := task.CreatedByID == actor.ID
	if !access.CanDeleteTask(actor.Access(), m, assignedToActor, isCreator) {
		return access.NewForbiddenError(actor.Role, "delete task")
	}

	if err := s.taskStore.Delete(ctx, taskID); err != nil {
		return NewServiceError("task", "delete", "failed to delete task", err)
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("deleted_by", actor.ID.String()))
	return nil
}

// AddRecord implements TaskService.AddRecord
func (s *taskServiceImpl) AddRecord(ctx context.Context, actor Actor, taskID uuid.UUID, doc string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, board, m, err := s.loadTaskWithMembership(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	assignedToActor := task.AssignedToID != nil && *task.AssignedToID == actor.ID
	if !access.CanAddRecord(actor.Access(), m, assignedToActor) {
		return nil, access.NewForbiddenError(actor.Role, "add record entry")
	}

	// The comment entry carries the task's current state name, unchanged.
	state, err := s.currentStateName(ctx, board, task)
	if err != nil {
		return nil, err
	}

	task.AppendRecord(domain.NewRecordEntry(s.now(), actor.Username, state, doc))

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).Update(ctx, task)
	})
	if err != nil {
		return nil, NewServiceError("task", "add_record", "failed to save record entry", err)
	}

	log.Info("record entry added",
		slog.String("task_id", task.ID.String()),
		slog.String("user", actor.Username))
	return task, nil
}

// ListRecord implements TaskService.ListRecord
func (s *taskServiceImpl) ListRecord(ctx context.Context, actor Actor, taskID uuid.UUID) ([]domain.RecordEntry, error) {
	task, err := s.GetTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	return task.Record, nil
}

func (s *taskServiceImpl) currentStateName(ctx context.Context, board *domain.Board, task *domain.Task) (string, error) {
	states, err := s.workflows.StatesByTemplate(ctx, board.TemplateID)
	if err != nil {
		return "", err
	}
	if state := domain.StateByID(states, task.StateID); state != nil {
		return state.Name, nil
	}
	return "", domain.ErrStateNotInTemplate
}

func (s *taskServiceImpl) loadTaskWithMembership(
	ctx context.Context,
	actor Actor,
	taskID uuid.UUID,
) (*domain.Task, *domain.Board, access.Membership, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, access.Membership{}, err
	}
	board, err := s.boardStore.GetByID(ctx, task.BoardID)
	if err != nil {
		return nil, nil, access.Membership{}, err
	}
	m, err := resolveMembership(ctx, s.boardStore, board, actor)
	if err != nil {
		return nil, nil, access.Membership{}, err
	}
	return task, board, m, nil
}
