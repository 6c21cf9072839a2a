package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/domain"
	"github.com/sgt-project/sgt-api/internal/platform/logger"
	"github.com/sgt-project/sgt-api/internal/store"
)

// psql builds queries with PostgreSQL-style positional placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const taskColumns = "id, title, description, board_id, state_id, assigned_to_id, created_by_id, start_date, end_date, custom_fields, record, created_at, updated_at"

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend. The task history
// record and custom fields are stored as JSONB columns.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and
// managed by the caller. If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

func marshalTaskJSON(task *domain.Task) (customFields, record []byte, err error) {
	customFields, err = json.Marshal(task.CustomFields)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal custom fields: %w", err)
	}
	record, err = json.Marshal(task.Record)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return customFields, record, nil
}

func scanTask(row interface{ Scan(...any) error }) (*domain.Task, error) {
	var task domain.Task
	var customFields, record []byte

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.BoardID,
		&task.StateID,
		&task.AssignedToID,
		&task.CreatedByID,
		&task.StartDate,
		&task.EndDate,
		&customFields,
		&record,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(customFields, &task.CustomFields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal custom fields: %w", err)
	}
	if err := json.Unmarshal(record, &task.Record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	return &task, nil
}

// Create implements store.TaskStore.Create
// Returns store.ErrInvalidEntity if the board, state, or user references do not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	customFields, record, err := marshalTaskJSON(task)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (id, title, description, board_id, state_id, assigned_to_id, created_by_id,
		                   start_date, end_date, custom_fields, record, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.BoardID,
		task.StateID,
		task.AssignedToID,
		task.CreatedByID,
		task.StartDate,
		task.EndDate,
		customFields,
		record,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()))
			return fmt.Errorf("%w: board, state, or user does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("board_id", task.BoardID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	return task, nil
}

// List implements store.TaskStore.List
// The filter's nil fields are skipped, so an empty filter lists everything.
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := psql.
		Select(taskColumns).
		From("tasks").
		OrderBy("created_at DESC")

	if filter.BoardID != nil {
		builder = builder.Where(sq.Eq{"board_id": *filter.BoardID})
	}
	if filter.StateID != nil {
		builder = builder.Where(sq.Eq{"state_id": *filter.StateID})
	}
	if filter.AssignedToID != nil {
		builder = builder.Where(sq.Eq{"assigned_to_id": *filter.AssignedToID})
	}
	if filter.CreatedByID != nil {
		builder = builder.Where(sq.Eq{"created_by_id": *filter.CreatedByID})
	}
	if filter.BoardIDs != nil {
		if len(filter.BoardIDs) == 0 {
			// Membership scope with no boards matches nothing.
			return []*domain.Task{}, nil
		}
		builder = builder.Where(sq.Eq{"board_id": filter.BoardIDs})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Error("failed to build task list query", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to build task list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed tasks", slog.Int("count", len(tasks)))
	return tasks, nil
}

// Update implements store.TaskStore.Update
// The row is replaced wholesale, including the serialized record, so a
// history entry appended by the caller is always persisted.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	customFields, record, err := marshalTaskJSON(task)
	if err != nil {
		return err
	}

	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET title = $1, description = $2, state_id = $3, assigned_to_id = $4,
		    start_date = $5, end_date = $6, custom_fields = $7, record = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.StateID,
		task.AssignedToID,
		task.StartDate,
		task.EndDate,
		customFields,
		record,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: state or user does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		log.Debug("task not found for update", slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task updated successfully", slog.String("task_id", task.ID.String()))
	return nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		log.Debug("task not found for delete", slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task deleted successfully", slog.String("task_id", id.String()))
	return nil
}

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}
