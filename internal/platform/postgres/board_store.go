package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/domain"
	"github.com/sgt-project/sgt-api/internal/platform/logger"
	"github.com/sgt-project/sgt-api/internal/store"
)

// PostgresBoardStore implements the store.BoardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBoardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBoardStore creates a new PostgreSQL implementation of the BoardStore interface.
// It accepts a database connection or transaction that should be initialized and
// managed by the caller. If logger is nil, a default logger will be used.
func NewPostgresBoardStore(db store.DBTX, logger *slog.Logger) *PostgresBoardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBoardStore{
		db:     db,
		logger: logger.With(slog.String("component", "board_store")),
	}
}

// Ensure PostgresBoardStore implements store.BoardStore interface
var _ store.BoardStore = (*PostgresBoardStore)(nil)

const boardColumns = "id, name, description, color, template_id, owner_id, is_archived, created_at, updated_at"

func scanBoard(row interface{ Scan(...any) error }) (*domain.Board, error) {
	var board domain.Board
	err := row.Scan(
		&board.ID,
		&board.Name,
		&board.Description,
		&board.Color,
		&board.TemplateID,
		&board.OwnerID,
		&board.IsArchived,
		&board.CreatedAt,
		&board.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// Create implements store.BoardStore.Create
// Returns store.ErrInvalidEntity if the template or owner does not exist.
func (s *PostgresBoardStore) Create(ctx context.Context, board *domain.Board) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := board.Validate(); err != nil {
		log.Warn("board validation failed during create",
			slog.String("error", err.Error()),
			slog.String("board_id", board.ID.String()))
		return err
	}

	query := `
		INSERT INTO boards (id, name, description, color, template_id, owner_id, is_archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		board.ID,
		board.Name,
		board.Description,
		board.Color,
		board.TemplateID,
		board.OwnerID,
		board.IsArchived,
		board.CreatedAt,
		board.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during board creation",
				slog.String("error", err.Error()),
				slog.String("board_id", board.ID.String()))
			return fmt.Errorf("%w: template or owner does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create board",
			slog.String("error", err.Error()),
			slog.String("board_id", board.ID.String()))
		return MapError(err)
	}

	log.Info("board created successfully",
		slog.String("board_id", board.ID.String()),
		slog.String("owner_id", board.OwnerID.String()))
	return nil
}

// GetByID implements store.BoardStore.GetByID
// Returns store.ErrBoardNotFound if the board does not exist.
func (s *PostgresBoardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + boardColumns + ` FROM boards WHERE id = $1`

	board, err := scanBoard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("board not found", slog.String("board_id", id.String()))
			return nil, store.ErrBoardNotFound
		}
		log.Error("failed to get board by ID",
			slog.String("error", err.Error()),
			slog.String("board_id", id.String()))
		return nil, err
	}

	return board, nil
}

// List implements store.BoardStore.List
func (s *PostgresBoardStore) List(ctx context.Context) ([]*domain.Board, error) {
	query := `SELECT ` + boardColumns + ` FROM boards ORDER BY created_at DESC`
	return s.queryBoards(ctx, query)
}

// ListForUser implements store.BoardStore.ListForUser
// It returns boards the user owns plus boards the user is assigned to.
func (s *PostgresBoardStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	query := `
		SELECT DISTINCT b.id, b.name, b.description, b.color, b.template_id, b.owner_id, b.is_archived, b.created_at, b.updated_at
		FROM boards b
		LEFT JOIN board_assignments ba ON ba.board_id = b.id
		WHERE b.owner_id = $1 OR ba.user_id = $1
		ORDER BY b.created_at DESC
	`
	return s.queryBoards(ctx, query, userID)
}

func (s *PostgresBoardStore) queryBoards(ctx context.Context, query string, args ...any) ([]*domain.Board, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query boards", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	boards := []*domain.Board{}
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			log.Error("failed to scan board row", slog.String("error", err.Error()))
			return nil, err
		}
		boards = append(boards, board)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return boards, nil
}

// Update implements store.BoardStore.Update
// Returns store.ErrBoardNotFound if the board does not exist.
func (s *PostgresBoardStore) Update(ctx context.Context, board *domain.Board) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := board.Validate(); err != nil {
		log.Warn("board validation failed during update",
			slog.String("error", err.Error()),
			slog.String("board_id", board.ID.String()))
		return err
	}

	board.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE boards
		SET name = $1, description = $2, color = $3, is_archived = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		board.Name,
		board.Description,
		board.Color,
		board.IsArchived,
		board.UpdatedAt,
		board.ID,
	)
	if err != nil {
		log.Error("failed to update board",
			slog.String("error", err.Error()),
			slog.String("board_id", board.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "board"); err != nil {
		log.Debug("board not found for update", slog.String("board_id", board.ID.String()))
		return store.ErrBoardNotFound
	}

	log.Info("board updated successfully", slog.String("board_id", board.ID.String()))
	return nil
}

// Delete implements store.BoardStore.Delete
// Tasks and assignments fall with the board via ON DELETE CASCADE.
// Returns store.ErrBoardNotFound if the board does not exist.
func (s *PostgresBoardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete board",
			slog.String("error", err.Error()),
			slog.String("board_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "board"); err != nil {
		log.Debug("board not found for delete", slog.String("board_id", id.String()))
		return store.ErrBoardNotFound
	}

	log.Info("board deleted successfully", slog.String("board_id", id.String()))
	return nil
}

// AddAssignment implements store.BoardStore.AddAssignment
// Returns store.ErrAlreadyAssigned if the pair already exists.
func (s *PostgresBoardStore) AddAssignment(ctx context.Context, assignment *domain.BoardAssignment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO board_assignments (id, board_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		assignment.ID,
		assignment.BoardID,
		assignment.UserID,
		assignment.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("user already assigned to board",
				slog.String("board_id", assignment.BoardID.String()),
				slog.String("user_id", assignment.UserID.String()))
			return store.ErrAlreadyAssigned
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: board or user does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to add board assignment",
			slog.String("error", err.Error()),
			slog.String("board_id", assignment.BoardID.String()))
		return MapError(err)
	}

	log.Info("user assigned to board",
		slog.String("board_id", assignment.BoardID.String()),
		slog.String("user_id", assignment.UserID.String()))
	return nil
}

// RemoveAssignment implements store.BoardStore.RemoveAssignment
// Returns store.ErrAssignmentNotFound if the pair does not exist.
func (s *PostgresBoardStore) RemoveAssignment(ctx context.Context, boardID, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM board_assignments WHERE board_id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query, boardID, userID)
	if err != nil {
		log.Error("failed to remove board assignment",
			slog.String("error", err.Error()),
			slog.String("board_id", boardID.String()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "board assignment"); err != nil {
		return store.ErrAssignmentNotFound
	}

	log.Info("user removed from board",
		slog.String("board_id", boardID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// ListAssignments implements store.BoardStore.ListAssignments
func (s *PostgresBoardStore) ListAssignments(ctx context.Context, boardID uuid.UUID) ([]*domain.BoardAssignment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, board_id, user_id, created_at
		FROM board_assignments
		WHERE board_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, boardID)
	if err != nil {
		log.Error("failed to query board assignments",
			slog.String("error", err.Error()),
			slog.String("board_id", boardID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	assignments := []*domain.BoardAssignment{}
	for rows.Next() {
		var a domain.BoardAssignment
		if err := rows.Scan(&a.ID, &a.BoardID, &a.UserID, &a.CreatedAt); err != nil {
			log.Error("failed to scan assignment row", slog.String("error", err.Error()))
			return nil, err
		}
		assignments = append(assignments, &a)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return assignments, nil
}

// IsAssigned implements store.BoardStore.IsAssigned
func (s *PostgresBoardStore) IsAssigned(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT EXISTS (SELECT 1 FROM board_assignments WHERE board_id = $1 AND user_id = $2)`

	var assigned bool
	if err := s.db.QueryRowContext(ctx, query, boardID, userID).Scan(&assigned); err != nil {
		log.Error("failed to check board assignment",
			slog.String("error", err.Error()),
			slog.String("board_id", boardID.String()),
			slog.String("user_id", userID.String()))
		return false, err
	}

	return assigned, nil
}

// WithTx implements store.BoardStore.WithTx
func (s *PostgresBoardStore) WithTx(tx *sql.Tx) store.BoardStore {
	return &PostgresBoardStore{
		db:     tx,
		logger: s.logger,
	}
}
