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

// BoardUpdate holds the mutable board fields of a partial update. Nil
// fields are left unchanged.
type BoardUpdate struct {
	Name        *string
	Description *string
	Color       *string
	IsArchived  *bool
}

// BoardService provides board and board-membership operations gated by
// the permission evaluator.
type BoardService interface {
	// CreateBoard creates a board owned by the actor using the given
	// workflow template.
	CreateBoard(ctx context.Context, actor Actor, name, description, color string, templateID uuid.UUID) (*domain.Board, error)

	// GetBoard retrieves a board the actor may view.
	GetBoard(ctx context.Context, actor Actor, boardID uuid.UUID) (*domain.Board, error)

	// ListBoards returns the boards visible to the actor. Administrators
	// see everything; other roles see boards they own or are assigned to,
	// excluding archived ones.
	ListBoards(ctx context.Context, actor Actor) ([]*domain.Board, error)

	// UpdateBoard applies a partial update to a board the actor may edit.
	UpdateBoard(ctx context.Context, actor Actor, boardID uuid.UUID, update BoardUpdate) (*domain.Board, error)

	// DeleteBoard removes a board. Allowed for administrators and the owner.
	DeleteBoard(ctx context.Context, actor Actor, boardID uuid.UUID) error

	// AssignUser grants a user membership on a board.
	AssignUser(ctx context.Context, actor Actor, boardID, userID uuid.UUID) error

	// UnassignUser revokes a user's membership on a board.
	UnassignUser(ctx context.Context, actor Actor, boardID, userID uuid.UUID) error

	// ListAssignments returns the membership rows of a board the actor may view.
	ListAssignments(ctx context.Context, actor Actor, boardID uuid.UUID) ([]*domain.BoardAssignment, error)

	// ListBoardStates returns the workflow states of the board's template
	// in flow order.
	ListBoardStates(ctx context.Context, actor Actor, boardID uuid.UUID) ([]domain.WorkflowState, error)
}

// boardServiceImpl implements the BoardService interface
type boardServiceImpl struct {
	db         *sql.DB
	boardStore store.BoardStore
	userStore  store.UserStore
	workflows  store.WorkflowStore
	logger     *slog.Logger
}

// NewBoardService creates a new BoardService.
// It returns an error if any of the required dependencies are nil.
func NewBoardService(
	db *sql.DB,
	boardStore store.BoardStore,
	userStore store.UserStore,
	workflows store.WorkflowStore,
	logger *slog.Logger,
) (BoardService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if boardStore == nil {
		return nil, domain.NewValidationError("boardStore", "cannot be nil", domain.ErrValidation)
	}
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if workflows == nil {
		return nil, domain.NewValidationError("workflows", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &boardServiceImpl{
		db:         db,
		boardStore: boardStore,
		userStore:  userStore,
		workflows:  workflows,
		logger:     logger.With(slog.String("component", "board_service")),
	}, nil
}

// CreateBoard implements BoardService.CreateBoard
func (s *boardServiceImpl) CreateBoard(
	ctx context.Context,
	actor Actor,
	name, description, color string,
	templateID uuid.UUID,
) (*domain.Board, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !access.CanCreateBoard(actor.Role) {
		log.Debug("board creation denied",
			slog.String("user_id", actor.ID.String()),
			slog.String("role", string(actor.Role)))
		return nil, access.NewForbiddenError(actor.Role, "create board")
	}

	// The template must exist before the board can reference it.
	if _, err := s.workflows.GetByID(ctx, templateID); err != nil {
		return nil, err
	}

	board, err := domain.NewBoard(name, description, color, templateID, actor.ID)
	if err != nil {
		return nil, err
	}

	if err := s.boardStore.Create(ctx, board); err != nil {
		return nil, NewServiceError("board", "create", "failed to save board", err)
	}

	log.Info("board created",
		slog.String("board_id", board.ID.String()),
		slog.String("owner_id", actor.ID.String()))
	return board, nil
}

// GetBoard implements BoardService.GetBoard
func (s *boardServiceImpl) GetBoard(ctx context.Context, actor Actor, boardID uuid.UUID) (*domain.Board, error) {
	board, m, err := s.loadBoardWithMembership(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	if !access.CanViewBoard(actor.Access(), m) {
		return nil, access.NewForbiddenError(actor.Role, "view board")
	}
	return board, nil
}

// ListBoards implements BoardService.ListBoards
func (s *boardServiceImpl) ListBoards(ctx context.Context, actor Actor) ([]*domain.Board, error) {
	if access.CanViewAllBoards(actor.Role) {
		return s.boardStore.List(ctx)
	}

	boards, err := s.boardStore.ListForUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	// Archived boards drop out of scoped listings.
	visible := boards[:0]
	for _, board := range boards {
		if !board.IsArchived {
			visible = append(visible, board)
		}
	}
	return visible, nil
}

// UpdateBoard implements BoardService.UpdateBoard
func (s *boardServiceImpl) UpdateBoard(
	ctx context.Context,
	actor Actor,
	boardID uuid.UUID,
	update BoardUpdate,
) (*domain.Board, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	board, m, err := s.loadBoardWithMembership(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	if !access.CanEditBoard(actor.Access(), m) {
		log.Debug("board edit denied",
			slog.String("board_id", boardID.String()),
			slog.String("user_id", actor.ID.String()),
			slog.String("role", string(actor.Role)))
		return nil, access.NewForbiddenError(actor.Role, "edit board")
	}

	if update.Name != nil {
		board.Name = *update.Name
	}
	if update.Description != nil {
		board.Description = *update.Description
	}
	if update.Color != nil {
		board.Color = *update.Color
	}
	if update.IsArchived != nil {
		board.IsArchived = *update.IsArchived
	}

	if err := s.boardStore.Update(ctx, board); err != nil {
		return nil, NewServiceError("board", "update", "failed to save board", err)
	}

	log.Info("board updated", slog.String("board_id", board.ID.String()))
	return board, nil
}

// DeleteBoard implements BoardService.DeleteBoard
func (s *boardServiceImpl) DeleteBoard(ctx context.Context, actor Actor, boardID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	board, err := s.boardStore.GetByID(ctx, boardID)
	if err != nil {
		return err
	}

	m := access.Membership{IsOwner: board.OwnerID == actor.ID}
	if !access.CanDeleteBoard(actor.Access(), m) {
		return access.NewForbiddenError(actor.Role, "delete board")
	}

	if err := s.boardStore.Delete(ctx, boardID); err != nil {
		return NewServiceError("board", "delete", "failed to delete board", err)
	}

	log.Info("board deleted",
		slog.String("board_id", boardID.String()),
		slog.String("deleted_by", actor.ID.String()))
	return nil
}

// AssignUser implements BoardService.AssignUser
func (s *boardServiceImpl) AssignUser(ctx context.Context, actor Actor, boardID, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	board, m, err := s.loadBoardWithMembership(ctx, actor, boardID)
	if err != nil {
		return err
	}
	if !access.CanAssignUsers(actor.Access(), m) {
		log.Debug("board assignment denied",
			slog.String("board_id", boardID.String()),
			slog.String("user_id", actor.ID.String()),
			slog.String("role", string(actor.Role)))
		return access.NewForbiddenError(actor.Role, "assign users to board")
	}

	// The target user must exist; a dangling assignment row is useless.
	if _, err := s.userStore.GetByID(ctx, userID); err != nil {
		return err
	}

	// Checked here rather than relying on the unique constraint alone,
	// so callers get the sentinel without a round trip through the
	// driver's duplicate-key mapping.
	assigned, err := s.boardStore.IsAssigned(ctx, board.ID, userID)
	if err != nil {
		return err
	}
	if assigned {
		return store.ErrAlreadyAssigned
	}

	assignment, err := domain.NewBoardAssignment(board.ID, userID)
	if err != nil {
		return err
	}

	if err := s.boardStore.AddAssignment(ctx, assignment); err != nil {
		return err
	}

	log.Info("user assigned to board",
		slog.String("board_id", boardID.String()),
		slog.String("assigned_user_id", userID.String()),
		slog.String("assigned_by", actor.ID.String()))
	return nil
}

// UnassignUser implements BoardService.UnassignUser
func (s *boardServiceImpl) UnassignUser(ctx context.Context, actor Actor, boardID, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, m, err := s.loadBoardWithMembership(ctx, actor, boardID)
	if err != nil {
		return err
	}
	if !access.CanAssignUsers(actor.Access(), m) {
		return access.NewForbiddenError(actor.Role, "remove users from board")
	}

	if err := s.boardStore.RemoveAssignment(ctx, boardID, userID); err != nil {
		return err
	}

	log.Info("user removed from board",
		slog.String("board_id", boardID.String()),
		slog.String("removed_user_id", userID.String()),
		slog.String("removed_by", actor.ID.String()))
	return nil
}

// ListAssignments implements BoardService.ListAssignments
func (s *boardServiceImpl) ListAssignments(ctx context.Context, actor Actor, boardID uuid.UUID) ([]*domain.BoardAssignment, error) {
	_, m, err := s.loadBoardWithMembership(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	if !access.CanViewBoard(actor.Access(), m) {
		return nil, access.NewForbiddenError(actor.Role, "view board")
	}
	return s.boardStore.ListAssignments(ctx, boardID)
}

// ListBoardStates implements BoardService.ListBoardStates
func (s *boardServiceImpl) ListBoardStates(ctx context.Context, actor Actor, boardID uuid.UUID) ([]domain.WorkflowState, error) {
	board, m, err := s.loadBoardWithMembership(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	if !access.CanViewBoard(actor.Access(), m) {
		return nil, access.NewForbiddenError(actor.Role, "view board")
	}
	return s.workflows.StatesByTemplate(ctx, board.TemplateID)
}

func (s *boardServiceImpl) loadBoardWithMembership(
	ctx context.Context,
	actor Actor,
	boardID uuid.UUID,
) (*domain.Board, access.Membership, error) {
	board, err := s.boardStore.GetByID(ctx, boardID)
	if err != nil {
		return nil, access.Membership{}, err
	}
	m, err := resolveMembership(ctx, s.boardStore, board, actor)
	if err != nil {
		return nil, access.Membership{}, err
	}
	return board, m, nil
}
