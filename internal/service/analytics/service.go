package analytics

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/domain"
	"github.com/sgt-project/sgt-api/internal/domain/access"
	"github.com/sgt-project/sgt-api/internal/platform/logger"
	"github.com/sgt-project/sgt-api/internal/service"
	"github.com/sgt-project/sgt-api/internal/store"
)

// Productivity windows are clamped to this range before computation.
const (
	MinWindowDays = 7
	MaxWindowDays = 365
)

// Service provides the read-only board metrics. Every query gates at
// board visibility for the acting user; within a visible board no
// per-field permission applies.
type Service interface {
	// Overview counts the board's tasks by workflow position.
	Overview(ctx context.Context, actor service.Actor, boardID uuid.UUID) (*OverviewReport, error)

	// Productivity measures completion throughput over the last
	// windowDays days, clamped to [MinWindowDays, MaxWindowDays].
	Productivity(ctx context.Context, actor service.Actor, boardID uuid.UUID, windowDays int) (*ProductivityReport, error)

	// Bottlenecks reports per-state congestion sorted by severity, then
	// by descending task count.
	Bottlenecks(ctx context.Context, actor service.Actor, boardID uuid.UUID) ([]BottleneckEntry, error)

	// Workload reports per-assignee load sorted by descending assigned
	// task count.
	Workload(ctx context.Context, actor service.Actor, boardID uuid.UUID) ([]WorkloadEntry, error)

	// TimeInStates reports the time-in-state approximation keyed by
	// state name.
	TimeInStates(ctx context.Context, actor service.Actor, boardID uuid.UUID) (map[string]StateTimeEntry, error)

	// DailyTrends buckets creations and completions per day over the
	// last days days, oldest first, ending with the current day.
	DailyTrends(ctx context.Context, actor service.Actor, boardID uuid.UUID, days int) ([]TrendEntry, error)

	// TasksByState counts tasks per state, optionally restricted to
	// tasks created within [start, end]. The end date is inclusive
	// through the last second of its day.
	TasksByState(ctx context.Context, actor service.Actor, boardID uuid.UUID, start, end *time.Time) ([]StateCountEntry, error)
}

// serviceImpl implements the Service interface
type serviceImpl struct {
	boardStore store.BoardStore
	taskStore  store.TaskStore
	workflows  store.WorkflowStore
	userStore  store.UserStore
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new analytics Service.
// It returns an error if any of the required dependencies are nil.
func NewService(
	boardStore store.BoardStore,
	taskStore store.TaskStore,
	workflows store.WorkflowStore,
	userStore store.UserStore,
	logger *slog.Logger,
) (Service, error) {
	if boardStore == nil {
		return nil, domain.NewValidationError("boardStore", "cannot be nil", domain.ErrValidation)
	}
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if workflows == nil {
		return nil, domain.NewValidationError("workflows", "cannot be nil", domain.ErrValidation)
	}
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		boardStore: boardStore,
		taskStore:  taskStore,
		workflows:  workflows,
		userStore:  userStore,
		logger:     logger.With(slog.String("component", "analytics_service")),
		now:        time.Now,
	}, nil
}

// snapshot is one consistent-enough read of a board's tasks and states.
// Analytics are not required to share a transaction with writers.
type snapshot struct {
	board  *domain.Board
	states []domain.WorkflowState
	tasks  []*domain.Task
}

func (s *serviceImpl) loadSnapshot(ctx context.Context, actor service.Actor, boardID uuid.UUID) (*snapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	board, err := s.boardStore.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}

	m := access.Membership{IsOwner: board.OwnerID == actor.ID}
	if !m.IsOwner {
		assigned, err := s.boardStore.IsAssigned(ctx, boardID, actor.ID)
		if err != nil {
			return nil, err
		}
		m.IsAssigned = assigned
	}
	if !access.CanViewBoard(actor.Access(), m) {
		log.Debug("analytics access denied",
			slog.String("board_id", boardID.String()),
			slog.String("user_id", actor.ID.String()),
			slog.String("role", string(actor.Role)))
		return nil, access.NewForbiddenError(actor.Role, "view board analytics")
	}

	states, err := s.workflows.StatesByTemplate(ctx, board.TemplateID)
	if err != nil {
		// A board whose template vanished still yields empty metrics
		// rather than an error.
		if errors.Is(err, store.ErrTemplateNotFound) {
			states = nil
		} else {
			return nil, err
		}
	}

	tasks, err := s.taskStore.List(ctx, store.TaskFilter{BoardID: &board.ID})
	if err != nil {
		return nil, err
	}

	return &snapshot{board: board, states: states, tasks: tasks}, nil
}

// Overview implements Service.Overview
func (s *serviceImpl) Overview(ctx context.Context, actor service.Actor, boardID uuid.UUID) (*OverviewReport, error) {
	snap, err := s.loadSnapshot(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	report := computeOverview(snap.tasks, snap.states, s.now())
	return &report, nil
}

// Productivity implements Service.Productivity
func (s *serviceImpl) Productivity(ctx context.Context, actor service.Actor, boardID uuid.UUID, windowDays int) (*ProductivityReport, error) {
	if windowDays < MinWindowDays {
		windowDays = MinWindowDays
	}
	if windowDays > MaxWindowDays {
		windowDays = MaxWindowDays
	}

	snap, err := s.loadSnapshot(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	report := computeProductivity(snap.tasks, snap.states, s.now(), windowDays)
	return &report, nil
}

// Bottlenecks implements Service.Bottlenecks
func (s *serviceImpl) Bottlenecks(ctx context.Context, actor service.Actor, boardID uuid.UUID) ([]BottleneckEntry, error) {
	snap, err := s.loadSnapshot(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	return computeBottlenecks(snap.tasks, snap.states, s.now()), nil
}

// Workload implements Service.Workload
func (s *serviceImpl) Workload(ctx context.Context, actor service.Actor, boardID uuid.UUID) ([]WorkloadEntry, error) {
	snap, err := s.loadSnapshot(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}

	users, err := s.resolveAssignees(ctx, snap.tasks)
	if err != nil {
		return nil, err
	}
	return computeWorkload(snap.tasks, snap.states, users, s.now()), nil
}

// TimeInStates implements Service.TimeInStates
func (s *serviceImpl) TimeInStates(ctx context.Context, actor service.Actor, boardID uuid.UUID) (map[string]StateTimeEntry, error) {
	snap, err := s.loadSnapshot(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	return computeTimeInStates(snap.tasks, snap.states, s.now()), nil
}

// DailyTrends implements Service.DailyTrends
func (s *serviceImpl) DailyTrends(ctx context.Context, actor service.Actor, boardID uuid.UUID, days int) ([]TrendEntry, error) {
	if days < 1 {
		days = 1
	}
	if days > MaxWindowDays {
		days = MaxWindowDays
	}

	snap, err := s.loadSnapshot(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}

	start := s.now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -(days - 1))
	return computeDailyTrends(snap.tasks, snap.states, start, days), nil
}

// TasksByState implements Service.TasksByState
func (s *serviceImpl) TasksByState(ctx context.Context, actor service.Actor, boardID uuid.UUID, start, end *time.Time) ([]StateCountEntry, error) {
	if start != nil && end != nil && end.Before(*start) {
		return nil, domain.ErrInvalidDateRange
	}

	snap, err := s.loadSnapshot(ctx, actor, boardID)
	if err != nil {
		return nil, err
	}
	return computeTasksByState(snap.tasks, snap.states, start, end), nil
}

// resolveAssignees loads the distinct assignees referenced by the tasks.
// A deleted user drops out of the map, and with it out of the workload
// report.
func (s *serviceImpl) resolveAssignees(ctx context.Context, tasks []*domain.Task) (map[uuid.UUID]*domain.User, error) {
	users := make(map[uuid.UUID]*domain.User)
	for _, t := range tasks {
		if t.AssignedToID == nil {
			continue
		}
		id := *t.AssignedToID
		if _, seen := users[id]; seen {
			continue
		}
		user, err := s.userStore.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		users[id] = user
	}
	return users, nil
}
