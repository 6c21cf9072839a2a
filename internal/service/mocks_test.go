package service_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/domain"
	"github.com/sgt-project/sgt-api/internal/store"
	"github.com/stretchr/testify/require"
)

// The services wrap every mutation in store.RunInTransaction against a
// real *sql.DB handle. The stub driver below gives the tests such a
// handle whose transactions trivially succeed; the fake stores ignore
// the *sql.Tx entirely.

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func init() {
	sql.Register("servicetest", stubDriver{})
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("servicetest", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserStore is an in-memory store.UserStore.
type fakeUserStore struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return store.ErrUsernameExists
		}
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) List(ctx context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(f.users))
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *fakeUserStore) Update(ctx context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) WithTx(tx *sql.Tx) store.UserStore { return f }

// fakeBoardStore is an in-memory store.BoardStore.
type fakeBoardStore struct {
	boards      map[uuid.UUID]*domain.Board
	assignments []*domain.BoardAssignment

	addAssignmentCalls int
}

func newFakeBoardStore() *fakeBoardStore {
	return &fakeBoardStore{boards: make(map[uuid.UUID]*domain.Board)}
}

func (f *fakeBoardStore) Create(ctx context.Context, board *domain.Board) error {
	cp := *board
	f.boards[board.ID] = &cp
	return nil
}

func (f *fakeBoardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	b, ok := f.boards[id]
	if !ok {
		return nil, store.ErrBoardNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBoardStore) List(ctx context.Context) ([]*domain.Board, error) {
	out := make([]*domain.Board, 0, len(f.boards))
	for _, b := range f.boards {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeBoardStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	var out []*domain.Board
	for _, b := range f.boards {
		if b.OwnerID == userID {
			cp := *b
			out = append(out, &cp)
			continue
		}
		for _, a := range f.assignments {
			if a.BoardID == b.ID && a.UserID == userID {
				cp := *b
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeBoardStore) Update(ctx context.Context, board *domain.Board) error {
	if _, ok := f.boards[board.ID]; !ok {
		return store.ErrBoardNotFound
	}
	cp := *board
	f.boards[board.ID] = &cp
	return nil
}

func (f *fakeBoardStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.boards[id]; !ok {
		return store.ErrBoardNotFound
	}
	delete(f.boards, id)
	kept := f.assignments[:0]
	for _, a := range f.assignments {
		if a.BoardID != id {
			kept = append(kept, a)
		}
	}
	f.assignments = kept
	return nil
}

func (f *fakeBoardStore) AddAssignment(ctx context.Context, assignment *domain.BoardAssignment) error {
	f.addAssignmentCalls++
	for _, a := range f.assignments {
		if a.BoardID == assignment.BoardID && a.UserID == assignment.UserID {
			return store.ErrAlreadyAssigned
		}
	}
	cp := *assignment
	f.assignments = append(f.assignments, &cp)
	return nil
}

func (f *fakeBoardStore) RemoveAssignment(ctx context.Context, boardID, userID uuid.UUID) error {
	for i, a := range f.assignments {
		if a.BoardID == boardID && a.UserID == userID {
			f.assignments = append(f.assignments[:i], f.assignments[i+1:]...)
			return nil
		}
	}
	return store.ErrAssignmentNotFound
}

func (f *fakeBoardStore) ListAssignments(ctx context.Context, boardID uuid.UUID) ([]*domain.BoardAssignment, error) {
	var out []*domain.BoardAssignment
	for _, a := range f.assignments {
		if a.BoardID == boardID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeBoardStore) IsAssigned(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	for _, a := range f.assignments {
		if a.BoardID == boardID && a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBoardStore) WithTx(tx *sql.Tx) store.BoardStore { return f }

// fakeTaskStore is an in-memory store.TaskStore.
type fakeTaskStore struct {
	tasks map[uuid.UUID]*domain.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func copyTask(t *domain.Task) *domain.Task {
	cp := *t
	cp.Record = append([]domain.RecordEntry(nil), t.Record...)
	cp.CustomFields = make(map[string]string, len(t.CustomFields))
	for k, v := range t.CustomFields {
		cp.CustomFields[k] = v
	}
	return &cp
}

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	f.tasks[task.ID] = copyTask(task)
	return nil
}

func (f *fakeTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return copyTask(t), nil
}

func (f *fakeTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	out := []*domain.Task{}
	for _, t := range f.tasks {
		if filter.BoardID != nil && t.BoardID != *filter.BoardID {
			continue
		}
		if filter.StateID != nil && t.StateID != *filter.StateID {
			continue
		}
		if filter.AssignedToID != nil && (t.AssignedToID == nil || *t.AssignedToID != *filter.AssignedToID) {
			continue
		}
		if filter.CreatedByID != nil && t.CreatedByID != *filter.CreatedByID {
			continue
		}
		if filter.BoardIDs != nil {
			found := false
			for _, id := range filter.BoardIDs {
				if t.BoardID == id {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, copyTask(t))
	}
	return out, nil
}

func (f *fakeTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	f.tasks[task.ID] = copyTask(task)
	return nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return f }

// fakeWorkflowStore is an in-memory store.WorkflowStore.
type fakeWorkflowStore struct {
	templates map[uuid.UUID]*domain.WorkflowTemplate
}

func newFakeWorkflowStore() *fakeWorkflowStore {
	return &fakeWorkflowStore{templates: make(map[uuid.UUID]*domain.WorkflowTemplate)}
}

func (f *fakeWorkflowStore) Create(ctx context.Context, template *domain.WorkflowTemplate) error {
	cp := *template
	cp.States = append([]domain.WorkflowState(nil), template.States...)
	f.templates[template.ID] = &cp
	return nil
}

func (f *fakeWorkflowStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkflowTemplate, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, store.ErrTemplateNotFound
	}
	cp := *t
	cp.States = append([]domain.WorkflowState(nil), t.States...)
	return &cp, nil
}

func (f *fakeWorkflowStore) List(ctx context.Context) ([]*domain.WorkflowTemplate, error) {
	out := make([]*domain.WorkflowTemplate, 0, len(f.templates))
	for _, t := range f.templates {
		cp := *t
		cp.States = append([]domain.WorkflowState(nil), t.States...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeWorkflowStore) StatesByTemplate(ctx context.Context, templateID uuid.UUID) ([]domain.WorkflowState, error) {
	t, ok := f.templates[templateID]
	if !ok {
		return nil, store.ErrTemplateNotFound
	}
	return append([]domain.WorkflowState(nil), t.States...), nil
}

func (f *fakeWorkflowStore) GetState(ctx context.Context, id uuid.UUID) (*domain.WorkflowState, error) {
	for _, t := range f.templates {
		for i := range t.States {
			if t.States[i].ID == id {
				cp := t.States[i]
				return &cp, nil
			}
		}
	}
	return nil, store.ErrStateNotFound
}

func (f *fakeWorkflowStore) WithTx(tx *sql.Tx) store.WorkflowStore { return f }
