package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/domain"
	"github.com/sgt-project/sgt-api/internal/domain/access"
	"github.com/sgt-project/sgt-api/internal/service"
	"github.com/sgt-project/sgt-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type boardFixture struct {
	svc      service.BoardService
	boards   *fakeBoardStore
	users    *fakeUserStore
	template *domain.WorkflowTemplate
}

func newBoardFixture(t *testing.T) *boardFixture {
	t.Helper()

	boards := newFakeBoardStore()
	users := newFakeUserStore()
	workflows := newFakeWorkflowStore()

	template, err := domain.NewWorkflowTemplate("Flujo básico", []string{"Por Hacer", "En Progreso", "Hecho"})
	require.NoError(t, err)
	require.NoError(t, workflows.Create(context.Background(), template))

	svc, err := service.NewBoardService(newTestDB(t), boards, users, workflows, testLogger())
	require.NoError(t, err)

	return &boardFixture{svc: svc, boards: boards, users: users, template: template}
}

func (f *boardFixture) addUser(t *testing.T, username string, role domain.Role) *domain.User {
	t.Helper()
	u, err := domain.NewUser(username, "Ana", "Torres", username+"@example.com", "contraseña8", role)
	require.NoError(t, err)
	u.HashedPassword = "hash"
	u.Password = ""
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *boardFixture) createBoard(t *testing.T, owner service.Actor) *domain.Board {
	t.Helper()
	board, err := f.svc.CreateBoard(context.Background(), owner, "Soporte", "Cola de tickets", "#1C6EA4", f.template.ID)
	require.NoError(t, err)
	return board
}

func managerActor() service.Actor {
	return service.Actor{ID: uuid.New(), Username: "mgarcia", Role: domain.RoleManager}
}

func TestCreateBoard(t *testing.T) {
	f := newBoardFixture(t)
	owner := managerActor()

	board := f.createBoard(t, owner)
	assert.Equal(t, owner.ID, board.OwnerID)
	assert.Equal(t, f.template.ID, board.TemplateID)
	assert.False(t, board.IsArchived)

	stored, err := f.boards.GetByID(context.Background(), board.ID)
	require.NoError(t, err)
	assert.Equal(t, board.Name, stored.Name)
}

func TestCreateBoardUnknownTemplate(t *testing.T) {
	f := newBoardFixture(t)

	_, err := f.svc.CreateBoard(context.Background(), managerActor(), "Soporte", "", "", uuid.New())
	assert.ErrorIs(t, err, store.ErrTemplateNotFound)
}

func TestCreateBoardDeniedForSupervisor(t *testing.T) {
	f := newBoardFixture(t)
	supervisor := service.Actor{ID: uuid.New(), Username: "srojas", Role: domain.RoleSupervisor}

	_, err := f.svc.CreateBoard(context.Background(), supervisor, "Soporte", "", "", f.template.ID)
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestGetBoardVisibility(t *testing.T) {
	f := newBoardFixture(t)
	owner := managerActor()
	board := f.createBoard(t, owner)

	t.Run("owner", func(t *testing.T) {
		got, err := f.svc.GetBoard(context.Background(), owner, board.ID)
		require.NoError(t, err)
		assert.Equal(t, board.ID, got.ID)
	})

	t.Run("assigned member", func(t *testing.T) {
		user := f.addUser(t, "jlopez", domain.RoleAgente)
		require.NoError(t, f.svc.AssignUser(context.Background(), owner, board.ID, user.ID))
		member := service.Actor{ID: user.ID, Username: user.Username, Role: user.Role}

		got, err := f.svc.GetBoard(context.Background(), member, board.ID)
		require.NoError(t, err)
		assert.Equal(t, board.ID, got.ID)
	})

	t.Run("non-member", func(t *testing.T) {
		outsider := service.Actor{ID: uuid.New(), Username: "otro", Role: domain.RoleManager}
		_, err := f.svc.GetBoard(context.Background(), outsider, board.ID)
		assert.ErrorIs(t, err, access.ErrForbidden)
	})

	t.Run("administrator sees any board", func(t *testing.T) {
		admin := service.Actor{ID: uuid.New(), Username: "root", Role: domain.RoleAdministrador}
		_, err := f.svc.GetBoard(context.Background(), admin, board.ID)
		require.NoError(t, err)
	})
}

func TestListBoardsExcludesArchivedForScopedRoles(t *testing.T) {
	f := newBoardFixture(t)
	owner := managerActor()
	active := f.createBoard(t, owner)

	archived := f.createBoard(t, owner)
	hide := true
	_, err := f.svc.UpdateBoard(context.Background(), owner, archived.ID, service.BoardUpdate{IsArchived: &hide})
	require.NoError(t, err)

	got, err := f.svc.ListBoards(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, active.ID, got[0].ID)

	admin := service.Actor{ID: uuid.New(), Username: "root", Role: domain.RoleAdministrador}
	all, err := f.svc.ListBoards(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateBoardPartial(t *testing.T) {
	f := newBoardFixture(t)
	owner := managerActor()
	board := f.createBoard(t, owner)

	name := "Soporte N2"
	got, err := f.svc.UpdateBoard(context.Background(), owner, board.ID, service.BoardUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Soporte N2", got.Name)
	assert.Equal(t, board.Description, got.Description)
	assert.Equal(t, board.Color, got.Color)
}

func TestDeleteBoard(t *testing.T) {
	f := newBoardFixture(t)
	owner := managerActor()
	board := f.createBoard(t, owner)

	t.Run("other manager denied", func(t *testing.T) {
		other := managerActor()
		err := f.svc.DeleteBoard(context.Background(), other, board.ID)
		assert.ErrorIs(t, err, access.ErrForbidden)
	})

	t.Run("owner deletes", func(t *testing.T) {
		require.NoError(t, f.svc.DeleteBoard(context.Background(), owner, board.ID))
		_, err := f.boards.GetByID(context.Background(), board.ID)
		assert.ErrorIs(t, err, store.ErrBoardNotFound)
	})
}

func TestAssignUser(t *testing.T) {
	f := newBoardFixture(t)
	owner := managerActor()
	board := f.createBoard(t, owner)
	target := f.addUser(t, "jlopez", domain.RoleAgente)

	t.Run("owner assigns", func(t *testing.T) {
		require.NoError(t, f.svc.AssignUser(context.Background(), owner, board.ID, target.ID))
		assigned, err := f.boards.IsAssigned(context.Background(), board.ID, target.ID)
		require.NoError(t, err)
		assert.True(t, assigned)
	})

	t.Run("duplicate assignment", func(t *testing.T) {
		before := f.boards.addAssignmentCalls
		err := f.svc.AssignUser(context.Background(), owner, board.ID, target.ID)
		assert.ErrorIs(t, err, store.ErrAlreadyAssigned)
		// Caught before the insert, not bounced off the unique
		// constraint.
		assert.Equal(t, before, f.boards.addAssignmentCalls)
	})

	t.Run("unknown target user", func(t *testing.T) {
		err := f.svc.AssignUser(context.Background(), owner, board.ID, uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("manager without ownership denied", func(t *testing.T) {
		other := f.addUser(t, "pmora", domain.RoleManager)
		otherActor := service.Actor{ID: other.ID, Username: other.Username, Role: other.Role}
		require.NoError(t, f.svc.AssignUser(context.Background(), owner, board.ID, other.ID))

		// Being assigned to the board is not enough: managers manage
		// membership only on boards they own.
		err := f.svc.AssignUser(context.Background(), otherActor, board.ID, f.addUser(t, "nuevo", domain.RoleAgente).ID)
		assert.ErrorIs(t, err, access.ErrForbidden)
	})

	t.Run("assigned supervisor may assign", func(t *testing.T) {
		sup := f.addUser(t, "srojas", domain.RoleSupervisor)
		require.NoError(t, f.svc.AssignUser(context.Background(), owner, board.ID, sup.ID))
		supActor := service.Actor{ID: sup.ID, Username: sup.Username, Role: sup.Role}

		extra := f.addUser(t, "extra", domain.RoleAgente)
		require.NoError(t, f.svc.AssignUser(context.Background(), supActor, board.ID, extra.ID))
	})
}

func TestUnassignUser(t *testing.T) {
	f := newBoardFixture(t)
	owner := managerActor()
	board := f.createBoard(t, owner)
	target := f.addUser(t, "jlopez", domain.RoleAgente)
	require.NoError(t, f.svc.AssignUser(context.Background(), owner, board.ID, target.ID))

	require.NoError(t, f.svc.UnassignUser(context.Background(), owner, board.ID, target.ID))
	assigned, err := f.boards.IsAssigned(context.Background(), board.ID, target.ID)
	require.NoError(t, err)
	assert.False(t, assigned)

	err = f.svc.UnassignUser(context.Background(), owner, board.ID, target.ID)
	assert.ErrorIs(t, err, store.ErrAssignmentNotFound)
}

func TestListBoardStates(t *testing.T) {
	f := newBoardFixture(t)
	owner := managerActor()
	board := f.createBoard(t, owner)

	got, err := f.svc.ListBoardStates(context.Background(), owner, board.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Por Hacer", got[0].Name)
	assert.Equal(t, "Hecho", got[2].Name)
}
