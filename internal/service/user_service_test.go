package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/domain"
	"github.com/sgt-project/sgt-api/internal/domain/access"
	"github.com/sgt-project/sgt-api/internal/service"
	"github.com/sgt-project/sgt-api/internal/service/auth"
	"github.com/sgt-project/sgt-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePasswordHasher avoids bcrypt cost in tests; "authentication"
// compares the reversible fake hash.
type fakePasswordHasher struct{}

func (fakePasswordHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakePasswordHasher) Compare(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type userFixture struct {
	svc   service.UserService
	users *fakeUserStore
	admin service.Actor
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	users := newFakeUserStore()
	hasher := fakePasswordHasher{}

	svc, err := service.NewUserService(newTestDB(t), users, hasher, hasher, testLogger())
	require.NoError(t, err)

	f := &userFixture{svc: svc, users: users}

	admin, err := f.svc.CreateUser(context.Background(), service.Actor{ID: uuid.New(), Role: domain.RoleAdministrador}, service.UserCreate{
		Username:  "root",
		FirstName: "Rosa",
		LastName:  "Admin",
		Email:     "root@example.com",
		Password:  "secreto123",
		Role:      domain.RoleAdministrador,
	})
	require.NoError(t, err)
	f.admin = service.Actor{ID: admin.ID, Username: admin.Username, Role: admin.Role}
	return f
}

func (f *userFixture) createUser(t *testing.T, username string, role domain.Role) *domain.User {
	t.Helper()
	u, err := f.svc.CreateUser(context.Background(), f.admin, service.UserCreate{
		Username:  username,
		FirstName: "Juan",
		LastName:  "Pérez",
		Email:     username + "@example.com",
		Password:  "secreto123",
		Role:      role,
	})
	require.NoError(t, err)
	return u
}

func TestCreateUser(t *testing.T) {
	f := newUserFixture(t)

	t.Run("hashes password before storing", func(t *testing.T) {
		u := f.createUser(t, "jlopez", domain.RoleAgente)
		assert.Empty(t, u.Password)
		assert.Equal(t, "hashed:secreto123", u.HashedPassword)

		stored, err := f.users.GetByID(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, "hashed:secreto123", stored.HashedPassword)
	})

	t.Run("non-admin denied", func(t *testing.T) {
		manager := service.Actor{ID: uuid.New(), Username: "mgarcia", Role: domain.RoleManager}
		_, err := f.svc.CreateUser(context.Background(), manager, service.UserCreate{
			Username:  "nuevo",
			FirstName: "N",
			LastName:  "U",
			Email:     "nuevo@example.com",
			Password:  "secreto123",
			Role:      domain.RoleAgente,
		})
		assert.ErrorIs(t, err, access.ErrForbidden)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := f.svc.CreateUser(context.Background(), f.admin, service.UserCreate{
			Username:  "raro",
			FirstName: "R",
			LastName:  "R",
			Email:     "raro@example.com",
			Password:  "secreto123",
			Role:      domain.Role("Jefe"),
		})
		assert.ErrorIs(t, err, domain.ErrUnknownRole)
	})

	t.Run("duplicate username", func(t *testing.T) {
		f.createUser(t, "dup", domain.RoleAgente)
		_, err := f.svc.CreateUser(context.Background(), f.admin, service.UserCreate{
			Username:  "dup",
			FirstName: "D",
			LastName:  "D",
			Email:     "otra@example.com",
			Password:  "secreto123",
			Role:      domain.RoleAgente,
		})
		assert.ErrorIs(t, err, store.ErrUsernameExists)
	})
}

func TestAuthenticate(t *testing.T) {
	f := newUserFixture(t)
	f.createUser(t, "jlopez", domain.RoleAgente)

	t.Run("valid credentials", func(t *testing.T) {
		u, err := f.svc.Authenticate(context.Background(), "jlopez", "secreto123")
		require.NoError(t, err)
		assert.Equal(t, "jlopez", u.Username)
		assert.Equal(t, domain.RoleAgente, u.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.svc.Authenticate(context.Background(), "jlopez", "equivocada")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown user maps to the same error", func(t *testing.T) {
		_, err := f.svc.Authenticate(context.Background(), "fantasma", "secreto123")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestGetUser(t *testing.T) {
	f := newUserFixture(t)
	u := f.createUser(t, "jlopez", domain.RoleAgente)

	t.Run("self", func(t *testing.T) {
		self := service.Actor{ID: u.ID, Username: u.Username, Role: u.Role}
		got, err := f.svc.GetUser(context.Background(), self, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("admin", func(t *testing.T) {
		_, err := f.svc.GetUser(context.Background(), f.admin, u.ID)
		require.NoError(t, err)
	})

	t.Run("other non-admin denied", func(t *testing.T) {
		other := service.Actor{ID: uuid.New(), Username: "otro", Role: domain.RoleManager}
		_, err := f.svc.GetUser(context.Background(), other, u.ID)
		assert.ErrorIs(t, err, access.ErrForbidden)
	})
}

func TestUpdateUser(t *testing.T) {
	f := newUserFixture(t)

	t.Run("partial update", func(t *testing.T) {
		u := f.createUser(t, "jlopez", domain.RoleAgente)
		email := "nuevo@example.com"
		role := domain.RoleSupervisor
		got, err := f.svc.UpdateUser(context.Background(), f.admin, u.ID, service.UserUpdate{
			Email: &email,
			Role:  &role,
		})
		require.NoError(t, err)
		assert.Equal(t, "nuevo@example.com", got.Email)
		assert.Equal(t, domain.RoleSupervisor, got.Role)
		assert.Equal(t, u.Username, got.Username)
		assert.Equal(t, u.HashedPassword, got.HashedPassword)
	})

	t.Run("password change rehashes", func(t *testing.T) {
		u := f.createUser(t, "pmora", domain.RoleAgente)
		pw := "nuevaClave9"
		got, err := f.svc.UpdateUser(context.Background(), f.admin, u.ID, service.UserUpdate{Password: &pw})
		require.NoError(t, err)
		assert.Equal(t, "hashed:nuevaClave9", got.HashedPassword)
		assert.Empty(t, got.Password)
	})

	t.Run("short password rejected", func(t *testing.T) {
		u := f.createUser(t, "corto", domain.RoleAgente)
		pw := "corta"
		_, err := f.svc.UpdateUser(context.Background(), f.admin, u.ID, service.UserUpdate{Password: &pw})
		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
	})

	t.Run("demoting the last administrator", func(t *testing.T) {
		role := domain.RoleManager
		_, err := f.svc.UpdateUser(context.Background(), f.admin, f.admin.ID, service.UserUpdate{Role: &role})
		assert.ErrorIs(t, err, service.ErrLastAdministrator)
	})

	t.Run("non-admin denied", func(t *testing.T) {
		u := f.createUser(t, "srojas", domain.RoleSupervisor)
		name := "Sonia"
		actor := service.Actor{ID: u.ID, Username: u.Username, Role: u.Role}
		_, err := f.svc.UpdateUser(context.Background(), actor, u.ID, service.UserUpdate{FirstName: &name})
		assert.ErrorIs(t, err, access.ErrForbidden)
	})
}

func TestDeleteUser(t *testing.T) {
	f := newUserFixture(t)

	t.Run("admin deletes user", func(t *testing.T) {
		u := f.createUser(t, "jlopez", domain.RoleAgente)
		require.NoError(t, f.svc.DeleteUser(context.Background(), f.admin, u.ID))
		_, err := f.users.GetByID(context.Background(), u.ID)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("self-deletion rejected", func(t *testing.T) {
		err := f.svc.DeleteUser(context.Background(), f.admin, f.admin.ID)
		assert.ErrorIs(t, err, service.ErrSelfDeletion)
	})

	t.Run("last administrator protected", func(t *testing.T) {
		second, err := f.svc.CreateUser(context.Background(), f.admin, service.UserCreate{
			Username:  "admin2",
			FirstName: "A",
			LastName:  "Dos",
			Email:     "admin2@example.com",
			Password:  "secreto123",
			Role:      domain.RoleAdministrador,
		})
		require.NoError(t, err)
		secondActor := service.Actor{ID: second.ID, Username: second.Username, Role: second.Role}

		// With two administrators either may remove the other.
		require.NoError(t, f.svc.DeleteUser(context.Background(), secondActor, f.admin.ID))

		// A token can outlive its account. Admin claims from a deleted
		// account must not be able to remove the one remaining
		// administrator.
		stale := service.Actor{ID: f.admin.ID, Username: f.admin.Username, Role: domain.RoleAdministrador}
		err = f.svc.DeleteUser(context.Background(), stale, second.ID)
		assert.ErrorIs(t, err, service.ErrLastAdministrator)
	})

	t.Run("non-admin denied", func(t *testing.T) {
		u := f.createUser(t, "mgarcia", domain.RoleManager)
		actor := service.Actor{ID: u.ID, Username: u.Username, Role: u.Role}
		err := f.svc.DeleteUser(context.Background(), actor, uuid.New())
		assert.ErrorIs(t, err, access.ErrForbidden)
	})
}
