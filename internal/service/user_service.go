package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/domain"
	"github.com/sgt-project/sgt-api/internal/domain/access"
	"github.com/sgt-project/sgt-api/internal/platform/logger"
	"github.com/sgt-project/sgt-api/internal/service/auth"
	"github.com/sgt-project/sgt-api/internal/store"
)

// UserCreate holds the inputs for creating a user account.
type UserCreate struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      domain.Role
}

// UserUpdate holds the mutable user fields of a partial update. Nil
// fields are left unchanged.
type UserUpdate struct {
	Username  *string
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	Role      *domain.Role
}

// UserService provides user account management and credential verification.
// Account management is restricted to administrators.
type UserService interface {
	// Authenticate verifies a username/password pair and returns the user.
	// Returns auth.ErrInvalidCredentials when either part does not match;
	// the caller cannot distinguish a wrong password from an unknown user.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)

	// CreateUser creates a new account. Administrators only.
	CreateUser(ctx context.Context, actor Actor, input UserCreate) (*domain.User, error)

	// GetUser retrieves a user by ID. Users may fetch themselves; anything
	// else requires an administrator.
	GetUser(ctx context.Context, actor Actor, userID uuid.UUID) (*domain.User, error)

	// ListUsers returns all accounts. Any authenticated role may list
	// users, as assignment pickers need the catalog.
	ListUsers(ctx context.Context, actor Actor) ([]*domain.User, error)

	// UpdateUser applies a partial update to an account. Administrators only.
	UpdateUser(ctx context.Context, actor Actor, userID uuid.UUID, update UserUpdate) (*domain.User, error)

	// DeleteUser removes an account. Administrators only; self-deletion and
	// removing the last administrator are rejected.
	DeleteUser(ctx context.Context, actor Actor, userID uuid.UUID) error
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	db        *sql.DB
	userStore store.UserStore
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	db *sql.DB,
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) (UserService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if verifier == nil {
		return nil, domain.NewValidationError("verifier", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		db:        db,
		userStore: userStore,
		hasher:    hasher,
		verifier:  verifier,
		logger:    logger.With(slog.String("component", "user_service")),
	}, nil
}

// Authenticate implements UserService.Authenticate
func (s *userServiceImpl) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login attempt for unknown user", slog.String("username", username))
			return nil, auth.ErrInvalidCredentials
		}
		log.Error("failed to load user for authentication",
			slog.String("error", err.Error()),
			slog.String("username", username))
		return nil, err
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login attempt with wrong password", slog.String("username", username))
		return nil, auth.ErrInvalidCredentials
	}

	log.Info("user authenticated",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))
	return user, nil
}

// CreateUser implements UserService.CreateUser
func (s *userServiceImpl) CreateUser(ctx context.Context, actor Actor, input UserCreate) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actor.Role != domain.RoleAdministrador {
		return nil, access.NewForbiddenError(actor.Role, "create user")
	}

	user, err := domain.NewUser(
		input.Username,
		input.FirstName,
		input.LastName,
		input.Email,
		input.Password,
		input.Role,
	)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "create", "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	log.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)),
		slog.String("created_by", actor.ID.String()))
	return user, nil
}

// GetUser implements UserService.GetUser
func (s *userServiceImpl) GetUser(ctx context.Context, actor Actor, userID uuid.UUID) (*domain.User, error) {
	if actor.ID != userID && actor.Role != domain.RoleAdministrador {
		return nil, access.NewForbiddenError(actor.Role, "view user")
	}
	return s.userStore.GetByID(ctx, userID)
}

// ListUsers implements UserService.ListUsers
func (s *userServiceImpl) ListUsers(ctx context.Context, actor Actor) ([]*domain.User, error) {
	if !actor.Role.IsValid() {
		return nil, access.NewForbiddenError(actor.Role, "list users")
	}
	return s.userStore.List(ctx)
}

// UpdateUser implements UserService.UpdateUser
func (s *userServiceImpl) UpdateUser(
	ctx context.Context,
	actor Actor,
	userID uuid.UUID,
	update UserUpdate,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actor.Role != domain.RoleAdministrador {
		return nil, access.NewForbiddenError(actor.Role, "update user")
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Role != nil {
		if !update.Role.IsValid() {
			return nil, domain.ErrUnknownRole
		}
		// Demoting the last administrator would lock the system.
		if user.Role == domain.RoleAdministrador && *update.Role != domain.RoleAdministrador {
			if err := s.ensureOtherAdministrators(ctx, userID); err != nil {
				return nil, err
			}
		}
		user.Role = *update.Role
	}
	if update.Password != nil {
		// Validate length through the domain rules before hashing.
		user.Password = *update.Password
		if err := user.Validate(); err != nil {
			return nil, err
		}
		hashed, err := s.hasher.Hash(*update.Password)
		if err != nil {
			log.Error("failed to hash password", slog.String("error", err.Error()))
			return nil, NewServiceError("user", "update", "failed to hash password", err)
		}
		user.HashedPassword = hashed
		user.Password = ""
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	log.Info("user updated",
		slog.String("user_id", user.ID.String()),
		slog.String("updated_by", actor.ID.String()))
	return user, nil
}

// DeleteUser implements UserService.DeleteUser
func (s *userServiceImpl) DeleteUser(ctx context.Context, actor Actor, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actor.Role != domain.RoleAdministrador {
		return access.NewForbiddenError(actor.Role, "delete user")
	}
	if actor.ID == userID {
		return ErrSelfDeletion
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == domain.RoleAdministrador {
		if err := s.ensureOtherAdministrators(ctx, userID); err != nil {
			return err
		}
	}

	if err := s.userStore.Delete(ctx, userID); err != nil {
		return err
	}

	log.Info("user deleted",
		slog.String("user_id", userID.String()),
		slog.String("deleted_by", actor.ID.String()))
	return nil
}

// ensureOtherAdministrators fails with ErrLastAdministrator unless at
// least one administrator other than excludeID exists.
func (s *userServiceImpl) ensureOtherAdministrators(ctx context.Context, excludeID uuid.UUID) error {
	users, err := s.userStore.List(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Role == domain.RoleAdministrador && u.ID != excludeID {
			return nil
		}
	}
	return ErrLastAdministrator
}
