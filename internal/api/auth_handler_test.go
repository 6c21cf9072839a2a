package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgt-project/sgt-api/internal/domain"
	"github.com/sgt-project/sgt-api/internal/service"
	"github.com/sgt-project/sgt-api/internal/service/auth"
)

// fakeUserService serves a single account.
type fakeUserService struct {
	user *domain.User
	err  error
}

func (f *fakeUserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserService) CreateUser(ctx context.Context, actor service.Actor, input service.UserCreate) (*domain.User, error) {
	return f.user, f.err
}

func (f *fakeUserService) GetUser(ctx context.Context, actor service.Actor, userID uuid.UUID) (*domain.User, error) {
	return f.user, f.err
}

func (f *fakeUserService) ListUsers(ctx context.Context, actor service.Actor) ([]*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*domain.User{f.user}, nil
}

func (f *fakeUserService) UpdateUser(ctx context.Context, actor service.Actor, userID uuid.UUID, update service.UserUpdate) (*domain.User, error) {
	return f.user, f.err
}

func (f *fakeUserService) DeleteUser(ctx context.Context, actor service.Actor, userID uuid.UUID) error {
	return f.err
}

// staticJWTService issues fixed token strings.
type staticJWTService struct {
	accessToken  string
	refreshToken string
	claims       *auth.Claims
	validateErr  error
}

func (s *staticJWTService) GenerateToken(ctx context.Context, identity auth.Identity) (string, error) {
	return s.accessToken, nil
}

func (s *staticJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return s.claims, nil
}

func (s *staticJWTService) GenerateRefreshToken(ctx context.Context, identity auth.Identity) (string, error) {
	return s.refreshToken, nil
}

func (s *staticJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return s.claims, nil
}

func TestLoginSuccess(t *testing.T) {
	user := &domain.User{
		ID:       uuid.New(),
		Username: "mgarcia",
		Role:     domain.RoleManager,
	}
	handler := NewAuthHandler(
		&fakeUserService{user: user},
		&staticJWTService{accessToken: "access-jwt", refreshToken: "refresh-jwt"},
	)

	body := bytes.NewBufferString(`{"username": "mgarcia", "password": "contraseña8"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, user.ID, resp.UserID)
	assert.Equal(t, "mgarcia", resp.Username)
	assert.Equal(t, domain.RoleManager, resp.Role)
	assert.Equal(t, "access-jwt", resp.AccessToken)
	assert.Equal(t, "refresh-jwt", resp.RefreshToken)
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler := NewAuthHandler(
		&fakeUserService{err: auth.ErrInvalidCredentials},
		&staticJWTService{},
	)

	body := bytes.NewBufferString(`{"username": "mgarcia", "password": "wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRequiresCredentials(t *testing.T) {
	handler := NewAuthHandler(&fakeUserService{}, &staticJWTService{})

	body := bytes.NewBufferString(`{"username": "mgarcia"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshTokenIssuesNewPair(t *testing.T) {
	claims := &auth.Claims{
		UserID:   uuid.New(),
		Username: "mgarcia",
		Role:     domain.RoleManager,
	}
	handler := NewAuthHandler(
		&fakeUserService{},
		&staticJWTService{accessToken: "new-access", refreshToken: "new-refresh", claims: claims},
	)

	body := bytes.NewBufferString(`{"refresh_token": "old-refresh"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", body)
	rec := httptest.NewRecorder()

	handler.RefreshToken(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RefreshTokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "new-access", resp.AccessToken)
	assert.Equal(t, "new-refresh", resp.RefreshToken)
}

func TestRefreshTokenRejectsExpired(t *testing.T) {
	handler := NewAuthHandler(
		&fakeUserService{},
		&staticJWTService{validateErr: auth.ErrExpiredRefreshToken},
	)

	body := bytes.NewBufferString(`{"refresh_token": "stale"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", body)
	rec := httptest.NewRecorder()

	handler.RefreshToken(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeReturnsOwnAccount(t *testing.T) {
	user := &domain.User{
		ID:       uuid.New(),
		Username: "mgarcia",
		Email:    "mgarcia@example.com",
		Role:     domain.RoleManager,
	}
	handler := NewAuthHandler(&fakeUserService{user: user}, &staticJWTService{})

	req := asActor(
		httptest.NewRequest(http.MethodGet, "/api/auth/me", nil),
		service.Actor{ID: user.ID, Username: user.Username, Role: user.Role},
	)
	rec := httptest.NewRecorder()

	handler.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp UserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, user.ID, resp.ID)
	assert.Equal(t, "mgarcia", resp.Username)
}
