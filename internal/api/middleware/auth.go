package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sgt-project/sgt-api/internal/api/shared"
	"github.com/sgt-project/sgt-api/internal/redact"
	"github.com/sgt-project/sgt-api/internal/service"
	"github.com/sgt-project/sgt-api/internal/service/auth"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// Authenticate validates the Bearer token from the Authorization header
// and places the resulting actor in the request context. The role inside
// the token drives every downstream permission check.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), parts[1])
		if err != nil {
			switch err {
			case auth.ErrExpiredToken:
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case auth.ErrInvalidToken, auth.ErrWrongTokenType, auth.ErrTokenNotYetValid:
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				slog.Error("failed to validate token", "error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		actor := service.Actor{
			ID:       claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		}
		ctx := context.WithValue(r.Context(), shared.ActorContextKey, actor)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetActor extracts the authenticated actor from the request context.
// Returns the actor and a boolean indicating if it was found.
func GetActor(r *http.Request) (service.Actor, bool) {
	actor, ok := r.Context().Value(shared.ActorContextKey).(service.Actor)
	return actor, ok
}
