package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopping-cart-api/internal/logging"
	"github.com/shopping-cart-api/internal/model"
)

type contextKey string

const UserContextKey contextKey = "user"

const (
	msgNoToken   = "Authentication error. No token."
	msgAuthError = "Authentication error."
)

// TokenVerifier returns the user id a valid token was issued to.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// IdentityResolver loads the user a verified token refers to.
type IdentityResolver interface {
	Get(ctx context.Context, id string) (*model.User, error)
}

// AuthMiddleware guards routes behind a bearer token.
type AuthMiddleware struct {
	tokens TokenVerifier
	users  IdentityResolver
	log    logging.Logger
}

func NewAuthMiddleware(tokens TokenVerifier, users IdentityResolver, log logging.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
		log:    log.With("component", "auth"),
	}
}

// Authenticate verifies the bearer token on every request and attaches the
// resolved user, without its password, to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(w, msgNoToken)
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenStr == "" {
			unauthorized(w, msgNoToken)
			return
		}

		userID, err := m.tokens.Verify(tokenStr)
		if err != nil {
			m.log.Debug(r.Context(), "token rejected", "path", r.URL.Path, "error", err)
			unauthorized(w, msgAuthError)
			return
		}

		user, err := m.users.Get(r.Context(), userID)
		if err != nil || user == nil {
			m.log.Debug(r.Context(), "token user not resolved", "user_id", userID, "error", err)
			unauthorized(w, msgAuthError)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user.Public())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext returns the authenticated user, or nil.
func GetUserFromContext(ctx context.Context) *model.User {
	user, ok := ctx.Value(UserContextKey).(*model.User)
	if !ok {
		return nil
	}
	return user
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
