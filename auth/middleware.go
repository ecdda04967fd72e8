package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/feedbackflow/backend/repository"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
)

const RoleAdmin = "ADMIN"

// Middleware guards routes with bearer-token authentication and checks
// tokens against the logout blacklist.
type Middleware struct {
	manager *Manager
	tokens  repository.TokenRepository
	log     *zap.Logger
}

func NewMiddleware(manager *Manager, tokens repository.TokenRepository, log *zap.Logger) *Middleware {
	return &Middleware{manager: manager, tokens: tokens, log: log}
}

// RequireAuth rejects requests without a valid, non-blacklisted token.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.authenticate(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(m.contextWithClaims(r.Context(), claims)))
	})
}

// OptionalAuth attaches user identity when a valid token is present but
// lets anonymous requests through untouched.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := m.authenticate(r); ok {
			r = r.WithContext(m.contextWithClaims(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects authenticated users without the admin role. It
// must be wrapped inside RequireAuth.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RoleFrom(r.Context()) != RoleAdmin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) authenticate(r *http.Request) (*Claims, bool) {
	raw := bearerToken(r)
	if raw == "" {
		return nil, false
	}

	claims, err := m.manager.Parse(raw)
	if err != nil {
		return nil, false
	}

	blacklisted, err := m.tokens.ExistsByHash(HashToken(raw))
	if err != nil {
		m.log.Error("token blacklist lookup failed", zap.Error(err))
		return nil, false
	}
	if blacklisted {
		return nil, false
	}
	return claims, true
}

func (m *Middleware) contextWithClaims(ctx context.Context, claims *Claims) context.Context {
	if id, err := claims.UserID(); err == nil {
		ctx = context.WithValue(ctx, userIDKey, id)
	}
	return context.WithValue(ctx, roleKey, claims.Role)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// UserIDFrom returns the authenticated user's ID, or ok=false for
// anonymous requests.
func UserIDFrom(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey).(uint)
	return id, ok
}

func RoleFrom(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}
