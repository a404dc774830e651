package http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pulsevideo/pulse/internal/adapter/http/ratelimit"
	"github.com/pulsevideo/pulse/internal/domain"
)

// AuthService is the slice of the auth layer the HTTP adapter needs.
type AuthService interface {
	Register(ctx context.Context, email, password, name, tenantID string, role domain.Role) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
	ListUsers(ctx context.Context, tenantID string) ([]*domain.User, error)
	ChangeRole(ctx context.Context, tenantID, userID string, role domain.Role) (*domain.User, error)
	DeleteUser(ctx context.Context, actor *domain.User, userID string) error
}

type contextKey string

const userContextKey contextKey = "user"

func userFrom(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userContextKey).(*domain.User)
	return user
}

// AuthMiddleware resolves the bearer token into a user. The token travels
// in the Authorization header, or in a token query parameter for
// EventSource clients that cannot set headers.
func AuthMiddleware(authSvc AuthService, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeMessage(w, http.StatusUnauthorized, "missing token")
			return
		}

		user, err := authSvc.ValidateToken(r.Context(), token)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// RequireAdmin rejects non-admin users with 403.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r)
		if user == nil || user.Role != domain.RoleAdmin {
			writeMessage(w, http.StatusForbidden, "admin access required")
			return
		}
		next(w, r)
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	TenantID string `json:"tenantId"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func RegisterHandler(authSvc AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, token, err := authSvc.Register(r.Context(), req.Email, req.Password, req.Name, req.TenantID, domain.Role(req.Role))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
	}
}

func LoginHandler(authSvc AuthService, limiter *ratelimit.LoginRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := clientIP(r)
		if allowed, retryAfter := limiter.Check(clientID); !allowed {
			log.Warn().Str("client", clientID).Dur("retry_after", retryAfter).Msg("login rate limited")
			writeMessage(w, http.StatusTooManyRequests, "too many login attempts")
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, token, err := authSvc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		limiter.Reset(clientID)
		writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
	}
}

// MeHandler returns the authenticated user behind the presented token.
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]*domain.User{"user": userFrom(r)})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx != -1 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
