package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulsevideo/pulse/internal/domain"
	"github.com/pulsevideo/pulse/internal/port"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrInvalidCreds  = errors.New("invalid credentials")
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrWeakPassword  = errors.New("password must be at least 8 characters")
	ErrSelfDelete    = errors.New("admins cannot delete themselves")
)

const tokenTTL = time.Hour

// Claims is the JWT payload issued at login. Tenant and role travel inside
// the token so every request is scoped without a second lookup.
type Claims struct {
	TenantID string      `json:"tenantId"`
	Role     domain.Role `json:"role"`
	Email    string      `json:"email"`
	jwt.RegisteredClaims
}

type AuthService struct {
	store  port.UserStore
	secret []byte
}

func NewAuthService(store port.UserStore, secret string) *AuthService {
	return &AuthService{
		store:  store,
		secret: []byte(secret),
	}
}

// Register creates a user and returns it with a fresh token. An invalid or
// empty role defaults to editor.
func (s *AuthService) Register(ctx context.Context, email, password, name, tenantID string, role domain.Role) (*domain.User, string, error) {
	if email == "" || password == "" || name == "" || tenantID == "" {
		return nil, "", ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, "", ErrWeakPassword
	}
	if !domain.ValidRole(string(role)) {
		role = domain.RoleEditor
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := domain.NewUser(email, string(hash), name, tenantID, role)
	if err := s.store.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh token. Both
// unknown-email and wrong-password paths return ErrInvalidCreds.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCreds
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCreds
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) GenerateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		TenantID: user.TenantID,
		Role:     user.Role,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateToken parses a token and resolves the current user record, so a
// deleted user's tokens stop working immediately.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*domain.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	user, err := s.store.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// ListUsers returns the acting admin's tenant members.
func (s *AuthService) ListUsers(ctx context.Context, tenantID string) ([]*domain.User, error) {
	return s.store.ListByTenant(ctx, tenantID)
}

// ChangeRole updates a same-tenant user's role. Demoting the only admin of
// a tenant is rejected.
func (s *AuthService) ChangeRole(ctx context.Context, tenantID, userID string, role domain.Role) (*domain.User, error) {
	if !domain.ValidRole(string(role)) {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil || user.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}

	if user.Role == domain.RoleAdmin && role != domain.RoleAdmin {
		count, err := s.store.CountAdmins(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		if count <= 1 {
			return nil, domain.ErrLastAdmin
		}
	}

	if err := s.store.UpdateRole(ctx, tenantID, userID, role); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

// DeleteUser removes a same-tenant user. Self-deletion and deleting the
// last admin are rejected.
func (s *AuthService) DeleteUser(ctx context.Context, actor *domain.User, userID string) error {
	if userID == actor.ID {
		return ErrSelfDelete
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil || user.TenantID != actor.TenantID {
		return domain.ErrNotFound
	}

	if user.Role == domain.RoleAdmin {
		count, err := s.store.CountAdmins(ctx, actor.TenantID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return domain.ErrLastAdmin
		}
	}

	return s.store.Delete(ctx, actor.TenantID, userID)
}
