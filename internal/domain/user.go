package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

func ValidRole(r string) bool {
	switch Role(r) {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// User is an authenticated principal scoped to a single tenant.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	TenantID     string    `json:"tenantId"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewUser(email, passwordHash, name, tenantID string, role Role) *User {
	return &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		TenantID:     tenantID,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
}

// CanUpload reports whether the role may create or delete videos.
func (u *User) CanUpload() bool {
	return u.Role == RoleEditor || u.Role == RoleAdmin
}
