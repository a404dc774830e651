package port

import (
	"context"

	"github.com/pulsevideo/pulse/internal/domain"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.User, error)
	UpdateRole(ctx context.Context, tenantID, id string, role domain.Role) error
	Delete(ctx context.Context, tenantID, id string) error
	CountAdmins(ctx context.Context, tenantID string) (int, error)
}
