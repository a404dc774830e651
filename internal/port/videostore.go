package port

import (
	"context"

	"github.com/pulsevideo/pulse/internal/domain"
)

// VideoStore persists video assets. Every operation takes the tenant id as
// a required parameter; there is no unscoped access path.
type VideoStore interface {
	Create(ctx context.Context, v *domain.Video) error
	Get(ctx context.Context, tenantID, id string) (*domain.Video, error)
	List(ctx context.Context, tenantID string, filter domain.VideoFilter) ([]*domain.Video, error)
	UpdateProgress(ctx context.Context, tenantID, id string, progress int) error
	UpdateDuration(ctx context.Context, tenantID, id string, seconds int64) error
	UpdateTerminal(ctx context.Context, tenantID, id string, status domain.VideoStatus, sensitivity domain.Sensitivity, progress int) error
	Delete(ctx context.Context, tenantID, id string) error
}
