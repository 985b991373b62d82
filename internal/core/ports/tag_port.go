package ports

import (
	"context"

	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
)

// TagIntervalRepository lists intervals ordered by name.
type TagIntervalRepository interface {
	ListTagIntervals(ctx context.Context, userID string) ([]*domain.TagInterval, error)
	GetTagInterval(ctx context.Context, id string) (*domain.TagInterval, error)
	CreateTagInterval(ctx context.Context, interval *domain.TagInterval) (string, error)
	UpdateTagInterval(ctx context.Context, id string, patch domain.TagIntervalPatch) error
	DeleteTagInterval(ctx context.Context, id string) error
}
