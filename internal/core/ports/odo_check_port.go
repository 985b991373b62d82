package ports

import (
	"context"

	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
)

// OdoCheckRepository lists checks newest first. Checks are never updated.
type OdoCheckRepository interface {
	ListOdoChecks(ctx context.Context, userID string) ([]*domain.OdoCheckRecord, error)
	CreateOdoCheck(ctx context.Context, check *domain.OdoCheckRecord) (string, error)
	ClearOdoChecks(ctx context.Context, userID string) (int64, error)
}

// OdometerReader extracts the odometer value from a JPEG photo.
type OdometerReader interface {
	Detect(ctx context.Context, jpeg []byte) (string, error)
}
