package ports

import (
	"context"

	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
)

// MaintenanceRecordRepository lists records newest first.
type MaintenanceRecordRepository interface {
	ListMaintenanceRecords(ctx context.Context, userID string) ([]*domain.MaintenanceRecord, error)
	GetMaintenanceRecord(ctx context.Context, id string) (*domain.MaintenanceRecord, error)
	CreateMaintenanceRecord(ctx context.Context, record *domain.MaintenanceRecord) (string, error)
	UpdateMaintenanceRecord(ctx context.Context, id string, patch domain.MaintenanceRecordPatch) error
	DeleteMaintenanceRecord(ctx context.Context, id string) error
}

type ImageStore interface {
	Upload(ctx context.Context, data []byte, pathHint, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}
