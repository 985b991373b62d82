package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm8ta/webike_maintenance_microservice/internal/adapter/logger"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
)

// Integration test (requires running MongoDB)
func TestRecordLifecycle_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set, skipping integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client, err := Connect(ctx, uri, 5*time.Second)
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database("maintenance_integration_test")
	defer db.Drop(context.Background())
	require.NoError(t, EnsureIndexes(ctx, db))

	repo := NewMaintenanceRecordRepository(db, logger.NewNopLogger())
	rec := &domain.MaintenanceRecord{
		UserID:     "user-it",
		Date:       time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Kilometers: 4200,
		TagIDs:     []string{"oil"},
	}

	id, err := repo.CreateMaintenanceRecord(ctx, rec)
	require.NoError(t, err)

	notes := "first service"
	require.NoError(t, repo.UpdateMaintenanceRecord(ctx, id, domain.MaintenanceRecordPatch{Notes: &notes}))

	got, err := repo.GetMaintenanceRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4200, got.Kilometers)
	require.NotNil(t, got.Notes)
	assert.Equal(t, notes, *got.Notes)
	assert.Nil(t, got.Photo)

	require.NoError(t, repo.DeleteMaintenanceRecord(ctx, id))
	_, err = repo.GetMaintenanceRecord(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
