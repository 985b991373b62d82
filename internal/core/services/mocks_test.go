package services

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/ports"
)

// MockRecordRepository mocks the MaintenanceRecordRepository interface
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) ListMaintenanceRecords(ctx context.Context, userID string) ([]*domain.MaintenanceRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MaintenanceRecord), args.Error(1)
}

func (m *MockRecordRepository) GetMaintenanceRecord(ctx context.Context, id string) (*domain.MaintenanceRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaintenanceRecord), args.Error(1)
}

func (m *MockRecordRepository) CreateMaintenanceRecord(ctx context.Context, record *domain.MaintenanceRecord) (string, error) {
	args := m.Called(ctx, record)
	return args.String(0), args.Error(1)
}

func (m *MockRecordRepository) UpdateMaintenanceRecord(ctx context.Context, id string, patch domain.MaintenanceRecordPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockRecordRepository) DeleteMaintenanceRecord(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTagRepository mocks the TagIntervalRepository interface
type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) ListTagIntervals(ctx context.Context, userID string) ([]*domain.TagInterval, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TagInterval), args.Error(1)
}

func (m *MockTagRepository) GetTagInterval(ctx context.Context, id string) (*domain.TagInterval, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TagInterval), args.Error(1)
}

func (m *MockTagRepository) CreateTagInterval(ctx context.Context, interval *domain.TagInterval) (string, error) {
	args := m.Called(ctx, interval)
	return args.String(0), args.Error(1)
}

func (m *MockTagRepository) UpdateTagInterval(ctx context.Context, id string, patch domain.TagIntervalPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockTagRepository) DeleteTagInterval(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCheckRepository mocks the OdoCheckRepository interface
type MockCheckRepository struct {
	mock.Mock
}

func (m *MockCheckRepository) ListOdoChecks(ctx context.Context, userID string) ([]*domain.OdoCheckRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OdoCheckRecord), args.Error(1)
}

func (m *MockCheckRepository) CreateOdoCheck(ctx context.Context, check *domain.OdoCheckRecord) (string, error) {
	args := m.Called(ctx, check)
	return args.String(0), args.Error(1)
}

func (m *MockCheckRepository) ClearOdoChecks(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockImageStore mocks the ImageStore interface
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, data []byte, pathHint, contentType string) (string, error) {
	args := m.Called(ctx, data, pathHint, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// MockOdometerReader mocks the OdometerReader interface
type MockOdometerReader struct {
	mock.Mock
}

func (m *MockOdometerReader) Detect(ctx context.Context, jpeg []byte) (string, error) {
	args := m.Called(ctx, jpeg)
	return args.String(0), args.Error(1)
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

type stubMetrics struct {
	evaluations [][]domain.MaintenanceStatus
}

func (m *stubMetrics) RecordMetrics(*gin.Context, time.Time) {}

func (m *stubMetrics) RecordEvaluation(statuses []domain.MaintenanceStatus) {
	m.evaluations = append(m.evaluations, statuses)
}

func (m *stubMetrics) Handler() http.Handler {
	return http.NotFoundHandler()
}
