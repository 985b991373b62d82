package http

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
)

type memRecordRepo struct {
	mu      sync.Mutex
	records map[string]domain.MaintenanceRecord
}

func newMemRecordRepo() *memRecordRepo {
	return &memRecordRepo{records: map[string]domain.MaintenanceRecord{}}
}

func (r *memRecordRepo) ListMaintenanceRecords(_ context.Context, userID string) ([]*domain.MaintenanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.MaintenanceRecord, 0)
	for _, rec := range r.records {
		if rec.UserID == userID {
			rec := rec
			out = append(out, &rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *memRecordRepo) GetMaintenanceRecord(_ context.Context, id string) (*domain.MaintenanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (r *memRecordRepo) CreateMaintenanceRecord(_ context.Context, record *domain.MaintenanceRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := *record
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	r.records[rec.ID] = rec
	return rec.ID, nil
}

func (r *memRecordRepo) UpdateMaintenanceRecord(_ context.Context, id string, patch domain.MaintenanceRecordPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.Date != nil {
		rec.Date = *patch.Date
	}
	if patch.Kilometers != nil {
		rec.Kilometers = *patch.Kilometers
	}
	if patch.TagIDs != nil {
		rec.TagIDs = patch.TagIDs
	}
	if patch.Photo != nil {
		rec.Photo = patch.Photo
	}
	if patch.Notes != nil {
		rec.Notes = patch.Notes
	}
	rec.UpdatedAt = time.Now()
	r.records[id] = rec
	return nil
}

func (r *memRecordRepo) DeleteMaintenanceRecord(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *memRecordRepo) put(rec domain.MaintenanceRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = rec
}

type memTagRepo struct {
	mu   sync.Mutex
	tags map[string]domain.TagInterval
}

func newMemTagRepo() *memTagRepo {
	return &memTagRepo{tags: map[string]domain.TagInterval{}}
}

func (r *memTagRepo) ListTagIntervals(_ context.Context, userID string) ([]*domain.TagInterval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.TagInterval, 0)
	for _, tag := range r.tags {
		if tag.UserID == userID {
			tag := tag
			out = append(out, &tag)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memTagRepo) GetTagInterval(_ context.Context, id string) (*domain.TagInterval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tag, ok := r.tags[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &tag, nil
}

func (r *memTagRepo) CreateTagInterval(_ context.Context, interval *domain.TagInterval) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tag := *interval
	tag.ID = uuid.NewString()
	r.tags[tag.ID] = tag
	return tag.ID, nil
}

func (r *memTagRepo) UpdateTagInterval(_ context.Context, id string, patch domain.TagIntervalPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tag, ok := r.tags[id]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.Name != nil {
		tag.Name = *patch.Name
	}
	if patch.Kilometers != nil {
		tag.Kilometers = patch.Kilometers
	}
	if patch.Days != nil {
		tag.Days = patch.Days
	}
	if patch.Enabled != nil {
		tag.Enabled = *patch.Enabled
	}
	r.tags[id] = tag
	return nil
}

func (r *memTagRepo) DeleteTagInterval(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tags[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tags, id)
	return nil
}

func (r *memTagRepo) put(tag domain.TagInterval) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[tag.ID] = tag
}

type memCheckRepo struct {
	mu         sync.Mutex
	checks     []domain.OdoCheckRecord
	failCreate error
}

func (r *memCheckRepo) ListOdoChecks(_ context.Context, userID string) ([]*domain.OdoCheckRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.OdoCheckRecord, 0)
	for _, c := range r.checks {
		if c.UserID == userID {
			c := c
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memCheckRepo) CreateOdoCheck(_ context.Context, check *domain.OdoCheckRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return "", r.failCreate
	}
	c := *check
	c.ID = uuid.NewString()
	r.checks = append(r.checks, c)
	return c.ID, nil
}

func (r *memCheckRepo) ClearOdoChecks(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.checks[:0]
	var deleted int64
	for _, c := range r.checks {
		if c.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	r.checks = kept
	return deleted, nil
}

type fakeImageStore struct {
	mu       sync.Mutex
	uploaded map[string][]byte
	deleted  []string
}

func (s *fakeImageStore) Upload(_ context.Context, data []byte, pathHint, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploaded == nil {
		s.uploaded = map[string][]byte{}
	}
	url := "http://images.test/" + pathHint
	s.uploaded[url] = data
	return url, nil
}

func (s *fakeImageStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	return nil
}

type fakeOdometerReader struct {
	answer string
	err    error
}

func (r *fakeOdometerReader) Detect(context.Context, []byte) (string, error) {
	return r.answer, r.err
}

var errReaderDown = errors.New("vision api unavailable")
