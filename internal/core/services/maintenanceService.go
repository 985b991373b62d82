package services

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/ports"
)

const maintenanceImagesPath = "maintenance-images"

// PhotoAttachError means the record was stored but its photo was not.
type PhotoAttachError struct {
	RecordID string
	Err      error
}

func (e *PhotoAttachError) Error() string {
	return fmt.Sprintf("record %s saved without photo: %v", e.RecordID, e.Err)
}

func (e *PhotoAttachError) Unwrap() error {
	return e.Err
}

type MaintenanceService struct {
	recordRepo ports.MaintenanceRecordRepository
	tagRepo    ports.TagIntervalRepository
	images     ports.ImageStore
	logger     ports.LoggerPort
	validate   *validator.Validate
	cache      ports.CachePort
}

func NewMaintenanceService(
	recordRepo ports.MaintenanceRecordRepository,
	tagRepo ports.TagIntervalRepository,
	images ports.ImageStore,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
) *MaintenanceService {
	return &MaintenanceService{
		recordRepo: recordRepo,
		tagRepo:    tagRepo,
		images:     images,
		logger:     logger,
		validate:   validate,
		cache:      cache,
	}
}

func (s *MaintenanceService) ListRecords(ctx context.Context, userID string) ([]*domain.MaintenanceRecord, error) {
	cacheKey := recordsCacheKey(userID)
	if cached, ok := readCache[[]*domain.MaintenanceRecord](ctx, s.cache, s.logger, cacheKey); ok {
		s.logger.Debug("Records found in cache", map[string]interface{}{
			"user_id": userID,
		})
		return cached, nil
	}

	records, err := s.recordRepo.ListMaintenanceRecords(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list records", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return nil, err
	}
	SortRecordsByDateDesc(records)

	writeCache(ctx, s.cache, s.logger, cacheKey, records)

	s.logger.Info("Retrieved records for user", map[string]interface{}{
		"user_id":       userID,
		"records_count": len(records),
	})

	return records, nil
}

// SearchRecords matches the term against tag ids, tag names and notes,
// ignoring case. An empty term lists everything.
func (s *MaintenanceService) SearchRecords(ctx context.Context, userID, term string) ([]*domain.MaintenanceRecord, error) {
	records, err := s.ListRecords(ctx, userID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return records, nil
	}

	tags, err := s.tagRepo.ListTagIntervals(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list tags for search", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return nil, err
	}
	names := make(map[string]string, len(tags))
	for _, t := range tags {
		names[t.ID] = strings.ToLower(t.Name)
	}

	matched := make([]*domain.MaintenanceRecord, 0)
	for _, r := range records {
		if recordMatches(r, needle, names) {
			matched = append(matched, r)
		}
	}

	s.logger.Info("Searched records", map[string]interface{}{
		"user_id":       userID,
		"term":          term,
		"matched_count": len(matched),
	})

	return matched, nil
}

func recordMatches(r *domain.MaintenanceRecord, needle string, names map[string]string) bool {
	for _, id := range r.TagIDs {
		if strings.Contains(strings.ToLower(id), needle) || strings.Contains(names[id], needle) {
			return true
		}
	}
	return r.Notes != nil && strings.Contains(strings.ToLower(*r.Notes), needle)
}

func (s *MaintenanceService) GetRecord(ctx context.Context, recordID string) (*domain.MaintenanceRecord, error) {
	record, err := s.recordRepo.GetMaintenanceRecord(ctx, recordID)
	if err != nil {
		s.logger.Error("Failed to get record", map[string]interface{}{
			"error":     err.Error(),
			"record_id": recordID,
		})
		return nil, err
	}
	return record, nil
}

// AddRecord stores the record and then, if given, uploads the photo and
// attaches its URL. A failed photo step returns the saved record together
// with a *PhotoAttachError.
func (s *MaintenanceService) AddRecord(ctx context.Context, record *domain.MaintenanceRecord, photo *domain.Photo) (*domain.MaintenanceRecord, error) {
	if err := s.validate.Struct(record); err != nil {
		s.logger.Error("Record validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := s.checkTagsOwned(ctx, record.UserID, record.TagIDs); err != nil {
		return nil, err
	}

	record.Photo = nil
	id, err := s.recordRepo.CreateMaintenanceRecord(ctx, record)
	if err != nil {
		s.logger.Error("Failed to create record", map[string]interface{}{
			"error":   err.Error(),
			"user_id": record.UserID,
		})
		return nil, err
	}
	record.ID = id
	invalidateCache(ctx, s.cache, s.logger, recordsCacheKey(record.UserID))

	s.logger.Info("Record created successfully", map[string]interface{}{
		"record_id": id,
		"user_id":   record.UserID,
	})

	if photo == nil || len(photo.Data) == 0 {
		return record, nil
	}

	url, err := s.attachPhoto(ctx, id, photo)
	if err != nil {
		s.logger.Warn("Record saved without photo", map[string]interface{}{
			"error":     err.Error(),
			"record_id": id,
		})
		return record, &PhotoAttachError{RecordID: id, Err: err}
	}
	record.Photo = &url
	invalidateCache(ctx, s.cache, s.logger, recordsCacheKey(record.UserID))

	return record, nil
}

func (s *MaintenanceService) attachPhoto(ctx context.Context, recordID string, photo *domain.Photo) (string, error) {
	name := path.Base(photo.FileName)
	if name == "." || name == "/" || name == "" {
		name = "photo.jpg"
	}
	hint := path.Join(maintenanceImagesPath, recordID, name)

	url, err := s.images.Upload(ctx, photo.Data, hint, photo.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}

	if err := s.recordRepo.UpdateMaintenanceRecord(ctx, recordID, domain.MaintenanceRecordPatch{Photo: &url}); err != nil {
		s.deleteImage(ctx, url)
		return "", fmt.Errorf("attach photo: %w", err)
	}
	return url, nil
}

func (s *MaintenanceService) UpdateRecord(ctx context.Context, record *domain.MaintenanceRecord, patch domain.MaintenanceRecordPatch) (*domain.MaintenanceRecord, error) {
	if err := s.validate.Struct(patch); err != nil {
		s.logger.Error("Record patch validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if patch.TagIDs != nil && len(patch.TagIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one tag is required", domain.ErrValidation)
	}
	if patch.IsEmpty() {
		return record, nil
	}
	if patch.TagIDs != nil {
		if err := s.checkTagsOwned(ctx, record.UserID, patch.TagIDs); err != nil {
			return nil, err
		}
	}

	if err := s.recordRepo.UpdateMaintenanceRecord(ctx, record.ID, patch); err != nil {
		s.logger.Error("Failed to update record", map[string]interface{}{
			"error":     err.Error(),
			"record_id": record.ID,
		})
		return nil, err
	}
	invalidateCache(ctx, s.cache, s.logger, recordsCacheKey(record.UserID))

	updated, err := s.recordRepo.GetMaintenanceRecord(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Record updated successfully", map[string]interface{}{
		"record_id": record.ID,
	})

	return updated, nil
}

// DeleteRecord removes the photo first, best-effort, then the record.
func (s *MaintenanceService) DeleteRecord(ctx context.Context, record *domain.MaintenanceRecord) error {
	if record.Photo != nil && *record.Photo != "" {
		s.deleteImage(ctx, *record.Photo)
	}

	if err := s.recordRepo.DeleteMaintenanceRecord(ctx, record.ID); err != nil {
		s.logger.Error("Failed to delete record", map[string]interface{}{
			"error":     err.Error(),
			"record_id": record.ID,
		})
		return err
	}
	invalidateCache(ctx, s.cache, s.logger, recordsCacheKey(record.UserID))

	s.logger.Info("Record deleted successfully", map[string]interface{}{
		"record_id": record.ID,
	})

	return nil
}

func (s *MaintenanceService) deleteImage(ctx context.Context, url string) {
	if err := s.images.Delete(ctx, url); err != nil {
		s.logger.Warn("Failed to delete image", map[string]interface{}{
			"error": err.Error(),
			"url":   url,
		})
	}
}

func (s *MaintenanceService) checkTagsOwned(ctx context.Context, userID string, tagIDs []string) error {
	tags, err := s.tagRepo.ListTagIntervals(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list tags", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return err
	}
	known := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		known[t.ID] = struct{}{}
	}
	for _, id := range tagIDs {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: unknown tag %q", domain.ErrValidation, id)
		}
	}
	return nil
}

// CurrentKilometers is the highest odometer reading ever recorded.
func CurrentKilometers(records []*domain.MaintenanceRecord) int {
	current := 0
	for _, r := range records {
		if r.Kilometers > current {
			current = r.Kilometers
		}
	}
	return current
}

// SortRecordsByDateDesc orders records newest first, ties by id.
func SortRecordsByDateDesc(records []*domain.MaintenanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].ID > records[j].ID
	})
}
