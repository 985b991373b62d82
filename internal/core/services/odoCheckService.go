package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/ports"
)

const recentRecordsLimit = 3

// CheckResult is the outcome of one odometer check. Check is nil when the
// snapshot could not be stored.
type CheckResult struct {
	Kilometers int
	CheckedAt  time.Time
	Statuses   []domain.MaintenanceStatus
	Check      *domain.OdoCheckRecord
}

type Dashboard struct {
	CurrentKilometers int
	RecentRecords     []*domain.MaintenanceRecord
	Overdue           int
	DueSoon           int
	OK                int
	Statuses          []domain.MaintenanceStatus
}

type OdoCheckService struct {
	checkRepo  ports.OdoCheckRepository
	recordRepo ports.MaintenanceRecordRepository
	tagRepo    ports.TagIntervalRepository
	logger     ports.LoggerPort
	metrics    ports.MetricsPort
	policy     EvaluationPolicy
	now        func() time.Time
}

func NewOdoCheckService(
	checkRepo ports.OdoCheckRepository,
	recordRepo ports.MaintenanceRecordRepository,
	tagRepo ports.TagIntervalRepository,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
	policy EvaluationPolicy,
) *OdoCheckService {
	return &OdoCheckService{
		checkRepo:  checkRepo,
		recordRepo: recordRepo,
		tagRepo:    tagRepo,
		logger:     logger,
		metrics:    metrics,
		policy:     policy,
		now:        time.Now,
	}
}

// Check evaluates the user's maintenance state at the given odometer reading
// and stores a snapshot of it. When only the snapshot write fails the result
// is still returned, together with an error wrapping ErrCheckNotRecorded.
func (s *OdoCheckService) Check(ctx context.Context, userID string, kilometers int) (*CheckResult, error) {
	if kilometers < 0 {
		return nil, fmt.Errorf("%w: kilometers must not be negative", domain.ErrValidation)
	}

	now := s.now()
	statuses, err := s.evaluate(ctx, userID, kilometers, now)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{
		Kilometers: kilometers,
		CheckedAt:  now,
		Statuses:   statuses,
	}

	check, err := s.RecordCheck(ctx, userID, now, kilometers, statuses)
	if err != nil {
		return result, err
	}
	result.Check = check

	return result, nil
}

// RecordCheck persists one audit row for the statuses. It never mutates or
// deduplicates earlier rows.
func (s *OdoCheckService) RecordCheck(
	ctx context.Context,
	userID string,
	now time.Time,
	kilometers int,
	statuses []domain.MaintenanceStatus,
) (*domain.OdoCheckRecord, error) {
	results := make([]domain.OdoCheckResult, len(statuses))
	for i := range statuses {
		results[i] = statuses[i].ToResult()
	}

	check := &domain.OdoCheckRecord{
		UserID:     userID,
		Date:       now,
		Kilometers: kilometers,
		Results:    results,
	}

	id, err := s.checkRepo.CreateOdoCheck(ctx, check)
	if err != nil {
		s.logger.Error("Failed to record odometer check", map[string]interface{}{
			"error":      err.Error(),
			"user_id":    userID,
			"kilometers": kilometers,
		})
		return nil, fmt.Errorf("%w: %v", domain.ErrCheckNotRecorded, err)
	}
	check.ID = id

	s.logger.Info("Odometer check recorded", map[string]interface{}{
		"check_id":      id,
		"user_id":       userID,
		"results_count": len(results),
	})

	return check, nil
}

func (s *OdoCheckService) History(ctx context.Context, userID string) ([]*domain.OdoCheckRecord, error) {
	checks, err := s.checkRepo.ListOdoChecks(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list odometer checks", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return nil, err
	}
	sort.SliceStable(checks, func(i, j int) bool {
		return checks[i].Date.After(checks[j].Date)
	})
	return checks, nil
}

// Latest returns nil, nil when the user has no checks.
func (s *OdoCheckService) Latest(ctx context.Context, userID string) (*domain.OdoCheckRecord, error) {
	checks, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(checks) == 0 {
		return nil, nil
	}
	return checks[0], nil
}

func (s *OdoCheckService) ClearHistory(ctx context.Context, userID string) (int64, error) {
	deleted, err := s.checkRepo.ClearOdoChecks(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to clear odometer checks", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return 0, err
	}

	s.logger.Info("Odometer checks cleared", map[string]interface{}{
		"user_id":       userID,
		"deleted_count": deleted,
	})

	return deleted, nil
}

// Dashboard summarises the user's state at the highest recorded odometer
// reading. Nothing is persisted.
func (s *OdoCheckService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	records, err := s.recordRepo.ListMaintenanceRecords(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list records", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return nil, err
	}
	SortRecordsByDateDesc(records)

	tags, err := s.tagRepo.ListTagIntervals(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list tags", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return nil, err
	}

	current := CurrentKilometers(records)
	statuses := Evaluate(recordValues(records), tagValues(tags), current, s.now(), s.policy)

	d := &Dashboard{
		CurrentKilometers: current,
		RecentRecords:     records[:min(recentRecordsLimit, len(records))],
		Statuses:          statuses,
	}
	for _, st := range statuses {
		switch st.Status {
		case domain.StatusOverdue:
			d.Overdue++
		case domain.StatusDueSoon:
			d.DueSoon++
		default:
			d.OK++
		}
	}

	return d, nil
}

func (s *OdoCheckService) evaluate(ctx context.Context, userID string, kilometers int, now time.Time) ([]domain.MaintenanceStatus, error) {
	records, err := s.recordRepo.ListMaintenanceRecords(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list records", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return nil, err
	}

	tags, err := s.tagRepo.ListTagIntervals(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list tags", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return nil, err
	}

	statuses := Evaluate(recordValues(records), tagValues(tags), kilometers, now, s.policy)
	s.metrics.RecordEvaluation(statuses)

	s.logger.Info("Maintenance status evaluated", map[string]interface{}{
		"user_id":        userID,
		"kilometers":     kilometers,
		"statuses_count": len(statuses),
	})

	return statuses, nil
}

func recordValues(records []*domain.MaintenanceRecord) []domain.MaintenanceRecord {
	out := make([]domain.MaintenanceRecord, len(records))
	for i, r := range records {
		out[i] = *r
	}
	return out
}

func tagValues(tags []*domain.TagInterval) []domain.TagInterval {
	out := make([]domain.TagInterval, len(tags))
	for i, t := range tags {
		out[i] = *t
	}
	return out
}
