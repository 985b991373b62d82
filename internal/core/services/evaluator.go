package services

import (
	"math"
	"sort"
	"time"

	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
)

// NoHistoryPolicy decides what happens to an enabled interval that has never
// been serviced.
type NoHistoryPolicy string

const (
	NoHistoryOmit    NoHistoryPolicy = "omit"
	NoHistoryOverdue NoHistoryPolicy = "overdue"
)

const (
	DefaultDueSoonRatio = 0.10

	// neverServicedDays marks an interval with no history under NoHistoryOverdue.
	neverServicedDays = 999
)

// EvaluationPolicy tunes Evaluate. The zero value is not usable, start from
// DefaultEvaluationPolicy.
type EvaluationPolicy struct {
	DueSoonRatio        float64
	NoHistory           NoHistoryPolicy
	MissingDistanceLast bool
}

func DefaultEvaluationPolicy() EvaluationPolicy {
	return EvaluationPolicy{
		DueSoonRatio: DefaultDueSoonRatio,
		NoHistory:    NoHistoryOmit,
	}
}

// EnabledIntervals keeps the enabled intervals in input order.
func EnabledIntervals(intervals []domain.TagInterval) []domain.TagInterval {
	enabled := make([]domain.TagInterval, 0, len(intervals))
	for _, interval := range intervals {
		if interval.Enabled {
			enabled = append(enabled, interval)
		}
	}
	return enabled
}

// Evaluate computes the maintenance status of every enabled interval at the
// given odometer reading and instant, most urgent first.
// Records and intervals must belong to the same user.
func Evaluate(
	records []domain.MaintenanceRecord,
	intervals []domain.TagInterval,
	currentKilometers int,
	now time.Time,
	policy EvaluationPolicy,
) []domain.MaintenanceStatus {
	statuses := make([]domain.MaintenanceStatus, 0, len(intervals))

	for _, interval := range EnabledIntervals(intervals) {
		last := lastMaintenance(records, interval.ID)
		if last == nil {
			if policy.NoHistory == NoHistoryOverdue {
				statuses = append(statuses, domain.MaintenanceStatus{
					Tag:                      interval.Name,
					KmSinceLastMaintenance:   currentKilometers,
					DaysSinceLastMaintenance: neverServicedDays,
					Status:                   domain.StatusOverdue,
					Interval:                 interval,
				})
			}
			continue
		}

		statuses = append(statuses, evaluateInterval(interval, last, currentKilometers, now, policy.DueSoonRatio))
	}

	rankStatuses(statuses, policy.MissingDistanceLast)
	return statuses
}

func evaluateInterval(
	interval domain.TagInterval,
	last *domain.MaintenanceRecord,
	currentKilometers int,
	now time.Time,
	ratio float64,
) domain.MaintenanceStatus {
	st := domain.MaintenanceStatus{
		Tag:                      interval.Name,
		LastMaintenance:          last,
		KmSinceLastMaintenance:   currentKilometers - last.Kilometers,
		DaysSinceLastMaintenance: daysBetween(last.Date, now),
		Status:                   domain.StatusOK,
		Interval:                 interval,
	}

	if interval.HasDistance() {
		limit := *interval.Kilometers
		until := limit - st.KmSinceLastMaintenance
		st.KmUntilDue = &until
		st.Status = escalate(st.Status, until, limit, ratio)
	}

	if interval.HasDuration() {
		limit := *interval.Days
		until := limit - st.DaysSinceLastMaintenance
		st.DaysUntilDue = &until
		st.Status = escalate(st.Status, until, limit, ratio)
	}

	return st
}

// escalate never lowers the current state.
func escalate(current domain.MaintenanceState, until, limit int, ratio float64) domain.MaintenanceState {
	switch {
	case until <= 0:
		return domain.StatusOverdue
	case float64(until) <= ratio*float64(limit) && current != domain.StatusOverdue:
		return domain.StatusDueSoon
	default:
		return current
	}
}

// lastMaintenance picks the latest record for the tag. Equal dates resolve to
// the greatest id so the choice does not depend on input order.
func lastMaintenance(records []domain.MaintenanceRecord, tagID string) *domain.MaintenanceRecord {
	var last *domain.MaintenanceRecord
	for i := range records {
		r := &records[i]
		if !r.HasTag(tagID) {
			continue
		}
		if last == nil || r.Date.After(last.Date) || (r.Date.Equal(last.Date) && r.ID > last.ID) {
			last = r
		}
	}
	if last == nil {
		return nil
	}
	found := *last
	return &found
}

func daysBetween(from, to time.Time) int {
	return int(math.Floor(float64(to.Sub(from)) / float64(24*time.Hour)))
}

func rankStatuses(statuses []domain.MaintenanceStatus, missingDistanceLast bool) {
	sort.SliceStable(statuses, func(i, j int) bool {
		pi, pj := statuses[i].Status.Priority(), statuses[j].Status.Priority()
		if pi != pj {
			return pi < pj
		}

		ki, iok := distanceKey(statuses[i])
		kj, jok := distanceKey(statuses[j])
		if missingDistanceLast && iok != jok {
			return iok
		}
		return ki < kj
	})
}

func distanceKey(s domain.MaintenanceStatus) (int, bool) {
	if s.KmUntilDue == nil {
		return 0, false
	}
	return *s.KmUntilDue, true
}
