package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
)

var evalNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func interval(id string, km, days *int) domain.TagInterval {
	return domain.TagInterval{
		ID:         id,
		UserID:     "user-1",
		Name:       "tag " + id,
		Kilometers: km,
		Days:       days,
		Enabled:    true,
	}
}

func record(id string, km int, date time.Time, tags ...string) domain.MaintenanceRecord {
	return domain.MaintenanceRecord{
		ID:         id,
		UserID:     "user-1",
		Date:       date,
		Kilometers: km,
		TagIDs:     tags,
	}
}

func daysAgo(n int) time.Time {
	return evalNow.Add(-time.Duration(n) * 24 * time.Hour)
}

func TestEvaluate_NoHistoryOmitted(t *testing.T) {
	intervals := []domain.TagInterval{
		interval("oil", intPtr(3000), intPtr(90)),
		interval("chain", intPtr(1000), nil),
	}
	records := []domain.MaintenanceRecord{
		record("r1", 10000, daysAgo(10), "oil"),
	}

	statuses := Evaluate(records, intervals, 10500, evalNow, DefaultEvaluationPolicy())

	require.Len(t, statuses, 1)
	assert.Equal(t, "tag oil", statuses[0].Tag)
}

func TestEvaluate_NoHistoryOverduePolicy(t *testing.T) {
	intervals := []domain.TagInterval{interval("chain", intPtr(1000), nil)}
	policy := DefaultEvaluationPolicy()
	policy.NoHistory = NoHistoryOverdue

	statuses := Evaluate(nil, intervals, 4200, evalNow, policy)

	require.Len(t, statuses, 1)
	st := statuses[0]
	assert.Equal(t, domain.StatusOverdue, st.Status)
	assert.Nil(t, st.LastMaintenance)
	assert.Equal(t, 4200, st.KmSinceLastMaintenance)
	assert.Equal(t, 999, st.DaysSinceLastMaintenance)
	assert.Nil(t, st.KmUntilDue)
}

func TestEvaluate_DistanceThresholds(t *testing.T) {
	tests := []struct {
		name       string
		current    int
		wantUntil  int
		wantStatus domain.MaintenanceState
	}{
		{name: "exactly at interval", current: 13000, wantUntil: 0, wantStatus: domain.StatusOverdue},
		{name: "past interval", current: 13500, wantUntil: -500, wantStatus: domain.StatusOverdue},
		{name: "within ten percent", current: 12700, wantUntil: 300, wantStatus: domain.StatusDueSoon},
		{name: "just outside ten percent", current: 12699, wantUntil: 301, wantStatus: domain.StatusOK},
		{name: "plenty left", current: 12000, wantUntil: 1000, wantStatus: domain.StatusOK},
	}

	intervals := []domain.TagInterval{interval("oil", intPtr(3000), nil)}
	records := []domain.MaintenanceRecord{record("r1", 10000, daysAgo(1), "oil")}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statuses := Evaluate(records, intervals, tt.current, evalNow, DefaultEvaluationPolicy())

			require.Len(t, statuses, 1)
			require.NotNil(t, statuses[0].KmUntilDue)
			assert.Equal(t, tt.wantUntil, *statuses[0].KmUntilDue)
			assert.Nil(t, statuses[0].DaysUntilDue)
			assert.Equal(t, tt.wantStatus, statuses[0].Status)
		})
	}
}

func TestEvaluate_DurationThresholds(t *testing.T) {
	tests := []struct {
		name       string
		lastDate   time.Time
		wantSince  int
		wantUntil  int
		wantStatus domain.MaintenanceState
	}{
		{name: "exactly at interval", lastDate: daysAgo(90), wantSince: 90, wantUntil: 0, wantStatus: domain.StatusOverdue},
		{name: "within ten percent", lastDate: daysAgo(81), wantSince: 81, wantUntil: 9, wantStatus: domain.StatusDueSoon},
		{name: "plenty left", lastDate: daysAgo(50), wantSince: 50, wantUntil: 40, wantStatus: domain.StatusOK},
		{name: "partial day truncates", lastDate: daysAgo(80).Add(-23 * time.Hour), wantSince: 80, wantUntil: 10, wantStatus: domain.StatusOK},
	}

	intervals := []domain.TagInterval{interval("oil", nil, intPtr(90))}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []domain.MaintenanceRecord{record("r1", 10000, tt.lastDate, "oil")}

			statuses := Evaluate(records, intervals, 10000, evalNow, DefaultEvaluationPolicy())

			require.Len(t, statuses, 1)
			st := statuses[0]
			assert.Equal(t, tt.wantSince, st.DaysSinceLastMaintenance)
			require.NotNil(t, st.DaysUntilDue)
			assert.Equal(t, tt.wantUntil, *st.DaysUntilDue)
			assert.Nil(t, st.KmUntilDue)
			assert.Equal(t, tt.wantStatus, st.Status)
		})
	}
}

func TestEvaluate_DualDimensionPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		current    int
		lastDate   time.Time
		wantStatus domain.MaintenanceState
	}{
		{name: "distance ok days overdue", current: 11000, lastDate: daysAgo(100), wantStatus: domain.StatusOverdue},
		{name: "distance due soon days ok", current: 12800, lastDate: daysAgo(10), wantStatus: domain.StatusDueSoon},
		{name: "distance overdue days due soon", current: 13100, lastDate: daysAgo(85), wantStatus: domain.StatusOverdue},
		{name: "both ok", current: 11000, lastDate: daysAgo(10), wantStatus: domain.StatusOK},
	}

	intervals := []domain.TagInterval{interval("oil", intPtr(3000), intPtr(90))}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []domain.MaintenanceRecord{record("r1", 10000, tt.lastDate, "oil")}

			statuses := Evaluate(records, intervals, tt.current, evalNow, DefaultEvaluationPolicy())

			require.Len(t, statuses, 1)
			assert.Equal(t, tt.wantStatus, statuses[0].Status)
		})
	}
}

func TestEvaluate_Ranking(t *testing.T) {
	intervals := []domain.TagInterval{
		interval("ok", intPtr(3000), nil),
		interval("soon", intPtr(3000), nil),
		interval("late", intPtr(3000), nil),
		interval("ok-closer", intPtr(3000), nil),
	}
	records := []domain.MaintenanceRecord{
		record("r1", 10000, daysAgo(5), "ok"),
		record("r2", 7200, daysAgo(5), "soon"),
		record("r3", 5000, daysAgo(5), "late"),
		record("r4", 8500, daysAgo(5), "ok-closer"),
	}

	statuses := Evaluate(records, intervals, 10000, evalNow, DefaultEvaluationPolicy())

	require.Len(t, statuses, 4)
	got := make([]string, len(statuses))
	for i, st := range statuses {
		got[i] = st.Interval.ID
	}
	assert.Equal(t, []string{"late", "soon", "ok-closer", "ok"}, got)
}

func TestEvaluate_RankingIgnoresInputOrder(t *testing.T) {
	intervals := []domain.TagInterval{
		interval("late", intPtr(1000), nil),
		interval("soon", intPtr(1000), nil),
		interval("ok", intPtr(1000), nil),
	}
	records := []domain.MaintenanceRecord{
		record("r1", 9900, daysAgo(1), "ok"),
		record("r2", 9050, daysAgo(1), "soon"),
		record("r3", 8000, daysAgo(1), "late"),
	}
	reversed := []domain.TagInterval{intervals[2], intervals[1], intervals[0]}

	a := Evaluate(records, intervals, 10000, evalNow, DefaultEvaluationPolicy())
	b := Evaluate(records, reversed, 10000, evalNow, DefaultEvaluationPolicy())

	require.Len(t, a, 3)
	assert.Equal(t, a, b)
	assert.Equal(t, domain.StatusOverdue, a[0].Status)
	assert.Equal(t, domain.StatusDueSoon, a[1].Status)
	assert.Equal(t, domain.StatusOK, a[2].Status)
}

func TestEvaluate_MissingDistanceOrdering(t *testing.T) {
	intervals := []domain.TagInterval{
		interval("km", intPtr(1000), nil),
		interval("days", nil, intPtr(100)),
	}
	records := []domain.MaintenanceRecord{
		record("r1", 9050, daysAgo(95), "km", "days"),
	}

	t.Run("missing treated as zero", func(t *testing.T) {
		statuses := Evaluate(records, intervals, 10000, evalNow, DefaultEvaluationPolicy())

		require.Len(t, statuses, 2)
		assert.Equal(t, "days", statuses[0].Interval.ID)
		assert.Equal(t, "km", statuses[1].Interval.ID)
	})

	t.Run("missing sorted last", func(t *testing.T) {
		policy := DefaultEvaluationPolicy()
		policy.MissingDistanceLast = true

		statuses := Evaluate(records, intervals, 10000, evalNow, policy)

		require.Len(t, statuses, 2)
		assert.Equal(t, "km", statuses[0].Interval.ID)
		assert.Equal(t, "days", statuses[1].Interval.ID)
	})
}

func TestEvaluate_DisabledIntervalsExcluded(t *testing.T) {
	oil := interval("oil", intPtr(3000), nil)
	records := []domain.MaintenanceRecord{record("r1", 1000, daysAgo(400), "oil")}

	require.Len(t, Evaluate(records, []domain.TagInterval{oil}, 9000, evalNow, DefaultEvaluationPolicy()), 1)

	oil.Enabled = false
	statuses := Evaluate(records, []domain.TagInterval{oil}, 9000, evalNow, DefaultEvaluationPolicy())
	assert.Empty(t, statuses)

	policy := DefaultEvaluationPolicy()
	policy.NoHistory = NoHistoryOverdue
	assert.Empty(t, Evaluate(nil, []domain.TagInterval{oil}, 9000, evalNow, policy))
}

func TestEvaluate_NegativeDistanceNotClamped(t *testing.T) {
	intervals := []domain.TagInterval{interval("oil", intPtr(3000), nil)}
	records := []domain.MaintenanceRecord{record("r1", 10000, daysAgo(1), "oil")}

	statuses := Evaluate(records, intervals, 9000, evalNow, DefaultEvaluationPolicy())

	require.Len(t, statuses, 1)
	assert.Equal(t, -1000, statuses[0].KmSinceLastMaintenance)
	assert.Equal(t, 4000, *statuses[0].KmUntilDue)
	assert.Equal(t, domain.StatusOK, statuses[0].Status)
	assert.Equal(t, 0.0, statuses[0].Progress())
}

func TestMaintenanceStatus_Progress(t *testing.T) {
	intervals := []domain.TagInterval{interval("oil", intPtr(3000), nil)}

	tests := []struct {
		name    string
		lastKm  int
		current int
		want    float64
	}{
		{name: "half used", lastKm: 10000, current: 11500, want: 50},
		{name: "past the interval", lastKm: 10000, current: 20000, want: 100},
		{name: "reading below last record", lastKm: 10000, current: 9000, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []domain.MaintenanceRecord{record("r1", tt.lastKm, daysAgo(1), "oil")}

			statuses := Evaluate(records, intervals, tt.current, evalNow, DefaultEvaluationPolicy())

			require.Len(t, statuses, 1)
			assert.InDelta(t, tt.want, statuses[0].Progress(), 1e-9)
		})
	}
}

func TestEvaluate_IntervalWithoutLimitsIsNeverDue(t *testing.T) {
	intervals := []domain.TagInterval{interval("wash", nil, nil)}
	records := []domain.MaintenanceRecord{record("r1", 0, daysAgo(5000), "wash")}

	statuses := Evaluate(records, intervals, 500000, evalNow, DefaultEvaluationPolicy())

	require.Len(t, statuses, 1)
	assert.Equal(t, domain.StatusOK, statuses[0].Status)
	assert.Nil(t, statuses[0].KmUntilDue)
	assert.Nil(t, statuses[0].DaysUntilDue)
}

func TestEvaluate_LastMaintenanceSelection(t *testing.T) {
	intervals := []domain.TagInterval{interval("oil", intPtr(3000), nil)}

	t.Run("latest date wins", func(t *testing.T) {
		records := []domain.MaintenanceRecord{
			record("r1", 9000, daysAgo(30), "oil"),
			record("r2", 9500, daysAgo(5), "oil", "chain"),
			record("r3", 9900, daysAgo(1), "chain"),
		}

		statuses := Evaluate(records, intervals, 10000, evalNow, DefaultEvaluationPolicy())

		require.Len(t, statuses, 1)
		require.NotNil(t, statuses[0].LastMaintenance)
		assert.Equal(t, "r2", statuses[0].LastMaintenance.ID)
		assert.Equal(t, 500, statuses[0].KmSinceLastMaintenance)
	})

	t.Run("equal dates resolve to greatest id", func(t *testing.T) {
		records := []domain.MaintenanceRecord{
			record("b", 9500, daysAgo(5), "oil"),
			record("c", 9600, daysAgo(5), "oil"),
			record("a", 9400, daysAgo(5), "oil"),
		}
		shuffled := []domain.MaintenanceRecord{records[2], records[0], records[1]}

		first := Evaluate(records, intervals, 10000, evalNow, DefaultEvaluationPolicy())
		second := Evaluate(shuffled, intervals, 10000, evalNow, DefaultEvaluationPolicy())

		require.Len(t, first, 1)
		assert.Equal(t, "c", first[0].LastMaintenance.ID)
		assert.Equal(t, first, second)
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		records := []domain.MaintenanceRecord{record("r1", 9000, daysAgo(5), "oil")}

		statuses := Evaluate(records, intervals, 10000, evalNow, DefaultEvaluationPolicy())
		statuses[0].LastMaintenance.Kilometers = 1

		assert.Equal(t, 9000, records[0].Kilometers)
	})
}

func TestEvaluate_CustomDueSoonRatio(t *testing.T) {
	intervals := []domain.TagInterval{interval("oil", intPtr(1000), nil)}
	records := []domain.MaintenanceRecord{record("r1", 9000, daysAgo(1), "oil")}
	policy := DefaultEvaluationPolicy()
	policy.DueSoonRatio = 0.25

	statuses := Evaluate(records, intervals, 9800, evalNow, policy)

	require.Len(t, statuses, 1)
	assert.Equal(t, domain.StatusDueSoon, statuses[0].Status)
}

func TestEnabledIntervals(t *testing.T) {
	a := interval("a", nil, nil)
	b := interval("b", nil, nil)
	b.Enabled = false
	c := interval("c", nil, nil)

	got := EnabledIntervals([]domain.TagInterval{a, b, c})

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.Empty(t, EnabledIntervals(nil))
}

func TestMaintenanceStatus_ToResultKeepsOnlyDefinedFields(t *testing.T) {
	intervals := []domain.TagInterval{
		interval("km", intPtr(1000), nil),
		interval("days", nil, intPtr(30)),
	}
	records := []domain.MaintenanceRecord{record("r1", 9500, daysAgo(10), "km", "days")}

	statuses := Evaluate(records, intervals, 10000, evalNow, DefaultEvaluationPolicy())
	require.Len(t, statuses, 2)

	byTag := map[string]domain.OdoCheckResult{}
	for i := range statuses {
		res := statuses[i].ToResult()
		byTag[res.TagID] = res
	}

	require.NotNil(t, byTag["km"].KmUntilDue)
	assert.Nil(t, byTag["km"].DaysUntilDue)
	assert.Nil(t, byTag["days"].KmUntilDue)
	require.NotNil(t, byTag["days"].DaysUntilDue)
	assert.Equal(t, 20, *byTag["days"].DaysUntilDue)
}
