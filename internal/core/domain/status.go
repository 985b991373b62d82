package domain

type MaintenanceState string

const (
	StatusOverdue MaintenanceState = "overdue"
	StatusDueSoon MaintenanceState = "due-soon"
	StatusOK      MaintenanceState = "ok"
)

// Priority orders states from most to least urgent.
func (s MaintenanceState) Priority() int {
	switch s {
	case StatusOverdue:
		return 0
	case StatusDueSoon:
		return 1
	default:
		return 2
	}
}

// MaintenanceStatus is the live evaluation of one tag interval.
type MaintenanceStatus struct {
	Tag                      string             `json:"tag"`
	LastMaintenance          *MaintenanceRecord `json:"last_maintenance,omitempty"`
	KmSinceLastMaintenance   int                `json:"km_since_last_maintenance"`
	DaysSinceLastMaintenance int                `json:"days_since_last_maintenance"`
	KmUntilDue               *int               `json:"km_until_due,omitempty"`
	DaysUntilDue             *int               `json:"days_until_due,omitempty"`
	Status                   MaintenanceState   `json:"status"`
	Interval                 TagInterval        `json:"interval"`
}

// Progress returns how much of the distance interval has been used, in percent,
// clamped to [0, 100].
func (s *MaintenanceStatus) Progress() float64 {
	if !s.Interval.HasDistance() || s.LastMaintenance == nil {
		return 0
	}
	p := float64(s.KmSinceLastMaintenance) / float64(*s.Interval.Kilometers) * 100
	return min(max(p, 0), 100)
}

// ToResult drops the fields that are not kept in check history.
func (s *MaintenanceStatus) ToResult() OdoCheckResult {
	return OdoCheckResult{
		TagID:        s.Interval.ID,
		TagName:      s.Tag,
		Status:       s.Status,
		KmUntilDue:   s.KmUntilDue,
		DaysUntilDue: s.DaysUntilDue,
	}
}
