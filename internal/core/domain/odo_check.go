package domain

import (
	"time"
)

// swagger:model domain.OdoCheckResult
type OdoCheckResult struct {
	TagID        string           `json:"tag_id"`
	TagName      string           `json:"tag_name"`
	Status       MaintenanceState `json:"status"`
	KmUntilDue   *int             `json:"km_until_due,omitempty"`
	DaysUntilDue *int             `json:"days_until_due,omitempty"`
}

// OdoCheckRecord is an immutable snapshot of one odometer check.
// swagger:model domain.OdoCheckRecord
type OdoCheckRecord struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id"`
	Date       time.Time        `json:"date"`
	Kilometers int              `json:"kilometers"`
	Results    []OdoCheckResult `json:"results"`
	CreatedAt  time.Time        `json:"created_at"`
}
