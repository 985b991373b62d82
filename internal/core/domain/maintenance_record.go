package domain

import (
	"time"
)

// swagger:model domain.MaintenanceRecord
type MaintenanceRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id" validate:"required"`
	Date       time.Time `json:"date" validate:"required"`
	Kilometers int       `json:"kilometers" validate:"min=0"`
	TagIDs     []string  `json:"tag_ids" validate:"required,min=1,dive,required"`
	Photo      *string   `json:"photo,omitempty"`
	Notes      *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasTag reports whether the record services the given tag interval.
func (r *MaintenanceRecord) HasTag(tagID string) bool {
	for _, id := range r.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// MaintenanceRecordPatch holds a partial update. Nil fields are left untouched
// and never reach the store.
type MaintenanceRecordPatch struct {
	Date       *time.Time `validate:"omitempty"`
	Kilometers *int       `validate:"omitempty,min=0"`
	TagIDs     []string   `validate:"omitempty,min=1,dive,required"`
	Photo      *string
	Notes      *string `validate:"omitempty,max=2000"`
}

func (p MaintenanceRecordPatch) IsEmpty() bool {
	return p.Date == nil && p.Kilometers == nil && p.TagIDs == nil && p.Photo == nil && p.Notes == nil
}

// Photo is an image attached to a new maintenance record.
type Photo struct {
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
}
