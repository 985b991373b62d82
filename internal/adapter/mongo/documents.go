package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
)

// Optional fields use omitempty pointers so an unset value is never written.

type recordDocument struct {
	ID         string    `bson:"_id"`
	UserID     string    `bson:"user_id"`
	Date       time.Time `bson:"date"`
	Kilometers int       `bson:"kilometers"`
	TagIDs     []string  `bson:"tag_ids"`
	Photo      *string   `bson:"photo,omitempty"`
	Notes      *string   `bson:"notes,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

type tagDocument struct {
	ID         string    `bson:"_id"`
	UserID     string    `bson:"user_id"`
	Name       string    `bson:"name"`
	Kilometers *int      `bson:"kilometers,omitempty"`
	Days       *int      `bson:"days,omitempty"`
	Enabled    bool      `bson:"enabled"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

type checkResultDocument struct {
	TagID        string `bson:"tag_id"`
	TagName      string `bson:"tag_name"`
	Status       string `bson:"status"`
	KmUntilDue   *int   `bson:"km_until_due,omitempty"`
	DaysUntilDue *int   `bson:"days_until_due,omitempty"`
}

type checkDocument struct {
	ID         string                `bson:"_id"`
	UserID     string                `bson:"user_id"`
	Date       time.Time             `bson:"date"`
	Kilometers int                   `bson:"kilometers"`
	Results    []checkResultDocument `bson:"results"`
	CreatedAt  time.Time             `bson:"created_at"`
}

func newRecordDocument(r *domain.MaintenanceRecord) recordDocument {
	return recordDocument{
		ID:         r.ID,
		UserID:     r.UserID,
		Date:       r.Date.UTC(),
		Kilometers: r.Kilometers,
		TagIDs:     r.TagIDs,
		Photo:      r.Photo,
		Notes:      r.Notes,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

func (d recordDocument) toDomain() *domain.MaintenanceRecord {
	return &domain.MaintenanceRecord{
		ID:         d.ID,
		UserID:     d.UserID,
		Date:       d.Date,
		Kilometers: d.Kilometers,
		TagIDs:     d.TagIDs,
		Photo:      d.Photo,
		Notes:      d.Notes,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func newTagDocument(t *domain.TagInterval) tagDocument {
	return tagDocument{
		ID:         t.ID,
		UserID:     t.UserID,
		Name:       t.Name,
		Kilometers: t.Kilometers,
		Days:       t.Days,
		Enabled:    t.Enabled,
		CreatedAt:  t.CreatedAt.UTC(),
		UpdatedAt:  t.UpdatedAt.UTC(),
	}
}

func (d tagDocument) toDomain() *domain.TagInterval {
	return &domain.TagInterval{
		ID:         d.ID,
		UserID:     d.UserID,
		Name:       d.Name,
		Kilometers: d.Kilometers,
		Days:       d.Days,
		Enabled:    d.Enabled,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func newCheckDocument(c *domain.OdoCheckRecord) checkDocument {
	results := make([]checkResultDocument, len(c.Results))
	for i, r := range c.Results {
		results[i] = checkResultDocument{
			TagID:        r.TagID,
			TagName:      r.TagName,
			Status:       string(r.Status),
			KmUntilDue:   r.KmUntilDue,
			DaysUntilDue: r.DaysUntilDue,
		}
	}
	return checkDocument{
		ID:         c.ID,
		UserID:     c.UserID,
		Date:       c.Date.UTC(),
		Kilometers: c.Kilometers,
		Results:    results,
		CreatedAt:  c.CreatedAt.UTC(),
	}
}

func (d checkDocument) toDomain() *domain.OdoCheckRecord {
	results := make([]domain.OdoCheckResult, len(d.Results))
	for i, r := range d.Results {
		results[i] = domain.OdoCheckResult{
			TagID:        r.TagID,
			TagName:      r.TagName,
			Status:       domain.MaintenanceState(r.Status),
			KmUntilDue:   r.KmUntilDue,
			DaysUntilDue: r.DaysUntilDue,
		}
	}
	return &domain.OdoCheckRecord{
		ID:         d.ID,
		UserID:     d.UserID,
		Date:       d.Date,
		Kilometers: d.Kilometers,
		Results:    results,
		CreatedAt:  d.CreatedAt,
	}
}

// recordPatchSet builds the $set document for the fields present in patch.
func recordPatchSet(patch domain.MaintenanceRecordPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now.UTC()}
	if patch.Date != nil {
		set["date"] = patch.Date.UTC()
	}
	if patch.Kilometers != nil {
		set["kilometers"] = *patch.Kilometers
	}
	if patch.TagIDs != nil {
		set["tag_ids"] = patch.TagIDs
	}
	if patch.Photo != nil {
		set["photo"] = *patch.Photo
	}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	}
	return set
}

func tagPatchSet(patch domain.TagIntervalPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now.UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Kilometers != nil {
		set["kilometers"] = *patch.Kilometers
	}
	if patch.Days != nil {
		set["days"] = *patch.Days
	}
	if patch.Enabled != nil {
		set["enabled"] = *patch.Enabled
	}
	return set
}
