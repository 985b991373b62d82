package domain

import (
	"strings"
	"time"
)

// swagger:model domain.TagInterval
type TagInterval struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id" validate:"required"`
	Name       string    `json:"name" validate:"required,max=100"`
	Kilometers *int      `json:"kilometers,omitempty" validate:"omitempty,min=1,max=1000000"`
	Days       *int      `json:"days,omitempty" validate:"omitempty,min=1,max=36500"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (t *TagInterval) HasDistance() bool {
	return t.Kilometers != nil && *t.Kilometers > 0
}

func (t *TagInterval) HasDuration() bool {
	return t.Days != nil && *t.Days > 0
}

// NormalizedName is the key used for per-user name uniqueness.
func (t *TagInterval) NormalizedName() string {
	return NormalizeTagName(t.Name)
}

func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type TagIntervalPatch struct {
	Name       *string `validate:"omitempty,min=1,max=100"`
	Kilometers *int    `validate:"omitempty,min=1,max=1000000"`
	Days       *int    `validate:"omitempty,min=1,max=36500"`
	Enabled    *bool
}

func (p TagIntervalPatch) IsEmpty() bool {
	return p.Name == nil && p.Kilometers == nil && p.Days == nil && p.Enabled == nil
}

// DefaultTagIntervals are the stock maintenance items offered to new users.
func DefaultTagIntervals() []TagInterval {
	stock := []struct {
		name       string
		kilometers int
		days       int
	}{
		{"Oil Change", 3000, 90},
		{"Air Filter", 6000, 180},
		{"Spark Plug", 8000, 365},
		{"Chain Cleaning", 1000, 30},
		{"Brake Pads", 15000, 730},
		{"Tire Check", 5000, 180},
		{"Battery Check", 10000, 365},
	}

	intervals := make([]TagInterval, len(stock))
	for i, s := range stock {
		km, days := s.kilometers, s.days
		intervals[i] = TagInterval{
			Name:       s.name,
			Kilometers: &km,
			Days:       &days,
			Enabled:    true,
		}
	}
	return intervals
}
