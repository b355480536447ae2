package models

import (
	"time"

	"github.com/google/uuid"
)

// Facility is a bookable room or resource. Read-only from the booking core's
// perspective; its campus defines the working-hours window and the local
// time zone attendance windows are evaluated in.
type Facility struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	CampusID    uuid.UUID `json:"campus_id"`
	Capacity    int       `json:"capacity"`
	IsAvailable bool      `json:"is_available"`

	OpenTime  TimeOfDay `json:"open_time"`
	CloseTime TimeOfDay `json:"close_time"`
	Timezone  string    `json:"timezone"` // IANA name, e.g. "Asia/Ho_Chi_Minh"
}

// Location resolves the campus time zone, falling back to UTC when the name
// is missing or unknown.
func (f *Facility) Location() *time.Location {
	if f.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WithinWorkingHours reports whether [start, end) lies inside the campus
// working-hours window.
func (f *Facility) WithinWorkingHours(start, end TimeOfDay) bool {
	return start >= f.OpenTime && end <= f.CloseTime
}
