package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResolutionKind tags the terminal outcome recorded on a booking.
type ResolutionKind string

const (
	ResolutionLecturerRejected ResolutionKind = "lecturer_rejected"
	ResolutionAdminRejected    ResolutionKind = "admin_rejected"
	ResolutionCancelled        ResolutionKind = "cancelled"
	ResolutionNoShow           ResolutionKind = "no_show"
	ResolutionCompleted        ResolutionKind = "completed"
)

// Resolution records how a booking reached a terminal status. At most one
// resolution exists per booking; Status remains the source of truth and the
// resolution carries the audit payload for it.
type Resolution struct {
	Kind    ResolutionKind `json:"kind"`
	Reason  string         `json:"reason,omitempty"`
	ActorID uuid.UUID      `json:"actor_id,omitempty"`
	At      time.Time      `json:"at"`
}

// Booking represents a facility reservation request and its full lifecycle.
type Booking struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`

	FacilityID uuid.UUID `json:"facility_id"`
	Date       time.Time `json:"date"` // calendar date, time-of-day ignored
	StartTime  TimeOfDay `json:"start_time"`
	EndTime    TimeOfDay `json:"end_time"`

	RequesterID   uuid.UUID `json:"requester_id"`
	RequesterRole Role      `json:"requester_role"` // captured at creation
	LecturerEmail string    `json:"lecturer_email,omitempty"`
	Participants  int       `json:"participants"`
	Purpose       string    `json:"purpose"`

	Status     Status      `json:"status"`
	Resolution *Resolution `json:"resolution,omitempty"`

	LecturerDecidedBy uuid.UUID  `json:"lecturer_decided_by,omitempty"`
	LecturerDecidedAt *time.Time `json:"lecturer_decided_at,omitempty"`
	AdminDecidedBy    uuid.UUID  `json:"admin_decided_by,omitempty"`
	AdminDecidedAt    *time.Time `json:"admin_decided_at,omitempty"`

	CheckInAt  *time.Time `json:"check_in_at,omitempty"`
	CheckInBy  uuid.UUID  `json:"check_in_by,omitempty"`
	CheckOutAt *time.Time `json:"check_out_at,omitempty"`
	CheckOutBy uuid.UUID  `json:"check_out_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// Overlaps reports whether the booking's time range overlaps [start, end)
// as open intervals: touching endpoints do not overlap.
func (b *Booking) Overlaps(start, end TimeOfDay) bool {
	return b.StartTime < end && b.EndTime > start
}

// Resolve stamps a terminal resolution. The caller sets Status alongside.
func (b *Booking) Resolve(kind ResolutionKind, reason string, actorID uuid.UUID, at time.Time) {
	b.Resolution = &Resolution{Kind: kind, Reason: reason, ActorID: actorID, At: at}
}

// NewBookingCode derives a human-readable code from the booking date plus a
// collision-resistant suffix, e.g. "BKG-20240310-5F3A2C".
func NewBookingCode(date time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:6]
	return fmt.Sprintf("BKG-%s-%s", date.Format("20060102"), suffix)
}
