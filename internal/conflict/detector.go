// Package conflict decides whether a requested time slot collides with
// bookings already occupying it.
package conflict

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/models"
)

// OverlapFinder returns bookings whose time range overlaps the requested
// one on the same facility and date, regardless of status.
type OverlapFinder interface {
	FindOverlapping(ctx context.Context, facilityID uuid.UUID, date time.Time, start, end models.TimeOfDay, excludeID uuid.UUID) ([]models.Booking, error)
}

// Detector performs pure conflict reads over an OverlapFinder.
type Detector struct {
	finder OverlapFinder
}

// NewDetector creates a detector backed by the given finder.
func NewDetector(finder OverlapFinder) *Detector {
	return &Detector{finder: finder}
}

// HasConflict reports whether any claiming booking overlaps [start, end) on
// the facility and date. Pending and waiting requests overlap freely and do
// not conflict; approved, in-use, completed and no-show bookings claim the
// slot. excludeID, when non-zero, ignores that booking (used when
// re-checking a booking against its competitors).
func (d *Detector) HasConflict(ctx context.Context, facilityID uuid.UUID, date time.Time, start, end models.TimeOfDay, excludeID uuid.UUID) (bool, error) {
	overlapping, err := d.finder.FindOverlapping(ctx, facilityID, date, start, end, excludeID)
	if err != nil {
		return false, fmt.Errorf("find overlapping bookings: %w", err)
	}
	for i := range overlapping {
		if overlapping[i].Status.Claims() {
			return true, nil
		}
	}
	return false, nil
}
