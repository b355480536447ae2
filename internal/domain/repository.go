package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/models"
)

// BookingRepository is the durable store for bookings. Implementations must
// give read-your-writes consistency and serialize ApproveExclusive calls
// touching the same facility and date.
type BookingRepository interface {
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) error

	// UpdateBooking persists b, guarded by its Version; returns
	// ErrConcurrentModification when the stored version moved on.
	UpdateBooking(ctx context.Context, b *models.Booking) error

	// UpdateBookingAndUser persists a booking transition together with a
	// user penalty mutation as one atomic unit.
	UpdateBookingAndUser(ctx context.Context, b *models.Booking, u *models.User) error

	// ApproveExclusive re-checks slot occupancy and flips the booking to
	// approved inside a single serialized transaction. Returns ErrSlotTaken
	// when an occupying booking overlaps; the stored record is untouched.
	ApproveExclusive(ctx context.Context, b *models.Booking) error

	// FindOverlapping returns bookings on the same facility and date whose
	// time range overlaps [start, end) as open intervals, regardless of
	// status. excludeID, when non-zero, is omitted from the result.
	FindOverlapping(ctx context.Context, facilityID uuid.UUID, date time.Time, start, end models.TimeOfDay, excludeID uuid.UUID) ([]models.Booking, error)

	// ListForDay returns all bookings for a facility and calendar date,
	// ordered by start time.
	ListForDay(ctx context.Context, facilityID uuid.UUID, date time.Time) ([]models.Booking, error)
}

// UserRepository is the durable store for user accounts.
type UserRepository interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
}

// FacilityRepository resolves facilities; read-only for this core.
type FacilityRepository interface {
	GetFacility(ctx context.Context, id uuid.UUID) (*models.Facility, error)
}
