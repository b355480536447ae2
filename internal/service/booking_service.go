// Package service composes the booking core: conflict detection, the
// approval workflow, attendance windows and penalty tracking behind one
// façade. Every operation is one read-validate-write pass; the repositories
// provide the atomicity.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/approval"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/attendance"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/cache"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/conflict"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/domain"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/events"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/metrics"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/models"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/penalty"
)

// EventPublisher publishes domain events after a transition committed.
type EventPublisher interface {
	Publish(events.Event)
}

// AvailabilityStore caches day-availability read models per facility.
// *cache.AvailabilityCache implements it.
type AvailabilityStore interface {
	Get(ctx context.Context, facilityID uuid.UUID, date time.Time) ([]cache.Interval, bool)
	Set(ctx context.Context, facilityID uuid.UUID, date time.Time, intervals []cache.Interval)
	Invalidate(ctx context.Context, facilityID uuid.UUID, date time.Time)
}

// BookingService is the façade over the booking lifecycle.
type BookingService struct {
	bookings   domain.BookingRepository
	users      domain.UserRepository
	facilities domain.FacilityRepository

	detector  *conflict.Detector
	workflow  *approval.Workflow
	enforcer  *attendance.Enforcer
	penalties *penalty.Tracker

	clock  domain.Clock
	bus    EventPublisher
	avail  AvailabilityStore
	logger zerolog.Logger
}

// NewBookingService wires the façade. avail may be a zero-value cache when
// redis is not configured.
func NewBookingService(
	bookings domain.BookingRepository,
	users domain.UserRepository,
	facilities domain.FacilityRepository,
	detector *conflict.Detector,
	workflow *approval.Workflow,
	enforcer *attendance.Enforcer,
	penalties *penalty.Tracker,
	clock domain.Clock,
	bus EventPublisher,
	avail AvailabilityStore,
	logger zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookings:   bookings,
		users:      users,
		facilities: facilities,
		detector:   detector,
		workflow:   workflow,
		enforcer:   enforcer,
		penalties:  penalties,
		clock:      clock,
		bus:        bus,
		avail:      avail,
		logger:     logger.With().Str("component", "booking_service").Logger(),
	}
}

// CreateRequest carries the parameters of a new booking request.
type CreateRequest struct {
	RequesterID   uuid.UUID
	FacilityID    uuid.UUID
	Date          time.Time
	Start         models.TimeOfDay
	End           models.TimeOfDay
	Purpose       string
	Participants  int
	LecturerEmail string
}

// Create validates a booking request and persists it in its role-dependent
// initial state. The conflict check here is advisory: two overlapping
// requests may both be accepted, and the slot is only claimed exclusively
// at admin approval.
func (s *BookingService) Create(ctx context.Context, req CreateRequest) (*models.Booking, error) {
	requester, err := s.getUser(ctx, req.RequesterID)
	if err != nil {
		return nil, err
	}

	wasBlocked := requester.IsBlocked
	if err := s.penalties.CanBook(requester); err != nil {
		return nil, err
	}
	if wasBlocked && !requester.IsBlocked {
		// Block auto-expired during the read; persist the cleared flags.
		if uerr := s.users.UpdateUser(ctx, requester); uerr != nil {
			s.logger.Error().Err(uerr).
				Str("user_id", requester.ID.String()).
				Msg("failed to persist expired block")
		}
	}

	facility, err := s.getFacility(ctx, req.FacilityID)
	if err != nil {
		return nil, err
	}
	if !facility.IsAvailable {
		return nil, domain.Validationf("facility_unavailable", "facility %s is not available", facility.Name)
	}

	// Calendar-date comparisons: the request date is a UTC-midnight
	// date-only value while now is campus-local, so comparing instants
	// would skew by the zone offset.
	now := s.clock.Now().In(facility.Location())
	date := models.DateOnly(req.Date)
	if models.DateBefore(date, now) {
		return nil, domain.Validationf("past_date", "booking date %s is in the past", date.Format("2006-01-02"))
	}
	horizon := models.RoleHorizonDays[requester.Role]
	if models.DateBefore(now.AddDate(0, 0, horizon), date) {
		return nil, domain.Validationf("horizon_exceeded",
			"%s accounts may book at most %d days ahead", requester.Role, horizon)
	}

	if req.Start >= req.End {
		return nil, domain.Validationf("time_range", "start time %s must be before end time %s", req.Start, req.End)
	}
	if !facility.WithinWorkingHours(req.Start, req.End) {
		return nil, domain.Validationf("working_hours",
			"requested range %s-%s is outside working hours %s-%s",
			req.Start, req.End, facility.OpenTime, facility.CloseTime)
	}
	if req.Participants < 1 {
		return nil, domain.Validationf("participants", "participant count must be positive")
	}
	if facility.Capacity > 0 && req.Participants > facility.Capacity {
		return nil, domain.Validationf("capacity",
			"%d participants exceed facility capacity %d", req.Participants, facility.Capacity)
	}

	if requester.Role == models.RoleStudent {
		if req.LecturerEmail == "" {
			return nil, domain.Validationf("lecturer_email", "student bookings require a lecturer email")
		}
		lecturer, lerr := s.users.GetUserByEmail(ctx, req.LecturerEmail)
		switch {
		case lerr == nil:
			if lecturer.Role != models.RoleLecturer {
				return nil, domain.Validationf("lecturer_email",
					"%s is not a lecturer account", req.LecturerEmail)
			}
		case errors.Is(lerr, domain.ErrNotFound):
			// Unknown address is accepted; the lecturer may register later.
		default:
			return nil, fmt.Errorf("resolve lecturer email: %w", lerr)
		}
	}

	conflicting, err := s.detector.HasConflict(ctx, facility.ID, date, req.Start, req.End, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if conflicting {
		return nil, domain.Validationf("slot_conflict",
			"facility %s is already booked for %s %s-%s",
			facility.Name, date.Format("2006-01-02"), req.Start, req.End)
	}

	booking := &models.Booking{
		ID:            uuid.New(),
		Code:          models.NewBookingCode(date),
		FacilityID:    facility.ID,
		Date:          date,
		StartTime:     req.Start,
		EndTime:       req.End,
		RequesterID:   requester.ID,
		RequesterRole: requester.Role,
		LecturerEmail: req.LecturerEmail,
		Participants:  req.Participants,
		Purpose:       req.Purpose,
		Status:        models.RoleInitialStatus[requester.Role],
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	metrics.IncBookingCreated(string(booking.Status))
	s.avail.Invalidate(ctx, facility.ID, date)
	s.bus.Publish(events.Event{
		Type:      events.TypeBookingCreated,
		BookingID: booking.ID,
		UserID:    requester.ID,
		Detail:    booking.Code,
	})

	s.logger.Info().
		Str("booking", booking.Code).
		Str("status", string(booking.Status)).
		Str("facility", facility.Name).
		Msg("booking created")
	return booking, nil
}

func (s *BookingService) getUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Kind: "user", ID: id.String()}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *BookingService) getFacility(ctx context.Context, id uuid.UUID) (*models.Facility, error) {
	f, err := s.facilities.GetFacility(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Kind: "facility", ID: id.String()}
		}
		return nil, fmt.Errorf("get facility: %w", err)
	}
	return f, nil
}

func (s *BookingService) getBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	b, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Kind: "booking", ID: id.String()}
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}
