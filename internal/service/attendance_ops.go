package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/events"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/metrics"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/models"
)

// CheckIn marks attendance at the start of a booking. A missed window is
// not merely an error: the booking is committed as a no-show and the
// owner's penalty recorded before the error returns, so callers must not
// assume an error means nothing changed.
func (s *BookingService) CheckIn(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error) {
	return s.attend(ctx, bookingID, actorID, "check_in")
}

// CheckOut marks attendance at the end of a booking, with the same no-show
// semantics as CheckIn.
func (s *BookingService) CheckOut(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error) {
	return s.attend(ctx, bookingID, actorID, "check_out")
}

func (s *BookingService) attend(ctx context.Context, bookingID, actorID uuid.UUID, action string) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	actor, err := s.getUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	facility, err := s.getFacility(ctx, booking.FacilityID)
	if err != nil {
		return nil, err
	}

	var noShow bool
	var werr error
	if action == "check_in" {
		noShow, werr = s.enforcer.CheckIn(booking, facility, actor)
	} else {
		noShow, werr = s.enforcer.CheckOut(booking, facility, actor)
	}

	if noShow {
		// The no-show transition and the penalty must commit together.
		newlyBlocked := s.penalties.RecordNoShow(actor)
		if perr := s.bookings.UpdateBookingAndUser(ctx, booking, actor); perr != nil {
			return nil, fmt.Errorf("persist no-show: %w", perr)
		}
		s.avail.Invalidate(ctx, booking.FacilityID, booking.Date)

		metrics.IncAttendance(action, "no_show")
		metrics.IncNoShow()
		s.bus.Publish(events.Event{
			Type:      events.TypeNoShow,
			BookingID: booking.ID,
			UserID:    actor.ID,
			Detail:    action,
		})
		if newlyBlocked {
			metrics.IncUserBlocked()
			s.bus.Publish(events.Event{
				Type:   events.TypeUserBlocked,
				UserID: actor.ID,
				Detail: actor.BlockedReason,
			})
		}

		s.logger.Warn().
			Str("booking", booking.Code).
			Str("action", action).
			Int("no_show_count", actor.NoShowCount).
			Bool("newly_blocked", newlyBlocked).
			Msg("attendance window missed")
		return booking, werr
	}

	if werr != nil {
		// Guard failure; nothing was mutated.
		metrics.IncAttendance(action, "rejected")
		return nil, werr
	}

	if err := s.bookings.UpdateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("persist %s: %w", action, err)
	}
	s.avail.Invalidate(ctx, booking.FacilityID, booking.Date)

	eventType := events.TypeCheckedIn
	if action == "check_out" {
		eventType = events.TypeCheckedOut
	}
	metrics.IncAttendance(action, "ok")
	s.bus.Publish(events.Event{
		Type:      eventType,
		BookingID: booking.ID,
		UserID:    actor.ID,
	})

	s.logger.Info().
		Str("booking", booking.Code).
		Str("action", action).
		Msg("attendance recorded")
	return booking, nil
}
