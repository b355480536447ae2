package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/domain"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/events"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/metrics"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/models"
)

// LecturerApprove applies the assigned lecturer's decision to a booking
// awaiting it. Approval forwards the booking to the admin queue; rejection
// is terminal.
func (s *BookingService) LecturerApprove(ctx context.Context, bookingID, actorID uuid.UUID, approved bool, comment string) (*models.Booking, error) {
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
	now := s.clock.Now().In(facility.Location())

	if err := s.workflow.LecturerDecide(booking, actor, approved, comment, now); err != nil {
		return nil, err
	}
	if err := s.bookings.UpdateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("persist lecturer decision: %w", err)
	}

	decision := "approved"
	if !approved {
		decision = "rejected"
		s.avail.Invalidate(ctx, booking.FacilityID, booking.Date)
	}
	metrics.IncApprovalDecision("lecturer", decision)
	s.bus.Publish(events.Event{
		Type:      events.TypeLecturerDecision,
		BookingID: booking.ID,
		UserID:    booking.RequesterID,
		Detail:    decision,
	})

	s.logger.Info().
		Str("booking", booking.Code).
		Str("decision", decision).
		Msg("lecturer decision applied")
	return booking, nil
}

// AdminApprove applies the admin decision. The approve path re-checks for
// claiming bookings (approved, in-use, completed, no-show — rival pending
// requests do not block) inside the store's serialized transaction, so of
// any set of mutually conflicting pending bookings exactly one can reach
// approved. The losers stay pending until an admin rejects or cancels them;
// conflicts are never auto-resolved.
func (s *BookingService) AdminApprove(ctx context.Context, bookingID, actorID uuid.UUID, approved bool, comment string) (*models.Booking, error) {
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
	now := s.clock.Now().In(facility.Location())

	if !approved {
		if err := s.workflow.AdminReject(booking, actor, comment, now); err != nil {
			return nil, err
		}
		if err := s.bookings.UpdateBooking(ctx, booking); err != nil {
			return nil, fmt.Errorf("persist admin rejection: %w", err)
		}
		metrics.IncApprovalDecision("admin", "rejected")
		s.avail.Invalidate(ctx, booking.FacilityID, booking.Date)
		s.bus.Publish(events.Event{
			Type:      events.TypeAdminDecision,
			BookingID: booking.ID,
			UserID:    booking.RequesterID,
			Detail:    "rejected",
		})
		s.logger.Info().Str("booking", booking.Code).Msg("booking rejected by admin")
		return booking, nil
	}

	if err := s.workflow.GuardAdminDecision(booking, actor, now); err != nil {
		return nil, err
	}
	if err := s.workflow.MarkAdminApproved(booking, actor, now); err != nil {
		return nil, err
	}

	if err := s.bookings.ApproveExclusive(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			metrics.IncApprovalDecision("admin", "conflict")
			// The stored booking is untouched and stays pending; resolving
			// the collision is a human reject/cancel decision.
			return nil, domain.Validationf("slot_conflict",
				"an overlapping booking for this facility and date is already approved; booking %s remains pending",
				booking.Code)
		}
		return nil, fmt.Errorf("approve booking: %w", err)
	}

	metrics.IncApprovalDecision("admin", "approved")
	s.avail.Invalidate(ctx, booking.FacilityID, booking.Date)
	s.bus.Publish(events.Event{
		Type:      events.TypeAdminDecision,
		BookingID: booking.ID,
		UserID:    booking.RequesterID,
		Detail:    "approved",
	})

	s.logger.Info().Str("booking", booking.Code).Msg("booking approved by admin")
	return booking, nil
}

// Cancel terminates a booking on an admin's authority. Completed and
// already-cancelled bookings cannot be cancelled.
func (s *BookingService) Cancel(ctx context.Context, bookingID, actorID uuid.UUID, reason string) (*models.Booking, error) {
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
	now := s.clock.Now().In(facility.Location())

	if err := s.workflow.Cancel(booking, actor, reason, now); err != nil {
		return nil, err
	}
	if err := s.bookings.UpdateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("persist cancellation: %w", err)
	}

	metrics.IncBookingCancelled()
	s.avail.Invalidate(ctx, booking.FacilityID, booking.Date)
	s.bus.Publish(events.Event{
		Type:      events.TypeCancelled,
		BookingID: booking.ID,
		UserID:    booking.RequesterID,
		Detail:    reason,
	})

	s.logger.Info().
		Str("booking", booking.Code).
		Str("reason", reason).
		Msg("booking cancelled")
	return booking, nil
}
