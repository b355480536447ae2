package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/events"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/metrics"
)

// BlockUser applies a manual admin block, independent of no-show
// accumulation. It does not touch the no-show counter.
func (s *BookingService) BlockUser(ctx context.Context, userID, actorID uuid.UUID, reason string, until time.Time) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	actor, err := s.getUser(ctx, actorID)
	if err != nil {
		return err
	}

	if err := s.penalties.Block(user, actor, reason, until); err != nil {
		return err
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("persist block: %w", err)
	}

	metrics.IncUserBlocked()
	s.bus.Publish(events.Event{
		Type:   events.TypeUserBlocked,
		UserID: user.ID,
		Detail: reason,
	})
	return nil
}

// UnblockUser lifts a block. The no-show counter survives the unblock.
func (s *BookingService) UnblockUser(ctx context.Context, userID, actorID uuid.UUID) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	actor, err := s.getUser(ctx, actorID)
	if err != nil {
		return err
	}

	if err := s.penalties.Unblock(user, actor); err != nil {
		return err
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("persist unblock: %w", err)
	}
	return nil
}

// ResetNoShows zeroes a user's no-show counter. Explicit admin action only;
// unblocking never implies it.
func (s *BookingService) ResetNoShows(ctx context.Context, userID, actorID uuid.UUID) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	actor, err := s.getUser(ctx, actorID)
	if err != nil {
		return err
	}

	if err := s.penalties.ResetNoShows(user, actor); err != nil {
		return err
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("persist no-show reset: %w", err)
	}
	return nil
}
