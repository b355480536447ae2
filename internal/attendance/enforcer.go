// Package attendance evaluates check-in and check-out grace windows against
// the campus-local clock and applies the resulting booking transition.
package attendance

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/domain"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/models"
)

// GracePeriod is how long after the scheduled start (check-in) or end
// (check-out) the corresponding action is still accepted.
const GracePeriod = 15 * time.Minute

// Enforcer mutates bookings in memory; the caller persists the result,
// together with the penalty update when a window was missed.
type Enforcer struct {
	clock  domain.Clock
	logger zerolog.Logger
}

// NewEnforcer creates an enforcer using the injected clock.
func NewEnforcer(clock domain.Clock, logger zerolog.Logger) *Enforcer {
	return &Enforcer{
		clock:  clock,
		logger: logger.With().Str("component", "attendance").Logger(),
	}
}

// CheckIn applies the check-in window to an approved booking. Inside the
// window the booking moves to in-use. After the window it moves to no-show
// and noShow=true tells the caller to record the penalty and persist both
// mutations atomically; the returned error still reports the miss.
func (e *Enforcer) CheckIn(b *models.Booking, f *models.Facility, actor *models.User) (noShow bool, err error) {
	if actor.ID != b.RequesterID {
		return false, domain.Authorizationf("only the owner may check in booking %s", b.Code)
	}
	switch b.Status {
	case models.StatusApproved:
	case models.StatusInUse:
		return false, domain.Validationf("check_in", "booking %s is already checked in", b.Code)
	default:
		return false, domain.Validationf("check_in", "booking %s is %s, not approved", b.Code, b.Status)
	}

	loc := f.Location()
	now := e.clock.Now().In(loc)
	windowStart := b.StartTime.On(b.Date, loc)
	windowEnd := windowStart.Add(GracePeriod)

	switch {
	case now.Before(windowStart):
		return false, domain.Validationf("check_in_early",
			"check-in for booking %s is not yet available, opens at %s", b.Code, windowStart.Format("15:04"))
	case now.After(windowEnd):
		e.markNoShow(b, now, "check-in window missed")
		return true, domain.Validationf("check_in_expired",
			"check-in window for booking %s closed at %s; booking marked as no-show",
			b.Code, windowEnd.Format("15:04"))
	}

	checkedAt := now
	b.Status = models.StatusInUse
	b.CheckInAt = &checkedAt
	b.CheckInBy = actor.ID
	b.UpdatedAt = now

	e.logger.Info().
		Str("booking", b.Code).
		Time("at", now).
		Msg("checked in")
	return false, nil
}

// CheckOut applies the check-out window to an in-use booking, with the same
// three-way outcome as CheckIn. Checking out before checking in is always
// rejected regardless of window; checking out twice is rejected.
func (e *Enforcer) CheckOut(b *models.Booking, f *models.Facility, actor *models.User) (noShow bool, err error) {
	if actor.ID != b.RequesterID {
		return false, domain.Authorizationf("only the owner may check out booking %s", b.Code)
	}
	switch b.Status {
	case models.StatusInUse:
	case models.StatusApproved, models.StatusPending, models.StatusWaitingLecturerApproval:
		return false, domain.Validationf("check_out", "booking %s has not been checked in", b.Code)
	case models.StatusCompleted:
		return false, domain.Validationf("check_out", "booking %s is already checked out", b.Code)
	default:
		return false, domain.Validationf("check_out", "booking %s is %s, not in use", b.Code, b.Status)
	}

	loc := f.Location()
	now := e.clock.Now().In(loc)
	windowStart := b.EndTime.On(b.Date, loc)
	windowEnd := windowStart.Add(GracePeriod)

	switch {
	case now.Before(windowStart):
		return false, domain.Validationf("check_out_early",
			"check-out for booking %s is not yet available, opens at %s", b.Code, windowStart.Format("15:04"))
	case now.After(windowEnd):
		e.markNoShow(b, now, "check-out window missed")
		return true, domain.Validationf("check_out_expired",
			"check-out window for booking %s closed at %s; booking marked as no-show",
			b.Code, windowEnd.Format("15:04"))
	}

	checkedAt := now
	b.Status = models.StatusCompleted
	b.CheckOutAt = &checkedAt
	b.CheckOutBy = actor.ID
	b.Resolve(models.ResolutionCompleted, "", actor.ID, now)
	b.UpdatedAt = now

	e.logger.Info().
		Str("booking", b.Code).
		Time("at", now).
		Msg("checked out")
	return false, nil
}

func (e *Enforcer) markNoShow(b *models.Booking, now time.Time, reason string) {
	b.Status = models.StatusNoShow
	b.Resolve(models.ResolutionNoShow, reason, b.RequesterID, now)
	b.UpdatedAt = now

	e.logger.Warn().
		Str("booking", b.Code).
		Str("reason", reason).
		Msg("booking marked as no-show")
}
