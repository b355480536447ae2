// Package penalty accumulates no-show counts and applies time-boxed account
// blocks.
package penalty

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/domain"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/models"
)

const (
	// DefaultNoShowLimit is the counter value at which an account is blocked.
	DefaultNoShowLimit = 4
	// DefaultBlockDuration is how long a no-show block lasts.
	DefaultBlockDuration = 30 * 24 * time.Hour

	blockedReasonNoShow = "exceeded no-show limit"
)

// Tracker mutates user standing in memory; persistence stays with the
// caller so that penalty writes share the transaction of the status
// transition that caused them.
type Tracker struct {
	clock         domain.Clock
	noShowLimit   int
	blockDuration time.Duration
	logger        zerolog.Logger
}

// NewTracker creates a tracker. Non-positive limit or duration fall back to
// the defaults.
func NewTracker(clock domain.Clock, noShowLimit int, blockDuration time.Duration, logger zerolog.Logger) *Tracker {
	if noShowLimit <= 0 {
		noShowLimit = DefaultNoShowLimit
	}
	if blockDuration <= 0 {
		blockDuration = DefaultBlockDuration
	}
	return &Tracker{
		clock:         clock,
		noShowLimit:   noShowLimit,
		blockDuration: blockDuration,
		logger:        logger.With().Str("component", "penalty").Logger(),
	}
}

// RecordNoShow increments the user's no-show counter and blocks the account
// once the counter reaches the limit. Returns true when this call newly
// blocked the user.
func (t *Tracker) RecordNoShow(u *models.User) bool {
	now := t.clock.Now()
	u.NoShowCount++
	u.UpdatedAt = now

	newlyBlocked := false
	if u.NoShowCount >= t.noShowLimit && !u.IsBlocked {
		until := now.Add(t.blockDuration)
		u.IsBlocked = true
		u.BlockedUntil = &until
		u.BlockedReason = blockedReasonNoShow
		newlyBlocked = true

		t.logger.Warn().
			Str("user_id", u.ID.String()).
			Int("no_show_count", u.NoShowCount).
			Time("blocked_until", until).
			Msg("user blocked for repeated no-shows")
	}
	return newlyBlocked
}

// IsCurrentlyBlocked reports whether the block is still in force. An elapsed
// block is lazily cleared as a side effect of the read; the no-show counter
// is left alone. The caller persists the user when the flags changed.
func (t *Tracker) IsCurrentlyBlocked(u *models.User) bool {
	if !u.IsBlocked {
		return false
	}
	if u.BlockedUntil != nil && !u.BlockedUntil.After(t.clock.Now()) {
		u.IsBlocked = false
		u.BlockedReason = ""
		u.BlockedUntil = nil
		u.BlockedBy = uuid.Nil
		u.UpdatedAt = t.clock.Now()

		t.logger.Info().
			Str("user_id", u.ID.String()).
			Msg("no-show block expired")
		return false
	}
	return true
}

// CanBook returns nil iff the account is active, confirmed and not
// currently blocked; otherwise a ValidationError naming the violated rule.
func (t *Tracker) CanBook(u *models.User) error {
	if !u.IsActive {
		return domain.Validationf("account_inactive", "account %s is deactivated", u.Email)
	}
	if !u.IsConfirmed {
		return domain.Validationf("account_unconfirmed", "account %s is not confirmed", u.Email)
	}
	if t.IsCurrentlyBlocked(u) {
		until := "further notice"
		if u.BlockedUntil != nil {
			until = u.BlockedUntil.Format(time.RFC3339)
		}
		return domain.Validationf("account_blocked", "account %s is blocked until %s: %s",
			u.Email, until, u.BlockedReason)
	}
	return nil
}

// Block applies a manual admin block, independent of no-show accumulation.
func (t *Tracker) Block(u, actor *models.User, reason string, until time.Time) error {
	if actor.Role != models.RoleAdmin {
		return domain.Authorizationf("only admins may block accounts")
	}
	u.IsBlocked = true
	u.BlockedReason = reason
	u.BlockedUntil = &until
	u.BlockedBy = actor.ID
	u.UpdatedAt = t.clock.Now()

	t.logger.Info().
		Str("user_id", u.ID.String()).
		Str("blocked_by", actor.ID.String()).
		Str("reason", reason).
		Msg("user blocked")
	return nil
}

// Unblock lifts a block. The no-show counter is not reset; history survives
// the unblock.
func (t *Tracker) Unblock(u, actor *models.User) error {
	if actor.Role != models.RoleAdmin {
		return domain.Authorizationf("only admins may unblock accounts")
	}
	u.IsBlocked = false
	u.BlockedReason = ""
	u.BlockedUntil = nil
	u.BlockedBy = uuid.Nil
	u.UpdatedAt = t.clock.Now()

	t.logger.Info().
		Str("user_id", u.ID.String()).
		Str("unblocked_by", actor.ID.String()).
		Msg("user unblocked")
	return nil
}

// ResetNoShows zeroes the counter. A distinct admin operation; nothing in
// the booking lifecycle calls it.
func (t *Tracker) ResetNoShows(u, actor *models.User) error {
	if actor.Role != models.RoleAdmin {
		return domain.Authorizationf("only admins may reset no-show counters")
	}
	u.NoShowCount = 0
	u.UpdatedAt = t.clock.Now()

	t.logger.Info().
		Str("user_id", u.ID.String()).
		Str("reset_by", actor.ID.String()).
		Msg("no-show counter reset")
	return nil
}
