package penalty

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/domain"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/models"
)

func newTestTracker(now time.Time) *Tracker {
	return NewTracker(domain.FixedClock{T: now}, DefaultNoShowLimit, DefaultBlockDuration, zerolog.New(io.Discard))
}

func activeUser() *models.User {
	return &models.User{
		ID:          uuid.New(),
		Email:       "student@uni.edu",
		Role:        models.RoleStudent,
		IsActive:    true,
		IsConfirmed: true,
	}
}

func TestRecordNoShow(t *testing.T) {
	now := time.Date(2030, 3, 10, 9, 20, 0, 0, time.UTC)
	tracker := newTestTracker(now)
	u := activeUser()

	for i := 1; i <= 3; i++ {
		blocked := tracker.RecordNoShow(u)
		assert.False(t, blocked, "no block before the limit")
		assert.Equal(t, i, u.NoShowCount)
		assert.False(t, u.IsBlocked)
	}

	blocked := tracker.RecordNoShow(u)
	assert.True(t, blocked, "fourth no-show blocks the account")
	assert.Equal(t, 4, u.NoShowCount)
	assert.True(t, u.IsBlocked)
	assert.Equal(t, "exceeded no-show limit", u.BlockedReason)
	if assert.NotNil(t, u.BlockedUntil) {
		assert.Equal(t, now.Add(30*24*time.Hour), *u.BlockedUntil)
	}

	// Further no-shows keep counting but do not re-block.
	blocked = tracker.RecordNoShow(u)
	assert.False(t, blocked)
	assert.Equal(t, 5, u.NoShowCount)
}

func TestBlockAutoExpiry(t *testing.T) {
	now := time.Date(2030, 3, 10, 9, 0, 0, 0, time.UTC)
	u := activeUser()

	tracker := newTestTracker(now)
	for i := 0; i < 4; i++ {
		tracker.RecordNoShow(u)
	}
	assert.True(t, tracker.IsCurrentlyBlocked(u))
	assert.Error(t, tracker.CanBook(u))

	// One second before expiry the block still holds.
	later := newTestTracker(now.Add(30*24*time.Hour - time.Second))
	assert.True(t, later.IsCurrentlyBlocked(u))

	// At expiry the read lazily clears the flags but not the counter.
	expired := newTestTracker(now.Add(30 * 24 * time.Hour))
	assert.False(t, expired.IsCurrentlyBlocked(u))
	assert.False(t, u.IsBlocked)
	assert.Empty(t, u.BlockedReason)
	assert.Nil(t, u.BlockedUntil)
	assert.Equal(t, 4, u.NoShowCount, "auto-expiry must not reset the counter")
	assert.NoError(t, expired.CanBook(u))
}

func TestCanBook(t *testing.T) {
	now := time.Date(2030, 3, 10, 9, 0, 0, 0, time.UTC)
	tracker := newTestTracker(now)

	u := activeUser()
	assert.NoError(t, tracker.CanBook(u))

	inactive := activeUser()
	inactive.IsActive = false
	err := tracker.CanBook(inactive)
	assert.True(t, domain.IsValidation(err))

	unconfirmed := activeUser()
	unconfirmed.IsConfirmed = false
	assert.True(t, domain.IsValidation(tracker.CanBook(unconfirmed)))
}

func TestManualBlockUnblock(t *testing.T) {
	now := time.Date(2030, 3, 10, 9, 0, 0, 0, time.UTC)
	tracker := newTestTracker(now)
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	u := activeUser()
	u.NoShowCount = 2

	until := now.Add(7 * 24 * time.Hour)
	assert.NoError(t, tracker.Block(u, admin, "vandalism report", until))
	assert.True(t, u.IsBlocked)
	assert.Equal(t, admin.ID, u.BlockedBy)
	assert.Error(t, tracker.CanBook(u))

	assert.NoError(t, tracker.Unblock(u, admin))
	assert.False(t, u.IsBlocked)
	assert.Equal(t, 2, u.NoShowCount, "unblock must not reset the counter")

	assert.NoError(t, tracker.ResetNoShows(u, admin))
	assert.Zero(t, u.NoShowCount)

	student := activeUser()
	assert.True(t, domain.IsAuthorization(tracker.Block(u, student, "x", until)))
	assert.True(t, domain.IsAuthorization(tracker.Unblock(u, student)))
	assert.True(t, domain.IsAuthorization(tracker.ResetNoShows(u, student)))
}
