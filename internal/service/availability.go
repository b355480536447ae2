package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/cache"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/models"
)

// DayAvailability returns the occupied intervals on a facility's day,
// ordered by start time. Served from the redis cache when configured.
func (s *BookingService) DayAvailability(ctx context.Context, facilityID uuid.UUID, date time.Time) ([]cache.Interval, error) {
	day := models.DateOnly(date)
	if intervals, ok := s.avail.Get(ctx, facilityID, day); ok {
		return intervals, nil
	}

	bookings, err := s.bookings.ListForDay(ctx, facilityID, day)
	if err != nil {
		return nil, fmt.Errorf("list bookings for day: %w", err)
	}

	intervals := make([]cache.Interval, 0, len(bookings))
	for i := range bookings {
		if !bookings[i].Status.Occupies() {
			continue
		}
		intervals = append(intervals, cache.Interval{
			Start:  bookings[i].StartTime,
			End:    bookings[i].EndTime,
			Status: bookings[i].Status,
		})
	}

	s.avail.Set(ctx, facilityID, day, intervals)
	return intervals, nil
}
