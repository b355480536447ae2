package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/domain"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/models"
)

const dateLayout = "2006-01-02"

const bookingColumns = `id, code, facility_id, date, start_time, end_time,
	requester_id, requester_role, lecturer_email, participants, purpose,
	status, resolution_kind, resolution_reason, resolution_actor_id, resolution_at,
	lecturer_decided_by, lecturer_decided_at, admin_decided_by, admin_decided_at,
	check_in_at, check_in_by, check_out_at, check_out_by,
	created_at, updated_at, version`

// uuidStr stores uuid.Nil as the empty string so optional actor columns
// stay readable in the raw table.
func uuidStr(u uuid.UUID) string {
	if u == uuid.Nil {
		return ""
	}
	return u.String()
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b              models.Booking
		id, facilityID string
		requesterID    string
		date           string
		resKind        string
		resReason      string
		resActor       string
		resAt          sql.NullTime
		lecturerBy     string
		lecturerAt     sql.NullTime
		adminBy        string
		adminAt        sql.NullTime
		checkInAt      sql.NullTime
		checkInBy      string
		checkOutAt     sql.NullTime
		checkOutBy     string
	)

	err := row.Scan(
		&id, &b.Code, &facilityID, &date, &b.StartTime, &b.EndTime,
		&requesterID, &b.RequesterRole, &b.LecturerEmail, &b.Participants, &b.Purpose,
		&b.Status, &resKind, &resReason, &resActor, &resAt,
		&lecturerBy, &lecturerAt, &adminBy, &adminAt,
		&checkInAt, &checkInBy, &checkOutAt, &checkOutBy,
		&b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}

	if b.ID, err = parseUUID(id); err != nil {
		return nil, fmt.Errorf("parse booking id: %w", err)
	}
	if b.FacilityID, err = parseUUID(facilityID); err != nil {
		return nil, fmt.Errorf("parse facility id: %w", err)
	}
	if b.RequesterID, err = parseUUID(requesterID); err != nil {
		return nil, fmt.Errorf("parse requester id: %w", err)
	}
	if b.Date, err = time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("parse booking date: %w", err)
	}

	if resKind != "" {
		actor, err := parseUUID(resActor)
		if err != nil {
			return nil, fmt.Errorf("parse resolution actor: %w", err)
		}
		res := models.Resolution{
			Kind:    models.ResolutionKind(resKind),
			Reason:  resReason,
			ActorID: actor,
		}
		if resAt.Valid {
			res.At = resAt.Time
		}
		b.Resolution = &res
	}

	if b.LecturerDecidedBy, err = parseUUID(lecturerBy); err != nil {
		return nil, fmt.Errorf("parse lecturer actor: %w", err)
	}
	b.LecturerDecidedAt = timePtr(lecturerAt)
	if b.AdminDecidedBy, err = parseUUID(adminBy); err != nil {
		return nil, fmt.Errorf("parse admin actor: %w", err)
	}
	b.AdminDecidedAt = timePtr(adminAt)

	b.CheckInAt = timePtr(checkInAt)
	if b.CheckInBy, err = parseUUID(checkInBy); err != nil {
		return nil, fmt.Errorf("parse check-in actor: %w", err)
	}
	b.CheckOutAt = timePtr(checkOutAt)
	if b.CheckOutBy, err = parseUUID(checkOutBy); err != nil {
		return nil, fmt.Errorf("parse check-out actor: %w", err)
	}

	return &b, nil
}

func bookingArgs(b *models.Booking) []interface{} {
	var resKind, resReason, resActor string
	var resAt sql.NullTime
	if b.Resolution != nil {
		resKind = string(b.Resolution.Kind)
		resReason = b.Resolution.Reason
		resActor = uuidStr(b.Resolution.ActorID)
		resAt = sql.NullTime{Time: b.Resolution.At, Valid: true}
	}
	return []interface{}{
		b.Code, uuidStr(b.FacilityID), b.Date.Format(dateLayout),
		int(b.StartTime), int(b.EndTime),
		uuidStr(b.RequesterID), string(b.RequesterRole), b.LecturerEmail,
		b.Participants, b.Purpose, string(b.Status),
		resKind, resReason, resActor, resAt,
		uuidStr(b.LecturerDecidedBy), nullTime(b.LecturerDecidedAt),
		uuidStr(b.AdminDecidedBy), nullTime(b.AdminDecidedAt),
		nullTime(b.CheckInAt), uuidStr(b.CheckInBy),
		nullTime(b.CheckOutAt), uuidStr(b.CheckOutBy),
	}
}

// GetBooking loads a booking by id.
func (db *DB) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id.String())
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// CreateBooking inserts a new booking at version 1.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	b.Version = 1
	args := append([]interface{}{uuidStr(b.ID)}, bookingArgs(b)...)
	args = append(args, b.CreatedAt, b.UpdatedAt, b.Version)

	_, err := db.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	db.logger.Debug().
		Str("booking_id", b.ID.String()).
		Str("code", b.Code).
		Msg("booking created")
	return nil
}

const updateBookingSQL = `
	UPDATE bookings SET
		code = ?, facility_id = ?, date = ?, start_time = ?, end_time = ?,
		requester_id = ?, requester_role = ?, lecturer_email = ?,
		participants = ?, purpose = ?, status = ?,
		resolution_kind = ?, resolution_reason = ?, resolution_actor_id = ?, resolution_at = ?,
		lecturer_decided_by = ?, lecturer_decided_at = ?,
		admin_decided_by = ?, admin_decided_at = ?,
		check_in_at = ?, check_in_by = ?, check_out_at = ?, check_out_by = ?,
		updated_at = ?, version = version + 1
	WHERE id = ? AND version = ?`

// UpdateBooking persists b guarded by its version and bumps the version on
// success. A stale version returns ErrConcurrentModification.
func (db *DB) UpdateBooking(ctx context.Context, b *models.Booking) error {
	args := append(bookingArgs(b), b.UpdatedAt, uuidStr(b.ID), b.Version)
	result, err := db.ExecContext(ctx, updateBookingSQL, args...)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update booking rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrConcurrentModification
	}
	b.Version++
	return nil
}

// UpdateBookingAndUser persists a booking transition and a user penalty
// mutation in one transaction. Used for no-show commits, which must land
// together or not at all.
func (db *DB) UpdateBookingAndUser(ctx context.Context, b *models.Booking, u *models.User) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	args := append(bookingArgs(b), b.UpdatedAt, uuidStr(b.ID), b.Version)
	result, err := tx.ExecContext(ctx, updateBookingSQL, args...)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update booking rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrConcurrentModification
	}

	if _, err := tx.ExecContext(ctx, updateUserSQL, userArgs(u)...); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	b.Version++
	return nil
}

// ApproveExclusive re-checks for claiming bookings and flips the booking
// inside one write transaction. Only approved, in-use, completed and no-show
// rows count: rival pending requests do not block the first approval. The
// _txlock=immediate DSN option makes concurrent callers queue on the
// engine's writer lock, so the losing approval sees the winner's row and
// gets ErrSlotTaken.
func (db *DB) ApproveExclusive(ctx context.Context, b *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var claiming int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE facility_id = ? AND date = ? AND id <> ?
		  AND start_time < ? AND end_time > ?
		  AND status IN (?, ?, ?, ?)`,
		uuidStr(b.FacilityID), b.Date.Format(dateLayout), uuidStr(b.ID),
		int(b.EndTime), int(b.StartTime),
		string(models.StatusApproved), string(models.StatusInUse),
		string(models.StatusCompleted), string(models.StatusNoShow),
	).Scan(&claiming)
	if err != nil {
		return fmt.Errorf("check claiming bookings: %w", err)
	}
	if claiming > 0 {
		return domain.ErrSlotTaken
	}

	args := append(bookingArgs(b), b.UpdatedAt, uuidStr(b.ID), b.Version)
	result, err := tx.ExecContext(ctx, updateBookingSQL, args...)
	if err != nil {
		return fmt.Errorf("approve booking: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("approve booking rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrConcurrentModification
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	b.Version++

	db.logger.Info().
		Str("booking_id", b.ID.String()).
		Str("code", b.Code).
		Msg("booking approved")
	return nil
}

// FindOverlapping returns every booking on the facility and date whose time
// range overlaps [start, end) as open intervals, regardless of status.
func (db *DB) FindOverlapping(ctx context.Context, facilityID uuid.UUID, date time.Time, start, end models.TimeOfDay, excludeID uuid.UUID) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE facility_id = ? AND date = ? AND id <> ?
		  AND start_time < ? AND end_time > ?
		ORDER BY start_time`,
		uuidStr(facilityID), date.Format(dateLayout), uuidStr(excludeID),
		int(end), int(start),
	)
	if err != nil {
		return nil, fmt.Errorf("find overlapping: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListForDay returns all bookings for a facility and calendar date ordered
// by start time.
func (db *DB) ListForDay(ctx context.Context, facilityID uuid.UUID, date time.Time) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE facility_id = ? AND date = ?
		ORDER BY start_time`,
		uuidStr(facilityID), date.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("list for day: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func collectBookings(rows *sql.Rows) ([]models.Booking, error) {
	var out []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return out, nil
}
