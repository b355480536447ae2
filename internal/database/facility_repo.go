package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/domain"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/models"
)

const facilityColumns = `id, name, campus_id, capacity, is_available,
	open_time, close_time, timezone`

func scanFacility(row rowScanner) (*models.Facility, error) {
	var (
		f            models.Facility
		id, campusID string
	)
	err := row.Scan(
		&id, &f.Name, &campusID, &f.Capacity, &f.IsAvailable,
		&f.OpenTime, &f.CloseTime, &f.Timezone,
	)
	if err != nil {
		return nil, err
	}
	if f.ID, err = parseUUID(id); err != nil {
		return nil, fmt.Errorf("parse facility id: %w", err)
	}
	if f.CampusID, err = parseUUID(campusID); err != nil {
		return nil, fmt.Errorf("parse campus id: %w", err)
	}
	return &f, nil
}

// GetFacility loads a facility by id.
func (db *DB) GetFacility(ctx context.Context, id uuid.UUID) (*models.Facility, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+facilityColumns+` FROM facilities WHERE id = ?`, id.String())
	f, err := scanFacility(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get facility: %w", err)
	}
	return f, nil
}

// CreateFacility inserts a facility. The booking core treats facilities as
// read-only; this exists for provisioning and tests.
func (db *DB) CreateFacility(ctx context.Context, f *models.Facility) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO facilities (`+facilityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuidStr(f.ID), f.Name, uuidStr(f.CampusID), f.Capacity, f.IsAvailable,
		int(f.OpenTime), int(f.CloseTime), f.Timezone,
	)
	if err != nil {
		return fmt.Errorf("insert facility: %w", err)
	}
	return nil
}
