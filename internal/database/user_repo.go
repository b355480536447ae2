package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/domain"
	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/models"
)

const userColumns = `id, email, name, role, is_active, is_confirmed,
	no_show_count, is_blocked, blocked_reason, blocked_until, blocked_by,
	created_at, updated_at`

const updateUserSQL = `
	UPDATE users SET
		email = ?, name = ?, role = ?, is_active = ?, is_confirmed = ?,
		no_show_count = ?, is_blocked = ?, blocked_reason = ?,
		blocked_until = ?, blocked_by = ?, updated_at = ?
	WHERE id = ?`

func userArgs(u *models.User) []interface{} {
	return []interface{}{
		u.Email, u.Name, string(u.Role), u.IsActive, u.IsConfirmed,
		u.NoShowCount, u.IsBlocked, u.BlockedReason,
		nullTime(u.BlockedUntil), uuidStr(u.BlockedBy), u.UpdatedAt,
		uuidStr(u.ID),
	}
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u             models.User
		id, blockedBy string
		blockedUntil  sql.NullTime
	)
	err := row.Scan(
		&id, &u.Email, &u.Name, &u.Role, &u.IsActive, &u.IsConfirmed,
		&u.NoShowCount, &u.IsBlocked, &u.BlockedReason, &blockedUntil, &blockedBy,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if u.ID, err = parseUUID(id); err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	if u.BlockedBy, err = parseUUID(blockedBy); err != nil {
		return nil, fmt.Errorf("parse blocked-by: %w", err)
	}
	u.BlockedUntil = timePtr(blockedUntil)
	return &u, nil
}

// GetUser loads a user by id.
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id.String())
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail loads a user by email, used to resolve lecturer addresses
// on student requests.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// CreateUser inserts a new account.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuidStr(u.ID), u.Email, u.Name, string(u.Role), u.IsActive, u.IsConfirmed,
		u.NoShowCount, u.IsBlocked, u.BlockedReason,
		nullTime(u.BlockedUntil), uuidStr(u.BlockedBy),
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UpdateUser persists an account, including its penalty standing.
func (db *DB) UpdateUser(ctx context.Context, u *models.User) error {
	result, err := db.ExecContext(ctx, updateUserSQL, userArgs(u)...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
