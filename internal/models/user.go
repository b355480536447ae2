package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the subset of an account relevant to booking and penalties.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	IsActive    bool      `json:"is_active"`
	IsConfirmed bool      `json:"is_confirmed"`

	NoShowCount   int        `json:"no_show_count"`
	IsBlocked     bool       `json:"is_blocked"`
	BlockedReason string     `json:"blocked_reason,omitempty"`
	BlockedUntil  *time.Time `json:"blocked_until,omitempty"`
	BlockedBy     uuid.UUID  `json:"blocked_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
