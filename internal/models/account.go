package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a player account. The point counters are mutated only by the
// lifecycle and redemption services; AvailablePoints never exceeds
// TotalPoints, and Level is always floor(TotalPoints/100)+1.
type Account struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"display_name"`
	PasswordHash    string    `json:"-"`
	TotalPoints     int       `json:"total_points"`
	AvailablePoints int       `json:"available_points"`
	TasksCompleted  int       `json:"tasks_completed"`
	Level           int       `json:"level"`
	Version         int64     `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
