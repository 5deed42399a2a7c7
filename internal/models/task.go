package models

import (
	"time"

	"github.com/google/uuid"
)

// Task category enums.
const (
	CategoryWork     = "work"
	CategoryPersonal = "personal"
	CategoryFitness  = "fitness"
	CategoryLearning = "learning"
	CategoryCreative = "creative"
)

// Task difficulty enums and their default point values.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// DefaultPointsForDifficulty returns the suggested reward value for a
// difficulty, or 0 for an unknown difficulty.
func DefaultPointsForDifficulty(difficulty string) int {
	switch difficulty {
	case DifficultyEasy:
		return 5
	case DifficultyMedium:
		return 10
	case DifficultyHard:
		return 20
	}
	return 0
}

// ValidCategory reports whether category is one of the known enums.
func ValidCategory(category string) bool {
	switch category {
	case CategoryWork, CategoryPersonal, CategoryFitness, CategoryLearning, CategoryCreative:
		return true
	}
	return false
}

// ValidDifficulty reports whether difficulty is one of the known enums.
func ValidDifficulty(difficulty string) bool {
	switch difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Task is a unit of work owned by an account. Completion is terminal: once
// Completed is true the task is never mutated again and its points are never
// awarded a second time.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Difficulty  string     `json:"difficulty"`
	Points      int        `json:"points"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Version     int64      `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
