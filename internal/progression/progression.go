// Package progression holds the point and level arithmetic. Everything here
// is pure: callers pass an account snapshot in and get a new snapshot back,
// and every mutation path in the service layer goes through ApplyCompletion
// so the math cannot drift between call sites.
package progression

import (
	"errors"

	"github.com/taskquest/backend/internal/models"
)

// PointsPerLevel is the number of lifetime points per level step.
const PointsPerLevel = 100

// ErrInvalidAward is returned when a completion would award zero or negative
// points.
var ErrInvalidAward = errors.New("awarded points must be positive")

// LevelForTotalPoints returns floor(totalPoints/100)+1. Level 1 starts at
// zero points.
func LevelForTotalPoints(totalPoints int) int {
	if totalPoints < 0 {
		return 1
	}
	return totalPoints/PointsPerLevel + 1
}

// ProgressToNextLevel returns the percentage (0–100) of the way from the
// account's current level threshold to the next one.
func ProgressToNextLevel(totalPoints int) int {
	if totalPoints < 0 {
		return 0
	}
	return totalPoints % PointsPerLevel
}

// ApplyCompletion returns the account state after crediting awardedPoints for
// one completed task. The input account is not modified.
func ApplyCompletion(account models.Account, awardedPoints int) (models.Account, error) {
	if awardedPoints <= 0 {
		return models.Account{}, ErrInvalidAward
	}
	account.TotalPoints += awardedPoints
	account.AvailablePoints += awardedPoints
	account.TasksCompleted++
	account.Level = LevelForTotalPoints(account.TotalPoints)
	return account, nil
}
