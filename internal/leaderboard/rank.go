package leaderboard

import (
	"sort"

	"github.com/google/uuid"

	"github.com/taskquest/backend/internal/models"
)

// Entry is one leaderboard row. Entries carry denormalized display fields so
// the cached board can be served without touching the accounts table.
type Entry struct {
	Rank           int       `json:"rank"`
	AccountID      uuid.UUID `json:"account_id"`
	DisplayName    string    `json:"display_name"`
	Level          int       `json:"level"`
	TasksCompleted int       `json:"tasks_completed"`
	TotalPoints    int       `json:"total_points"`
}

// Rank orders accounts by total points descending and assigns 1-based
// contiguous ranks. Ties keep their input order, so callers that pass
// registration-ordered input get deterministic boards. Accounts that have
// never earned a point are left off. The input slice is not mutated.
func Rank(accounts []*models.Account) []Entry {
	ranked := make([]*models.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.TotalPoints > 0 {
			ranked = append(ranked, a)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalPoints > ranked[j].TotalPoints
	})

	entries := make([]Entry, len(ranked))
	for i, a := range ranked {
		entries[i] = Entry{
			Rank:           i + 1,
			AccountID:      a.ID,
			DisplayName:    a.DisplayName,
			Level:          a.Level,
			TasksCompleted: a.TasksCompleted,
			TotalPoints:    a.TotalPoints,
		}
	}
	return entries
}

// RankOf returns the rank of the given account within entries, or 0 when the
// account is unranked.
func RankOf(entries []Entry, accountID uuid.UUID) int {
	for _, e := range entries {
		if e.AccountID == accountID {
			return e.Rank
		}
	}
	return 0
}
