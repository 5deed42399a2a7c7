package progression

import (
	"testing"

	"github.com/taskquest/backend/internal/models"
)

func TestApplyCompletion(t *testing.T) {
	acc := models.Account{TotalPoints: 0, AvailablePoints: 0, TasksCompleted: 0, Level: 1}

	got, err := ApplyCompletion(acc, 20)
	if err != nil {
		t.Fatalf("ApplyCompletion: %v", err)
	}
	if got.TotalPoints != 20 || got.AvailablePoints != 20 || got.TasksCompleted != 1 || got.Level != 1 {
		t.Errorf("after 20-point task: got (%d,%d,%d,level %d), want (20,20,1,level 1)",
			got.TotalPoints, got.AvailablePoints, got.TasksCompleted, got.Level)
	}

	// A 500-point task from there crosses several level thresholds at once.
	got, err = ApplyCompletion(got, 500)
	if err != nil {
		t.Fatalf("ApplyCompletion: %v", err)
	}
	if got.TotalPoints != 520 {
		t.Errorf("total points: got %d, want 520", got.TotalPoints)
	}
	if got.Level != 6 {
		t.Errorf("level: got %d, want 6", got.Level)
	}
	if got.TasksCompleted != 2 {
		t.Errorf("tasks completed: got %d, want 2", got.TasksCompleted)
	}

	// Input snapshot must be untouched.
	if acc.TotalPoints != 0 || acc.TasksCompleted != 0 {
		t.Error("ApplyCompletion mutated its input")
	}
}

func TestApplyCompletionInvalidAward(t *testing.T) {
	acc := models.Account{AvailablePoints: 50, TotalPoints: 80}
	for _, award := range []int{0, -1, -100} {
		if _, err := ApplyCompletion(acc, award); err != ErrInvalidAward {
			t.Errorf("award %d: got %v, want ErrInvalidAward", award, err)
		}
	}
}

func TestApplyCompletionPreservesBalanceInvariant(t *testing.T) {
	// Spent points keep available below total; completions must preserve that.
	acc := models.Account{TotalPoints: 300, AvailablePoints: 120, TasksCompleted: 9, Level: 4}
	got, err := ApplyCompletion(acc, 45)
	if err != nil {
		t.Fatalf("ApplyCompletion: %v", err)
	}
	if got.AvailablePoints > got.TotalPoints {
		t.Errorf("available %d exceeds total %d", got.AvailablePoints, got.TotalPoints)
	}
	if got.AvailablePoints != 165 || got.TotalPoints != 345 {
		t.Errorf("got (%d,%d), want (165,345)", got.AvailablePoints, got.TotalPoints)
	}
}

func TestLevelForTotalPoints(t *testing.T) {
	cases := []struct {
		total int
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{101, 2},
		{520, 6},
		{1000, 11},
		{-5, 1},
	}
	for _, c := range cases {
		if got := LevelForTotalPoints(c.total); got != c.level {
			t.Errorf("LevelForTotalPoints(%d): got %d, want %d", c.total, got, c.level)
		}
	}
}

func TestProgressToNextLevel(t *testing.T) {
	cases := []struct {
		total    int
		progress int
	}{
		{0, 0},
		{45, 45},
		{100, 0},
		{237, 37},
	}
	for _, c := range cases {
		if got := ProgressToNextLevel(c.total); got != c.progress {
			t.Errorf("ProgressToNextLevel(%d): got %d, want %d", c.total, got, c.progress)
		}
	}
}
