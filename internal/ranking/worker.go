package ranking

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"
)

// RefreshBoardArgs carries no payload: the job is a signal that point totals
// changed and the cached board should be re-rendered from current state.
type RefreshBoardArgs struct{}

func (RefreshBoardArgs) Kind() string { return "refresh_leaderboard" }

// InsertOpts dedupes pending refreshes: ten completions in quick succession
// queue one recompute, not ten.
func (RefreshBoardArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		UniqueOpts: river.UniqueOpts{ByArgs: true},
	}
}

// Refresher defines the contract the worker needs to rebuild the board.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type RefreshBoardWorker struct {
	river.WorkerDefaults[RefreshBoardArgs]
	boards Refresher
}

func NewRefreshBoardWorker(boards Refresher) *RefreshBoardWorker {
	return &RefreshBoardWorker{boards: boards}
}

func (w *RefreshBoardWorker) Work(ctx context.Context, job *river.Job[RefreshBoardArgs]) error {
	if err := w.boards.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh leaderboard: %w", err)
	}
	return nil
}
