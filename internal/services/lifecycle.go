package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskquest/backend/internal/models"
	"github.com/taskquest/backend/internal/progression"
	"github.com/taskquest/backend/internal/repository"
)

// maxWriteAttempts bounds the read-modify-write retry loop. A version
// conflict usually means a concurrent writer won the race; retrying re-reads
// fresh state, and after this many losses the conflict is surfaced.
const maxWriteAttempts = 3

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TaskStore is the minimal task repository interface for the lifecycle service.
type TaskStore interface {
	GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Task, error)
	MarkCompleted(ctx context.Context, tx pgx.Tx, id uuid.UUID, completedAt time.Time, expectedVersion int64) error
}

// AccountStore is the minimal account repository interface for the point
// mutation services.
type AccountStore interface {
	GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Account, error)
	UpdateProgress(ctx context.Context, tx pgx.Tx, a *models.Account, expectedVersion int64) error
	DeductPoints(ctx context.Context, tx pgx.Tx, id uuid.UUID, cost int) (int, error)
}

// LedgerStore appends point history inside the mutation's transaction.
type LedgerStore interface {
	AppendTx(ctx context.Context, tx pgx.Tx, e *models.PointEntry) error
}

// EnqueueRefreshFunc enqueues a leaderboard refresh job within the given
// transaction. Provided by main using river.Client.InsertTx; nil disables it.
type EnqueueRefreshFunc func(ctx context.Context, tx pgx.Tx) error

// LifecycleService owns the Open → Completed transition. The task flip, the
// point credit, and the ledger entry commit as one transaction.
type LifecycleService struct {
	Pool           TxBeginner
	Tasks          TaskStore
	Accounts       AccountStore
	Ledger         LedgerStore
	EnqueueRefresh EnqueueRefreshFunc
}

// NewLifecycleService returns a new LifecycleService.
func NewLifecycleService(pool TxBeginner, tasks TaskStore, accounts AccountStore, led LedgerStore, enqueue EnqueueRefreshFunc) *LifecycleService {
	return &LifecycleService{Pool: pool, Tasks: tasks, Accounts: accounts, Ledger: led, EnqueueRefresh: enqueue}
}

// CompleteTask marks the task completed and credits its points to the owner.
// Of two concurrent attempts on the same task exactly one succeeds; the other
// gets ErrAlreadyCompleted after re-reading the committed state.
func (s *LifecycleService) CompleteTask(ctx context.Context, taskID, accountID uuid.UUID) (*models.Task, *models.Account, error) {
	var lastErr error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		task, account, err := s.completeOnce(ctx, taskID, accountID)
		if errors.Is(err, repository.ErrVersionConflict) {
			lastErr = err
			continue
		}
		return task, account, err
	}
	return nil, nil, lastErr
}

func (s *LifecycleService) completeOnce(ctx context.Context, taskID, accountID uuid.UUID) (*models.Task, *models.Account, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	task, err := s.Tasks.GetByIDTx(ctx, tx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if task.OwnerID != accountID {
		return nil, nil, ErrForbidden
	}
	if task.Completed {
		return nil, nil, ErrAlreadyCompleted
	}

	account, err := s.Accounts.GetByIDTx(ctx, tx, accountID)
	if err != nil {
		return nil, nil, err
	}
	credited, err := progression.ApplyCompletion(*account, task.Points)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	if err := s.Tasks.MarkCompleted(ctx, tx, taskID, now, task.Version); err != nil {
		return nil, nil, err
	}
	if err := s.Accounts.UpdateProgress(ctx, tx, &credited, account.Version); err != nil {
		return nil, nil, err
	}
	if err := s.Ledger.AppendTx(ctx, tx, &models.PointEntry{
		ID:           uuid.New(),
		AccountID:    accountID,
		TaskID:       &task.ID,
		EntryType:    models.PointEntryTaskAward,
		Amount:       task.Points,
		BalanceAfter: credited.AvailablePoints,
	}); err != nil {
		return nil, nil, err
	}
	if s.EnqueueRefresh != nil {
		if err := s.EnqueueRefresh(ctx, tx); err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	task.Completed = true
	task.CompletedAt = &now
	task.Version++
	return task, &credited, nil
}
