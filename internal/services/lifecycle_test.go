package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskquest/backend/internal/models"
	"github.com/taskquest/backend/internal/repository"
)

func newLifecycleFixture() (*memStore, *memAccounts, *memTasks, *memLedger, *LifecycleService) {
	store := newMemStore()
	accounts := &memAccounts{s: store}
	tasks := &memTasks{s: store}
	led := &memLedger{s: store}
	svc := NewLifecycleService(store, tasks, accounts, led, nil)
	return store, accounts, tasks, led, svc
}

func seedAccount(store *memStore) uuid.UUID {
	id := uuid.New()
	store.accounts[id] = &models.Account{ID: id, Level: 1, Version: 1}
	return id
}

func seedTask(store *memStore, owner uuid.UUID, points int) uuid.UUID {
	id := uuid.New()
	store.tasks[id] = &models.Task{ID: id, OwnerID: owner, Title: "t", Points: points, Version: 1}
	return id
}

func TestCompleteTaskAwardsPoints(t *testing.T) {
	store, accounts, _, led, svc := newLifecycleFixture()
	owner := seedAccount(store)
	first := seedTask(store, owner, 20)
	second := seedTask(store, owner, 500)

	ctx := context.Background()
	task, acc, err := svc.CompleteTask(ctx, first, owner)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if !task.Completed || task.CompletedAt == nil {
		t.Error("task should be completed with a timestamp")
	}
	if acc.TotalPoints != 20 || acc.AvailablePoints != 20 || acc.TasksCompleted != 1 || acc.Level != 1 {
		t.Errorf("after first completion: got (%d,%d,%d,level %d), want (20,20,1,level 1)",
			acc.TotalPoints, acc.AvailablePoints, acc.TasksCompleted, acc.Level)
	}

	_, acc, err = svc.CompleteTask(ctx, second, owner)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if acc.TotalPoints != 520 || acc.Level != 6 {
		t.Errorf("after second completion: got total %d level %d, want 520 and 6", acc.TotalPoints, acc.Level)
	}

	available, total := accounts.balance(owner)
	if available != 520 || total != 520 {
		t.Errorf("stored balance: got (%d,%d), want (520,520)", available, total)
	}

	entries := led.entries()
	if len(entries) != 2 {
		t.Fatalf("ledger entries: got %d, want 2", len(entries))
	}
	if entries[0].EntryType != models.PointEntryTaskAward || entries[0].Amount != 20 || entries[0].BalanceAfter != 20 {
		t.Errorf("first entry: got %+v", entries[0])
	}
	if entries[1].Amount != 500 || entries[1].BalanceAfter != 520 {
		t.Errorf("second entry: got %+v", entries[1])
	}
	if entries[0].TaskID == nil || *entries[0].TaskID != first {
		t.Error("award entry should reference the task")
	}
}

func TestCompleteTaskRejectsDoubleCompletion(t *testing.T) {
	store, accounts, _, _, svc := newLifecycleFixture()
	owner := seedAccount(store)
	taskID := seedTask(store, owner, 30)

	ctx := context.Background()
	if _, _, err := svc.CompleteTask(ctx, taskID, owner); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	if _, _, err := svc.CompleteTask(ctx, taskID, owner); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("second completion: got %v, want ErrAlreadyCompleted", err)
	}

	_, total := accounts.balance(owner)
	if total != 30 {
		t.Errorf("points awarded twice: total %d, want 30", total)
	}
}

func TestCompleteTaskNotFound(t *testing.T) {
	store, _, _, _, svc := newLifecycleFixture()
	owner := seedAccount(store)

	_, _, err := svc.CompleteTask(context.Background(), uuid.New(), owner)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestCompleteTaskForbidden(t *testing.T) {
	store, accounts, _, _, svc := newLifecycleFixture()
	owner := seedAccount(store)
	stranger := seedAccount(store)
	taskID := seedTask(store, owner, 10)

	_, _, err := svc.CompleteTask(context.Background(), taskID, stranger)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("got %v, want ErrForbidden", err)
	}
	if _, total := accounts.balance(owner); total != 0 {
		t.Errorf("owner total changed to %d", total)
	}
	if store.tasks[taskID].Completed {
		t.Error("task should remain open")
	}
}

func TestCompleteTaskInvalidAward(t *testing.T) {
	store, _, _, _, svc := newLifecycleFixture()
	owner := seedAccount(store)
	taskID := seedTask(store, owner, 0)

	_, _, err := svc.CompleteTask(context.Background(), taskID, owner)
	if !errors.Is(err, ErrInvalidAward) {
		t.Errorf("got %v, want ErrInvalidAward", err)
	}
	if store.tasks[taskID].Completed {
		t.Error("task must not complete when the award is invalid")
	}
}

func TestCompleteTaskRollsBackOnLedgerFailure(t *testing.T) {
	store, accounts, _, led, svc := newLifecycleFixture()
	owner := seedAccount(store)
	taskID := seedTask(store, owner, 25)
	led.failNext = true

	_, _, err := svc.CompleteTask(context.Background(), taskID, owner)
	if !errors.Is(err, errAppendFailed) {
		t.Fatalf("got %v, want ledger append failure", err)
	}

	// No partial application: task still open, balance untouched.
	if store.tasks[taskID].Completed {
		t.Error("task flip should have rolled back")
	}
	if available, total := accounts.balance(owner); available != 0 || total != 0 {
		t.Errorf("balance after rollback: got (%d,%d), want (0,0)", available, total)
	}
}

// conflictingTasks fails MarkCompleted with a version conflict a set number
// of times before delegating, like a concurrent writer bumping the row
// version between read and write. onConflict, if set, runs on each injected
// failure while the transaction still holds the store lock.
type conflictingTasks struct {
	*memTasks
	conflicts  int
	onConflict func()
}

func (c *conflictingTasks) MarkCompleted(ctx context.Context, tx pgx.Tx, id uuid.UUID, completedAt time.Time, expectedVersion int64) error {
	if c.conflicts > 0 {
		c.conflicts--
		if c.onConflict != nil {
			c.onConflict()
		}
		return repository.ErrVersionConflict
	}
	return c.memTasks.MarkCompleted(ctx, tx, id, completedAt, expectedVersion)
}

// conflictingAccounts does the same for UpdateProgress.
type conflictingAccounts struct {
	*memAccounts
	conflicts int
}

func (c *conflictingAccounts) UpdateProgress(ctx context.Context, tx pgx.Tx, a *models.Account, expectedVersion int64) error {
	if c.conflicts > 0 {
		c.conflicts--
		return repository.ErrVersionConflict
	}
	return c.memAccounts.UpdateProgress(ctx, tx, a, expectedVersion)
}

func TestCompleteTaskRetriesTaskVersionConflict(t *testing.T) {
	store, accounts, tasks, led, svc := newLifecycleFixture()
	owner := seedAccount(store)
	taskID := seedTask(store, owner, 35)
	svc.Tasks = &conflictingTasks{memTasks: tasks, conflicts: 1}

	task, acc, err := svc.CompleteTask(context.Background(), taskID, owner)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if !task.Completed {
		t.Error("task should be completed after the retry")
	}
	if acc.TotalPoints != 35 {
		t.Errorf("total: got %d, want 35", acc.TotalPoints)
	}
	if _, total := accounts.balance(owner); total != 35 {
		t.Errorf("points awarded %d times the task value", total/35)
	}
	if n := len(led.entries()); n != 1 {
		t.Errorf("ledger entries: got %d, want 1", n)
	}
}

func TestCompleteTaskRetriesAccountVersionConflict(t *testing.T) {
	store, accounts, _, _, svc := newLifecycleFixture()
	owner := seedAccount(store)
	taskID := seedTask(store, owner, 15)
	svc.Accounts = &conflictingAccounts{memAccounts: &memAccounts{s: store}, conflicts: 1}

	_, acc, err := svc.CompleteTask(context.Background(), taskID, owner)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if acc.TotalPoints != 15 || acc.TasksCompleted != 1 {
		t.Errorf("after retry: got (%d,%d), want (15,1)", acc.TotalPoints, acc.TasksCompleted)
	}
	if _, total := accounts.balance(owner); total != 15 {
		t.Errorf("stored total: got %d, want 15", total)
	}
}

func TestCompleteTaskConflictLoserSeesAlreadyCompleted(t *testing.T) {
	store, accounts, tasks, led, svc := newLifecycleFixture()
	owner := seedAccount(store)
	taskID := seedTask(store, owner, 40)

	// The injected conflict also commits the winner's completion, so the
	// retry re-reads a completed task.
	svc.Tasks = &conflictingTasks{memTasks: tasks, conflicts: 1, onConflict: func() {
		now := time.Now().UTC()
		winner := store.tasks[taskID]
		winner.Completed = true
		winner.CompletedAt = &now
		winner.Version++
	}}

	_, _, err := svc.CompleteTask(context.Background(), taskID, owner)
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("got %v, want ErrAlreadyCompleted", err)
	}
	if _, total := accounts.balance(owner); total != 0 {
		t.Errorf("loser credited points: total %d", total)
	}
	if n := len(led.entries()); n != 0 {
		t.Errorf("ledger entries: got %d, want 0", n)
	}
}

func TestCompleteTaskSurfacesPersistentVersionConflict(t *testing.T) {
	store, accounts, tasks, _, svc := newLifecycleFixture()
	owner := seedAccount(store)
	taskID := seedTask(store, owner, 10)
	injected := &conflictingTasks{memTasks: tasks, conflicts: maxWriteAttempts}
	svc.Tasks = injected

	_, _, err := svc.CompleteTask(context.Background(), taskID, owner)
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("got %v, want ErrVersionConflict", err)
	}
	if injected.conflicts != 0 {
		t.Errorf("expected %d attempts, %d conflicts left uninjected", maxWriteAttempts, injected.conflicts)
	}
	if store.tasks[taskID].Completed {
		t.Error("task should remain open")
	}
	if _, total := accounts.balance(owner); total != 0 {
		t.Errorf("points credited despite persistent conflict: total %d", total)
	}
}

func TestConcurrentCompletionAwardsOnce(t *testing.T) {
	store, accounts, _, led, svc := newLifecycleFixture()
	owner := seedAccount(store)
	taskID := seedTask(store, owner, 40)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.CompleteTask(context.Background(), taskID, owner)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, rejected int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrAlreadyCompleted):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 || rejected != 1 {
		t.Errorf("got %d successes and %d rejections, want exactly 1 and 1", successes, rejected)
	}

	if _, total := accounts.balance(owner); total != 40 {
		t.Errorf("total after race: got %d, want 40", total)
	}
	if n := len(led.entries()); n != 1 {
		t.Errorf("ledger entries after race: got %d, want 1", n)
	}
}
