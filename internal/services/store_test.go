package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taskquest/backend/internal/models"
	"github.com/taskquest/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// In-memory transactional store implementing the service interfaces.
// Begin takes the store lock, so transactions serialize like the database
// would; Rollback replays an undo log so a failed transaction leaves no
// trace. This lets the real service logic run unchanged in tests.
// ---------------------------------------------------------------------------

// noopTx satisfies pgx.Tx; only the methods the services call are meaningful.
type noopTx struct{}

func (noopTx) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }
func (noopTx) Commit(context.Context) error          { return nil }
func (noopTx) Rollback(context.Context) error        { return nil }
func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (noopTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (noopTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (noopTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (noopTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (noopTx) Conn() *pgx.Conn { return nil }

var errAppendFailed = errors.New("ledger append failed")

type memStore struct {
	mu          sync.Mutex
	accounts    map[uuid.UUID]*models.Account
	tasks       map[uuid.UUID]*models.Task
	rewards     map[uuid.UUID]*models.Reward
	ledger      []*models.PointEntry
	redemptions []*models.Redemption
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[uuid.UUID]*models.Account),
		tasks:    make(map[uuid.UUID]*models.Task),
		rewards:  make(map[uuid.UUID]*models.Reward),
	}
}

type memTx struct {
	noopTx
	store *memStore
	done  bool
	undo  []func()
}

func (s *memStore) Begin(ctx context.Context) (pgx.Tx, error) {
	s.mu.Lock()
	return &memTx{store: s}, nil
}

func (t *memTx) Commit(context.Context) error {
	t.done = true
	t.undo = nil
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) onRollback(fn func()) { t.undo = append(t.undo, fn) }

// --- accounts ---

type memAccounts struct{ s *memStore }

func (m *memAccounts) GetByIDTx(_ context.Context, _ pgx.Tx, id uuid.UUID) (*models.Account, error) {
	a, ok := m.s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccounts) UpdateProgress(_ context.Context, tx pgx.Tx, a *models.Account, expectedVersion int64) error {
	cur, ok := m.s.accounts[a.ID]
	if !ok || cur.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	prev := *cur
	cur.TotalPoints = a.TotalPoints
	cur.AvailablePoints = a.AvailablePoints
	cur.TasksCompleted = a.TasksCompleted
	cur.Level = a.Level
	cur.Version = expectedVersion + 1
	a.Version = cur.Version
	tx.(*memTx).onRollback(func() { *m.s.accounts[a.ID] = prev })
	return nil
}

func (m *memAccounts) DeductPoints(_ context.Context, tx pgx.Tx, id uuid.UUID, cost int) (int, error) {
	cur, ok := m.s.accounts[id]
	if !ok || cur.AvailablePoints < cost {
		return 0, pgx.ErrNoRows
	}
	prev := *cur
	cur.AvailablePoints -= cost
	cur.Version++
	tx.(*memTx).onRollback(func() { *m.s.accounts[id] = prev })
	return cur.AvailablePoints, nil
}

// balance reads outside any transaction, for assertions.
func (m *memAccounts) balance(id uuid.UUID) (available, total int) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a := m.s.accounts[id]
	return a.AvailablePoints, a.TotalPoints
}

// --- tasks ---

type memTasks struct{ s *memStore }

func (m *memTasks) GetByIDTx(_ context.Context, _ pgx.Tx, id uuid.UUID) (*models.Task, error) {
	t, ok := m.s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) MarkCompleted(_ context.Context, tx pgx.Tx, id uuid.UUID, completedAt time.Time, expectedVersion int64) error {
	cur, ok := m.s.tasks[id]
	if !ok || cur.Completed || cur.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	prev := *cur
	at := completedAt
	cur.Completed = true
	cur.CompletedAt = &at
	cur.Version = expectedVersion + 1
	tx.(*memTx).onRollback(func() { *m.s.tasks[id] = prev })
	return nil
}

// --- rewards (read-only catalog) ---

type memRewards struct{ s *memStore }

// GetByIDTx runs inside an open transaction, which already holds the store
// lock, so it must not lock again.
func (m *memRewards) GetByIDTx(_ context.Context, _ pgx.Tx, id uuid.UUID) (*models.Reward, error) {
	rw, ok := m.s.rewards[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rw
	return &cp, nil
}

// --- redemptions ---

type memRedemptions struct{ s *memStore }

func (m *memRedemptions) CreateTx(_ context.Context, tx pgx.Tx, rec *models.Redemption) error {
	cp := *rec
	m.s.redemptions = append(m.s.redemptions, &cp)
	tx.(*memTx).onRollback(func() {
		m.s.redemptions = m.s.redemptions[:len(m.s.redemptions)-1]
	})
	return nil
}

func (m *memRedemptions) count() int {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.s.redemptions)
}

// --- ledger ---

type memLedger struct {
	s        *memStore
	failNext bool
}

func (m *memLedger) AppendTx(_ context.Context, tx pgx.Tx, e *models.PointEntry) error {
	if m.failNext {
		m.failNext = false
		return errAppendFailed
	}
	cp := *e
	m.s.ledger = append(m.s.ledger, &cp)
	tx.(*memTx).onRollback(func() {
		m.s.ledger = m.s.ledger[:len(m.s.ledger)-1]
	})
	return nil
}

func (m *memLedger) entries() []*models.PointEntry {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]*models.PointEntry, len(m.s.ledger))
	copy(out, m.s.ledger)
	return out
}
