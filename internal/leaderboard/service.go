package leaderboard

import (
	"context"
	"errors"
	"time"

	"github.com/taskquest/backend/internal/models"
	"github.com/taskquest/backend/internal/repository"
)

// AccountLister supplies the ranking input, pre-ordered so ties resolve by
// registration order.
type AccountLister interface {
	List(ctx context.Context) ([]*models.Account, error)
}

// Cache is the persisted-board store. Satisfied by *Repository.
type Cache interface {
	Get(ctx context.Context) ([]Entry, time.Time, error)
	Replace(ctx context.Context, entries []Entry) error
}

type Service interface {
	Board(ctx context.Context) ([]Entry, time.Time, error)
	Refresh(ctx context.Context) error
}

type service struct {
	accounts AccountLister
	cache    Cache
}

func NewService(accounts AccountLister, cache Cache) *service {
	return &service{accounts: accounts, cache: cache}
}

var _ Service = (*service)(nil)

// Board serves the cached board, recomputing live when the cache has never
// been written (fresh deployment, or the refresh worker has not run yet).
func (s *service) Board(ctx context.Context) ([]Entry, time.Time, error) {
	entries, refreshedAt, err := s.cache.Get(ctx)
	if err == nil {
		return entries, refreshedAt, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, time.Time{}, err
	}
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	live := Rank(accounts)
	// Write through so the next read is a cache hit. Failure here only costs
	// the next caller a recompute.
	_ = s.cache.Replace(ctx, live)
	return live, time.Now().UTC(), nil
}

// Refresh recomputes the board from current account state and replaces the
// cache. Called by the background worker after every point-changing commit.
func (s *service) Refresh(ctx context.Context) error {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return err
	}
	return s.cache.Replace(ctx, Rank(accounts))
}
