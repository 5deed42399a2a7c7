package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskquest/backend/internal/repository"
)

// Repository persists the rendered board as a single jsonb row so serving the
// leaderboard page is one primary-key read.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the cached board and when it was rendered. ErrNotFound means
// the cache has never been written.
func (r *Repository) Get(ctx context.Context) ([]Entry, time.Time, error) {
	var raw []byte
	var refreshedAt time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT entries, refreshed_at FROM leaderboard_cache WHERE singleton
	`).Scan(&raw, &refreshedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, time.Time{}, repository.ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, time.Time{}, err
	}
	return entries, refreshedAt, nil
}

// Replace overwrites the cached board. Last writer wins; refresh jobs are
// idempotent recomputations so ordering between them does not matter.
func (r *Repository) Replace(ctx context.Context, entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO leaderboard_cache (singleton, entries, refreshed_at)
		VALUES (TRUE, $1, now())
		ON CONFLICT (singleton) DO UPDATE SET entries = $1, refreshed_at = now()
	`, raw)
	return err
}
