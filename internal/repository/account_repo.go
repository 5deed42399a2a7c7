package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskquest/backend/internal/models"
)

const accountColumns = `id, email, display_name, password_hash, total_points, available_points, tasks_completed, level, version, created_at, updated_at`

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func scanAccount(row pgx.Row, a *models.Account) error {
	return row.Scan(&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash, &a.TotalPoints, &a.AvailablePoints, &a.TasksCompleted, &a.Level, &a.Version, &a.CreatedAt, &a.UpdatedAt)
}

func (r *AccountRepo) Create(ctx context.Context, a *models.Account) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, email, display_name, password_hash, total_points, available_points, tasks_completed, level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING version, created_at, updated_at
	`, a.ID, a.Email, a.DisplayName, a.PasswordHash, a.TotalPoints, a.AvailablePoints, a.TasksCompleted, a.Level).Scan(&a.Version, &a.CreatedAt, &a.UpdatedAt)
}

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var a models.Account
	err := scanAccount(r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1
	`, id), &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := scanAccount(r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE email = $1
	`, email), &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByIDTx reads the account inside the given transaction without locking.
// The subsequent versioned write detects concurrent modification.
func (r *AccountRepo) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Account, error) {
	var a models.Account
	err := scanAccount(tx.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1
	`, id), &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns all accounts ordered by total points descending with a stable
// registration-order tie-break, which is the pre-order the leaderboard ranker
// expects.
func (r *AccountRepo) List(ctx context.Context) ([]*models.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		ORDER BY total_points DESC, created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Account
	for rows.Next() {
		var a models.Account
		if err := scanAccount(rows, &a); err != nil {
			return nil, err
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// UpdateProgress writes the point counters computed by the progression engine.
// The write is conditional on expectedVersion; a concurrent writer bumps the
// version and this returns ErrVersionConflict so the caller can retry.
func (r *AccountRepo) UpdateProgress(ctx context.Context, tx pgx.Tx, a *models.Account, expectedVersion int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE accounts
		SET total_points = $2, available_points = $3, tasks_completed = $4, level = $5,
		    version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $6
	`, a.ID, a.TotalPoints, a.AvailablePoints, a.TasksCompleted, a.Level, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	a.Version = expectedVersion + 1
	return nil
}

// DeductPoints atomically debits cost from available_points if the balance
// covers it. The balance condition is checked by the database at commit time,
// so two concurrent debits can never overdraw the account. Returns the new
// available balance, or pgx.ErrNoRows when the account is missing or the
// balance is insufficient (callers re-read to tell the two apart).
func (r *AccountRepo) DeductPoints(ctx context.Context, tx pgx.Tx, id uuid.UUID, cost int) (newAvailable int, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE accounts
		SET available_points = available_points - $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND available_points >= $1
		RETURNING available_points
	`, cost, id).Scan(&newAvailable)
	return newAvailable, err
}

// UpdateDisplayName renames the account. Point counters are untouchable here.
func (r *AccountRepo) UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET display_name = $2, updated_at = now() WHERE id = $1
	`, id, displayName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
