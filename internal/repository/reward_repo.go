package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskquest/backend/internal/models"
)

const rewardColumns = `id, name, description, cost, rarity, type, available, created_at`

type RewardRepo struct {
	pool *pgxpool.Pool
}

func NewRewardRepo(pool *pgxpool.Pool) *RewardRepo {
	return &RewardRepo{pool: pool}
}

func scanReward(row pgx.Row, rw *models.Reward) error {
	return row.Scan(&rw.ID, &rw.Name, &rw.Description, &rw.Cost, &rw.Rarity, &rw.Type, &rw.Available, &rw.CreatedAt)
}

func (r *RewardRepo) Create(ctx context.Context, rw *models.Reward) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO rewards (id, name, description, cost, rarity, type, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, rw.ID, rw.Name, rw.Description, rw.Cost, rw.Rarity, rw.Type, rw.Available).Scan(&rw.CreatedAt)
}

func (r *RewardRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Reward, error) {
	var rw models.Reward
	err := scanReward(r.pool.QueryRow(ctx, `
		SELECT `+rewardColumns+` FROM rewards WHERE id = $1
	`, id), &rw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rw, nil
}

// GetByIDTx reads a reward inside an open transaction, so availability is
// checked against committed state at redemption time rather than a possibly
// stale pool-level read.
func (r *RewardRepo) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Reward, error) {
	var rw models.Reward
	err := scanReward(tx.QueryRow(ctx, `
		SELECT `+rewardColumns+` FROM rewards WHERE id = $1
	`, id), &rw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rw, nil
}

func (r *RewardRepo) List(ctx context.Context) ([]*models.Reward, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+rewardColumns+` FROM rewards ORDER BY cost ASC, created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Reward
	for rows.Next() {
		var rw models.Reward
		if err := scanReward(rows, &rw); err != nil {
			return nil, err
		}
		list = append(list, &rw)
	}
	return list, rows.Err()
}

// SetAvailable flips a catalog entry's availability. Cost/rarity/type edits
// are deliberately unsupported: redemption records denormalize those fields
// and the catalog is otherwise immutable.
func (r *RewardRepo) SetAvailable(ctx context.Context, id uuid.UUID, available bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE rewards SET available = $2 WHERE id = $1
	`, id, available)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
