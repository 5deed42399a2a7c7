package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskquest/backend/internal/models"
)

type RedemptionRepo struct {
	pool *pgxpool.Pool
}

func NewRedemptionRepo(pool *pgxpool.Pool) *RedemptionRepo {
	return &RedemptionRepo{pool: pool}
}

// CreateTx appends a redemption record inside the given transaction, so the
// record and the balance debit commit together or not at all.
func (r *RedemptionRepo) CreateTx(ctx context.Context, tx pgx.Tx, rec *models.Redemption) error {
	return tx.QueryRow(ctx, `
		INSERT INTO redemptions (id, account_id, reward_id, reward_name, cost)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING redeemed_at
	`, rec.ID, rec.AccountID, rec.RewardID, rec.RewardName, rec.Cost).Scan(&rec.RedeemedAt)
}

func (r *RedemptionRepo) ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.Redemption, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, reward_id, reward_name, cost, redeemed_at
		FROM redemptions WHERE account_id = $1 ORDER BY redeemed_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Redemption
	for rows.Next() {
		var rec models.Redemption
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.RewardID, &rec.RewardName, &rec.Cost, &rec.RedeemedAt); err != nil {
			return nil, err
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}

func (r *RedemptionRepo) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM redemptions WHERE account_id = $1
	`, accountID).Scan(&n)
	return n, err
}
