// Package ledger maintains the append-only point history. Every balance
// mutation writes an entry in the same transaction as the mutation itself,
// so the ledger sum always reconciles with the account counters.
package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskquest/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// AppendTx inserts a ledger entry inside the given transaction.
func (r *Repository) AppendTx(ctx context.Context, tx pgx.Tx, e *models.PointEntry) error {
	return tx.QueryRow(ctx, `
		INSERT INTO point_ledger (id, account_id, task_id, redemption_id, entry_type, amount, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, e.ID, e.AccountID, e.TaskID, e.RedemptionID, e.EntryType, e.Amount, e.BalanceAfter).Scan(&e.CreatedAt)
}

func (r *Repository) ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.PointEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, task_id, redemption_id, entry_type, amount, balance_after, created_at
		FROM point_ledger WHERE account_id = $1 ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.PointEntry
	for rows.Next() {
		var e models.PointEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.TaskID, &e.RedemptionID, &e.EntryType, &e.Amount, &e.BalanceAfter, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
