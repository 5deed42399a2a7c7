package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskquest/backend/internal/models"
)

// RewardStore is the minimal reward catalog interface for redemption. The
// read is transaction-scoped so an admin disabling a reward concurrently
// cannot race a redemption past the availability check.
type RewardStore interface {
	GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Reward, error)
}

// RedemptionStore appends redemption records inside the debit's transaction.
type RedemptionStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, rec *models.Redemption) error
}

// RedemptionService exchanges available points for catalog rewards. The
// debit and the redemption record commit together; the balance check happens
// at commit time inside the database, so a stale affordability display can
// never overdraw an account.
type RedemptionService struct {
	Pool        TxBeginner
	Rewards     RewardStore
	Accounts    AccountStore
	Redemptions RedemptionStore
	Ledger      LedgerStore
}

// NewRedemptionService returns a new RedemptionService.
func NewRedemptionService(pool TxBeginner, rewards RewardStore, accounts AccountStore, redemptions RedemptionStore, led LedgerStore) *RedemptionService {
	return &RedemptionService{Pool: pool, Rewards: rewards, Accounts: accounts, Redemptions: redemptions, Ledger: led}
}

// Redeem debits the reward's cost and appends the redemption record. Fails
// with ErrNotFound, ErrRewardUnavailable, or InsufficientPointsError (which
// carries the shortfall at the time of the attempt).
func (s *RedemptionService) Redeem(ctx context.Context, rewardID, accountID uuid.UUID) (*models.Redemption, *models.Account, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	reward, err := s.Rewards.GetByIDTx(ctx, tx, rewardID)
	if err != nil {
		return nil, nil, err
	}
	if !reward.Available {
		return nil, nil, ErrRewardUnavailable
	}

	newAvailable, err := s.Accounts.DeductPoints(ctx, tx, accountID, reward.Cost)
	if errors.Is(err, pgx.ErrNoRows) {
		// Missing account or insufficient balance: re-read to tell them apart.
		account, readErr := s.Accounts.GetByIDTx(ctx, tx, accountID)
		if readErr != nil {
			return nil, nil, readErr
		}
		return nil, nil, &InsufficientPointsError{Shortfall: reward.Cost - account.AvailablePoints}
	}
	if err != nil {
		return nil, nil, err
	}

	rec := &models.Redemption{
		ID:         uuid.New(),
		AccountID:  accountID,
		RewardID:   reward.ID,
		RewardName: reward.Name,
		Cost:       reward.Cost,
	}
	if err := s.Redemptions.CreateTx(ctx, tx, rec); err != nil {
		return nil, nil, err
	}
	if err := s.Ledger.AppendTx(ctx, tx, &models.PointEntry{
		ID:           uuid.New(),
		AccountID:    accountID,
		RedemptionID: &rec.ID,
		EntryType:    models.PointEntryRewardRedemption,
		Amount:       reward.Cost,
		BalanceAfter: newAvailable,
	}); err != nil {
		return nil, nil, err
	}

	account, err := s.Accounts.GetByIDTx(ctx, tx, accountID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return rec, account, nil
}
