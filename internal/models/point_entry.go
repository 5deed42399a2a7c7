package models

import (
	"time"

	"github.com/google/uuid"
)

// Point ledger entry_type enums.
const (
	PointEntryTaskAward        = "task_award"
	PointEntryRewardRedemption = "reward_redemption"
)

// PointEntry is one row of the append-only point ledger. Award entries
// reference the completed task, redemption entries the redemption record.
// BalanceAfter is the available balance immediately after the mutation.
type PointEntry struct {
	ID           uuid.UUID  `json:"id"`
	AccountID    uuid.UUID  `json:"account_id"`
	TaskID       *uuid.UUID `json:"task_id,omitempty"`
	RedemptionID *uuid.UUID `json:"redemption_id,omitempty"`
	EntryType    string     `json:"entry_type"`
	Amount       int        `json:"amount"`
	BalanceAfter int        `json:"balance_after"`
	CreatedAt    time.Time  `json:"created_at"`
}
