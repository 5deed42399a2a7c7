package models

import (
	"time"

	"github.com/google/uuid"
)

// Redemption is the append-only record of a reward purchase. Cost and
// RewardName are denormalized so the record stays meaningful if the catalog
// entry is later renamed or repriced.
type Redemption struct {
	ID         uuid.UUID `json:"id"`
	AccountID  uuid.UUID `json:"account_id"`
	RewardID   uuid.UUID `json:"reward_id"`
	RewardName string    `json:"reward_name"`
	Cost       int       `json:"cost"`
	RedeemedAt time.Time `json:"redeemed_at"`
}
