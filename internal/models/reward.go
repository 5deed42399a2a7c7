package models

import (
	"time"

	"github.com/google/uuid"
)

// Reward rarity enums.
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Reward type enums.
const (
	RewardTypeBadge   = "badge"
	RewardTypePerk    = "perk"
	RewardTypeItem    = "item"
	RewardTypeUpgrade = "upgrade"
)

// ValidRarity reports whether rarity is one of the known enums.
func ValidRarity(rarity string) bool {
	switch rarity {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

// ValidRewardType reports whether t is one of the known enums.
func ValidRewardType(t string) bool {
	switch t {
	case RewardTypeBadge, RewardTypePerk, RewardTypeItem, RewardTypeUpgrade:
		return true
	}
	return false
}

// Reward is a catalog entry. The core treats catalog entries as read-only;
// only the catalog admin surface flips Available.
type Reward struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Cost        int       `json:"cost"`
	Rarity      string    `json:"rarity"`
	Type        string    `json:"type"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
}
