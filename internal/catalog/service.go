package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/taskquest/backend/internal/models"
)

// ErrInvalidReward is returned when a create request carries out-of-range
// fields. The JSON Schema layer catches most of these first; this is the
// service-level backstop.
var ErrInvalidReward = errors.New("invalid reward")

// Filter narrows ListRewards. Zero value lists the full available catalog.
type Filter struct {
	// Type limits results to one reward type when non-empty.
	Type string
	// MaxCost limits results to rewards costing at most this when positive.
	// The affordability view passes the caller's available balance here.
	MaxCost int
	// IncludeUnavailable also returns disabled entries (admin view).
	IncludeUnavailable bool
}

// RewardStore is the catalog's slice of the reward repository.
type RewardStore interface {
	Create(ctx context.Context, rw *models.Reward) error
	List(ctx context.Context) ([]*models.Reward, error)
	SetAvailable(ctx context.Context, id uuid.UUID, available bool) error
}

type Service interface {
	CreateReward(ctx context.Context, name, description string, cost int, rarity, rewardType string) (*models.Reward, error)
	ListRewards(ctx context.Context, f Filter) ([]*models.Reward, error)
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
}

type service struct {
	repo RewardStore
}

func NewService(repo RewardStore) *service {
	return &service{repo: repo}
}

var _ Service = (*service)(nil)

func (s *service) CreateReward(ctx context.Context, name, description string, cost int, rarity, rewardType string) (*models.Reward, error) {
	name = strings.TrimSpace(name)
	if name == "" || cost <= 0 || !models.ValidRarity(rarity) || !models.ValidRewardType(rewardType) {
		return nil, ErrInvalidReward
	}
	rw := &models.Reward{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Cost:        cost,
		Rarity:      rarity,
		Type:        rewardType,
		Available:   true,
	}
	if err := s.repo.Create(ctx, rw); err != nil {
		return nil, err
	}
	return rw, nil
}

// ListRewards returns catalog entries in ascending cost order, filtered
// in-process. The catalog is small; pushing the filters into SQL would buy
// nothing.
func (s *service) ListRewards(ctx context.Context, f Filter) ([]*models.Reward, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Reward, 0, len(all))
	for _, rw := range all {
		if !rw.Available && !f.IncludeUnavailable {
			continue
		}
		if f.Type != "" && rw.Type != f.Type {
			continue
		}
		if f.MaxCost > 0 && rw.Cost > f.MaxCost {
			continue
		}
		out = append(out, rw)
	}
	return out, nil
}

func (s *service) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	return s.repo.SetAvailable(ctx, id, available)
}
