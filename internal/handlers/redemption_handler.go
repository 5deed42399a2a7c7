package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/taskquest/backend/internal/middleware"
	"github.com/taskquest/backend/internal/models"
	"github.com/taskquest/backend/internal/services"
)

// Redeemer abstracts the redemption service.
type Redeemer interface {
	Redeem(ctx context.Context, rewardID, accountID uuid.UUID) (*models.Redemption, *models.Account, error)
}

// RedemptionHandler serves POST /api/v1/redemptions.
type RedemptionHandler struct {
	Redemption Redeemer
	Logger     *slog.Logger
}

type redeemRequest struct {
	RewardID uuid.UUID `json:"reward_id"`
}

type redeemResponse struct {
	Redemption *models.Redemption `json:"redemption"`
	Account    *models.Account    `json:"account"`
}

// Redeem handles POST /api/v1/redemptions.
// Auth -> AffordCheck (via middleware, cosmetic) -> Redeem -> 201.
func (h *RedemptionHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	// AffordCheck already parsed the body; fall back to decoding it when the
	// route is wired without the middleware.
	rewardID := middleware.RewardIDFromCtx(r.Context())
	if rewardID == uuid.Nil {
		var req redeemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
			return
		}
		if req.RewardID == uuid.Nil {
			http.Error(w, `{"error":"reward_id is required"}`, http.StatusBadRequest)
			return
		}
		rewardID = req.RewardID
	}

	rec, account, err := h.Redemption.Redeem(r.Context(), rewardID, acc.ID)
	if err != nil {
		var ipe *services.InsufficientPointsError
		switch {
		case errors.Is(err, services.ErrNotFound):
			http.Error(w, `{"error":"reward not found"}`, http.StatusNotFound)
		case errors.Is(err, services.ErrRewardUnavailable):
			http.Error(w, `{"error":"reward unavailable"}`, http.StatusConflict)
		case errors.As(err, &ipe):
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":     "insufficient points",
				"shortfall": ipe.Shortfall,
			})
		default:
			h.Logger.Error("redeem", "reward_id", rewardID, "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, redeemResponse{Redemption: rec, Account: account})
}
