package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/taskquest/backend/internal/models"
)

const ctxRewardKey contextKey = "parsed_reward"

// RewardGetter resolves the reward named in a redemption request.
type RewardGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reward, error)
}

// parsedRedeem is stored in context so the handler can read the reward ID
// without re-parsing the body.
type parsedRedeem struct {
	RewardID uuid.UUID `json:"reward_id"`
}

// RewardIDFromCtx returns the reward ID parsed by AffordCheck, or uuid.Nil.
func RewardIDFromCtx(ctx context.Context) uuid.UUID {
	if p, ok := ctx.Value(ctxRewardKey).(*parsedRedeem); ok {
		return p.RewardID
	}
	return uuid.Nil
}

// AffordCheck rejects redemption requests the account visibly cannot afford,
// reporting the shortfall. It is a display-level courtesy: the balance it
// reads may be stale, and the authoritative check happens inside the
// redemption transaction. Reads the body to extract "reward_id", then
// replaces r.Body so downstream handlers can re-read it.
func AffordCheck(rewards RewardGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acc := AccountFromCtx(r.Context())
			if acc == nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			bodyBytes, err := io.ReadAll(r.Body)
			r.Body.Close()
			if err != nil {
				http.Error(w, `{"error":"failed to read body"}`, http.StatusBadRequest)
				return
			}
			// Restore body for the handler.
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

			var peek parsedRedeem
			if err := json.Unmarshal(bodyBytes, &peek); err != nil {
				http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
				return
			}
			if peek.RewardID == uuid.Nil {
				http.Error(w, `{"error":"reward_id is required"}`, http.StatusBadRequest)
				return
			}

			// Lookup failures fall through to the handler, which owns the
			// real error mapping.
			if reward, err := rewards.GetByID(r.Context(), peek.RewardID); err == nil {
				if acc.AvailablePoints < reward.Cost {
					shortfall := reward.Cost - acc.AvailablePoints
					http.Error(w, fmt.Sprintf(`{"error":"insufficient points","shortfall":%d}`, shortfall), http.StatusConflict)
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxRewardKey, &peek)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
