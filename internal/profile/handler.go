package profile

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskquest/backend/internal/ledger"
	"github.com/taskquest/backend/internal/middleware"
	"github.com/taskquest/backend/internal/progression"
	"github.com/taskquest/backend/internal/repository"
)

type Handler struct {
	accountR    *repository.AccountRepo
	redemptionR *repository.RedemptionRepo
	ledgerR     *ledger.Repository
	log         *slog.Logger
}

func NewHandler(accountR *repository.AccountRepo, redemptionR *repository.RedemptionRepo, ledgerR *ledger.Repository, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{accountR: accountR, redemptionR: redemptionR, ledgerR: ledgerR, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GetMe serves GET /account/me: the account plus the derived progression
// stats the profile page renders.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	redemptionCount, err := h.redemptionR.CountByAccountID(r.Context(), acc.ID)
	if err != nil {
		h.log.Error("count redemptions failed", "error", err)
		http.Error(w, "profile failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":               acc.ID,
		"email":            acc.Email,
		"display_name":     acc.DisplayName,
		"total_points":     acc.TotalPoints,
		"available_points": acc.AvailablePoints,
		"tasks_completed":  acc.TasksCompleted,
		"level":            acc.Level,
		"level_progress":   progression.ProgressToNextLevel(acc.TotalPoints),
		"redemption_count": redemptionCount,
		"created_at":       acc.CreatedAt,
	})
}

// ListRedemptions serves GET /account/redemptions, newest first.
func (h *Handler) ListRedemptions(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.redemptionR.ListByAccountID(r.Context(), acc.ID)
	if err != nil {
		h.log.Error("list redemptions failed", "error", err)
		http.Error(w, "list redemptions failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListPointLedger serves GET /account/point-ledger, newest first.
func (h *Handler) ListPointLedger(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.ledgerR.ListByAccountID(r.Context(), acc.ID)
	if err != nil {
		h.log.Error("list point ledger failed", "error", err)
		http.Error(w, "list point ledger failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// UpdateSettings serves PATCH /account/settings. Only the display name is
// editable; point counters and email are not settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var body struct {
		DisplayName *string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if body.DisplayName == nil {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(*body.DisplayName)
	if name == "" {
		http.Error(w, "display_name must not be empty", http.StatusBadRequest)
		return
	}
	if err := h.accountR.UpdateDisplayName(r.Context(), acc.ID, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}
		h.log.Error("update settings failed", "error", err)
		http.Error(w, "update settings failed", http.StatusInternalServerError)
		return
	}
	acc.DisplayName = name
	writeJSON(w, http.StatusOK, acc)
}
