package catalog

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/taskquest/backend/internal/middleware"
	"github.com/taskquest/backend/internal/models"
	"github.com/taskquest/backend/internal/repository"
	"github.com/taskquest/backend/internal/services"
)

type CreateRewardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
	Rarity      string `json:"rarity"`
	Type        string `json:"type"`
}

type SetAvailabilityRequest struct {
	Available bool `json:"available"`
}

type Handler struct {
	svc       Service
	validator *services.Validator
	log       *slog.Logger
}

func NewHandler(svc Service, validator *services.Validator, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, validator: validator, log: log}
}

// ListRewards serves GET /rewards. Query params: type (reward type enum),
// affordable=true (limit to the caller's available balance),
// include_unavailable=true (admin view).
func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	q := r.URL.Query()
	f := Filter{
		Type:               q.Get("type"),
		IncludeUnavailable: q.Get("include_unavailable") == "true",
	}
	if f.Type != "" && !models.ValidRewardType(f.Type) {
		http.Error(w, "unknown reward type", http.StatusBadRequest)
		return
	}
	if q.Get("affordable") == "true" {
		f.MaxCost = acc.AvailablePoints
	}
	list, err := h.svc.ListRewards(r.Context(), f)
	if err != nil {
		h.log.Error("list rewards failed", "error", err)
		http.Error(w, "list rewards failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(list)
}

func (h *Handler) CreateReward(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if middleware.AccountFromCtx(r.Context()) == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if err := h.validator.Validate(services.PayloadRewardCreate, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req CreateRewardRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	rw, err := h.svc.CreateReward(r.Context(), req.Name, req.Description, req.Cost, req.Rarity, req.Type)
	if err != nil {
		if errors.Is(err, ErrInvalidReward) {
			http.Error(w, "invalid reward", http.StatusBadRequest)
			return
		}
		h.log.Error("create reward failed", "error", err)
		http.Error(w, "create reward failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(rw)
}

// SetAvailability serves PATCH /rewards/{id}/availability.
func (h *Handler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if middleware.AccountFromCtx(r.Context()) == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid reward id", http.StatusBadRequest)
		return
	}
	var req SetAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.svc.SetAvailability(r.Context(), id, req.Available); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "reward not found", http.StatusNotFound)
			return
		}
		h.log.Error("set availability failed", "error", err)
		http.Error(w, "set availability failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
