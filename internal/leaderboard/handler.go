package leaderboard

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskquest/backend/internal/middleware"
)

type BoardResponse struct {
	Entries []Entry `json:"entries"`
	// MyRank is 0 when the caller has not earned any points yet.
	MyRank      int       `json:"my_rank"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	entries, refreshedAt, err := h.svc.Board(r.Context())
	if err != nil {
		h.log.Error("leaderboard failed", "error", err)
		http.Error(w, "leaderboard failed", http.StatusInternalServerError)
		return
	}
	resp := BoardResponse{
		Entries:     entries,
		MyRank:      RankOf(entries, acc.ID),
		RefreshedAt: refreshedAt,
	}
	if resp.Entries == nil {
		resp.Entries = []Entry{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
