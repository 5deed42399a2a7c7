package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/taskquest/backend/internal/middleware"
	"github.com/taskquest/backend/internal/models"
	"github.com/taskquest/backend/internal/services"
)

// TaskRepoForHandler is the subset of the task repository needed by the handler.
type TaskRepoForHandler interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error)
	UpdateOpen(ctx context.Context, t *models.Task, expectedVersion int64) error
}

// Completer abstracts the lifecycle service's completion operation.
type Completer interface {
	CompleteTask(ctx context.Context, taskID, accountID uuid.UUID) (*models.Task, *models.Account, error)
}

// TaskHandler serves /api/v1/tasks endpoints.
type TaskHandler struct {
	TaskRepo  TaskRepoForHandler
	Lifecycle Completer
	Validator *services.Validator
	Logger    *slog.Logger
}

// --- POST /api/v1/tasks ---

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	Points      int    `json:"points"`
}

// CreateTask handles POST /api/v1/tasks.
// Auth (via middleware) -> Validate Payload -> Persist -> 201.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, `{"error":"failed to read body"}`, http.StatusBadRequest)
		return
	}

	// Hard reject on schema mismatch before touching the domain.
	if err := h.Validator.Validate(services.PayloadTaskCreate, body); err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	var req createTaskRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Points == 0 {
		req.Points = models.DefaultPointsForDifficulty(req.Difficulty)
	}

	task := &models.Task{
		ID:          uuid.New(),
		OwnerID:     acc.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Points:      req.Points,
	}
	if err := h.TaskRepo.Create(r.Context(), task); err != nil {
		h.Logger.Error("create task", "error", err)
		http.Error(w, `{"error":"failed to create task"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// --- GET /api/v1/tasks ---

// ListTasks handles GET /api/v1/tasks. Query params: status
// (all|pending|completed) and category.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	status := r.URL.Query().Get("status")
	switch status {
	case "", "all", "pending", "completed":
	default:
		http.Error(w, `{"error":"status must be all, pending or completed"}`, http.StatusBadRequest)
		return
	}
	category := r.URL.Query().Get("category")
	if category != "" && !models.ValidCategory(category) {
		http.Error(w, `{"error":"unknown category"}`, http.StatusBadRequest)
		return
	}

	all, err := h.TaskRepo.ListByOwner(r.Context(), acc.ID)
	if err != nil {
		h.Logger.Error("list tasks", "error", err)
		http.Error(w, `{"error":"failed to list tasks"}`, http.StatusInternalServerError)
		return
	}

	out := make([]*models.Task, 0, len(all))
	for _, t := range all {
		if status == "pending" && t.Completed {
			continue
		}
		if status == "completed" && !t.Completed {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		out = append(out, t)
	}
	writeJSON(w, http.StatusOK, out)
}

// --- PATCH /api/v1/tasks/{id} ---

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Difficulty  *string `json:"difficulty"`
	Points      *int    `json:"points"`
}

// UpdateTask handles PATCH /api/v1/tasks/{id}. Only open tasks are editable;
// a completed task is immutable.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid task id"}`, http.StatusBadRequest)
		return
	}

	task, err := h.TaskRepo.GetByID(r.Context(), taskID)
	if err != nil {
		http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
		return
	}
	if task.OwnerID != acc.ID {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	if task.Completed {
		http.Error(w, `{"error":"completed tasks are immutable"}`, http.StatusConflict)
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			http.Error(w, `{"error":"title must not be empty"}`, http.StatusBadRequest)
			return
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		if !models.ValidCategory(*req.Category) {
			http.Error(w, `{"error":"unknown category"}`, http.StatusBadRequest)
			return
		}
		task.Category = *req.Category
	}
	if req.Difficulty != nil {
		if !models.ValidDifficulty(*req.Difficulty) {
			http.Error(w, `{"error":"unknown difficulty"}`, http.StatusBadRequest)
			return
		}
		task.Difficulty = *req.Difficulty
	}
	if req.Points != nil {
		if *req.Points <= 0 {
			http.Error(w, `{"error":"points must be > 0"}`, http.StatusBadRequest)
			return
		}
		task.Points = *req.Points
	}

	if err := h.TaskRepo.UpdateOpen(r.Context(), task, task.Version); err != nil {
		if errors.Is(err, services.ErrVersionConflict) {
			// The row stopped matching between our read and write: either a
			// concurrent edit or a concurrent completion won.
			http.Error(w, `{"error":"task changed concurrently"}`, http.StatusConflict)
			return
		}
		h.Logger.Error("update task", "error", err)
		http.Error(w, `{"error":"failed to update task"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// --- POST /api/v1/tasks/{id}/complete ---

type completeTaskResponse struct {
	Task    *models.Task    `json:"task"`
	Account *models.Account `json:"account"`
}

// CompleteTask handles POST /api/v1/tasks/{id}/complete. The flip and the
// point credit happen in one transaction inside the lifecycle service.
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid task id"}`, http.StatusBadRequest)
		return
	}

	task, account, err := h.Lifecycle.CompleteTask(r.Context(), taskID, acc.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
		case errors.Is(err, services.ErrForbidden):
			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		case errors.Is(err, services.ErrAlreadyCompleted):
			http.Error(w, `{"error":"task already completed"}`, http.StatusConflict)
		case errors.Is(err, services.ErrInvalidAward):
			http.Error(w, `{"error":"task has an invalid point value"}`, http.StatusUnprocessableEntity)
		case errors.Is(err, services.ErrVersionConflict):
			http.Error(w, `{"error":"task changed concurrently, retry"}`, http.StatusConflict)
		default:
			h.Logger.Error("complete task", "task_id", taskID, "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, completeTaskResponse{Task: task, Account: account})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
