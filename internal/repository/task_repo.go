package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskquest/backend/internal/models"
)

const taskColumns = `id, owner_id, title, description, category, difficulty, points, completed, completed_at, version, created_at, updated_at`

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func scanTask(row pgx.Row, t *models.Task) error {
	return row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Category, &t.Difficulty, &t.Points, &t.Completed, &t.CompletedAt, &t.Version, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepo) Create(ctx context.Context, t *models.Task) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, owner_id, title, description, category, difficulty, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING version, created_at, updated_at
	`, t.ID, t.OwnerID, t.Title, t.Description, t.Category, t.Difficulty, t.Points).Scan(&t.Version, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var t models.Task
	err := scanTask(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1
	`, id), &t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByIDTx reads the task inside the given transaction.
func (r *TaskRepo) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Task, error) {
	var t models.Task
	err := scanTask(tx.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1
	`, id), &t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE owner_id = $1 ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Task
	for rows.Next() {
		var t models.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// UpdateOpen writes title/description/category/difficulty/points edits. The
// WHERE clause keeps completed tasks immutable and applies the optimistic
// version check in the same statement.
func (r *TaskRepo) UpdateOpen(ctx context.Context, t *models.Task, expectedVersion int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, category = $4, difficulty = $5, points = $6,
		    version = version + 1, updated_at = now()
		WHERE id = $1 AND completed = FALSE AND version = $7
	`, t.ID, t.Title, t.Description, t.Category, t.Difficulty, t.Points, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	t.Version = expectedVersion + 1
	return nil
}

// MarkCompleted flips the task to its terminal state. The completed = FALSE
// guard makes the flip race-safe: of two concurrent completions exactly one
// statement matches the row. Returns ErrVersionConflict when no row matched;
// the caller re-reads to distinguish a lost race from an already-completed
// task.
func (r *TaskRepo) MarkCompleted(ctx context.Context, tx pgx.Tx, id uuid.UUID, completedAt time.Time, expectedVersion int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE tasks
		SET completed = TRUE, completed_at = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND completed = FALSE AND version = $3
	`, id, completedAt, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}
