package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"scholarship-finder/internal/domain"
)

type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) error
	ListByApplication(ctx context.Context, applicationID string) ([]domain.Task, error)
	GetForUser(ctx context.Context, id, applicationID, userID string) (domain.Task, error)
	Update(ctx context.Context, task domain.Task) error
	Delete(ctx context.Context, id, applicationID string) error
}

type PgTaskRepository struct {
	pool DB
}

func NewPgTaskRepository(pool DB) *PgTaskRepository {
	return &PgTaskRepository{pool: pool}
}

func (r *PgTaskRepository) Create(ctx context.Context, t domain.Task) error {
	const query = `
		INSERT INTO tasks (id, application_id, title, due_date, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.ApplicationID,
		t.Title,
		t.DueDate,
		t.Completed,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

func (r *PgTaskRepository) ListByApplication(ctx context.Context, applicationID string) ([]domain.Task, error) {
	const query = `
		SELECT id, application_id, title, due_date, completed, created_at, updated_at
		FROM tasks
		WHERE application_id = $1
		ORDER BY completed ASC, due_date ASC NULLS LAST, created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *PgTaskRepository) GetForUser(ctx context.Context, id, applicationID, userID string) (domain.Task, error) {
	const query = `
		SELECT t.id, t.application_id, t.title, t.due_date, t.completed, t.created_at, t.updated_at
		FROM tasks t
		JOIN applications a ON a.id = t.application_id
		WHERE t.id = $1 AND t.application_id = $2 AND a.user_id = $3
	`
	return scanTask(r.pool.QueryRow(ctx, query, id, applicationID, userID))
}

func (r *PgTaskRepository) Update(ctx context.Context, t domain.Task) error {
	const query = `
		UPDATE tasks
		SET title = $3, due_date = $4, completed = $5, updated_at = $6
		WHERE id = $1 AND application_id = $2
	`
	tag, err := r.pool.Exec(ctx, query,
		t.ID,
		t.ApplicationID,
		t.Title,
		t.DueDate,
		t.Completed,
		t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgTaskRepository) Delete(ctx context.Context, id, applicationID string) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND application_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, applicationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID,
		&t.ApplicationID,
		&t.Title,
		&t.DueDate,
		&t.Completed,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return domain.Task{}, err
	}
	return t, nil
}
