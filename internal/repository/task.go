package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/athena-ems/athena/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const taskColumns = `id, title, COALESCE(description, ''), assigned_to, assigned_by, status, created_date, due_date, completed_date`

func scanTask(row pgx.Row) (models.Task, error) {
	var task models.Task
	var createdDate, dueDate time.Time
	var completedDate *time.Time

	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.AssignedTo, &task.AssignedBy,
		&task.Status, &createdDate, &dueDate, &completedDate)
	if err != nil {
		return models.Task{}, err
	}

	task.CreatedDate = createdDate.Format(dateLayout)
	task.DueDate = dueDate.Format(dateLayout)
	if completedDate != nil {
		task.CompletedDate = completedDate.Format(dateLayout)
	}

	return task, nil
}

// ListTasks retrieves every task, in insertion order.
func (r *Repository) ListTasks(ctx context.Context) ([]models.Task, error) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.DBQueryDuration.WithLabelValues("list_tasks").Observe(duration)
	}()
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", scanErr)
		}
		tasks = append(tasks, task)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}

	return tasks, nil
}

// CreateTask inserts a new task and returns the stored row. The row id is
// assigned here; the caller is expected to have filled status and createdDate.
func (r *Repository) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.DBQueryDuration.WithLabelValues("create_task").Observe(duration)
	}()
	query := `
		INSERT INTO tasks (id, title, description, assigned_to, assigned_by, status, created_date, due_date)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)
		RETURNING ` + taskColumns + `;
	`

	result, err := scanTask(r.db.QueryRow(ctx, query, uuid.NewString(), task.Title, task.Description,
		task.AssignedTo, task.AssignedBy, task.Status, task.CreatedDate, task.DueDate))
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to insert new task: %w", err)
	}

	return result, nil
}

// UpdateTaskStatus sets a task's status and returns the stored row. When
// completedDate is non-empty it is written alongside the status; otherwise
// the stored completed_date is left untouched.
func (r *Repository) UpdateTaskStatus(
	ctx context.Context,
	taskID string,
	status models.TaskStatus,
	completedDate string,
) (models.Task, error) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.DBQueryDuration.WithLabelValues("update_task_status").Observe(duration)
	}()

	var row pgx.Row
	if completedDate != "" {
		query := `
			UPDATE tasks
			SET status = $2, completed_date = $3, updated_at = CURRENT_TIMESTAMP
			WHERE id = $1
			RETURNING ` + taskColumns + `;
		`
		row = r.db.QueryRow(ctx, query, taskID, status, completedDate)
	} else {
		query := `
			UPDATE tasks
			SET status = $2, updated_at = CURRENT_TIMESTAMP
			WHERE id = $1
			RETURNING ` + taskColumns + `;
		`
		row = r.db.QueryRow(ctx, query, taskID, status)
	}

	result, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("failed to update task status: %w", err)
	}

	return result, nil
}
