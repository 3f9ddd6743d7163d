package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"workorder/internal/models"
	"workorder/pkg/logger"

	"go.uber.org/zap"
)

const taskColumns = `id, user_id, task_name, description, progress_value, status, priority,
due_date, assignee, category, tags, create_time, update_time`

// MaxTagsLength bounds the serialized tag list.
const MaxTagsLength = 500

var ErrTagsTooLong = fmt.Errorf("serialized tags exceed %d bytes", MaxTagsLength)

// TaskRepository is the task store. Every query that lists tasks is scoped to
// an owner.
type TaskRepository struct {
	db      *sql.DB
	dialect Dialect
	clock   Clock
}

func NewTaskRepository(db *sql.DB, dialect Dialect, clock Clock) *TaskRepository {
	return &TaskRepository{db: db, dialect: dialect, clock: clock}
}

// EncodeTags serializes tags as a JSON array. An empty list is stored as NULL.
func EncodeTags(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode tags: %w", err)
	}
	if len(raw) > MaxTagsLength {
		return sql.NullString{}, ErrTagsTooLong
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

// DecodeTags parses a stored tag list. Unreadable values degrade to an empty
// list so the rest of the task can still be served.
func DecodeTags(raw sql.NullString) []string {
	tags := []string{}
	if !raw.Valid || raw.String == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(raw.String), &tags); err != nil {
		logger.SystemLogger.Warn("Unreadable task tags, using empty list", zap.Error(err))
		return []string{}
	}
	if tags == nil {
		return []string{}
	}
	return tags
}

func (r *TaskRepository) Insert(ctx context.Context, task *models.Task) error {
	tags, err := EncodeTags(task.Tags)
	if err != nil {
		return err
	}
	now := r.clock.now().Truncate(time.Millisecond)
	task.CreateTime = now
	task.UpdateTime = now

	_, err = r.db.ExecContext(ctx, r.dialect.Rebind(`
INSERT INTO tasks (`+taskColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		task.ID, task.UserID, task.TaskName, task.Description, task.ProgressValue,
		string(task.Status), string(task.Priority), nullMillis(task.DueDate),
		nullString(task.Assignee), nullString(task.Category), tags,
		toMillis(task.CreateTime), toMillis(task.UpdateTime),
	)
	if err != nil {
		if _, ok := r.dialect.uniqueViolation(err); ok {
			return &DuplicateError{Field: "id", Err: err}
		}
		return fmt.Errorf("insert task: %w", err)
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return task, err
}

// Update replaces every mutable field of the task and stamps update_time.
// The owner is never changed.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	tags, err := EncodeTags(task.Tags)
	if err != nil {
		return err
	}
	now := r.clock.now().Truncate(time.Millisecond)

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`
UPDATE tasks
SET task_name = ?, description = ?, progress_value = ?, status = ?, priority = ?,
    due_date = ?, assignee = ?, category = ?, tags = ?, update_time = ?
WHERE id = ? AND user_id = ?`),
		task.TaskName, task.Description, task.ProgressValue, string(task.Status), string(task.Priority),
		nullMillis(task.DueDate), nullString(task.Assignee), nullString(task.Category), tags,
		toMillis(now), task.ID, task.UserID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	task.UpdateTime = now
	if task.Tags == nil {
		task.Tags = []string{}
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOwner returns one page of the owner's tasks, newest first. page is
// zero-based.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string, page, size int) ([]models.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = ?
ORDER BY create_time DESC, id LIMIT ? OFFSET ?`, ownerID, size, page*size)
}

func (r *TaskRepository) ListByOwnerAndStatus(ctx context.Context, ownerID string, status models.TaskStatus) ([]models.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND status = ?
ORDER BY create_time DESC, id`, ownerID, string(status))
}

func (r *TaskRepository) ListByOwnerAndPriority(ctx context.Context, ownerID string, priority models.Priority) ([]models.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND priority = ?
ORDER BY create_time DESC, id`, ownerID, string(priority))
}

// ListByOwnerAndDateRange returns tasks created within [start, end].
func (r *TaskRepository) ListByOwnerAndDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]models.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND create_time BETWEEN ? AND ?
ORDER BY create_time DESC, id`, ownerID, toMillis(start), toMillis(end))
}

func (r *TaskRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM tasks WHERE user_id = ?`, ownerID)
}

func (r *TaskRepository) CountByOwnerAndStatus(ctx context.Context, ownerID string, status models.TaskStatus) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM tasks WHERE user_id = ? AND status = ?`, ownerID, string(status))
}

func (r *TaskRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (r *TaskRepository) list(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		task                  models.Task
		status, priority      string
		description, assignee sql.NullString
		category, tags        sql.NullString
		dueDate               sql.NullInt64
		createTime, updTime   int64
	)
	err := row.Scan(&task.ID, &task.UserID, &task.TaskName, &description, &task.ProgressValue,
		&status, &priority, &dueDate, &assignee, &category, &tags, &createTime, &updTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}
	task.Description = description.String
	task.Status = models.TaskStatus(status)
	task.Priority = models.Priority(priority)
	task.DueDate = fromNullMillis(dueDate)
	task.Assignee = assignee.String
	task.Category = category.String
	task.Tags = DecodeTags(tags)
	task.CreateTime = fromMillis(createTime)
	task.UpdateTime = fromMillis(updTime)
	return &task, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
