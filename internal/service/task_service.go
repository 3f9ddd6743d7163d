package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"workorder/internal/auth"
	"workorder/internal/cache"
	"workorder/internal/models"
	"workorder/internal/repository"
	myws "workorder/internal/websocket"
	"workorder/pkg/idgen"
	"workorder/pkg/logger"

	"go.uber.org/zap"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// TaskInput carries the caller-supplied fields of a task. Create and Update
// both treat it as the complete new state.
type TaskInput struct {
	TaskName      string
	Description   string
	ProgressValue int
	Status        models.TaskStatus
	Priority      models.Priority
	DueDate       *time.Time
	Assignee      string
	Category      string
	Tags          []string
}

func (in *TaskInput) normalize() error {
	in.TaskName = strings.TrimSpace(in.TaskName)
	if in.TaskName == "" {
		return invalid("task_name", "is required")
	}
	if in.ProgressValue < 0 || in.ProgressValue > 100 {
		return invalid("progress_value", "must be between 0 and 100")
	}
	if in.Status == "" {
		in.Status = models.StatusPending
	}
	if !in.Status.Valid() {
		return invalid("status", "must be one of pending in_progress completed cancelled")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return invalid("priority", "must be one of low medium high urgent")
	}
	return nil
}

// Page is one page of a user's tasks.
type Page struct {
	Items      []models.Task `json:"items"`
	Page       int           `json:"page"`
	Size       int           `json:"size"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
}

// TaskStats counts a user's tasks, overall and per status.
type TaskStats struct {
	Total    int64                       `json:"total"`
	ByStatus map[models.TaskStatus]int64 `json:"by_status"`
}

type TaskService struct {
	tasks  TaskStore
	cache  cache.Cache
	events EventPublisher
}

func NewTaskService(tasks TaskStore, c cache.Cache, events EventPublisher) *TaskService {
	if c == nil {
		c = cache.Nop{}
	}
	if events == nil {
		events = nopPublisher{}
	}
	return &TaskService{tasks: tasks, cache: c, events: events}
}

func (s *TaskService) Create(ctx context.Context, userID string, in TaskInput) (*models.Task, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	task := &models.Task{
		ID:     idgen.NewTaskID(),
		UserID: userID,
	}
	apply(task, in)

	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, storeError("create task", err)
	}
	logger.AuditLogger.Info("Task created successfully",
		zap.String("task_id", task.ID), zap.String("user_id", userID))
	s.events.Publish(userID, myws.TaskEvent{Type: myws.EventTaskCreated, TaskID: task.ID, Task: task})
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, taskID, userID string, in TaskInput) (*models.Task, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	task, err := s.owned(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	apply(task, in)

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, storeError("update task", err)
	}
	s.forget(ctx, taskID)
	logger.AuditLogger.Info("Task updated", zap.String("task_id", taskID))
	s.events.Publish(userID, myws.TaskEvent{Type: myws.EventTaskUpdated, TaskID: task.ID, Task: task})
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, taskID, userID string) error {
	if _, err := s.owned(ctx, taskID, userID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return storeError("delete task", err)
	}
	s.forget(ctx, taskID)
	logger.AuditLogger.Info("Task deleted", zap.String("task_id", taskID))
	s.events.Publish(userID, myws.TaskEvent{Type: myws.EventTaskDeleted, TaskID: taskID})
	return nil
}

// Get returns a task owned by userID. Cached copies are still checked for
// ownership.
func (s *TaskService) Get(ctx context.Context, taskID, userID string) (*models.Task, error) {
	var cached models.Task
	hit, err := s.cache.Get(ctx, cache.TaskKey(taskID), &cached)
	if err != nil {
		logger.ErrorLogger.Error("Error reading task cache", zap.Error(err))
	}
	if hit {
		if err := guard(&cached, userID); err != nil {
			return nil, err
		}
		return &cached, nil
	}

	task, err := s.owned(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cache.TaskKey(taskID), task); err != nil {
		logger.ErrorLogger.Error("Error caching task", zap.Error(err))
	}
	return task, nil
}

// List returns page (zero-based) of the user's tasks.
func (s *TaskService) List(ctx context.Context, userID string, page, size int) (*Page, error) {
	if page < 0 {
		return nil, invalid("page", "must not be negative")
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if size < 1 || size > MaxPageSize {
		return nil, invalid("size", fmt.Sprintf("must be between 1 and %d", MaxPageSize))
	}

	total, err := s.tasks.CountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.tasks.ListByOwner(ctx, userID, page, size)
	if err != nil {
		return nil, err
	}
	return &Page{
		Items:      items,
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

func (s *TaskService) ListByStatus(ctx context.Context, userID string, status models.TaskStatus) ([]models.Task, error) {
	if !status.Valid() {
		return nil, invalid("status", "must be one of pending in_progress completed cancelled")
	}
	return s.tasks.ListByOwnerAndStatus(ctx, userID, status)
}

func (s *TaskService) ListByPriority(ctx context.Context, userID string, priority models.Priority) ([]models.Task, error) {
	if !priority.Valid() {
		return nil, invalid("priority", "must be one of low medium high urgent")
	}
	return s.tasks.ListByOwnerAndPriority(ctx, userID, priority)
}

// ListByDateRange returns tasks created within [start, end].
func (s *TaskService) ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error) {
	if end.Before(start) {
		return nil, invalid("end", "must not be before start")
	}
	return s.tasks.ListByOwnerAndDateRange(ctx, userID, start, end)
}

func (s *TaskService) Stats(ctx context.Context, userID string) (*TaskStats, error) {
	total, err := s.tasks.CountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := &TaskStats{Total: total, ByStatus: make(map[models.TaskStatus]int64, len(models.TaskStatuses))}
	for _, status := range models.TaskStatuses {
		n, err := s.tasks.CountByOwnerAndStatus(ctx, userID, status)
		if err != nil {
			return nil, err
		}
		stats.ByStatus[status] = n
	}
	return stats, nil
}

// owned loads a task and applies the ownership guard.
func (s *TaskService) owned(ctx context.Context, taskID, userID string) (*models.Task, error) {
	if taskID == "" {
		return nil, invalid("task_id", "is required")
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if err := guard(task, userID); err != nil {
		return nil, err
	}
	return task, nil
}

func guard(task *models.Task, userID string) error {
	if auth.Authorize(task.UserID, userID) == auth.Deny {
		logger.SecurityLogger.Warn("Task access denied",
			zap.String("task_id", task.ID), zap.String("user_id", userID))
		return ErrForbidden
	}
	return nil
}

func (s *TaskService) forget(ctx context.Context, taskID string) {
	if err := s.cache.Delete(ctx, cache.TaskKey(taskID)); err != nil {
		logger.ErrorLogger.Error("Error invalidating task cache", zap.Error(err))
	}
}

// apply copies in onto task and derives the stored status.
func apply(task *models.Task, in TaskInput) {
	task.TaskName = in.TaskName
	task.Description = in.Description
	task.ProgressValue = in.ProgressValue
	task.Priority = in.Priority
	task.DueDate = in.DueDate
	task.Assignee = in.Assignee
	task.Category = in.Category
	task.Tags = in.Tags
	task.Status = models.DeriveStatus(in.ProgressValue, in.Status)
}

func storeError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrTagsTooLong):
		return invalid("tags", err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return ErrTaskNotFound
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
