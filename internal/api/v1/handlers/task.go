package handlers

import (
	"time"

	"workorder/internal/middleware"
	"workorder/internal/models"
	"workorder/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TaskRequest is the full new state of a task for both create and update.
type TaskRequest struct {
	TaskName      string     `json:"task_name" validate:"required,max=200"`
	Description   string     `json:"description"`
	ProgressValue int        `json:"progress_value" validate:"min=0,max=100"`
	Status        string     `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority      string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate       *time.Time `json:"due_date"`
	Assignee      string     `json:"assignee" validate:"max=64"`
	Category      string     `json:"category" validate:"max=50"`
	Tags          []string   `json:"tags"`
}

func (r TaskRequest) input() service.TaskInput {
	return service.TaskInput{
		TaskName:      r.TaskName,
		Description:   r.Description,
		ProgressValue: r.ProgressValue,
		Status:        models.TaskStatus(r.Status),
		Priority:      models.Priority(r.Priority),
		DueDate:       r.DueDate,
		Assignee:      r.Assignee,
		Category:      r.Category,
		Tags:          r.Tags,
	}
}

type TaskHandler struct {
	tasks    *service.TaskService
	validate *validator.Validate
}

func NewTaskHandler(tasks *service.TaskService, v *validator.Validate) *TaskHandler {
	return &TaskHandler{tasks: tasks, validate: v}
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var req TaskRequest
	if err := bind(c, h.validate, &req); err != nil {
		return handleError(c, err)
	}
	task, err := h.tasks.Create(c.UserContext(), middleware.UserID(c), req.input())
	if err != nil {
		return handleError(c, err)
	}
	return success(c, task)
}

// Update menimpa seluruh field task milik caller.
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	var req TaskRequest
	if err := bind(c, h.validate, &req); err != nil {
		return handleError(c, err)
	}
	task, err := h.tasks.Update(c.UserContext(), c.Params("taskId"), middleware.UserID(c), req.input())
	if err != nil {
		return handleError(c, err)
	}
	return success(c, task)
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	if err := h.tasks.Delete(c.UserContext(), c.Params("taskId"), middleware.UserID(c)); err != nil {
		return handleError(c, err)
	}
	return success(c, nil)
}

func (h *TaskHandler) Get(c *fiber.Ctx) error {
	task, err := h.tasks.Get(c.UserContext(), c.Params("taskId"), middleware.UserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return success(c, task)
}

// List returns one page of the caller's tasks. page is zero-based.
func (h *TaskHandler) List(c *fiber.Ctx) error {
	page, err := h.tasks.List(c.UserContext(), middleware.UserID(c),
		c.QueryInt("page", 0), c.QueryInt("size", service.DefaultPageSize))
	if err != nil {
		return handleError(c, err)
	}
	return success(c, page)
}

func (h *TaskHandler) ListByStatus(c *fiber.Ctx) error {
	tasks, err := h.tasks.ListByStatus(c.UserContext(), middleware.UserID(c), models.TaskStatus(c.Params("status")))
	if err != nil {
		return handleError(c, err)
	}
	return success(c, tasks)
}

func (h *TaskHandler) ListByPriority(c *fiber.Ctx) error {
	tasks, err := h.tasks.ListByPriority(c.UserContext(), middleware.UserID(c), models.Priority(c.Params("priority")))
	if err != nil {
		return handleError(c, err)
	}
	return success(c, tasks)
}

// ListByDateRange expects RFC3339 start and end query parameters.
func (h *TaskHandler) ListByDateRange(c *fiber.Ctx) error {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		return handleError(c, &service.ValidationError{Field: "start", Message: "must be an RFC3339 time"})
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		return handleError(c, &service.ValidationError{Field: "end", Message: "must be an RFC3339 time"})
	}
	tasks, err := h.tasks.ListByDateRange(c.UserContext(), middleware.UserID(c), start, end)
	if err != nil {
		return handleError(c, err)
	}
	return success(c, tasks)
}

func (h *TaskHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.tasks.Stats(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return success(c, stats)
}
