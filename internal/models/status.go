package models

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// TaskStatuses lists every status in display order.
var TaskStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// DeriveStatus computes the status stored for a task from its progress and
// the status submitted with the request. Progress 0 and 100 always win;
// in between, an explicit cancellation is kept and anything else becomes
// in_progress.
func DeriveStatus(progress int, requested TaskStatus) TaskStatus {
	switch {
	case progress <= 0:
		return StatusPending
	case progress >= 100:
		return StatusCompleted
	case requested == StatusCancelled:
		return StatusCancelled
	default:
		return StatusInProgress
	}
}
