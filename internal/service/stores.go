package service

import (
	"context"
	"time"

	"workorder/internal/models"
	myws "workorder/internal/websocket"
)

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByAccount(ctx context.Context, account string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	UpdateLastLogin(ctx context.Context, id string) (time.Time, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type TokenStore interface {
	Insert(ctx context.Context, token *models.UserToken) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type TaskStore interface {
	Insert(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string, page, size int) ([]models.Task, error)
	ListByOwnerAndStatus(ctx context.Context, ownerID string, status models.TaskStatus) ([]models.Task, error)
	ListByOwnerAndPriority(ctx context.Context, ownerID string, priority models.Priority) ([]models.Task, error)
	ListByOwnerAndDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]models.Task, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	CountByOwnerAndStatus(ctx context.Context, ownerID string, status models.TaskStatus) (int64, error)
}

// EventPublisher receives task change events for the owning user.
type EventPublisher interface {
	Publish(userID string, event myws.TaskEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, myws.TaskEvent) {}
