package models

import (
	"time"
)

// User status values.
const (
	UserDisabled = 0
	UserEnabled  = 1
)

type User struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Phone         string     `json:"phone"`
	Password      string     `json:"-"`
	Status        int        `json:"status"`
	RegisterTime  time.Time  `json:"register_time"`
	LastLoginTime *time.Time `json:"last_login_time"`
	CreateTime    time.Time  `json:"create_time"`
	UpdateTime    time.Time  `json:"update_time"`
}

func (u User) Enabled() bool {
	return u.Status == UserEnabled
}

// UserToken records an issued token. Validation never consults it.
type UserToken struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	Token      string    `json:"-"`
	ExpireTime time.Time `json:"expire_time"`
	CreateTime time.Time `json:"create_time"`
}

type Task struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	TaskName      string     `json:"task_name"`
	Description   string     `json:"description"`
	ProgressValue int        `json:"progress_value"`
	Status        TaskStatus `json:"status"`
	Priority      Priority   `json:"priority"`
	DueDate       *time.Time `json:"due_date"`
	Assignee      string     `json:"assignee"`
	Category      string     `json:"category"`
	Tags          []string   `json:"tags"`
	CreateTime    time.Time  `json:"create_time"`
	UpdateTime    time.Time  `json:"update_time"`
}
