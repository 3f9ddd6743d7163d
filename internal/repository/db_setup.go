package repository

import (
	"context"
	"database/sql"
	"fmt"
)

func (d Dialect) autoIncrementPK() string {
	if d.numbered {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (d Dialect) schema() []string {
	return []string{`
CREATE TABLE IF NOT EXISTS users (
    id VARCHAR(64) PRIMARY KEY,
    username VARCHAR(50) NOT NULL,
    phone VARCHAR(20) NOT NULL,
    password VARCHAR(255) NOT NULL,
    status INTEGER NOT NULL DEFAULT 1,
    register_time BIGINT NOT NULL,
    last_login_time BIGINT,
    create_time BIGINT NOT NULL,
    update_time BIGINT NOT NULL,
    CONSTRAINT users_username_key UNIQUE (username),
    CONSTRAINT users_phone_key UNIQUE (phone)
)`, `
CREATE TABLE IF NOT EXISTS tasks (
    id VARCHAR(64) PRIMARY KEY,
    user_id VARCHAR(64) NOT NULL REFERENCES users (id),
    task_name VARCHAR(200) NOT NULL,
    description TEXT,
    progress_value INTEGER NOT NULL DEFAULT 0,
    status VARCHAR(20) NOT NULL,
    priority VARCHAR(20) NOT NULL,
    due_date BIGINT,
    assignee VARCHAR(64),
    category VARCHAR(50),
    tags VARCHAR(500),
    create_time BIGINT NOT NULL,
    update_time BIGINT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks (user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_priority ON tasks (user_id, priority)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_create_time ON tasks (user_id, create_time)`,
		`
CREATE TABLE IF NOT EXISTS user_tokens (
    id ` + d.autoIncrementPK() + `,
    user_id VARCHAR(64) NOT NULL REFERENCES users (id),
    token VARCHAR(500) NOT NULL,
    expire_time BIGINT NOT NULL,
    create_time BIGINT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_user_tokens_user_id ON user_tokens (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_tokens_expire_time ON user_tokens (expire_time)`,
	}
}

// CreateTableIfNotExists applies the schema. It is safe to run on every start.
func CreateTableIfNotExists(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range d.schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error creating table: %w", err)
		}
	}
	return nil
}

// DeleteAllTable drops every table, children first.
func DeleteAllTable(ctx context.Context, db *sql.DB) error {
	for _, table := range []string{"user_tokens", "tasks", "users"} {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("error deleting table %s: %w", table, err)
		}
	}
	return nil
}
