package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"workorder/internal/models"
)

const userColumns = `id, username, phone, password, status, register_time, last_login_time, create_time, update_time`

// UserRepository is the credential store.
type UserRepository struct {
	db      *sql.DB
	dialect Dialect
	clock   Clock
}

func NewUserRepository(db *sql.DB, dialect Dialect, clock Clock) *UserRepository {
	return &UserRepository{db: db, dialect: dialect, clock: clock}
}

func (r *UserRepository) stamp() time.Time {
	return r.clock.now().Truncate(time.Millisecond)
}

// Insert stores a new user. RegisterTime, CreateTime and UpdateTime are
// stamped here. A unique violation is returned as *DuplicateError.
func (r *UserRepository) Insert(ctx context.Context, user *models.User) error {
	now := r.stamp()
	if user.RegisterTime.IsZero() {
		user.RegisterTime = now
	}
	user.CreateTime = now
	user.UpdateTime = now

	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(`
INSERT INTO users (`+userColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		user.ID, user.Username, user.Phone, user.Password, user.Status,
		toMillis(user.RegisterTime), nullMillis(user.LastLoginTime),
		toMillis(user.CreateTime), toMillis(user.UpdateTime),
	)
	if err != nil {
		if field, ok := r.dialect.uniqueViolation(err); ok {
			return &DuplicateError{Field: field, Err: err}
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	return scanUser(row)
}

// GetByAccount finds a user whose username or phone equals account. A
// username match is preferred when both exist.
func (r *UserRepository) GetByAccount(ctx context.Context, account string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(`
SELECT `+userColumns+` FROM users
WHERE username = ? OR phone = ?
ORDER BY CASE WHEN username = ? THEN 0 ELSE 1 END
LIMIT 1`), account, account, account)
	return scanUser(row)
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM users WHERE username = ?`, username)
}

func (r *UserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM users WHERE phone = ?`, phone)
}

func (r *UserRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), arg).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return true, nil
}

// UpdateLastLogin stamps last_login_time and update_time and returns the
// time written.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string) (time.Time, error) {
	now := r.stamp()
	err := r.update(ctx, `UPDATE users SET last_login_time = ?, update_time = ? WHERE id = ?`,
		toMillis(now), toMillis(now), id)
	return now, err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	now := r.stamp()
	return r.update(ctx, `UPDATE users SET password = ?, update_time = ? WHERE id = ?`,
		passwordHash, toMillis(now), id)
}

// SetStatus enables or disables an account. No HTTP route calls it; it is
// the hook for operators and for tests of the disabled-login path.
func (r *UserRepository) SetStatus(ctx context.Context, id string, status int) error {
	now := r.stamp()
	return r.update(ctx, `UPDATE users SET status = ?, update_time = ? WHERE id = ?`,
		status, toMillis(now), id)
}

func (r *UserRepository) update(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user                              models.User
		registerTime, createTime, updTime int64
		lastLogin                         sql.NullInt64
	)
	err := row.Scan(&user.ID, &user.Username, &user.Phone, &user.Password, &user.Status,
		&registerTime, &lastLogin, &createTime, &updTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.RegisterTime = fromMillis(registerTime)
	user.LastLoginTime = fromNullMillis(lastLogin)
	user.CreateTime = fromMillis(createTime)
	user.UpdateTime = fromMillis(updTime)
	return &user, nil
}
