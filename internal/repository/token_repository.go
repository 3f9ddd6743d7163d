package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"workorder/internal/models"
)

// TokenRepository keeps bookkeeping rows for issued tokens.
type TokenRepository struct {
	db      *sql.DB
	dialect Dialect
	clock   Clock
}

func NewTokenRepository(db *sql.DB, dialect Dialect, clock Clock) *TokenRepository {
	return &TokenRepository{db: db, dialect: dialect, clock: clock}
}

func (r *TokenRepository) Insert(ctx context.Context, token *models.UserToken) error {
	token.CreateTime = r.clock.now().Truncate(time.Millisecond)
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(`
INSERT INTO user_tokens (user_id, token, expire_time, create_time)
VALUES (?, ?, ?, ?) RETURNING id`),
		token.UserID, token.Token, toMillis(token.ExpireTime), toMillis(token.CreateTime),
	).Scan(&token.ID)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// DeleteByUser removes every token row of a user and returns how many were
// removed.
func (r *TokenRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return r.delete(ctx, `DELETE FROM user_tokens WHERE user_id = ?`, userID)
}

// DeleteExpired removes rows whose expiry is not after now.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.delete(ctx, `DELETE FROM user_tokens WHERE expire_time <= ?`, toMillis(now))
}

// CountByUser reports how many token rows a user has. It is an inspection
// helper for operators and tests; validation never reads the registry.
func (r *TokenRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT COUNT(*) FROM user_tokens WHERE user_id = ?`), userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return n, nil
}

func (r *TokenRepository) delete(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("delete tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete tokens: %w", err)
	}
	return n, nil
}
