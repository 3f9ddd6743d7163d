package service

import (
	"context"
	"time"

	"workorder/pkg/logger"

	"go.uber.org/zap"
)

// TokenSweeper periodically deletes expired token records.
type TokenSweeper struct {
	tokens   TokenStore
	interval time.Duration
	now      func() time.Time
}

func NewTokenSweeper(tokens TokenStore, interval time.Duration) *TokenSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TokenSweeper{tokens: tokens, interval: interval, now: time.Now}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *TokenSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				logger.ErrorLogger.Error("Error sweeping expired tokens", zap.Error(err))
			}
		}
	}
}

func (s *TokenSweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.SystemLogger.Info("Expired tokens removed", zap.Int64("count", n))
	}
	return n, nil
}
