package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"scholarship-finder/internal/repository"
)

// SessionJanitor purga sesiones vencidas cada intervalo hasta que se cancele ctx.
type SessionJanitor struct {
	logger   *zap.Logger
	sessions repository.SessionRepository
	interval time.Duration
	now      func() time.Time
}

func NewSessionJanitor(logger *zap.Logger, sessions repository.SessionRepository, interval time.Duration) *SessionJanitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &SessionJanitor{
		logger:   logger,
		sessions: sessions,
		interval: interval,
		now:      time.Now,
	}
}

func (j *SessionJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil && ctx.Err() == nil {
				j.logger.Warn("session sweep failed", zap.Error(err))
			}
		}
	}
}

func (j *SessionJanitor) Sweep(ctx context.Context) (int64, error) {
	n, err := j.sessions.DeleteExpired(ctx, j.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		j.logger.Info("expired sessions purged", zap.Int64("count", n))
	}
	return n, nil
}
