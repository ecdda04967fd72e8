package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/feedbackflow/backend/repository"
)

// TokenCleanup periodically purges expired blacklist entries so the
// table does not grow without bound.
type TokenCleanup struct {
	tokens   repository.TokenRepository
	interval time.Duration
	log      *zap.Logger
	stop     chan struct{}
}

func NewTokenCleanup(tokens repository.TokenRepository, interval time.Duration, log *zap.Logger) *TokenCleanup {
	return &TokenCleanup{
		tokens:   tokens,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
	}
}

// Start runs one immediate sweep and then sweeps on every tick until
// Stop is called.
func (c *TokenCleanup) Start() {
	go func() {
		c.sweep()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-c.stop:
				return
			}
		}
	}()
	c.log.Info("token cleanup scheduler started", zap.Duration("interval", c.interval))
}

func (c *TokenCleanup) Stop() {
	close(c.stop)
}

func (c *TokenCleanup) sweep() {
	removed, err := c.tokens.DeleteExpired(time.Now())
	if err != nil {
		c.log.Error("expired token cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		c.log.Info("expired tokens removed", zap.Int64("count", removed))
	}
}
