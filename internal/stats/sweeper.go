package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper wraps robfig/cron and periodically reconciles the stats cache with
// PostgreSQL.
type Sweeper struct {
	cron   *cron.Cron
	svc    *Service
	spec   string // cron spec, e.g. "@every 10m"
	logger *zap.Logger
}

// NewSweeper creates a Sweeper that refreshes every interval.
func NewSweeper(svc *Service, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		cron:   cron.New(),
		svc:    svc,
		spec:   fmt.Sprintf("@every %s", interval),
		logger: logger,
	}
}

// Start registers the job and starts the scheduler. Also runs one refresh
// immediately so the cache is warm without waiting for the first tick.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runRefresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("stats sweeper started", zap.String("spec", s.spec))

	// Warm the cache on startup (non-blocking).
	go s.runRefresh(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Sweeper) Stop() {
	s.cron.Stop()
	s.logger.Info("stats sweeper stopped")
}

func (s *Sweeper) runRefresh(ctx context.Context) {
	if err := s.svc.RefreshAll(ctx); err != nil {
		s.logger.Warn("stats refresh failed", zap.Error(err))
		return
	}
	s.logger.Debug("stats refresh complete")
}
