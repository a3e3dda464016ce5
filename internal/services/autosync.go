package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskboard/backend/domain"
	syncengine "github.com/taskboard/backend/usecase/sync"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// AutoSyncConfig controls the periodic tracker refresh.
type AutoSyncConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// AutoSync runs a bulk tracker sync on a fixed schedule, skipping runs
// while the tracker is unreachable or a sync is already in flight.
type AutoSync struct {
	engine  *syncengine.Engine
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     AutoSyncConfig
}

func NewAutoSync(engine *syncengine.Engine, monitor ConnectionHealth, logger *zap.Logger, cfg AutoSyncConfig) *AutoSync {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	as := &AutoSync{
		engine:  engine,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = as.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		as.run(ctx)
	})

	return as
}

// Start launches the cron scheduler.
func (as *AutoSync) Start() {
	if as == nil || as.cron == nil {
		return
	}
	as.cron.Start()
	as.logger.Info("autosync started", zap.Duration("interval", as.cfg.Interval))
}

// Stop gracefully stops the scheduler, waiting for a running sync.
func (as *AutoSync) Stop(ctx context.Context) {
	if as == nil || as.cron == nil {
		return
	}
	stopCtx := as.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	as.logger.Info("autosync stopped")
}

func (as *AutoSync) run(ctx context.Context) {
	if as.engine == nil {
		return
	}
	if as.monitor != nil && !as.monitor.IsOnline() {
		as.logger.Debug("skipping autosync (tracker offline)")
		return
	}

	report, err := as.engine.SyncAll(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSyncInFlight) {
			as.logger.Debug("skipping autosync (sync already running)")
			return
		}
		as.logger.Error("autosync failed", zap.Error(err))
		return
	}
	as.logger.Info("autosync finished",
		zap.Int("synced", report.Synced),
		zap.Int("new_children", report.NewChildren),
		zap.Bool("had_errors", report.HadErrors))
}
