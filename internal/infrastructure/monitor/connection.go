package monitor

import (
	"context"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TrackerPinger is the slice of the tracker client the monitor needs.
type TrackerPinger interface {
	Ping(ctx context.Context) error
}

// StoreHealth reports whether the snapshot store answers.
type StoreHealth interface {
	Healthy() bool
}

// Monitor periodically probes the tracker, the snapshot store and the
// optional cache. The autosync scheduler consults IsOnline before each run
// so the board does not pile up doomed fetches while the tracker is down.
type Monitor struct {
	tracker TrackerPinger
	store   StoreHealth
	redis   *redislib.Client

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

func New(tracker TrackerPinger, store StoreHealth, redis *redislib.Client, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		tracker:  tracker,
		store:    store,
		redis:    redis,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

// IsOnline reports whether the tracker is reachable. The store and cache
// do not gate sync runs.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Tracker
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	status := Status{
		Tracker:   m.checkTracker(),
		Store:     m.checkStore(),
		Redis:     m.checkRedis(),
		LastCheck: time.Now(),
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) checkTracker() bool {
	if m.tracker == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := m.tracker.Ping(ctx); err != nil {
		m.logger.Debug("tracker unreachable", zap.Error(err))
		return false
	}
	return true
}

func (m *Monitor) checkStore() bool {
	if m.store == nil {
		return false
	}
	return m.store.Healthy()
}

// checkRedis reports healthy when the cache is not configured at all; an
// absent cache is not a degradation.
func (m *Monitor) checkRedis() bool {
	if m.redis == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.redis.Ping(ctx).Err() == nil
}
