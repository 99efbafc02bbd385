package svc

import (
	"context"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/metrics"
	"github.com/beldeveloper/go-errors-context"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"
	"sync"
	"time"
)

const (
	// DefaultHealthInterval mirrors the managed target group health check cadence.
	DefaultHealthInterval = 30 * time.Second
	// DefaultHealthTimeout bounds a single poll of the health source.
	DefaultHealthTimeout = 5 * time.Second
	// DefaultHealthHistory is the number of observations kept per pool.
	DefaultHealthHistory = 10
)

// NewHealthMonitor creates a new instance of the health monitor for the pools of one group.
func NewHealthMonitor(
	group app.GroupID,
	pools []app.PoolID,
	src app.HealthSource,
	cfg app.HealthConfig,
	clk clock.WithTicker,
) *HealthMonitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultHealthInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultHealthTimeout
	}
	if cfg.History <= 0 {
		cfg.History = DefaultHealthHistory
	}
	history := make(map[app.PoolID][]app.HealthSnapshot, len(pools))
	for _, p := range pools {
		history[p] = nil
	}
	return &HealthMonitor{
		group:   group,
		src:     src,
		cfg:     cfg,
		clk:     clk,
		history: history,
	}
}

// HealthMonitor polls the health source and keeps the recent observations of every pool.
// It never touches the traffic weights.
type HealthMonitor struct {
	group app.GroupID
	src   app.HealthSource
	cfg   app.HealthConfig
	clk   clock.WithTicker

	mu      sync.RWMutex
	history map[app.PoolID][]app.HealthSnapshot
}

// Observe returns the most recent cached observation of the pool.
func (m *HealthMonitor) Observe(pool app.PoolID) app.HealthSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h := m.history[pool]
	if len(h) == 0 {
		return app.HealthSnapshot{PoolID: pool, Status: app.HealthUnknown}
	}
	return h[len(h)-1]
}

// Refresh polls the health source for the pool and records the observation.
// Polling failures are recorded as unknown, they are never returned to the caller.
func (m *HealthMonitor) Refresh(ctx context.Context, pool app.PoolID) app.HealthSnapshot {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()
	s := app.HealthSnapshot{PoolID: pool, Status: app.HealthUnknown}
	counts, err := m.src.HealthCounts(ctx, m.group, pool)
	s.LastObservedAt = m.clk.Now()
	if err != nil {
		log.Println(errors.WrapContext(err, errors.Context{
			Path:   "svc.HealthMonitor.Refresh.HealthCounts",
			Params: errors.Params{"group": m.group, "pool": pool},
		}))
	} else {
		s.HealthyCount = counts.Healthy
		s.UnhealthyCount = counts.Unhealthy
		s.Status = app.HealthHealthy
		if counts.Unhealthy > m.cfg.Thresholds.MaxUnhealthy {
			s.Status = app.HealthUnhealthy
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	h := append(m.history[pool], s)
	if len(h) > m.cfg.History {
		h = h[len(h)-m.cfg.History:]
	}
	m.history[pool] = h
	return s
}

// IsHealthy evaluates the most recent observations of the pool against the thresholds.
// Only observations made at or after since are evaluated.
// The pool is unhealthy when at least DatapointsToAlarm of the last EvaluationWindow
// observations breach; a pool without observations is never healthy.
func (m *HealthMonitor) IsHealthy(pool app.PoolID, t app.HealthThresholds, since time.Time) bool {
	t = normalizeThresholds(t)
	m.mu.RLock()
	h := m.history[pool]
	start := len(h)
	for start > 0 && !h[start-1].LastObservedAt.Before(since) {
		start--
	}
	h = h[start:]
	if len(h) > t.EvaluationWindow {
		h = h[len(h)-t.EvaluationWindow:]
	}
	var breaches int
	for _, s := range h {
		if breached(s, t) {
			breaches++
		}
	}
	m.mu.RUnlock()
	healthy := len(h) > 0 && breaches < t.DatapointsToAlarm
	metrics.RecordHealthEvaluation(m.group, pool, healthy)
	return healthy
}

// Run polls every pool on its own cadence until the context is done.
func (m *HealthMonitor) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	m.mu.RLock()
	for pool := range m.history {
		pool := pool
		g.Go(func() error {
			m.poll(ctx, pool)
			return nil
		})
	}
	m.mu.RUnlock()
	return g.Wait()
}

func (m *HealthMonitor) poll(ctx context.Context, pool app.PoolID) {
	ticker := m.clk.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	prev := m.Observe(pool).Status
	for {
		s := m.Refresh(ctx, pool)
		if s.Status != prev {
			log.WithFields(log.Fields{
				"group":     m.group,
				"pool":      pool,
				"healthy":   s.HealthyCount,
				"unhealthy": s.UnhealthyCount,
			}).Infof("Pool health changed from %s to %s", prev, s.Status)
			prev = s.Status
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
		}
	}
}

func breached(s app.HealthSnapshot, t app.HealthThresholds) bool {
	return s.Status == app.HealthUnknown ||
		s.UnhealthyCount > t.MaxUnhealthy ||
		s.HealthyCount < t.MinHealthy
}

func normalizeThresholds(t app.HealthThresholds) app.HealthThresholds {
	if t.EvaluationWindow <= 0 {
		t.EvaluationWindow = 1
	}
	if t.DatapointsToAlarm <= 0 {
		t.DatapointsToAlarm = 1
	}
	if t.DatapointsToAlarm > t.EvaluationWindow {
		t.DatapointsToAlarm = t.EvaluationWindow
	}
	if t.MaxUnhealthy < 0 {
		t.MaxUnhealthy = 0
	}
	return t
}
