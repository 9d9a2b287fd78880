package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"yield_dashboard/internal/app/port"
	"yield_dashboard/internal/config"
	"yield_dashboard/internal/domain/entity"
	"yield_dashboard/pkg/metrics"
)

// resourceEntry is the cached value of one resource for one user.
type resourceEntry struct {
	state  entity.ResourceState
	report *entity.MetricsReport
	err    error
	stale  bool
}

// dashboardServiceImpl implements port.DashboardOrchestrator. Cached entries
// are keyed by user id, so a response from an in-flight fetch for a
// previously connected account can only ever land under that account's own
// key, never under the current one.
type dashboardServiceImpl struct {
	metricsSvc port.MetricsService
	store      *cache.Cache
	logger     *zap.Logger

	// fetches coalesces concurrent fetches of the same user+resource.
	fetches singleflight.Group

	mu         sync.Mutex
	consumers  map[string]int
	refreshing map[string]bool
}

// NewDashboardService creates a new DashboardOrchestrator.
func NewDashboardService(metricsSvc port.MetricsService, cfg *config.Config, logger *zap.Logger) port.DashboardOrchestrator {
	return &dashboardServiceImpl{
		metricsSvc: metricsSvc,
		store: cache.New(
			time.Duration(cfg.Cache.DefaultExpirationMinutes)*time.Minute,
			time.Duration(cfg.Cache.CleanupIntervalMinutes)*time.Minute,
		),
		logger:     logger.Named("DashboardService"),
		consumers:  make(map[string]int),
		refreshing: make(map[string]bool),
	}
}

func resourceKey(res port.DashboardResource, userID string) string {
	return fmt.Sprintf("%s:%s", res, userID)
}

// Subscribe implements port.DashboardOrchestrator.
func (s *dashboardServiceImpl) Subscribe(ctx context.Context, userID string) error {
	if userID == "" {
		// No connected account, nothing to fetch.
		return nil
	}

	s.mu.Lock()
	s.consumers[userID]++
	s.mu.Unlock()

	s.logger.Debug("Consumer subscribed", zap.String("userId", userID))
	return s.fetchBoth(ctx, userID)
}

// Unsubscribe implements port.DashboardOrchestrator.
func (s *dashboardServiceImpl) Unsubscribe(userID string) {
	if userID == "" {
		return
	}
	s.mu.Lock()
	if s.consumers[userID] > 0 {
		s.consumers[userID]--
	}
	if s.consumers[userID] == 0 {
		delete(s.consumers, userID)
	}
	s.mu.Unlock()
}

func (s *dashboardServiceImpl) hasConsumers(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consumers[userID] > 0
}

// Snapshot implements port.DashboardOrchestrator.
func (s *dashboardServiceImpl) Snapshot(userID string, res port.DashboardResource) port.ResourceSnapshot {
	v, found := s.store.Get(resourceKey(res, userID))
	if !found {
		metrics.IncCacheEvent(string(res), "miss")
		return port.ResourceSnapshot{State: entity.StateIdle}
	}
	metrics.IncCacheEvent(string(res), "hit")
	e := v.(*resourceEntry)
	return port.ResourceSnapshot{State: e.state, Report: e.report, Err: e.err}
}

// fetchBoth fetches metrics and token balances concurrently. The two fetches
// are independent: one failing does not cancel the other. When both fail the
// metrics error wins.
func (s *dashboardServiceImpl) fetchBoth(ctx context.Context, userID string) error {
	var wg sync.WaitGroup
	var metricsErr, balancesErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		metricsErr = s.fetchResource(ctx, userID, port.ResourceMetrics)
	}()
	go func() {
		defer wg.Done()
		balancesErr = s.fetchResource(ctx, userID, port.ResourceTokenBalances)
	}()
	wg.Wait()

	if metricsErr != nil {
		return metricsErr
	}
	return balancesErr
}

// fetchResource drives one resource through loading into success or error.
// Concurrent fetches of the same user+resource share a single upstream call.
func (s *dashboardServiceImpl) fetchResource(ctx context.Context, userID string, res port.DashboardResource) error {
	key := resourceKey(res, userID)

	// Into loading, keeping the previous report visible while refetching.
	prev := s.entry(key)
	s.store.Set(key, &resourceEntry{state: entity.StateLoading, report: prevReport(prev)}, cache.DefaultExpiration)

	_, err, _ := s.fetches.Do(key, func() (any, error) {
		var report *entity.MetricsReport
		var err error
		switch res {
		case port.ResourceTokenBalances:
			report, err = s.metricsSvc.GetTokenBalances(ctx, userID)
		default:
			report, err = s.metricsSvc.GetMetrics(ctx, userID)
		}
		if err != nil {
			s.store.Set(key, &resourceEntry{state: entity.StateError, report: prevReport(prev), err: err}, cache.DefaultExpiration)
			return nil, err
		}
		s.store.Set(key, &resourceEntry{state: entity.StateSuccess, report: report}, cache.DefaultExpiration)
		return report, nil
	})
	if err != nil {
		s.logger.Warn("Resource fetch failed",
			zap.String("resource", string(res)),
			zap.String("userId", userID),
			zap.Error(err))
	}
	return err
}

func (s *dashboardServiceImpl) entry(key string) *resourceEntry {
	if v, found := s.store.Get(key); found {
		return v.(*resourceEntry)
	}
	return nil
}

func prevReport(e *resourceEntry) *entity.MetricsReport {
	if e == nil {
		return nil
	}
	return e.report
}

// Invalidate implements port.DashboardOrchestrator. Only the given user's
// entries are touched; refetching happens only while consumers are active.
func (s *dashboardServiceImpl) Invalidate(userID string, delay time.Duration) {
	if userID == "" {
		return
	}

	s.markStale(userID)
	metrics.IncCacheEvent(string(port.ResourceMetrics), "invalidate")
	metrics.IncCacheEvent(string(port.ResourceTokenBalances), "invalidate")

	refetch := func() {
		if !s.hasConsumers(userID) {
			return
		}
		if err := s.fetchBoth(context.Background(), userID); err != nil {
			s.logger.Warn("Refetch after invalidation failed", zap.String("userId", userID), zap.Error(err))
		}
	}

	go refetch()
	if delay > 0 {
		time.AfterFunc(delay, refetch)
	}
}

func (s *dashboardServiceImpl) markStale(userID string) {
	for _, res := range []port.DashboardResource{port.ResourceMetrics, port.ResourceTokenBalances} {
		key := resourceKey(res, userID)
		if e := s.entry(key); e != nil {
			s.store.Set(key, &resourceEntry{state: e.state, report: e.report, err: e.err, stale: true}, cache.DefaultExpiration)
		}
	}
}

// Remove implements port.DashboardOrchestrator. Used on wallet disconnect so
// no numbers from the previous account can render under the next one.
func (s *dashboardServiceImpl) Remove(userID string) {
	if userID == "" {
		return
	}
	s.store.Delete(resourceKey(port.ResourceMetrics, userID))
	s.store.Delete(resourceKey(port.ResourceTokenBalances, userID))
	metrics.IncCacheEvent(string(port.ResourceMetrics), "remove")
	metrics.IncCacheEvent(string(port.ResourceTokenBalances), "remove")
	s.logger.Debug("Cached dashboard data removed", zap.String("userId", userID))
}

// ManualRefresh implements port.DashboardOrchestrator. A refresh arriving
// while one is already in flight for the same user is dropped.
func (s *dashboardServiceImpl) ManualRefresh(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}

	s.mu.Lock()
	if s.refreshing[userID] {
		s.mu.Unlock()
		metrics.IncManualRefresh(true)
		s.logger.Debug("Manual refresh already in flight, dropping", zap.String("userId", userID))
		return nil
	}
	s.refreshing[userID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.refreshing, userID)
		s.mu.Unlock()
	}()

	metrics.IncManualRefresh(false)
	return s.fetchBoth(ctx, userID)
}

// OnAccountChanged implements port.DashboardOrchestrator.
func (s *dashboardServiceImpl) OnAccountChanged(ctx context.Context, previous, next string) {
	switch {
	case next == "" && previous != "":
		// Disconnect: drop everything so nothing stale survives a later connect.
		s.Unsubscribe(previous)
		s.Remove(previous)
	case next != "" && previous != "" && next != previous:
		// Account switch: the old account's data is stale, the new one
		// starts a fresh fetch under its own key.
		s.Unsubscribe(previous)
		s.Invalidate(previous, 0)
		if err := s.Subscribe(ctx, next); err != nil {
			s.logger.Warn("Fetch for switched account failed", zap.String("userId", next), zap.Error(err))
		}
	case next != "" && previous == "":
		// Connect.
		if err := s.Subscribe(ctx, next); err != nil {
			s.logger.Warn("Fetch for connected account failed", zap.String("userId", next), zap.Error(err))
		}
	}
}
