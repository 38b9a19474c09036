package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// SyncStatus is the user-visible state of the price feed.
type SyncStatus string

const (
	StatusIdle     SyncStatus = "idle"
	StatusFetching SyncStatus = "fetching"
	StatusLive     SyncStatus = "live"
	StatusError    SyncStatus = "error"
)

// PriceSyncService coordinates one refresh cycle: a metadata sub-task for
// missing icons and a price sub-task for current quotes, run concurrently
// against the feed and applied back through the store. Cycles carry a
// monotonically increasing token; a sub-task whose token is no longer the
// newest discards its results instead of clobbering fresher data.
//
// A feed failure never propagates past this service: the status signal flips
// to error and the last known values stay untouched. There is no retry or
// backoff; the next explicit or scheduled call starts a fresh cycle.
type PriceSyncService struct {
	store  *PortfolioService
	client MarketDataClient
	log    *zap.Logger

	cycle atomic.Int64

	mu          sync.Mutex
	state       SyncStatus
	lastUpdated time.Time
}

// NewPriceSyncService creates the refresh coordinator.
func NewPriceSyncService(store *PortfolioService, client MarketDataClient, log *zap.Logger) *PriceSyncService {
	return &PriceSyncService{
		store:  store,
		client: client,
		log:    log,
		state:  StatusIdle,
	}
}

// Status returns the current feed state and the time of the last successful
// price application. Safe to call at any point in a cycle.
func (s *PriceSyncService) Status() (SyncStatus, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.lastUpdated
}

// setState applies a transition only while token still names the newest
// cycle; a superseded cycle no longer owns the status signal.
func (s *PriceSyncService) setState(token int64, state SyncStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cycle.Load() != token {
		return
	}
	s.state = state
	if state == StatusLive {
		s.lastUpdated = time.Now()
	}
}

// Refresh runs one full cycle and returns once both sub-tasks finished. With
// no resolved identifiers in the store it is a no-op. The returned error
// reflects the price sub-task only; metadata failures are logged and dropped.
func (s *PriceSyncService) Refresh(ctx context.Context) error {
	ids := s.store.ResolvedIdentifiers()
	if len(ids) == 0 {
		return nil
	}

	token := s.cycle.Add(1)
	s.setState(token, StatusFetching)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.syncMetadata(ctx, token)
	}()

	err := s.syncPrices(ctx, token, ids)
	wg.Wait()
	return err
}

// syncMetadata fetches icons for resolved positions that still miss one and
// writes them back per identifier. Existing icons are never overwritten, so
// repeating the sub-task is idempotent.
func (s *PriceSyncService) syncMetadata(ctx context.Context, token int64) {
	ids := s.store.MissingIconIdentifiers()
	if len(ids) == 0 {
		return
	}

	markets, err := s.client.Markets(ctx, ids)
	if err != nil {
		s.log.Warn("metadata fetch failed", zap.Error(err))
		return
	}
	if s.stale(token) {
		return
	}

	icons := make(map[string]string, len(markets))
	for _, m := range markets {
		icons[m.ID] = m.Image
	}
	changed, err := s.store.ApplyIcons(ctx, icons)
	if err != nil {
		s.log.Warn("failed to persist icons", zap.Error(err))
		return
	}
	if changed {
		s.log.Debug("icons updated", zap.Int("count", len(icons)))
	}
}

// syncPrices fetches quotes for all resolved identifiers and applies them.
func (s *PriceSyncService) syncPrices(ctx context.Context, token int64, ids []string) error {
	quotes, err := s.client.SimplePrice(ctx, ids)
	if err != nil {
		s.setState(token, StatusError)
		s.log.Warn("price fetch failed, retaining last known prices", zap.Error(err))
		return err
	}
	if s.stale(token) {
		s.log.Debug("discarding stale price cycle", zap.Int64("token", token))
		return nil
	}

	if err := s.store.ApplyQuotes(ctx, quotes); err != nil {
		s.setState(token, StatusError)
		return err
	}

	s.setState(token, StatusLive)
	return nil
}

// stale reports whether a newer cycle has started since token was issued.
func (s *PriceSyncService) stale(token int64) bool {
	return s.cycle.Load() != token
}
