package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tropicaldog17/cryptofolio/internal/models"
)

// ErrSearchSuperseded is delivered to a waiter whose query was replaced by a
// newer one before the debounce window elapsed.
var ErrSearchSuperseded = errors.New("search superseded by newer query")

// SearchResult is the outcome of one scheduled lookup.
type SearchResult struct {
	Coins []models.CoinSelection
	Err   error
}

// SearchScheduler debounces interactive coin lookups: every new query
// restarts the timer, and only the query that survives the window is sent to
// the feed as a single-shot request. The scheduler is the one source of truth
// for whether a search is pending. Results are ephemeral and never persisted.
type SearchScheduler struct {
	client MarketDataClient
	delay  time.Duration
	log    *zap.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending chan SearchResult
}

// NewSearchScheduler creates a scheduler with the given debounce window.
func NewSearchScheduler(client MarketDataClient, delay time.Duration, log *zap.Logger) *SearchScheduler {
	return &SearchScheduler{client: client, delay: delay, log: log}
}

// Schedule queues a query behind the debounce window and returns a channel
// that receives exactly one result. Scheduling again before the window fires
// cancels the previous task; its waiter receives ErrSearchSuperseded.
func (s *SearchScheduler) Schedule(ctx context.Context, query string) <-chan SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil && s.timer.Stop() {
		s.pending <- SearchResult{Err: ErrSearchSuperseded}
	}

	ch := make(chan SearchResult, 1)
	s.pending = ch
	s.timer = time.AfterFunc(s.delay, func() {
		coins, err := s.client.Search(ctx, query)
		if err != nil {
			s.log.Warn("coin search failed", zap.String("query", query), zap.Error(err))
		}

		s.mu.Lock()
		if s.pending == ch {
			s.pending = nil
			s.timer = nil
		}
		s.mu.Unlock()

		ch <- SearchResult{Coins: coins, Err: err}
	})
	return ch
}

// Pending reports whether a search is scheduled but not yet fired.
func (s *SearchScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Cancel drops any scheduled search without running it.
func (s *SearchScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil && s.timer.Stop() {
		s.pending <- SearchResult{Err: ErrSearchSuperseded}
	}
	s.timer = nil
	s.pending = nil
}
