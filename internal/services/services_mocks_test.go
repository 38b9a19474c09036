package services

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/tropicaldog17/cryptofolio/internal/models"
)

// memRepo is an in-memory snapshot repository for tests.
type memRepo struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemRepo() *memRepo {
	return &memRepo{data: map[string]string{}}
}

func (r *memRepo) Get(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data[key], nil
}

func (r *memRepo) Put(ctx context.Context, key, data string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = data
	return nil
}

// fakeFeed is a canned MarketDataClient.
type fakeFeed struct {
	mu          sync.Mutex
	quotes      map[string]Quote
	markets     []CoinMarket
	coins       []models.CoinSelection
	priceErr    error
	marketsErr  error
	searchErr   error
	priceCalls  int
	searchCalls int
	lastQuery   string
}

var errFeedDown = errors.New("feed unavailable")

func (f *fakeFeed) SimplePrice(ctx context.Context, ids []string) (map[string]Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.priceCalls++
	if f.priceErr != nil {
		return nil, f.priceErr
	}
	return f.quotes, nil
}

func (f *fakeFeed) Markets(ctx context.Context, ids []string) ([]CoinMarket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.marketsErr != nil {
		return nil, f.marketsErr
	}
	return f.markets, nil
}

func (f *fakeFeed) Search(ctx context.Context, query string) ([]models.CoinSelection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	f.lastQuery = query
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.coins, nil
}

func testStore(repo *memRepo, bootstrapPath string) *PortfolioService {
	return NewPortfolioService(repo, NewSchemaAdapter(), bootstrapPath, zap.NewNop())
}
