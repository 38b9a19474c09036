package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tropicaldog17/cryptofolio/internal/models"
)

func syncFixture(t *testing.T, feed *fakeFeed, positions ...models.Position) (*PortfolioService, *PriceSyncService) {
	t.Helper()
	ctx := context.Background()
	store := testStore(newMemRepo(), filepath.Join(t.TempDir(), "missing.json"))
	if err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if len(positions) > 0 {
		if err := store.ReplaceAll(ctx, positions); err != nil {
			t.Fatal(err)
		}
	}
	return store, NewPriceSyncService(store, feed, zap.NewNop())
}

func holding(symbol, identifier, icon string) models.Position {
	return models.Position{
		Symbol:     symbol,
		Name:       symbol,
		Identifier: identifier,
		Icon:       icon,
		Fills: []models.Fill{{
			ID:     "1",
			Amount: decimal.NewFromInt(1),
			Price:  decimal.NewFromInt(10),
			Date:   "2024-01-01",
		}},
	}
}

func TestRefresh_AppliesQuotesAndGoesLive(t *testing.T) {
	feed := &fakeFeed{
		quotes: map[string]Quote{
			"bitcoin": {PriceUSD: decimal.NewFromInt(65000), Change24h: decimal.NewFromFloat(1.2)},
		},
	}
	store, sync := syncFixture(t, feed, holding("BTC", "bitcoin", "x"))

	if err := sync.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	p := store.Positions()[0]
	if !p.CurrentPrice.Equal(decimal.NewFromInt(65000)) {
		t.Errorf("expected price applied, got %s", p.CurrentPrice)
	}
	if p.Change24h == nil || !p.Change24h.Equal(decimal.NewFromFloat(1.2)) {
		t.Errorf("expected 24h change applied, got %v", p.Change24h)
	}

	state, updated := sync.Status()
	if state != StatusLive {
		t.Errorf("expected live status, got %s", state)
	}
	if updated.IsZero() {
		t.Error("expected lastUpdated recorded")
	}
}

func TestRefresh_SharedIdentifierUpdatesAllPositions(t *testing.T) {
	feed := &fakeFeed{
		quotes: map[string]Quote{"bitcoin": {PriceUSD: decimal.NewFromInt(100)}},
	}
	store, sync := syncFixture(t, feed,
		holding("BTC", "bitcoin", "x"),
		holding("XBT", "bitcoin", "x"),
	)

	if err := sync.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, p := range store.Positions() {
		if !p.CurrentPrice.Equal(decimal.NewFromInt(100)) {
			t.Errorf("position %s missed the shared quote", p.Symbol)
		}
	}
}

func TestRefresh_NoResolvedIdentifiersIsNoop(t *testing.T) {
	feed := &fakeFeed{}
	_, sync := syncFixture(t, feed, holding("NOPE", "", ""))

	if err := sync.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if feed.priceCalls != 0 {
		t.Error("no fetch expected without resolved identifiers")
	}
	if state, _ := sync.Status(); state != StatusIdle {
		t.Errorf("expected idle, got %s", state)
	}
}

func TestRefresh_FeedFailureRetainsPrices(t *testing.T) {
	feed := &fakeFeed{
		quotes: map[string]Quote{"bitcoin": {PriceUSD: decimal.NewFromInt(500)}},
	}
	store, sync := syncFixture(t, feed, holding("BTC", "bitcoin", "x"))

	if err := sync.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	feed.mu.Lock()
	feed.priceErr = errFeedDown
	feed.mu.Unlock()

	if err := sync.Refresh(context.Background()); err == nil {
		t.Fatal("expected error from failed cycle")
	}

	if state, _ := sync.Status(); state != StatusError {
		t.Errorf("expected error status, got %s", state)
	}
	if got := store.Positions()[0].CurrentPrice; !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("last known price must be retained, got %s", got)
	}
}

func TestRefresh_MetadataFillsOnlyMissingIcons(t *testing.T) {
	feed := &fakeFeed{
		quotes: map[string]Quote{
			"bitcoin":  {PriceUSD: decimal.NewFromInt(1)},
			"ethereum": {PriceUSD: decimal.NewFromInt(1)},
		},
		markets: []CoinMarket{
			{ID: "bitcoin", Image: "https://img/new-btc.png"},
			{ID: "ethereum", Image: "https://img/eth.png"},
		},
	}
	store, sync := syncFixture(t, feed,
		holding("BTC", "bitcoin", "https://img/original.png"),
		holding("ETH", "ethereum", ""),
	)

	if err := sync.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	for _, p := range store.Positions() {
		switch p.Symbol {
		case "BTC":
			if p.Icon != "https://img/original.png" {
				t.Errorf("existing icon overwritten: %q", p.Icon)
			}
		case "ETH":
			if p.Icon != "https://img/eth.png" {
				t.Errorf("missing icon not filled: %q", p.Icon)
			}
		}
	}
}

func TestRefresh_MetadataFailureDoesNotAffectPriceStatus(t *testing.T) {
	feed := &fakeFeed{
		quotes:     map[string]Quote{"ethereum": {PriceUSD: decimal.NewFromInt(3000)}},
		marketsErr: errFeedDown,
	}
	store, sync := syncFixture(t, feed, holding("ETH", "ethereum", ""))

	if err := sync.Refresh(context.Background()); err != nil {
		t.Fatalf("metadata failure must not fail the cycle: %v", err)
	}
	if state, _ := sync.Status(); state != StatusLive {
		t.Errorf("expected live, got %s", state)
	}
	if !store.Positions()[0].CurrentPrice.Equal(decimal.NewFromInt(3000)) {
		t.Error("price should still apply when metadata fails")
	}
}

func TestSyncPrices_StaleCycleDiscarded(t *testing.T) {
	feed := &fakeFeed{
		quotes: map[string]Quote{"bitcoin": {PriceUSD: decimal.NewFromInt(999)}},
	}
	store, sync := syncFixture(t, feed, holding("BTC", "bitcoin", "x"))

	token := sync.cycle.Add(1)
	// A newer cycle starts before the old response is applied.
	sync.cycle.Add(1)

	if err := sync.syncPrices(context.Background(), token, []string{"bitcoin"}); err != nil {
		t.Fatalf("stale cycle must not error: %v", err)
	}
	if got := store.Positions()[0].CurrentPrice; !got.IsZero() {
		t.Errorf("stale response must be discarded, price is %s", got)
	}
	if state, _ := sync.Status(); state != StatusIdle {
		t.Errorf("a superseded cycle must not touch the status signal, got %s", state)
	}
}

func TestSyncPrices_StaleCycleDoesNotOwnStatus(t *testing.T) {
	feed := &fakeFeed{priceErr: errFeedDown}
	_, sync := syncFixture(t, feed, holding("BTC", "bitcoin", "x"))

	token := sync.cycle.Add(1)
	sync.cycle.Add(1)

	if err := sync.syncPrices(context.Background(), token, []string{"bitcoin"}); err == nil {
		t.Fatal("expected feed error")
	}
	// The failure belongs to a superseded cycle; only the newest cycle may
	// flip the signal.
	if state, _ := sync.Status(); state != StatusIdle {
		t.Errorf("expected idle, got %s", state)
	}
}
