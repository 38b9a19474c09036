package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tropicaldog17/cryptofolio/internal/models"
)

// Quote is a spot price with its 24h percent change for one feed identifier.
type Quote struct {
	PriceUSD  decimal.Decimal
	Change24h decimal.Decimal
}

// CoinMarket is the subset of market metadata the engine consumes.
type CoinMarket struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Image  string `json:"image"`
}

// MarketDataClient defines the interface to the external price feed. All
// lookups are batched by identifier list except Search, which is a single
// free-text query.
type MarketDataClient interface {
	SimplePrice(ctx context.Context, ids []string) (map[string]Quote, error)
	Markets(ctx context.Context, ids []string) ([]CoinMarket, error)
	Search(ctx context.Context, query string) ([]models.CoinSelection, error)
}
