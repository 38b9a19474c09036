package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tropicaldog17/cryptofolio/internal/models"
)

// searchResultLimit caps how many candidate coins a search returns.
const searchResultLimit = 5

// CoinGeckoClient talks to the CoinGecko HTTP API (no API key required for
// the endpoints used here). The base URL is injectable so tests can point it
// at a local server and deployments at the CORS relay.
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCoinGeckoClient creates a client against the given API base URL, e.g.
// "https://api.coingecko.com/api/v3".
func NewCoinGeckoClient(baseURL string, timeout time.Duration) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *CoinGeckoClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("coingecko status %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// SimplePrice fetches the USD spot price and 24h percent change for every
// identifier in one batched call.
func (c *CoinGeckoClient) SimplePrice(ctx context.Context, ids []string) (map[string]Quote, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", "usd")
	query.Set("include_24hr_change", "true")

	var payload map[string]map[string]float64
	if err := c.get(ctx, "/simple/price", query, &payload); err != nil {
		return nil, err
	}

	quotes := make(map[string]Quote, len(payload))
	for id, fields := range payload {
		quotes[id] = Quote{
			PriceUSD:  decimal.NewFromFloat(fields["usd"]),
			Change24h: decimal.NewFromFloat(fields["usd_24h_change"]),
		}
	}
	return quotes, nil
}

// Markets fetches market metadata (including the display image) for every
// identifier in one batched call.
func (c *CoinGeckoClient) Markets(ctx context.Context, ids []string) ([]CoinMarket, error) {
	query := url.Values{}
	query.Set("vs_currency", "usd")
	query.Set("ids", strings.Join(ids, ","))

	var markets []CoinMarket
	if err := c.get(ctx, "/coins/markets", query, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

// Search runs a free-text coin lookup and returns the top candidates.
func (c *CoinGeckoClient) Search(ctx context.Context, q string) ([]models.CoinSelection, error) {
	query := url.Values{}
	query.Set("query", q)

	var payload struct {
		Coins []models.CoinSelection `json:"coins"`
	}
	if err := c.get(ctx, "/search", query, &payload); err != nil {
		return nil, err
	}
	if len(payload.Coins) > searchResultLimit {
		payload.Coins = payload.Coins[:searchResultLimit]
	}
	return payload.Coins, nil
}
