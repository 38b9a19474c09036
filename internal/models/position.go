package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// FallbackIcon is an embedded SVG placeholder used when no coin image can be
// loaded from any source.
const FallbackIcon = "data:image/svg+xml;base64,PHN2ZyB4bWxucz0iaHR0cDovL3d3dy53My5vcmcvMjAwMC9zdmciIHZpZXdCb3g9IjAgMCAzMiAzMiI+PGNpcmNsZSBjeD0iMTYiIGN5PSIxNiIgcj0iMTYiIGZpbGw9IiM1ODViNzAiIC8+PHRleHQgeD0iMTYiIHk9IjIxIiBmaWxsPSIjY2RkNmY0IiBmb250LXNpemU9IjE0IiB0ZXh0LWFuY2hvcj0ibWlkZGxlIiBmb250LWZhbWlseT0ic2Fucy1zZXJpZiI+PzwvdGV4dD48L3N2Zz4="

// Position represents one tracked asset, identified by its ticker symbol,
// holding an ordered list of fills. The symbol is a case-insensitive identity;
// Identifier is the CoinGecko id used for price and metadata lookups and stays
// empty when the symbol cannot be resolved.
type Position struct {
	Symbol       string           `json:"symbol"`
	Name         string           `json:"name"`
	Identifier   string           `json:"coinGeckoId"`
	Icon         string           `json:"thumb,omitempty"`
	CurrentPrice decimal.Decimal  `json:"currentPrice"`
	Change24h    *decimal.Decimal `json:"change24h,omitempty"`
	Fills        []Fill           `json:"buys"`
}

// Validate validates the position data
func (p *Position) Validate() error {
	if p.Symbol == "" {
		return errors.New("symbol is required")
	}
	if p.CurrentPrice.IsNegative() {
		return errors.New("current price must be non-negative")
	}
	for i := range p.Fills {
		if err := p.Fills[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy so callers can never alias the store's fills.
func (p Position) Clone() Position {
	out := p
	out.Fills = make([]Fill, len(p.Fills))
	copy(out.Fills, p.Fills)
	if p.Change24h != nil {
		c := *p.Change24h
		out.Change24h = &c
	}
	return out
}

// ClonePositions deep-copies a position list.
func ClonePositions(positions []Position) []Position {
	out := make([]Position, len(positions))
	for i := range positions {
		out[i] = positions[i].Clone()
	}
	return out
}

// IconURL returns the display icon for a position: the known thumbnail when
// one is set, otherwise a CoinCap CDN URL keyed by the lowercased symbol.
// Renderers fall back to FallbackIcon when that image fails to load too.
func IconURL(symbol, thumb string) string {
	if strings.Contains(thumb, "http") {
		return thumb
	}
	return "https://assets.coincap.io/assets/icons/" + strings.ToLower(symbol) + "@2x.png"
}

// CoinSelection is a coin chosen from an interactive search, carrying the
// feed identifier used to match or create a position.
type CoinSelection struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Thumb  string `json:"thumb"`
}
