package services

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tropicaldog17/cryptofolio/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// plPercent applies the shared zero-guard: a percentage is only meaningful
// against a positive cost basis, otherwise it is zero (never NaN).
func plPercent(pl, invested decimal.Decimal) decimal.Decimal {
	if !invested.IsPositive() {
		return decimal.Zero
	}
	return pl.Div(invested).Mul(oneHundred)
}

// BuildRows derives the dashboard rows from the positions and their current
// prices. Positions whose total amount is zero or negative are excluded; they
// still appear in the detail view while fills remain.
func BuildRows(positions []models.Position) []models.PositionRow {
	rows := make([]models.PositionRow, 0, len(positions))
	for _, p := range positions {
		amount := decimal.Zero
		invested := decimal.Zero
		for _, f := range p.Fills {
			amount = amount.Add(f.Amount)
			invested = invested.Add(f.Amount.Mul(f.Price))
		}
		if amount.Sign() <= 0 {
			continue
		}

		value := amount.Mul(p.CurrentPrice)
		pl := value.Sub(invested)

		rows = append(rows, models.PositionRow{
			Symbol:    p.Symbol,
			Name:      p.Name,
			Icon:      models.IconURL(p.Symbol, p.Icon),
			Amount:    amount,
			Price:     p.CurrentPrice,
			Invested:  invested,
			Value:     value,
			PL:        pl,
			PLPct:     plPercent(pl, invested),
			Change24h: p.Change24h,
		})
	}
	return rows
}

// Summarize computes the aggregate metrics over the given dashboard rows.
func Summarize(rows []models.PositionRow) models.Summary {
	totalValue := decimal.Zero
	totalInvested := decimal.Zero
	for _, r := range rows {
		totalValue = totalValue.Add(r.Value)
		totalInvested = totalInvested.Add(r.Invested)
	}
	totalPL := totalValue.Sub(totalInvested)
	return models.Summary{
		TotalValue:    totalValue,
		TotalInvested: totalInvested,
		TotalPL:       totalPL,
		TotalPLPct:    plPercent(totalPL, totalInvested),
	}
}

// BuildDetails derives the per-position breakdown for the detail view,
// including per-fill valuation and the average entry price.
func BuildDetails(positions []models.Position) []models.PositionDetail {
	details := make([]models.PositionDetail, 0, len(positions))
	for _, p := range positions {
		amount := decimal.Zero
		invested := decimal.Zero
		fills := make([]models.FillRow, 0, len(p.Fills))
		for _, f := range p.Fills {
			cost := f.Amount.Mul(f.Price)
			value := f.Amount.Mul(p.CurrentPrice)
			pl := value.Sub(cost)
			fills = append(fills, models.FillRow{
				ID:     f.ID,
				Date:   f.Date,
				Amount: f.Amount,
				Price:  f.Price,
				Cost:   cost,
				Value:  value,
				PL:     pl,
				PLPct:  plPercent(pl, cost),
			})
			amount = amount.Add(f.Amount)
			invested = invested.Add(cost)
		}

		value := amount.Mul(p.CurrentPrice)
		pl := value.Sub(invested)
		avgPrice := decimal.Zero
		if amount.IsPositive() {
			avgPrice = invested.Div(amount)
		}

		details = append(details, models.PositionDetail{
			Symbol:       p.Symbol,
			Name:         p.Name,
			Icon:         models.IconURL(p.Symbol, p.Icon),
			CurrentPrice: p.CurrentPrice,
			Amount:       amount,
			Invested:     invested,
			Value:        value,
			AvgPrice:     avgPrice,
			PL:           pl,
			PLPct:        plPercent(pl, invested),
			Fills:        fills,
		})
	}
	return details
}

// Sortable row keys.
const (
	SortKeySymbol = "symbol"
	SortKeyAmount = "amount"
	SortKeyPrice  = "price"
	SortKeyValue  = "value"
	SortKeyPL     = "pl"
)

// SortState tracks the active dashboard sort column and direction.
type SortState struct {
	Key  string
	Desc bool
}

// DefaultSort is the initial dashboard ordering: value, descending.
func DefaultSort() SortState {
	return SortState{Key: SortKeyValue, Desc: true}
}

// Toggle applies the column-header rule: selecting the active key flips the
// direction, selecting a new key resets to descending.
func (s *SortState) Toggle(key string) {
	if s.Key == key {
		s.Desc = !s.Desc
		return
	}
	s.Key = key
	s.Desc = true
}

// SortRows orders rows in place by the given state. The sort is stable, so
// rows comparing equal keep their relative order. Unknown keys fall back to
// the default value ordering.
func SortRows(rows []models.PositionRow, state SortState) {
	sort.SliceStable(rows, func(i, j int) bool {
		if state.Desc {
			i, j = j, i
		}
		return rowLess(rows[i], rows[j], state.Key)
	})
}

func rowLess(a, b models.PositionRow, key string) bool {
	switch key {
	case SortKeySymbol:
		return strings.ToLower(a.Symbol) < strings.ToLower(b.Symbol)
	case SortKeyAmount:
		return a.Amount.Cmp(b.Amount) < 0
	case SortKeyPrice:
		return a.Price.Cmp(b.Price) < 0
	case SortKeyPL:
		return a.PL.Cmp(b.PL) < 0
	default:
		return a.Value.Cmp(b.Value) < 0
	}
}
