package models

import "github.com/shopspring/decimal"

// PositionRow is one dashboard row, derived from a position's fills and its
// current price. Rows are never stored; they are recomputed on every read.
type PositionRow struct {
	Symbol    string           `json:"symbol"`
	Name      string           `json:"name"`
	Icon      string           `json:"icon"`
	Amount    decimal.Decimal  `json:"amount"`
	Price     decimal.Decimal  `json:"price"`
	Invested  decimal.Decimal  `json:"invested"`
	Value     decimal.Decimal  `json:"value"`
	PL        decimal.Decimal  `json:"pl"`
	PLPct     decimal.Decimal  `json:"plPct"`
	Change24h *decimal.Decimal `json:"change24h,omitempty"`
}

// FillRow is the per-fill breakdown shown in the positions detail view.
type FillRow struct {
	ID     string          `json:"id"`
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Price  decimal.Decimal `json:"price"`
	Cost   decimal.Decimal `json:"cost"`
	Value  decimal.Decimal `json:"value"`
	PL     decimal.Decimal `json:"pl"`
	PLPct  decimal.Decimal `json:"plPct"`
}

// PositionDetail aggregates one position with its fill breakdown. Unlike
// dashboard rows, fully-divested positions stay visible here as long as any
// fills remain.
type PositionDetail struct {
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Icon         string          `json:"icon"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	Amount       decimal.Decimal `json:"amount"`
	Invested     decimal.Decimal `json:"invested"`
	Value        decimal.Decimal `json:"value"`
	AvgPrice     decimal.Decimal `json:"avgPrice"`
	PL           decimal.Decimal `json:"pl"`
	PLPct        decimal.Decimal `json:"plPct"`
	Fills        []FillRow       `json:"fills"`
}

// Summary holds the aggregate metrics over all dashboard rows.
type Summary struct {
	TotalValue    decimal.Decimal `json:"totalValue"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	TotalPL       decimal.Decimal `json:"totalPL"`
	TotalPLPct    decimal.Decimal `json:"totalPLPct"`
}
