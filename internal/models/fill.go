package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Fill represents a single acquisition event contributing to a Position.
// A fill is immutable once recorded; the only permitted mutation is deletion.
type Fill struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Price  decimal.Decimal `json:"price"`
	Date   string          `json:"date"`
}

// Validate validates the fill data
func (f *Fill) Validate() error {
	if f.Amount.IsZero() {
		return errors.New("amount must be non-zero")
	}
	if f.Price.IsNegative() {
		return errors.New("price must be non-negative")
	}
	if f.Date == "" {
		return errors.New("date is required")
	}
	return nil
}
