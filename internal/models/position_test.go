package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFillValidation(t *testing.T) {
	tests := []struct {
		name    string
		fill    Fill
		wantErr string
	}{
		{
			name: "valid fill",
			fill: Fill{ID: "1", Amount: decimal.NewFromFloat(0.5), Price: decimal.NewFromInt(100), Date: "2024-01-01"},
		},
		{
			name:    "zero amount",
			fill:    Fill{ID: "1", Price: decimal.NewFromInt(100), Date: "2024-01-01"},
			wantErr: "amount must be non-zero",
		},
		{
			name: "negative amount is a correction and allowed",
			fill: Fill{ID: "1", Amount: decimal.NewFromInt(-1), Price: decimal.NewFromInt(100), Date: "2024-01-01"},
		},
		{
			name:    "negative price",
			fill:    Fill{ID: "1", Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(-5), Date: "2024-01-01"},
			wantErr: "price must be non-negative",
		},
		{
			name:    "missing date",
			fill:    Fill{ID: "1", Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(5)},
			wantErr: "date is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fill.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestPositionValidation(t *testing.T) {
	valid := Position{
		Symbol: "BTC",
		Name:   "Bitcoin",
		Fills:  []Fill{{ID: "1", Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(100), Date: "2024-01-01"}},
	}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.Symbol = ""
	assert.EqualError(t, missing.Validate(), "symbol is required")

	badPrice := valid
	badPrice.CurrentPrice = decimal.NewFromInt(-1)
	assert.EqualError(t, badPrice.Validate(), "current price must be non-negative")

	badFill := valid
	badFill.Fills = []Fill{{ID: "1", Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(100)}}
	assert.EqualError(t, badFill.Validate(), "date is required")
}

func TestCloneIsDeep(t *testing.T) {
	change := decimal.NewFromFloat(2.5)
	original := Position{
		Symbol:    "ETH",
		Change24h: &change,
		Fills:     []Fill{{ID: "1", Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(10), Date: "2024-01-01"}},
	}

	clone := original.Clone()
	clone.Fills[0].Amount = decimal.NewFromInt(99)
	*clone.Change24h = decimal.NewFromInt(-9)

	assert.True(t, original.Fills[0].Amount.Equal(decimal.NewFromInt(1)), "fills must not alias")
	assert.True(t, original.Change24h.Equal(decimal.NewFromFloat(2.5)), "change pointer must not alias")
}

func TestClonePositions(t *testing.T) {
	list := []Position{
		{Symbol: "BTC", Fills: []Fill{{ID: "1", Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(1), Date: "d"}}},
		{Symbol: "ETH"},
	}
	cloned := ClonePositions(list)
	cloned[0].Fills[0].ID = "mutated"

	assert.Equal(t, "1", list[0].Fills[0].ID)
	assert.Len(t, cloned, 2)
}

func TestIconURL(t *testing.T) {
	assert.Equal(t, "https://img/btc.png", IconURL("BTC", "https://img/btc.png"))
	assert.Equal(t, "https://assets.coincap.io/assets/icons/btc@2x.png", IconURL("BTC", ""))
	assert.Equal(t, "https://assets.coincap.io/assets/icons/pepe@2x.png", IconURL("PEPE", "none"))
}

func TestFallbackIconIsEmbedded(t *testing.T) {
	assert.Contains(t, FallbackIcon, "data:image/svg+xml;base64,")
}
