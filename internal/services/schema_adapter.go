package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tropicaldog17/cryptofolio/internal/models"
)

const (
	exportVersion = "1.0"
	exportApp     = "CryptoFolio Pro"
)

// ErrNoPositions is returned when an import document parses but contains no
// usable portfolio entries.
var ErrNoPositions = errors.New("no recognizable portfolio entries")

// SchemaAdapter translates between the canonical model and the external
// document schemas: the bootstrap/legacy format, the versioned export format
// and the permissive import format that accepts either of the two fill shapes.
type SchemaAdapter struct{}

// NewSchemaAdapter creates a new schema adapter.
func NewSchemaAdapter() *SchemaAdapter {
	return &SchemaAdapter{}
}

// importPosition covers every known position shape. Exactly one of Fills
// (qty/price/timestamp) or Buys (amount/price/date) must be present.
type importPosition struct {
	Symbol      string      `json:"symbol"`
	Name        string      `json:"name"`
	CoinGeckoID string      `json:"coinGeckoId"`
	Thumb       string      `json:"thumb"`
	Fills       []importRow `json:"fills"`
	Buys        []importRow `json:"buys"`
}

// importRow holds the union of both fill field sets; which side is populated
// depends on the list the row came from.
type importRow struct {
	ID        string          `json:"id"`
	Qty       decimal.Decimal `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Timestamp string          `json:"timestamp"`
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"`
}

// Normalize parses a bootstrap or import document into canonical positions.
// It accepts a bare array of positions or a {portfolio: [...]} wrapper, and
// per entry either the fills or the buys shape. Entries matching neither
// shape fail the whole import; nothing is replaced on a partial parse.
func (a *SchemaAdapter) Normalize(data []byte) ([]models.Position, error) {
	entries, err := decodeEntries(data)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoPositions
	}

	positions := make([]models.Position, 0, len(entries))
	for i, entry := range entries {
		if entry.Symbol == "" {
			return nil, fmt.Errorf("entry %d: missing symbol", i)
		}

		var rows []importRow
		var legacy bool
		switch {
		case entry.Fills != nil:
			rows = entry.Fills
		case entry.Buys != nil:
			rows, legacy = entry.Buys, true
		default:
			return nil, fmt.Errorf("entry %d (%s): no fills or buys list", i, entry.Symbol)
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("entry %d (%s): empty fill list", i, entry.Symbol)
		}

		fills := make([]models.Fill, 0, len(rows))
		for _, row := range rows {
			fills = append(fills, canonicalFill(row, legacy))
		}

		identifier := entry.CoinGeckoID
		if identifier == "" {
			identifier = ResolveSymbol(entry.Symbol)
		}

		name := entry.Name
		if name == "" {
			name = entry.Symbol
		}

		positions = append(positions, models.Position{
			Symbol:     entry.Symbol,
			Name:       name,
			Identifier: identifier,
			Icon:       entry.Thumb,
			// Price left at zero to force a fetch on the next refresh.
			CurrentPrice: decimal.Zero,
			Fills:        fills,
		})
	}

	return positions, nil
}

// decodeEntries detects which of the two document wrappers the input uses.
func decodeEntries(data []byte) ([]importPosition, error) {
	var bare []importPosition
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Portfolio []importPosition `json:"portfolio"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("unrecognized document shape: %w", err)
	}
	return wrapped.Portfolio, nil
}

func canonicalFill(row importRow, legacy bool) models.Fill {
	id := row.ID
	if id == "" {
		id = uuid.NewString()
	}
	if legacy {
		return models.Fill{ID: id, Amount: row.Amount, Price: row.Price, Date: row.Date}
	}
	return models.Fill{ID: id, Amount: row.Qty, Price: row.Price, Date: row.Timestamp}
}

// Serialize renders the canonical model into the current export schema,
// stamped with the export time and a fixed version/app tag.
func (a *SchemaAdapter) Serialize(positions []models.Position) *models.ExportDocument {
	doc := &models.ExportDocument{
		Meta: models.ExportMeta{
			Version:    exportVersion,
			ExportedAt: time.Now().UTC().Format(time.RFC3339),
			App:        exportApp,
		},
		Portfolio: make([]models.ExportPosition, 0, len(positions)),
	}

	for _, p := range positions {
		out := models.ExportPosition{
			Symbol:      p.Symbol,
			Name:        p.Name,
			CoinGeckoID: p.Identifier,
			Fills:       make([]models.ExportFill, 0, len(p.Fills)),
		}
		for _, f := range p.Fills {
			out.Fills = append(out.Fills, models.ExportFill{
				Timestamp: f.Date,
				Qty:       f.Amount,
				Price:     f.Price,
			})
		}
		doc.Portfolio = append(doc.Portfolio, out)
	}

	return doc
}

// ExportFilename builds the download name for an export taken at t.
func ExportFilename(t time.Time) string {
	return "portfolio_" + t.UTC().Format("2006-01-02") + ".json"
}
