package models

import "github.com/shopspring/decimal"

// ExportDocument is the current versioned interchange format. Fills are
// standardized on qty/timestamp field names for interoperability.
type ExportDocument struct {
	Meta      ExportMeta       `json:"meta"`
	Portfolio []ExportPosition `json:"portfolio"`
}

// ExportMeta identifies the producing application and schema revision.
type ExportMeta struct {
	Version    string `json:"version"`
	ExportedAt string `json:"exportedAt"`
	App        string `json:"app"`
}

type ExportPosition struct {
	Symbol      string       `json:"symbol"`
	Name        string       `json:"name"`
	CoinGeckoID string       `json:"coinGeckoId"`
	Fills       []ExportFill `json:"fills"`
}

type ExportFill struct {
	Timestamp string          `json:"timestamp"`
	Qty       decimal.Decimal `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}
