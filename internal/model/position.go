package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Position struct {
	ID           int64            `json:"id" db:"id"`
	KontoID      int64            `json:"kontoId" db:"konto_id"`
	AssetType    string           `json:"assetType" db:"asset_type"`
	Symbol       string           `json:"symbol" db:"symbol"`
	Name         string           `json:"name" db:"name"`
	Quantity     decimal.Decimal  `json:"quantity" db:"quantity"`
	EntryPrice   decimal.Decimal  `json:"entryPrice" db:"entry_price"`
	CurrentPrice *decimal.Decimal `json:"currentPrice" db:"current_price"`
	EntryDate    time.Time        `json:"entryDate" db:"entry_date"`
	Fees         *decimal.Decimal `json:"fees" db:"fees"`
	Leverage     *decimal.Decimal `json:"leverage" db:"leverage"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
}

type PositionDetail struct {
	Position
	Konto *Konto `json:"konto"`
}

type PositionPatch struct {
	AssetType    *string          `json:"assetType"`
	Symbol       *string          `json:"symbol"`
	Name         *string          `json:"name"`
	Quantity     *decimal.Decimal `json:"quantity"`
	EntryPrice   *decimal.Decimal `json:"entryPrice"`
	CurrentPrice *decimal.Decimal `json:"currentPrice"`
	EntryDate    *time.Time       `json:"entryDate"`
	Fees         *decimal.Decimal `json:"fees"`
	Leverage     *decimal.Decimal `json:"leverage"`
}
