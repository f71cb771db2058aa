package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PriceUpdate is the per-asset delta emitted after a refresh cycle.
// It lives only for the duration of one broadcast and is never persisted.
//
// PreviousPrice is the purchase price, not the price before this tick:
// the delta reads as total return since purchase.
type PriceUpdate struct {
	AssetID            uint            `json:"assetId"`
	Ticker             string          `json:"ticker"`
	CurrentPrice       decimal.Decimal `json:"currentPrice"`
	PreviousPrice      decimal.Decimal `json:"previousPrice"`
	PriceChange        decimal.Decimal `json:"priceChange"`
	PriceChangePercent decimal.Decimal `json:"priceChangePercent"`
	Timestamp          time.Time       `json:"timestamp"`
}

// NewPriceUpdate builds the delta record for an asset that has a current
// price. Returns nil when no current price is set.
func NewPriceUpdate(a *Asset, now time.Time) *PriceUpdate {
	if !a.CurrentPrice.Valid {
		return nil
	}

	current := a.CurrentPrice.Decimal
	change := current.Sub(a.PurchasePrice)

	var pct decimal.Decimal
	if !a.PurchasePrice.IsZero() {
		pct = change.Div(a.PurchasePrice).Mul(hundred).Round(2)
	}

	return &PriceUpdate{
		AssetID:            a.ID,
		Ticker:             a.Ticker,
		CurrentPrice:       current,
		PreviousPrice:      a.PurchasePrice,
		PriceChange:        change,
		PriceChangePercent: pct,
		Timestamp:          now,
	}
}
