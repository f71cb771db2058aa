package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewPriceUpdate_DeltaAgainstPurchasePrice(t *testing.T) {
	now := time.Now()
	a := &Asset{
		ID:            7,
		Class:         ClassStock,
		Ticker:        "AAPL",
		Quantity:      decimal.NewFromInt(1),
		PurchasePrice: decimal.NewFromFloat(150.0),
		CurrentPrice:  decimal.NewNullDecimal(decimal.NewFromFloat(160.0)),
	}

	u := NewPriceUpdate(a, now)
	if u == nil {
		t.Fatal("Expected update for priced asset")
	}

	if !u.PriceChange.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected change 10, got %v", u.PriceChange)
	}

	// 10 / 150 * 100 = 6.67 (rounded to 2 places)
	if !u.PriceChangePercent.Equal(decimal.NewFromFloat(6.67)) {
		t.Errorf("Expected 6.67%%, got %v", u.PriceChangePercent)
	}

	// The baseline is deliberately the purchase price, not the price before
	// this tick. This test exists so a silent change of baseline fails loudly.
	if !u.PreviousPrice.Equal(a.PurchasePrice) {
		t.Errorf("PreviousPrice must be the purchase price, got %v", u.PreviousPrice)
	}

	if u.AssetID != 7 || u.Ticker != "AAPL" {
		t.Errorf("Identity fields wrong: %+v", u)
	}
	if !u.Timestamp.Equal(now) {
		t.Errorf("Expected timestamp %v, got %v", now, u.Timestamp)
	}
}

func TestNewPriceUpdate_NoCurrentPrice(t *testing.T) {
	a := &Asset{
		Class:         ClassStock,
		Ticker:        "MSFT",
		Quantity:      decimal.NewFromInt(1),
		PurchasePrice: decimal.NewFromInt(100),
	}

	if u := NewPriceUpdate(a, time.Now()); u != nil {
		t.Errorf("Expected nil for unpriced asset, got %+v", u)
	}
}

func TestNewPriceUpdate_NegativeReturn(t *testing.T) {
	a := &Asset{
		ID:            1,
		Class:         ClassCrypto,
		Ticker:        "BTC",
		Quantity:      decimal.NewFromInt(1),
		PurchasePrice: decimal.NewFromInt(50000),
		CurrentPrice:  decimal.NewNullDecimal(decimal.NewFromInt(40000)),
	}

	u := NewPriceUpdate(a, time.Now())
	if u == nil {
		t.Fatal("Expected update")
	}
	if !u.PriceChange.Equal(decimal.NewFromInt(-10000)) {
		t.Errorf("Expected -10000, got %v", u.PriceChange)
	}
	if !u.PriceChangePercent.Equal(decimal.NewFromInt(-20)) {
		t.Errorf("Expected -20%%, got %v", u.PriceChangePercent)
	}
}
