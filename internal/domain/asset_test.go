package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func validStock() *Asset {
	return &Asset{
		Class:         ClassStock,
		Ticker:        "AAPL",
		Name:          "Apple Inc.",
		Quantity:      decimal.NewFromInt(10),
		PurchasePrice: decimal.NewFromFloat(150.0),
	}
}

func TestAsset_Validate(t *testing.T) {
	t.Run("valid stock", func(t *testing.T) {
		if err := validStock().Validate(); err != nil {
			t.Errorf("Expected valid asset, got %v", err)
		}
	})

	t.Run("unknown class", func(t *testing.T) {
		a := validStock()
		a.Class = "etf"
		if err := a.Validate(); !errors.Is(err, ErrInvalidAssetClass) {
			t.Errorf("Expected ErrInvalidAssetClass, got %v", err)
		}
	})

	t.Run("zero quantity", func(t *testing.T) {
		a := validStock()
		a.Quantity = decimal.Zero
		if err := a.Validate(); !errors.Is(err, ErrInvalidAsset) {
			t.Errorf("Expected ErrInvalidAsset, got %v", err)
		}
	})

	t.Run("negative purchase price", func(t *testing.T) {
		a := validStock()
		a.PurchasePrice = decimal.NewFromInt(-1)
		if err := a.Validate(); !errors.Is(err, ErrInvalidAsset) {
			t.Errorf("Expected ErrInvalidAsset, got %v", err)
		}
	})

	t.Run("current price optional but positive", func(t *testing.T) {
		a := validStock()
		a.CurrentPrice = decimal.NewNullDecimal(decimal.Zero)
		if err := a.Validate(); !errors.Is(err, ErrInvalidAsset) {
			t.Errorf("Expected ErrInvalidAsset, got %v", err)
		}

		a.CurrentPrice = decimal.NewNullDecimal(decimal.NewFromFloat(160.0))
		if err := a.Validate(); err != nil {
			t.Errorf("Expected valid asset, got %v", err)
		}
	})

	t.Run("bad option type", func(t *testing.T) {
		a := validStock()
		a.Class = ClassOption
		a.OptionType = "straddle"
		if err := a.Validate(); !errors.Is(err, ErrInvalidAsset) {
			t.Errorf("Expected ErrInvalidAsset, got %v", err)
		}
	})
}

func TestAsset_MarketValue(t *testing.T) {
	a := validStock()

	if !a.MarketValue().IsZero() {
		t.Error("MarketValue should be zero without a current price")
	}

	a.CurrentPrice = decimal.NewNullDecimal(decimal.NewFromFloat(160.0))
	if !a.MarketValue().Equal(decimal.NewFromInt(1600)) {
		t.Errorf("Expected 1600, got %v", a.MarketValue())
	}
	if !a.CostBasis().Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Expected 1500, got %v", a.CostBasis())
	}
}

func TestAssetClass_Batchable(t *testing.T) {
	if !ClassCrypto.Batchable() {
		t.Error("crypto should be batchable")
	}
	for _, c := range []AssetClass{ClassStock, ClassOption, ClassBond, ClassCash} {
		if c.Batchable() {
			t.Errorf("%s should not be batchable", c)
		}
	}
}
