package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AssetClass identifies the category of a portfolio position.
type AssetClass string

const (
	ClassStock  AssetClass = "stock"
	ClassOption AssetClass = "option"
	ClassBond   AssetClass = "bond"
	ClassCrypto AssetClass = "crypto"
	ClassCash   AssetClass = "cash"
)

// Valid reports whether the class is one of the known asset categories.
func (c AssetClass) Valid() bool {
	switch c {
	case ClassStock, ClassOption, ClassBond, ClassCrypto, ClassCash:
		return true
	}
	return false
}

// Batchable reports whether prices for this class can be fetched in a single
// upstream call for multiple tickers. Only crypto has such an endpoint.
func (c AssetClass) Batchable() bool {
	return c == ClassCrypto
}

// OptionType values for option assets.
const (
	OptionCall = "call"
	OptionPut  = "put"
)

// Asset represents a single portfolio position.
type Asset struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	Class         AssetClass          `gorm:"index" json:"class"`
	Ticker        string              `gorm:"index" json:"ticker"`
	Name          string              `json:"name"`
	Quantity      decimal.Decimal     `gorm:"type:numeric" json:"quantity"`
	PurchasePrice decimal.Decimal     `gorm:"type:numeric" json:"purchase_price"`
	CurrentPrice  decimal.NullDecimal `gorm:"type:numeric" json:"current_price"`

	// Option-specific
	StrikePrice decimal.NullDecimal `gorm:"type:numeric" json:"strike_price,omitempty"`
	ExpiryDate  *time.Time          `json:"expiry_date,omitempty"`
	OptionType  string              `json:"option_type,omitempty"` // "call" or "put"

	// Bond-specific
	CouponRate   decimal.NullDecimal `gorm:"type:numeric" json:"coupon_rate,omitempty"`
	MaturityDate *time.Time          `json:"maturity_date,omitempty"`
	FaceValue    decimal.NullDecimal `gorm:"type:numeric" json:"face_value,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the asset invariants: known class, non-empty ticker,
// positive quantity and purchase price, and a positive current price when set.
func (a *Asset) Validate() error {
	if !a.Class.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAssetClass, a.Class)
	}
	if a.Ticker == "" {
		return fmt.Errorf("%w: empty ticker", ErrInvalidAsset)
	}
	if !a.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidAsset, a.Quantity)
	}
	if !a.PurchasePrice.IsPositive() {
		return fmt.Errorf("%w: purchase price must be positive, got %s", ErrInvalidAsset, a.PurchasePrice)
	}
	if a.CurrentPrice.Valid && !a.CurrentPrice.Decimal.IsPositive() {
		return fmt.Errorf("%w: current price must be positive, got %s", ErrInvalidAsset, a.CurrentPrice.Decimal)
	}
	if a.Class == ClassOption && a.OptionType != "" && a.OptionType != OptionCall && a.OptionType != OptionPut {
		return fmt.Errorf("%w: option type must be call or put, got %q", ErrInvalidAsset, a.OptionType)
	}
	return nil
}

// HasCurrentPrice reports whether a refreshed or user-set price exists.
func (a *Asset) HasCurrentPrice() bool {
	return a.CurrentPrice.Valid
}

// MarketValue returns quantity * current price, or zero when no price is set.
func (a *Asset) MarketValue() decimal.Decimal {
	if !a.CurrentPrice.Valid {
		return decimal.Zero
	}
	return a.Quantity.Mul(a.CurrentPrice.Decimal)
}

// CostBasis returns quantity * purchase price.
func (a *Asset) CostBasis() decimal.Decimal {
	return a.Quantity.Mul(a.PurchasePrice)
}
