package domain

import "github.com/shopspring/decimal"

// Quote is the uniform result of every price lookup. Upstream feeds return
// heterogeneous payloads; adapters normalize them into this one shape so the
// refresh cycle never inspects provider-specific responses.
//
// When Available is false the Price carries the conservative default the
// adapter substituted, and Reason says why the real price could not be
// resolved.
type Quote struct {
	Ticker    string
	Price     decimal.Decimal
	Available bool
	Reason    string
}

// NewQuote creates a resolved quote.
func NewQuote(ticker string, price decimal.Decimal) Quote {
	return Quote{Ticker: ticker, Price: price, Available: true}
}

// UnavailableQuote creates a quote for a price that could not be resolved,
// carrying the substituted default.
func UnavailableQuote(ticker string, fallback decimal.Decimal, reason string) Quote {
	return Quote{Ticker: ticker, Price: fallback, Reason: reason}
}
