package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceLookup defines the price resolution capability the refresh cycle
// consumes. Single-asset calls never fail for business reasons: an
// unresolvable price comes back as an unavailable Quote carrying the
// substituted default. Only LookupManyCrypto can return an error, and only
// for an infrastructure-level outage of the batch endpoint.
type PriceLookup interface {
	LookupStock(ctx context.Context, ticker string) Quote
	LookupCrypto(ctx context.Context, ticker string) Quote
	LookupOption(ctx context.Context, asset *Asset) Quote
	LookupBond(ctx context.Context, asset *Asset) Quote
	LookupManyCrypto(ctx context.Context, tickers []string) (map[string]Quote, error)
}

// AssetStore defines persistence access for portfolio positions
type AssetStore interface {
	GetAllAssets(ctx context.Context) ([]Asset, error)
	UpdateAssetPrice(ctx context.Context, id uint, price decimal.Decimal) error
}

// Severity classifies a system message broadcast to clients
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Broadcaster defines the real-time fan-out the scheduler publishes through.
// Delivery is fire-and-forget: no acknowledgement, no replay.
type Broadcaster interface {
	// PublishPriceUpdates delivers one batch to connections subscribed to
	// the price-updates group. Empty batches are dropped.
	PublishPriceUpdates(updates []PriceUpdate)

	// BroadcastSystemMessage delivers a notice to every connected client
	// regardless of group membership.
	BroadcastSystemMessage(message string, severity Severity)

	// ConnectedCount returns the number of currently tracked connections.
	ConnectedCount() int
}
