package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// LookupError represents a failed price lookup for a single asset.
// The refresh cycle absorbs these; they are never surfaced to clients.
type LookupError struct {
	Ticker    string
	Op        string // "stock", "crypto", "crypto_batch", "option", "bond", "store"
	Err       error
	Retriable bool
}

func (e *LookupError) Error() string {
	return e.Op + " lookup for " + e.Ticker + ": " + e.Err.Error()
}

func (e *LookupError) IsRetriable() bool {
	return e.Retriable
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// NewLookupError creates a retriable lookup error for one asset
func NewLookupError(op, ticker string, err error) *LookupError {
	return &LookupError{Op: op, Ticker: ticker, Err: err, Retriable: true}
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrIntervalTooShort is returned when a refresh interval below the floor is requested
	ErrIntervalTooShort = errors.New("refresh interval below minimum")

	// ErrInvalidAsset is returned when an asset violates its invariants
	ErrInvalidAsset = errors.New("invalid asset")

	// ErrInvalidAssetClass is returned for an unknown asset class
	ErrInvalidAssetClass = errors.New("invalid asset class")

	// ErrAssetNotFound is returned when a store operation targets a missing asset
	ErrAssetNotFound = errors.New("asset not found")

	// ErrBatchLookupFailed is returned when the batched crypto endpoint fails as a whole
	ErrBatchLookupFailed = errors.New("batch lookup failed")
)
