package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabrielmellace1/portfolioManager-sub000/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultUserAgent is a browser-like user agent string to avoid bot detection
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options configures the lookup service
type Options struct {
	StockURL     string
	CryptoURL    string
	StockAPIKey  string
	CryptoAPIKey string
	Timeout      time.Duration
	DefaultPrice decimal.Decimal
}

// Service implements domain.PriceLookup across all asset classes.
//
// Single-asset lookups never return an error: an unresolvable price becomes
// an unavailable Quote carrying the conservative default, so the refresh
// cycle always makes forward progress. Only the batched crypto call reports
// an infrastructure failure to the caller.
type Service struct {
	stock        *StockClient
	crypto       *CryptoClient
	defaultPrice decimal.Decimal
}

// NewService creates the price lookup service
func NewService(opts Options) *Service {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	defaultPrice := opts.DefaultPrice
	if !defaultPrice.IsPositive() {
		defaultPrice = decimal.NewFromInt(1)
	}

	return &Service{
		stock:        NewStockClient(opts.StockURL, opts.StockAPIKey, timeout),
		crypto:       NewCryptoClient(opts.CryptoURL, opts.CryptoAPIKey, timeout),
		defaultPrice: defaultPrice,
	}
}

// LookupStock resolves the current price for a stock ticker
func (s *Service) LookupStock(ctx context.Context, ticker string) domain.Quote {
	price, err := s.stock.Quote(ctx, ticker)
	if err != nil {
		slog.Debug("Stock lookup failed", slog.String("ticker", ticker), slog.Any("error", err))
		return domain.UnavailableQuote(ticker, s.defaultPrice, err.Error())
	}
	return domain.NewQuote(ticker, price)
}

// LookupCrypto resolves the current price for a single crypto ticker
func (s *Service) LookupCrypto(ctx context.Context, ticker string) domain.Quote {
	price, err := s.crypto.Quote(ctx, ticker)
	if err != nil {
		slog.Debug("Crypto lookup failed", slog.String("ticker", ticker), slog.Any("error", err))
		return domain.UnavailableQuote(ticker, s.defaultPrice, err.Error())
	}
	return domain.NewQuote(ticker, price)
}

// LookupOption values an option position conservatively: the underlying is
// quoted and the intrinsic value is used, floored at the default price.
// There is no options-chain feed in this service.
func (s *Service) LookupOption(ctx context.Context, asset *domain.Asset) domain.Quote {
	if !asset.StrikePrice.Valid {
		return domain.UnavailableQuote(asset.Ticker, s.defaultPrice, "option has no strike price")
	}

	spot, err := s.stock.Quote(ctx, asset.Ticker)
	if err != nil {
		slog.Debug("Option underlying lookup failed", slog.String("ticker", asset.Ticker), slog.Any("error", err))
		return domain.UnavailableQuote(asset.Ticker, s.defaultPrice, err.Error())
	}

	strike := asset.StrikePrice.Decimal
	var intrinsic decimal.Decimal
	switch asset.OptionType {
	case domain.OptionPut:
		intrinsic = strike.Sub(spot)
	default: // calls, and positions recorded without a type
		intrinsic = spot.Sub(strike)
	}

	if intrinsic.LessThan(s.defaultPrice) {
		intrinsic = s.defaultPrice
	}
	return domain.NewQuote(asset.Ticker, intrinsic)
}

// LookupBond quotes a bond at par. There is no retail bond price feed; face
// value is the conservative stand-in until one is wired.
func (s *Service) LookupBond(_ context.Context, asset *domain.Asset) domain.Quote {
	if !asset.FaceValue.Valid || !asset.FaceValue.Decimal.IsPositive() {
		return domain.UnavailableQuote(asset.Ticker, s.defaultPrice, "bond has no face value")
	}
	return domain.NewQuote(asset.Ticker, asset.FaceValue.Decimal)
}

// LookupManyCrypto resolves prices for all given tickers in one upstream
// call. Tickers missing from the response come back as unavailable quotes
// with the default substituted. The error return is reserved for an outage
// of the batch endpoint itself.
func (s *Service) LookupManyCrypto(ctx context.Context, tickers []string) (map[string]domain.Quote, error) {
	prices, err := s.crypto.QuoteMany(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBatchLookupFailed, err)
	}

	quotes := make(map[string]domain.Quote, len(tickers))
	for _, ticker := range tickers {
		if price, ok := prices[ticker]; ok {
			quotes[ticker] = domain.NewQuote(ticker, price)
		} else {
			quotes[ticker] = domain.UnavailableQuote(ticker, s.defaultPrice, "not in batch response")
		}
	}
	return quotes, nil
}
