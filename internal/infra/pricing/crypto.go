package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gabrielmellace1/portfolioManager-sub000/internal/httputil"

	"github.com/shopspring/decimal"
)

// coinIDs maps common crypto tickers to the quote API's coin ids.
// Unlisted tickers fall back to the lowercased ticker.
var coinIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
	"XRP":  "ripple",
	"DOT":  "polkadot",
	"LTC":  "litecoin",
	"LINK": "chainlink",
	"AVAX": "avalanche-2",
}

// CryptoClient fetches crypto spot prices from a CoinGecko-style
// simple-price endpoint. It is the only client with a batched variant.
type CryptoClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

// NewCryptoClient creates a crypto quote client
func NewCryptoClient(baseURL, apiKey string, timeout time.Duration) *CryptoClient {
	return &CryptoClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
	}
}

func coinID(ticker string) string {
	if id, ok := coinIDs[strings.ToUpper(ticker)]; ok {
		return id
	}
	return strings.ToLower(ticker)
}

// QuoteMany fetches current USD prices for all tickers in one call.
// The returned map is keyed by the original tickers; tickers the endpoint
// does not know are simply absent. An error means the endpoint itself was
// unreachable or rejected the batch.
func (c *CryptoClient) QuoteMany(ctx context.Context, tickers []string) (map[string]decimal.Decimal, error) {
	if len(tickers) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	ids := make([]string, 0, len(tickers))
	byID := make(map[string]string, len(tickers))
	for _, ticker := range tickers {
		id := coinID(ticker)
		ids = append(ids, id)
		byID[id] = ticker
	}

	url := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd", c.baseURL, strings.Join(ids, ","))

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", DefaultUserAgent)
		if c.apiKey != "" {
			req.Header.Set("x-cg-demo-api-key", c.apiKey)
		}
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("crypto batch fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crypto API returned status %d", resp.StatusCode)
	}

	var data map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(data))
	for id, entry := range data {
		ticker, ok := byID[id]
		if !ok || entry.USD <= 0 {
			continue
		}
		prices[ticker] = decimal.NewFromFloat(entry.USD)
	}

	return prices, nil
}

// Quote fetches the current USD price for a single ticker
func (c *CryptoClient) Quote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	prices, err := c.QuoteMany(ctx, []string{ticker})
	if err != nil {
		return decimal.Zero, err
	}

	price, ok := prices[ticker]
	if !ok {
		return decimal.Zero, fmt.Errorf("no price for %s", ticker)
	}
	return price, nil
}
