package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// stockChartResponse represents the quote API chart response
type stockChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// StockClient fetches spot quotes for exchange-listed tickers (stocks and
// option/bond underlyings) from a chart-style quote endpoint.
type StockClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewStockClient creates a stock quote client
func NewStockClient(baseURL, apiKey string, timeout time.Duration) *StockClient {
	return &StockClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Quote fetches the current market price for one ticker
func (c *StockClient) Quote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, ticker)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("quote API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read response: %w", err)
	}

	var data stockChartResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse response: %w", err)
	}

	if data.Chart.Error != nil {
		return decimal.Zero, fmt.Errorf("quote API error: %s", data.Chart.Error.Description)
	}
	if len(data.Chart.Result) == 0 {
		return decimal.Zero, fmt.Errorf("empty chart result for %s", ticker)
	}

	price := data.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return decimal.Zero, fmt.Errorf("invalid price for %s: %f", ticker, price)
	}

	return decimal.NewFromFloat(price), nil
}
