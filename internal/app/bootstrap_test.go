package app

import (
	"testing"

	"github.com/gabrielmellace1/portfolioManager-sub000/internal/domain"

	"github.com/shopspring/decimal"
)

func asset(class domain.AssetClass, ticker string) domain.Asset {
	return domain.Asset{
		Class:         class,
		Ticker:        ticker,
		Quantity:      decimal.NewFromInt(1),
		PurchasePrice: decimal.NewFromInt(100),
	}
}

func TestLogoTickers(t *testing.T) {
	t.Run("crypto only", func(t *testing.T) {
		assets := []domain.Asset{
			asset(domain.ClassStock, "AAPL"),
			asset(domain.ClassCrypto, "BTC"),
			asset(domain.ClassBond, "T-2030"),
			asset(domain.ClassCash, "USD"),
			asset(domain.ClassCrypto, "ETH"),
		}

		tickers := logoTickers(assets)
		if len(tickers) != 2 {
			t.Fatalf("Expected 2 crypto tickers, got %v", tickers)
		}
		if tickers[0] != "BTC" || tickers[1] != "ETH" {
			t.Errorf("Expected [BTC ETH], got %v", tickers)
		}
	})

	t.Run("deduplicates", func(t *testing.T) {
		assets := []domain.Asset{
			asset(domain.ClassCrypto, "BTC"),
			asset(domain.ClassCrypto, "BTC"),
		}

		if tickers := logoTickers(assets); len(tickers) != 1 {
			t.Errorf("Expected a single BTC entry, got %v", tickers)
		}
	})

	t.Run("no crypto means no downloads", func(t *testing.T) {
		assets := []domain.Asset{
			asset(domain.ClassStock, "AAPL"),
			asset(domain.ClassStock, "MSFT"),
		}

		if tickers := logoTickers(assets); len(tickers) != 0 {
			t.Errorf("Expected no tickers for a stock-only portfolio, got %v", tickers)
		}
	})
}
