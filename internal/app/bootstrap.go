package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gabrielmellace1/portfolioManager-sub000/internal/domain"
	"github.com/gabrielmellace1/portfolioManager-sub000/internal/infra"
	"github.com/gabrielmellace1/portfolioManager-sub000/internal/infra/pricing"
	"github.com/gabrielmellace1/portfolioManager-sub000/internal/infra/storage"
	"github.com/gabrielmellace1/portfolioManager-sub000/internal/scheduler"
	"github.com/gabrielmellace1/portfolioManager-sub000/internal/ws"

	"github.com/shopspring/decimal"
)

// Bootstrap orchestrates the application startup sequence and owns the
// wired service graph. Everything is constructed once here and passed by
// reference; there are no ambient service singletons to reach for.
type Bootstrap struct {
	Config     *infra.Config
	Storage    *storage.Storage
	Lookup     *pricing.Service
	Hub        *ws.Hub
	Scheduler  *scheduler.Scheduler
	Downloader *infra.LogoDownloader
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB, wiring)
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("🚀 Bootstrapping portfolio manager...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// Prices serialize as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized", slog.String("path", cfg.Storage.Path))

	if err := b.seedIfEmpty(context.Background()); err != nil {
		return err
	}

	// 4. Price lookup service
	b.Lookup = pricing.NewService(pricing.Options{
		StockURL:     cfg.Pricing.StockURL,
		CryptoURL:    cfg.Pricing.CryptoURL,
		StockAPIKey:  cfg.Pricing.StockAPIKey,
		CryptoAPIKey: cfg.Pricing.CryptoAPIKey,
		Timeout:      time.Duration(cfg.Pricing.LookupTimeoutSec) * time.Second,
		DefaultPrice: cfg.Pricing.DefaultPrice,
	})

	// 5. Broadcast hub + refresh scheduler
	b.Hub = ws.NewHub()
	b.Scheduler = scheduler.New(b.Storage, b.Lookup, b.Hub, scheduler.Config{
		IntervalMS:           cfg.Refresh.IntervalMS,
		LookupTimeout:        time.Duration(cfg.Pricing.LookupTimeoutSec) * time.Second,
		MaxConcurrentLookups: cfg.Refresh.MaxConcurrentLookups,
	})
	slog.Info("✅ Scheduler wired", slog.Int64("interval_ms", cfg.Refresh.IntervalMS))

	// 6. Logo downloader (optional UI nicety)
	if cfg.UI.LogoSync {
		downloader, err := infra.NewLogoDownloader("assets")
		if err != nil {
			return err
		}
		b.Downloader = downloader
		slog.Info("✅ Logo downloader ready")
	}

	return nil
}

// seedIfEmpty populates a fresh database with a starter portfolio so the
// first run has something to refresh and broadcast.
func (b *Bootstrap) seedIfEmpty(ctx context.Context) error {
	count, err := b.Storage.CountAssets(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	slog.Info("🌱 Empty database, seeding starter portfolio")
	seeds := []domain.Asset{
		{Class: domain.ClassStock, Ticker: "AAPL", Name: "Apple Inc.", Quantity: decimal.NewFromInt(10), PurchasePrice: decimal.NewFromFloat(150.00)},
		{Class: domain.ClassStock, Ticker: "MSFT", Name: "Microsoft Corp.", Quantity: decimal.NewFromInt(5), PurchasePrice: decimal.NewFromFloat(310.00)},
		{Class: domain.ClassCrypto, Ticker: "BTC", Name: "Bitcoin", Quantity: decimal.NewFromFloat(0.25), PurchasePrice: decimal.NewFromInt(42000)},
		{Class: domain.ClassCash, Ticker: "USD", Name: "US Dollar", Quantity: decimal.NewFromInt(2500), PurchasePrice: decimal.NewFromInt(1)},
	}
	for i := range seeds {
		if err := b.Storage.CreateAsset(ctx, &seeds[i]); err != nil {
			return err
		}
	}
	return nil
}

// logoTickers returns the unique tickers worth fetching a logo for.
// The icon CDN serves crypto assets only; other classes would 404.
func logoTickers(assets []domain.Asset) []string {
	seen := make(map[string]bool)
	tickers := make([]string, 0, len(assets))
	for _, a := range assets {
		if a.Class != domain.ClassCrypto || seen[a.Ticker] {
			continue
		}
		seen[a.Ticker] = true
		tickers = append(tickers, a.Ticker)
	}
	return tickers
}

// SyncLogos downloads logos for all tracked crypto tickers in the background
func (b *Bootstrap) SyncLogos(ctx context.Context) {
	if b.Downloader == nil {
		return
	}
	slog.Info("🔄 Starting logo synchronization...")

	assets, err := b.Storage.GetAllAssets(ctx)
	if err != nil {
		slog.Warn("Logo sync skipped, could not load assets", slog.Any("error", err))
		return
	}

	tickers := logoTickers(assets)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // Limit concurrent downloads

	for _, ticker := range tickers {
		wg.Add(1)
		go func(t string) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			if _, err := b.Downloader.DownloadLogo(t); err != nil {
				slog.Debug("Logo download failed", slog.String("ticker", t), slog.Any("error", err))
			}
		}(ticker)
	}

	wg.Wait()
	slog.Info("✅ Logo synchronization complete", slog.Int("tickers", len(tickers)))
}
