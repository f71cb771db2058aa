package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gabrielmellace1/portfolioManager-sub000/internal/domain"
	"github.com/gabrielmellace1/portfolioManager-sub000/internal/infra"
)

// Config tunes the refresh scheduler
type Config struct {
	IntervalMS           int64         // floor enforced at infra.MinRefreshIntervalMS
	LookupTimeout        time.Duration // per upstream call
	MaxConcurrentLookups int           // individual lookups in flight at once
}

// Status is a read-only snapshot of the scheduler state
type Status struct {
	Running         bool  `json:"running"`
	IntervalMS      int64 `json:"intervalMs"`
	SubscriberCount int   `json:"subscriberCount"`
}

// Scheduler drives the periodic refresh-and-broadcast cycle. One recurring
// timer triggers cycles; individual lookup failures are absorbed so a single
// bad ticker never aborts a cycle, and a whole-cycle failure is reported to
// clients as an error system message without killing the timer.
type Scheduler struct {
	store  domain.AssetStore
	lookup domain.PriceLookup
	hub    domain.Broadcaster

	mu       sync.Mutex
	running  bool
	interval time.Duration
	stopCh   chan struct{}

	lookupTimeout time.Duration
	maxConcurrent int

	// Reentrancy guard: a tick or forced update arriving while a cycle is
	// still in flight is skipped, never interleaved.
	inFlight atomic.Bool
}

// New creates a stopped scheduler
func New(store domain.AssetStore, lookup domain.PriceLookup, hub domain.Broadcaster, cfg Config) *Scheduler {
	if cfg.IntervalMS < infra.MinRefreshIntervalMS {
		cfg.IntervalMS = infra.DefaultRefreshIntervalMS
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = infra.DefaultLookupTimeoutSec * time.Second
	}
	if cfg.MaxConcurrentLookups <= 0 {
		cfg.MaxConcurrentLookups = 8
	}

	return &Scheduler{
		store:         store,
		lookup:        lookup,
		hub:           hub,
		interval:      time.Duration(cfg.IntervalMS) * time.Millisecond,
		lookupTimeout: cfg.LookupTimeout,
		maxConcurrent: cfg.MaxConcurrentLookups,
	}
}

// Start arms the repeating timer and kicks off one immediate cycle.
// Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		slog.Warn("Scheduler already running, start ignored")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	interval := s.interval
	s.mu.Unlock()

	// First cycle fires immediately but the caller does not wait on it
	go s.runCycle()
	go s.tickerLoop(stopCh, interval)

	slog.Info("Price refresh scheduler started", slog.Duration("interval", interval))
	s.hub.BroadcastSystemMessage("Real-time price updates are now active", domain.SeverityInfo)
}

// Stop cancels future ticks. An in-flight cycle is allowed to finish.
// Calling Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		slog.Warn("Scheduler already stopped, stop ignored")
		return
	}
	s.running = false
	close(s.stopCh)
	s.stopCh = nil
	s.mu.Unlock()

	slog.Info("Price refresh scheduler stopped")
	s.hub.BroadcastSystemMessage("Real-time price updates are paused", domain.SeverityInfo)
}

// ForceUpdate runs one refresh cycle right now, independent of the timer.
// It does not reset the timer's schedule.
func (s *Scheduler) ForceUpdate() {
	slog.Info("Manual price refresh triggered")
	s.runCycle()
}

// SetUpdateInterval changes the refresh interval. Rejects values below the
// floor. When running, the timer is re-armed so the new interval takes
// effect on the next tick; no extra announcement or immediate cycle fires.
func (s *Scheduler) SetUpdateInterval(ms int64) error {
	if ms < infra.MinRefreshIntervalMS {
		return fmt.Errorf("%w: %dms < %dms", domain.ErrIntervalTooShort, ms, infra.MinRefreshIntervalMS)
	}

	s.mu.Lock()
	s.interval = time.Duration(ms) * time.Millisecond
	if s.running {
		close(s.stopCh)
		s.stopCh = make(chan struct{})
		go s.tickerLoop(s.stopCh, s.interval)
	}
	s.mu.Unlock()

	slog.Info("Refresh interval updated", slog.Int64("interval_ms", ms))
	return nil
}

// Status returns a snapshot. Safe to call anytime, never blocks on a cycle.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	running := s.running
	interval := s.interval
	s.mu.Unlock()

	return Status{
		Running:         running,
		IntervalMS:      interval.Milliseconds(),
		SubscriberCount: s.hub.ConnectedCount(),
	}
}

func (s *Scheduler) tickerLoop(stopCh chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			go s.runCycle()
		}
	}
}

// runCycle is the single entry point for timer ticks and forced updates.
// Nothing may escape it: a failed or panicking cycle is logged and announced,
// and the timer lives on.
func (s *Scheduler) runCycle() {
	if !s.inFlight.CompareAndSwap(false, true) {
		slog.Warn("Refresh cycle already in flight, skipping")
		infra.GlobalMetrics.RecordCycleSkipped()
		return
	}
	defer s.inFlight.Store(false)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Refresh cycle panicked", slog.Any("panic", r))
			s.hub.BroadcastSystemMessage("Price refresh failed unexpectedly", domain.SeverityError)
		}
	}()

	start := time.Now()
	if err := s.refresh(context.Background()); err != nil {
		slog.Error("Refresh cycle failed", slog.Any("error", err))
		s.hub.BroadcastSystemMessage("Price refresh failed: "+err.Error(), domain.SeverityError)
		return
	}
	infra.GlobalMetrics.RecordCycle(time.Since(start).Nanoseconds())
}

// refresh executes one full refresh-and-broadcast cycle:
// load assets, batch-resolve crypto, resolve the rest concurrently, write
// prices, then broadcast the deltas of every asset holding a current price.
func (s *Scheduler) refresh(ctx context.Context) error {
	assets, err := s.store.GetAllAssets(ctx)
	if err != nil {
		return fmt.Errorf("load assets: %w", err)
	}
	if len(assets) == 0 {
		slog.Info("No assets to refresh")
		return nil
	}

	var batchable, others []domain.Asset
	for _, a := range assets {
		if a.Class.Batchable() {
			batchable = append(batchable, a)
		} else {
			others = append(others, a)
		}
	}

	var (
		mu      sync.Mutex
		errs    []error
		updated int
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
		infra.GlobalMetrics.RecordLookupError()
	}

	s.refreshCrypto(ctx, batchable, record, func() {
		mu.Lock()
		updated++
		mu.Unlock()
	})

	// Individual lookups run concurrently; the join waits for all and
	// tolerates per-asset failures.
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.maxConcurrent)
	for i := range others {
		a := others[i]
		if a.Class == domain.ClassCash {
			// Cash has no market quote; its value is its quantity
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			lctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
			defer cancel()

			var quote domain.Quote
			switch a.Class {
			case domain.ClassStock:
				quote = s.lookup.LookupStock(lctx, a.Ticker)
			case domain.ClassOption:
				quote = s.lookup.LookupOption(lctx, &a)
			case domain.ClassBond:
				quote = s.lookup.LookupBond(lctx, &a)
			default:
				return
			}

			if !quote.Available {
				slog.Warn("Price unavailable, keeping stored price",
					slog.String("ticker", a.Ticker), slog.String("reason", quote.Reason))
				record(domain.NewLookupError(string(a.Class), a.Ticker, errors.New(quote.Reason)))
				return
			}

			if err := s.store.UpdateAssetPrice(ctx, a.ID, quote.Price); err != nil {
				record(domain.NewLookupError("store", a.Ticker, err))
				return
			}
			mu.Lock()
			updated++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		slog.Warn("Refresh cycle completed with errors",
			slog.Int("error_count", len(errs)), slog.Any("first_error", errs[0]))
	}
	if updated == 0 {
		slog.Info("No prices updated this cycle, skipping broadcast")
		return nil
	}

	// Re-read so the broadcast reflects post-update prices
	refreshed, err := s.store.GetAllAssets(ctx)
	if err != nil {
		return fmt.Errorf("reload assets: %w", err)
	}

	now := time.Now()
	updates := make([]domain.PriceUpdate, 0, len(refreshed))
	for i := range refreshed {
		if u := domain.NewPriceUpdate(&refreshed[i], now); u != nil {
			updates = append(updates, *u)
		}
	}
	if len(updates) > 0 {
		s.hub.PublishPriceUpdates(updates)
		slog.Info("Broadcast price updates",
			slog.Int("updates", len(updates)), slog.Int("subscribers", s.hub.ConnectedCount()))
	}
	return nil
}

// refreshCrypto resolves the batchable class in one upstream call, falling
// back to individual lookups when the batch endpoint itself is down. In the
// fallback, an asset whose price still cannot be resolved gets the default
// substituted and is counted updated; the failure is recorded, not raised.
func (s *Scheduler) refreshCrypto(ctx context.Context, assets []domain.Asset, record func(error), markUpdated func()) {
	if len(assets) == 0 {
		return
	}

	tickers := make([]string, 0, len(assets))
	for _, a := range assets {
		tickers = append(tickers, a.Ticker)
	}

	bctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	quotes, err := s.lookup.LookupManyCrypto(bctx, tickers)
	cancel()

	if err != nil {
		slog.Warn("Batch crypto lookup failed, falling back to individual lookups", slog.Any("error", err))
		record(domain.NewLookupError("crypto_batch", "*", err))

		quotes = make(map[string]domain.Quote, len(assets))
		for _, a := range assets {
			lctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
			quotes[a.Ticker] = s.lookup.LookupCrypto(lctx, a.Ticker)
			cancel()
		}
	}

	for _, a := range assets {
		quote, ok := quotes[a.Ticker]
		if !ok {
			record(domain.NewLookupError("crypto", a.Ticker, errors.New("missing from lookup result")))
			continue
		}
		if !quote.Available {
			slog.Warn("Crypto price unavailable, substituting default",
				slog.String("ticker", a.Ticker), slog.String("reason", quote.Reason))
			record(domain.NewLookupError("crypto", a.Ticker, errors.New(quote.Reason)))
		}

		if err := s.store.UpdateAssetPrice(ctx, a.ID, quote.Price); err != nil {
			record(domain.NewLookupError("store", a.Ticker, err))
			continue
		}
		markUpdated()
	}
}
