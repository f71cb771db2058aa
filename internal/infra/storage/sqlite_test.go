package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/gabrielmellace1/portfolioManager-sub000/internal/domain"

	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *Storage {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return s
}

func stockAsset(ticker string) *domain.Asset {
	return &domain.Asset{
		Class:         domain.ClassStock,
		Ticker:        ticker,
		Quantity:      decimal.NewFromInt(5),
		PurchasePrice: decimal.NewFromFloat(100.0),
	}
}

func TestCreateAndGetAsset(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	asset := stockAsset("AAPL")

	// 1. Create
	if err := s.CreateAsset(ctx, asset); err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}
	if asset.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	// 2. Get
	fetched, err := s.GetAsset(ctx, asset.ID)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if fetched.Ticker != "AAPL" {
		t.Errorf("expected ticker AAPL, got %s", fetched.Ticker)
	}
	if fetched.HasCurrentPrice() {
		t.Error("fresh asset should have no current price")
	}
}

func TestCreateAsset_RejectsInvalid(t *testing.T) {
	s := setupTestDB(t)

	bad := stockAsset("AAPL")
	bad.Quantity = decimal.Zero

	if err := s.CreateAsset(context.Background(), bad); !errors.Is(err, domain.ErrInvalidAsset) {
		t.Errorf("expected ErrInvalidAsset, got %v", err)
	}
}

func TestUpdateAssetPrice(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	asset := stockAsset("MSFT")
	if err := s.CreateAsset(ctx, asset); err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}

	price := decimal.NewFromFloat(333.25)
	if err := s.UpdateAssetPrice(ctx, asset.ID, price); err != nil {
		t.Fatalf("UpdateAssetPrice failed: %v", err)
	}

	fetched, err := s.GetAsset(ctx, asset.ID)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if !fetched.HasCurrentPrice() || !fetched.CurrentPrice.Decimal.Equal(price) {
		t.Errorf("expected current price %v, got %v", price, fetched.CurrentPrice)
	}
}

func TestUpdateAssetPrice_NotFound(t *testing.T) {
	s := setupTestDB(t)

	err := s.UpdateAssetPrice(context.Background(), 999, decimal.NewFromInt(10))
	if !errors.Is(err, domain.ErrAssetNotFound) {
		t.Errorf("expected ErrAssetNotFound, got %v", err)
	}
}

func TestUpdateAssetPrice_RejectsNonPositive(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	asset := stockAsset("TSLA")
	if err := s.CreateAsset(ctx, asset); err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}

	if err := s.UpdateAssetPrice(ctx, asset.ID, decimal.Zero); !errors.Is(err, domain.ErrInvalidAsset) {
		t.Errorf("expected ErrInvalidAsset, got %v", err)
	}
}

func TestDeleteAndCount(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	a := stockAsset("AAPL")
	b := stockAsset("GOOG")
	for _, asset := range []*domain.Asset{a, b} {
		if err := s.CreateAsset(ctx, asset); err != nil {
			t.Fatalf("CreateAsset failed: %v", err)
		}
	}

	count, err := s.CountAssets(ctx)
	if err != nil || count != 2 {
		t.Fatalf("expected 2 assets, got %d (err %v)", count, err)
	}

	if err := s.DeleteAsset(ctx, a.ID); err != nil {
		t.Fatalf("DeleteAsset failed: %v", err)
	}

	if err := s.DeleteAsset(ctx, a.ID); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Errorf("expected ErrAssetNotFound on double delete, got %v", err)
	}

	count, _ = s.CountAssets(ctx)
	if count != 1 {
		t.Errorf("expected 1 asset after delete, got %d", count)
	}

	all, err := s.GetAllAssets(ctx)
	if err != nil {
		t.Fatalf("GetAllAssets failed: %v", err)
	}
	if len(all) != 1 || all[0].Ticker != "GOOG" {
		t.Errorf("unexpected remaining assets: %+v", all)
	}
}
