package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabrielmellace1/portfolioManager-sub000/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists portfolio assets in SQLite. It implements
// domain.AssetStore for the refresh cycle and carries the CRUD operations
// the portfolio REST layer uses.
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance at dbPath
func NewStorage(dbPath string) (*Storage, error) {
	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.Asset{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// GetAllAssets retrieves every tracked asset
func (s *Storage) GetAllAssets(ctx context.Context) ([]domain.Asset, error) {
	var assets []domain.Asset
	err := s.db.WithContext(ctx).Order("id").Find(&assets).Error
	return assets, err
}

// GetAsset retrieves a single asset by id
func (s *Storage) GetAsset(ctx context.Context, id uint) (*domain.Asset, error) {
	var asset domain.Asset
	err := s.db.WithContext(ctx).First(&asset, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAssetNotFound
	}
	return &asset, err
}

// CreateAsset validates and persists a new asset
func (s *Storage) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	if err := asset.Validate(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(asset).Error
}

// UpdateAssetPrice sets the current price for one asset.
// The current price is only ever mutated here: by the refresh cycle or an
// explicit user edit through the REST layer.
func (s *Storage) UpdateAssetPrice(ctx context.Context, id uint, price decimal.Decimal) error {
	if !price.IsPositive() {
		return fmt.Errorf("%w: current price must be positive, got %s", domain.ErrInvalidAsset, price)
	}

	res := s.db.WithContext(ctx).
		Model(&domain.Asset{}).
		Where("id = ?", id).
		Update("current_price", decimal.NewNullDecimal(price))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAssetNotFound
	}
	return nil
}

// DeleteAsset removes an asset
func (s *Storage) DeleteAsset(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&domain.Asset{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAssetNotFound
	}
	return nil
}

// CountAssets returns the number of tracked assets
func (s *Storage) CountAssets(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Asset{}).Count(&count).Error
	return count, err
}
