package infra

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	// MinRefreshIntervalMS is the floor for the refresh interval. It applies
	// uniformly to the configured default and to runtime interval changes.
	MinRefreshIntervalMS = 10000

	// DefaultRefreshIntervalMS is used when the config omits an interval.
	DefaultRefreshIntervalMS = 15000

	// DefaultLookupTimeoutSec bounds each upstream price call.
	DefaultLookupTimeoutSec = 10
)

// Config holds all application settings. Secrets may be overridden through
// environment variables (a local .env file is honored) after loading.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Pricing struct {
		StockURL         string          `yaml:"stock_url"`
		CryptoURL        string          `yaml:"crypto_url"`
		StockAPIKey      string          `yaml:"stock_api_key"`
		CryptoAPIKey     string          `yaml:"crypto_api_key"`
		LookupTimeoutSec int             `yaml:"lookup_timeout_sec"`
		DefaultPrice     decimal.Decimal `yaml:"default_price"`
	} `yaml:"pricing"`

	Refresh struct {
		IntervalMS           int64 `yaml:"interval_ms"`
		MaxConcurrentLookups int   `yaml:"max_concurrent_lookups"`
	} `yaml:"refresh"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	UI struct {
		LogoSync bool `yaml:"logo_sync"`
	} `yaml:"ui"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Refresh.IntervalMS == 0 {
		c.Refresh.IntervalMS = DefaultRefreshIntervalMS
	}
	if c.Pricing.LookupTimeoutSec == 0 {
		c.Pricing.LookupTimeoutSec = DefaultLookupTimeoutSec
	}
	if c.Refresh.MaxConcurrentLookups == 0 {
		c.Refresh.MaxConcurrentLookups = 8
	}
	if c.Pricing.DefaultPrice.IsZero() {
		c.Pricing.DefaultPrice = decimal.NewFromInt(1)
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/portfolio.db"
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Pricing.StockURL == "" || (!hasPrefix(c.Pricing.StockURL, "http://") && !hasPrefix(c.Pricing.StockURL, "https://")) {
		return fmt.Errorf("invalid stock quote URL: %s", c.Pricing.StockURL)
	}
	if c.Pricing.CryptoURL == "" || (!hasPrefix(c.Pricing.CryptoURL, "http://") && !hasPrefix(c.Pricing.CryptoURL, "https://")) {
		return fmt.Errorf("invalid crypto quote URL: %s", c.Pricing.CryptoURL)
	}
	if c.Refresh.IntervalMS < MinRefreshIntervalMS {
		return fmt.Errorf("refresh interval %dms is below the %dms floor", c.Refresh.IntervalMS, MinRefreshIntervalMS)
	}
	if !c.Pricing.DefaultPrice.IsPositive() {
		return fmt.Errorf("default price must be positive")
	}
	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv는 환경 변수가 존재할 경우 설정 값을 덮어씁니다.
func overrideWithEnv(cfg *Config) {
	_ = godotenv.Load()

	if key := os.Getenv("PORTFOLIO_STOCK_API_KEY"); key != "" {
		cfg.Pricing.StockAPIKey = key
	}
	if key := os.Getenv("PORTFOLIO_CRYPTO_API_KEY"); key != "" {
		cfg.Pricing.CryptoAPIKey = key
	}
	if path := os.Getenv("PORTFOLIO_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
}
