package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	FundAPI   FundAPIConfig   `yaml:"fundApi"`
	Fund      FundConfig      `yaml:"fund"`
	BaseAsset AssetConfig     `yaml:"baseAsset"`
	Assets    []AssetConfig   `yaml:"assets"`
	Cache     CacheConfig     `yaml:"cache"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds the server-specific configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// FundAPIConfig holds the configuration for the upstream fund API client.
// APIKey is never read from YAML; it comes from the FUND_API_KEY env var.
type FundAPIConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"-"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	RateLimitPerSecond   int    `yaml:"rateLimitPerSecond"`
	RateBurst            int    `yaml:"rateBurst"`
}

// FundConfig holds the default fund and user identities used when a request
// does not carry its own.
type FundConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	UserID   string `yaml:"userId"`
	UserKey  string `yaml:"userKey"`
	PayerKey string `yaml:"payerKey"`
}

// AssetConfig describes a tracked token mint.
type AssetConfig struct {
	Mint     string `yaml:"mint"`
	Symbol   string `yaml:"symbol"`
	Decimals int32  `yaml:"decimals"`
}

// CacheConfig holds configuration for the dashboard resource cache.
type CacheConfig struct {
	DefaultExpirationMinutes int `yaml:"defaultExpirationMinutes"`
	CleanupIntervalMinutes   int `yaml:"cleanupIntervalMinutes"`
}

// DashboardConfig holds dashboard orchestration settings.
type DashboardConfig struct {
	// SettleDelayMillis is how long to wait after a submitted transaction
	// before the follow-up refetch, giving upstream state time to settle.
	SettleDelayMillis int64 `yaml:"settleDelayMillis"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if cfg.FundAPI.APIKey == "" {
		return nil, fmt.Errorf("FUND_API_KEY is not configured")
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FUND_API_KEY"); v != "" {
		cfg.FundAPI.APIKey = v
	}
	if v := os.Getenv("FUND_API_BASE_URL"); v != "" {
		cfg.FundAPI.BaseURL = v
	}
	if v := os.Getenv("FUND_API_TIMEOUT_MS"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			logrus.Warnf("FUND_API_TIMEOUT_MS must be a valid number, got %q; ignoring", v)
		} else {
			cfg.FundAPI.RequestTimeoutMillis = ms
		}
	}
	if v := os.Getenv("DASHBOARD_FUND_ID"); v != "" {
		cfg.Fund.ID = v
	}
	if v := os.Getenv("DASHBOARD_USER_ID"); v != "" {
		cfg.Fund.UserID = v
	}
	if v := os.Getenv("DASHBOARD_USER_KEY"); v != "" {
		cfg.Fund.UserKey = v
	}
	if v := os.Getenv("DASHBOARD_PAYER_KEY"); v != "" {
		cfg.Fund.PayerKey = v
	}

	// Key fallbacks mirror how the wallet side resolves identities: the
	// user key defaults to the user id, the payer key to the user key.
	if cfg.Fund.UserKey == "" {
		cfg.Fund.UserKey = cfg.Fund.UserID
	}
	if cfg.Fund.PayerKey == "" {
		cfg.Fund.PayerKey = cfg.Fund.UserKey
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.FundAPI.RequestTimeoutMillis == 0 {
		cfg.FundAPI.RequestTimeoutMillis = 10000
		logrus.Infof("FundAPI.RequestTimeoutMillis not set, defaulting to %d ms", cfg.FundAPI.RequestTimeoutMillis)
	}
	if cfg.FundAPI.RateLimitPerSecond == 0 {
		cfg.FundAPI.RateLimitPerSecond = 10
	}
	if cfg.FundAPI.RateBurst == 0 {
		cfg.FundAPI.RateBurst = cfg.FundAPI.RateLimitPerSecond
	}
	if cfg.BaseAsset.Mint == "" {
		cfg.BaseAsset = AssetConfig{
			Mint:     "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			Symbol:   "USDC",
			Decimals: 6,
		}
		logrus.Infof("BaseAsset not set, defaulting to %s", cfg.BaseAsset.Symbol)
	}
	if len(cfg.Assets) == 0 {
		cfg.Assets = []AssetConfig{cfg.BaseAsset}
	}
	if cfg.Cache.DefaultExpirationMinutes == 0 {
		cfg.Cache.DefaultExpirationMinutes = 5
	}
	if cfg.Cache.CleanupIntervalMinutes == 0 {
		cfg.Cache.CleanupIntervalMinutes = 10
	}
	if cfg.Dashboard.SettleDelayMillis == 0 {
		cfg.Dashboard.SettleDelayMillis = 4000
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
