package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	ProviderYahoo        = "yahoo"
	ProviderAlphaVantage = "alphavantage"
	ProviderPostgres     = "postgres"
)

type Config struct {
	Env            string        `env:"APP_ENV" env-default:"prod"`
	Provider       string        `env:"PRICE_PROVIDER" env-default:"yahoo"`
	RollingWindow  int           `env:"ZSCORE_ROLLING_WINDOW" env-default:"30"`
	Concurrency    int           `env:"FETCH_CONCURRENCY" env-default:"4"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" env-default:"30s"`

	Yahoo        YahooConfig
	AlphaVantage AlphaVantageConfig
	Db           DbConfig
}

type YahooConfig struct {
	Host              string `env:"YAHOO_HOST" env-default:"query1.finance.yahoo.com"`
	RequestsPerSecond int    `env:"YAHOO_REQUESTS_PER_SECOND" env-default:"2"`
}

type AlphaVantageConfig struct {
	Host              string `env:"ALPHAVANTAGE_HOST" env-default:"www.alphavantage.co"`
	ApiKey            string `env:"ALPHAVANTAGE_API_KEY"`
	Adjusted          bool   `env:"ALPHAVANTAGE_ADJUSTED" env-default:"false"`
	RequestsPerMinute int    `env:"ALPHAVANTAGE_REQUESTS_PER_MINUTE" env-default:"5"`
}

type DbConfig struct {
	Url      string `env:"DATABASE_URL"`
	MaxConns int32  `env:"DATABASE_MAX_CONNS" env-default:"4"`
}

// Load reads .env when present, then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not loaded", "error", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]string{EnvLocal, EnvDev, EnvProd}, c.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of %s, %s, %s, got %q", EnvLocal, EnvDev, EnvProd, c.Env))
	}

	switch c.Provider {
	case ProviderYahoo:
	case ProviderAlphaVantage:
		if c.AlphaVantage.ApiKey == "" {
			errs = append(errs, errors.New("ALPHAVANTAGE_API_KEY is required for the alphavantage provider"))
		}
	case ProviderPostgres:
		if c.Db.Url == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown PRICE_PROVIDER %q", c.Provider))
	}

	if c.RollingWindow < 1 {
		errs = append(errs, fmt.Errorf("ZSCORE_ROLLING_WINDOW must be at least 1, got %d", c.RollingWindow))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", c.Concurrency))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
