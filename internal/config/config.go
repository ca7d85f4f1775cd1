package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

const defaultJWTSecret = "change-me-in-production"

// Config holds the whole application configuration.
// It is populated from environment variables (and .env in development, see cmd/api).
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Shop     ShopConfig
}

type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"Grocery API"`
	Environment string `env:"APP_ENV" envDefault:"development"` // development, staging, production
	Port        string `env:"APP_PORT" envDefault:"8080"`
	Version     string `env:"APP_VERSION" envDefault:"1.0.0"`
}

type DatabaseConfig struct {
	Host              string        `env:"DB_HOST" envDefault:"localhost"`
	Port              int           `env:"DB_PORT" envDefault:"5432"`
	User              string        `env:"DB_USER" envDefault:"grocery"`
	Password          string        `env:"DB_PASSWORD" envDefault:"secret"`
	Name              string        `env:"DB_NAME" envDefault:"grocery_dev"`
	SSLMode           string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns          int32         `env:"DB_MAX_CONNECTIONS" envDefault:"25"`
	MinConns          int32         `env:"DB_MIN_CONNECTIONS" envDefault:"5"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"5m"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"1m"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	MaxRetries        int           `env:"DB_MAX_RETRIES" envDefault:"5"`
	RetryDelay        time.Duration `env:"DB_RETRY_DELAY" envDefault:"1s"`
	ConnectTimeout    time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"10s"`
	AutoMigrate       bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

type RedisConfig struct {
	Host     string        `env:"REDIS_HOST" envDefault:"localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_CATALOG_TTL" envDefault:"10m"`
}

type JWTConfig struct {
	Secret             string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	AccessTokenExpiry  time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"24h"`
	RefreshTokenExpiry time.Duration `env:"JWT_REFRESH_EXPIRY" envDefault:"72h"`
}

// ShopConfig carries storefront knobs.
type ShopConfig struct {
	// DeliveryCost is a decimal string, e.g. "5.99".
	DeliveryCost         string `env:"SHOP_DELIVERY_COST" envDefault:"5.99"`
	Currency             string `env:"SHOP_CURRENCY" envDefault:"USD"`
	SessionCookieSecure  bool   `env:"SHOP_SESSION_COOKIE_SECURE" envDefault:"false"`
	SessionCookieDomain  string `env:"SHOP_SESSION_COOKIE_DOMAIN"`
	SessionCookieMaxDays int    `env:"SHOP_SESSION_COOKIE_MAX_DAYS" envDefault:"30"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the values we cannot run with.
func (c *Config) Validate() error {
	if c.App.Port == "" {
		return errors.New("APP_PORT is required")
	}

	if _, err := c.Shop.DeliveryCostDecimal(); err != nil {
		return err
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNECTIONS (%d) must not exceed DB_MAX_CONNECTIONS (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}

	if c.IsProduction() {
		if c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return errors.New("DB_PASSWORD is required in production")
		}
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// DeliveryCostDecimal parses the configured delivery cost.
func (s ShopConfig) DeliveryCostDecimal() (decimal.Decimal, error) {
	cost, err := decimal.NewFromString(s.DeliveryCost)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid SHOP_DELIVERY_COST %q: %w", s.DeliveryCost, err)
	}
	if cost.IsNegative() {
		return decimal.Zero, fmt.Errorf("SHOP_DELIVERY_COST must not be negative, got %s", s.DeliveryCost)
	}
	return cost, nil
}

// DatabaseURL builds the URL golang-migrate expects.
func (d DatabaseConfig) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}
