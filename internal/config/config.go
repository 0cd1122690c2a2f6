package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"

	ClockSourceLocal  = "local"
	ClockSourceServer = "server"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DBUrl       string `env:"DB_URL"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"tutoring.db"`
	JWTSecret   string `env:"JWT_SECRET,required,notEmpty"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`
	EnableDocs  bool   `env:"ENABLE_API_DOCS" envDefault:"false"`

	RequiredDurationMinutes int           `env:"REQUIRED_DURATION_MINUTES" envDefault:"45"`
	PaymentAmount           int64         `env:"PAYMENT_AMOUNT" envDefault:"50000"`
	ReconcileInterval       time.Duration `env:"PAYOUT_RECONCILE_INTERVAL" envDefault:"1m"`

	// ClockSource picks where transition timestamps come from: the store's
	// clock ("server") or the process clock ("local").
	ClockSource string `env:"CLOCK_SOURCE" envDefault:"server"`

	OtelEndpoint string `env:"OTEL_ENDPOINT"`
	OtelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.AppEnv = normalizeEnv(c.AppEnv)
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.ClockSource = strings.ToLower(strings.TrimSpace(c.ClockSource))

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if strings.TrimSpace(c.DBUrl) == "" {
			return fmt.Errorf("DB_URL is required when STORE_DRIVER is postgres")
		}
	case StoreDriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER is sqlite")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres or sqlite, got %q", c.StoreDriver)
	}

	switch c.ClockSource {
	case ClockSourceLocal, ClockSourceServer:
	default:
		return fmt.Errorf("CLOCK_SOURCE must be local or server, got %q", c.ClockSource)
	}

	if c.RequiredDurationMinutes <= 0 {
		return fmt.Errorf("REQUIRED_DURATION_MINUTES must be greater than 0")
	}
	if c.PaymentAmount <= 0 {
		return fmt.Errorf("PAYMENT_AMOUNT must be greater than 0")
	}
	return nil
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) DocsEnabled() bool {
	return c != nil && c.EnableDocs && c.AppEnv == "development"
}
