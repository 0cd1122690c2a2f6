package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_URL", "postgres://localhost/tutoring")
	t.Setenv("APP_ENV", "Dev")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8080" || cfg.StoreDriver != StoreDriverPostgres {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.AppEnv != "development" {
		t.Fatalf("expected normalized env, got %q", cfg.AppEnv)
	}
	if cfg.RequiredDurationMinutes != 45 || cfg.PaymentAmount != 50000 {
		t.Fatalf("unexpected payment rules %d/%d", cfg.RequiredDurationMinutes, cfg.PaymentAmount)
	}
	if cfg.ReconcileInterval != time.Minute || cfg.ClockSource != ClockSourceServer {
		t.Fatalf("unexpected reconcile settings %+v", cfg)
	}
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_URL", "postgres://localhost/tutoring")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoadConfigSQLiteDoesNotNeedDBURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_URL", "")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/tutoring.db")
	t.Setenv("CLOCK_SOURCE", "local")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.StoreDriver != StoreDriverSQLite || cfg.ClockSource != ClockSourceLocal {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":  {"STORE_DRIVER": "mongo"},
		"postgres no url": {"DB_URL": ""},
		"bad clock":       {"CLOCK_SOURCE": "ntp"},
		"zero amount":     {"PAYMENT_AMOUNT": "0"},
		"zero duration":   {"REQUIRED_DURATION_MINUTES": "0"},
	}

	for name, overrides := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			t.Setenv("DB_URL", "postgres://localhost/tutoring")
			t.Setenv("STORE_DRIVER", "postgres")
			for key, value := range overrides {
				t.Setenv(key, value)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error for %v", overrides)
			}
		})
	}
}

func TestDocsEnabledOnlyInDevelopment(t *testing.T) {
	if (&Config{AppEnv: "production", EnableDocs: true}).DocsEnabled() {
		t.Fatal("docs must stay off outside development")
	}
	if !(&Config{AppEnv: "development", EnableDocs: true}).DocsEnabled() {
		t.Fatal("docs should be on in development when enabled")
	}
}
