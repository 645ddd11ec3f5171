package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestLoad_JolpicaConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("JOLPICA_ENABLED", "true")
	t.Setenv("JOLPICA_TIMEOUT", "7s")
	t.Setenv("JOLPICA_MAX_RETRIES", "2")
	t.Setenv("JOLPICA_PAGE_LIMIT", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.JolpicaEnabled {
		t.Fatalf("expected JolpicaEnabled=true")
	}
	if cfg.JolpicaTimeout != 7*time.Second {
		t.Fatalf("unexpected JolpicaTimeout: %s", cfg.JolpicaTimeout)
	}
	if cfg.JolpicaMaxRetries != 2 {
		t.Fatalf("unexpected JolpicaMaxRetries: %d", cfg.JolpicaMaxRetries)
	}
	if cfg.JolpicaPageLimit != 50 {
		t.Fatalf("unexpected JolpicaPageLimit: %d", cfg.JolpicaPageLimit)
	}
	if cfg.JolpicaBaseURL == "" {
		t.Fatalf("expected default JolpicaBaseURL")
	}
}

func TestLoad_MarketKnobOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("MARKET_BUYOUT_MULTIPLIER", "1.5")
	t.Setenv("MARKET_LOCK_DAYS", "3")
	t.Setenv("MARKET_INITIAL_BUDGET", "250000000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MarketBuyoutMultiplier != 1.5 {
		t.Fatalf("unexpected MarketBuyoutMultiplier: %v", cfg.MarketBuyoutMultiplier)
	}
	if cfg.MarketLockDays != 3 {
		t.Fatalf("unexpected MarketLockDays: %d", cfg.MarketLockDays)
	}
	if cfg.MarketInitialBudget != 250_000_000 {
		t.Fatalf("unexpected MarketInitialBudget: %d", cfg.MarketInitialBudget)
	}
	if cfg.MarketBasePrice != 10_000_000 {
		t.Fatalf("unexpected default MarketBasePrice: %d", cfg.MarketBasePrice)
	}
}

func TestLoad_SeasonYearValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SEASON_YEAR", "1886")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for APP_SEASON_YEAR before 1950")
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_CacheTTLValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("CACHE_TTL", "0s")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-positive CACHE_TTL")
	}
}
