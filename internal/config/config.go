package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/davidriba/f1-fantasy-league/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                       string
	ServiceName                  string
	ServiceVersion               string
	HTTPAddr                     string
	DBURL                        string
	DBDisablePreparedBinary      bool
	CacheEnabled                 bool
	CacheTTL                     time.Duration
	CORSAllowedOrigins           []string
	ReadTimeout                  time.Duration
	WriteTimeout                 time.Duration
	PprofEnabled                 bool
	PprofAddr                    string
	SwaggerEnabled               bool
	OpsToken                     string
	SeasonYear                   int
	PricerPoolSize               int
	MarketBasePrice              int64
	MarketPointsMultiplier       int64
	MarketPodiumBonus            int64
	MarketVictoryBonus           int64
	MarketBuyoutMultiplier       float64
	MarketSellRefundRate         float64
	MarketLockDays               int
	MarketMaxBuyoutsPerPair      int
	MarketMaxDrivers             int
	MarketMinLineup              int
	MarketInitialBudget          int64
	PaddockBaseURL               string
	PaddockIntrospectURL         string
	PaddockAdminKey              string
	PaddockTimeout               time.Duration
	UptraceEnabled               bool
	UptraceDSN                   string
	UptraceLogsEnabled           bool
	PyroscopeEnabled             bool
	PyroscopeServerAddress       string
	PyroscopeAppName             string
	PyroscopeAuthToken           string
	PyroscopeBasicAuthUser       string
	PyroscopeBasicAuthPassword   string
	PyroscopeUploadRate          time.Duration
	JolpicaEnabled               bool
	JolpicaBaseURL               string
	JolpicaTimeout               time.Duration
	JolpicaMaxRetries            int
	JolpicaPageLimit             int
	JolpicaCircuitEnabled        bool
	JolpicaCircuitFailureCount   int
	JolpicaCircuitOpenTimeout    time.Duration
	JolpicaCircuitHalfOpenMaxReq int
	LogLevel                     logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}

	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	seasonYear, err := getEnvAsInt("APP_SEASON_YEAR", time.Now().UTC().Year())
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_SEASON_YEAR: %w", err)
	}
	if seasonYear < 1950 {
		return Config{}, fmt.Errorf("APP_SEASON_YEAR must be >= 1950")
	}

	pricerPoolSize, err := getEnvAsInt("APP_PRICER_POOL_SIZE", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_PRICER_POOL_SIZE: %w", err)
	}
	if pricerPoolSize < 1 {
		return Config{}, fmt.Errorf("APP_PRICER_POOL_SIZE must be >= 1")
	}

	marketBasePrice, err := getEnvAsInt64("MARKET_BASE_PRICE", 10_000_000)
	if err != nil {
		return Config{}, fmt.Errorf("parse MARKET_BASE_PRICE: %w", err)
	}
	marketPointsMultiplier, err := getEnvAsInt64("MARKET_POINTS_MULTIPLIER", 10_000)
	if err != nil {
		return Config{}, fmt.Errorf("parse MARKET_POINTS_MULTIPLIER: %w", err)
	}
	marketPodiumBonus, err := getEnvAsInt64("MARKET_PODIUM_BONUS", 50_000)
	if err != nil {
		return Config{}, fmt.Errorf("parse MARKET_PODIUM_BONUS: %w", err)
	}
	marketVictoryBonus, err := getEnvAsInt64("MARKET_VICTORY_BONUS", 100_000)
	if err != nil {
		return Config{}, fmt.Errorf("parse MARKET_VICTORY_BONUS: %w", err)
	}
	marketBuyoutMultiplier, err := getEnvAsFloat("MARKET_BUYOUT_MULTIPLIER", 1.3)
	if err != nil {
		return Config{}, fmt.Errorf("parse MARKET_BUYOUT_MULTIPLIER: %w", err)
	}
	marketSellRefundRate, err := getEnvAsFloat("MARKET_SELL_REFUND_RATE", 0.8)
	if err != nil {
		return Config{}, fmt.Errorf("parse MARKET_SELL_REFUND_RATE: %w", err)
	}
	marketLockDays, err := getEnvAsInt("MARKET_LOCK_DAYS", 7)
	if err != nil {
		return Config{}, fmt.Errorf("parse MARKET_LOCK_DAYS: %w", err)
	}
	if marketLockDays < 1 {
		return Config{}, fmt.Errorf("MARKET_LOCK_DAYS must be >= 1")
	}
	marketMaxBuyoutsPerPair, err := getEnvAsInt("MARKET_MAX_BUYOUTS_PER_PAIR", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse MARKET_MAX_BUYOUTS_PER_PAIR: %w", err)
	}
	marketMaxDrivers, err := getEnvAsInt("MARKET_MAX_DRIVERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse MARKET_MAX_DRIVERS: %w", err)
	}
	marketMinLineup, err := getEnvAsInt("MARKET_MIN_LINEUP", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse MARKET_MIN_LINEUP: %w", err)
	}
	marketInitialBudget, err := getEnvAsInt64("MARKET_INITIAL_BUDGET", 100_000_000)
	if err != nil {
		return Config{}, fmt.Errorf("parse MARKET_INITIAL_BUDGET: %w", err)
	}

	jolpicaEnabled, err := strconv.ParseBool(getEnv("JOLPICA_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse JOLPICA_ENABLED: %w", err)
	}
	jolpicaTimeout, err := time.ParseDuration(getEnv("JOLPICA_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse JOLPICA_TIMEOUT: %w", err)
	}
	if jolpicaTimeout <= 0 {
		return Config{}, fmt.Errorf("JOLPICA_TIMEOUT must be > 0")
	}
	jolpicaMaxRetries, err := getEnvAsInt("JOLPICA_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse JOLPICA_MAX_RETRIES: %w", err)
	}
	if jolpicaMaxRetries < 0 {
		return Config{}, fmt.Errorf("JOLPICA_MAX_RETRIES must be >= 0")
	}
	jolpicaPageLimit, err := getEnvAsInt("JOLPICA_PAGE_LIMIT", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse JOLPICA_PAGE_LIMIT: %w", err)
	}
	if jolpicaPageLimit < 1 {
		return Config{}, fmt.Errorf("JOLPICA_PAGE_LIMIT must be >= 1")
	}
	jolpicaCircuitEnabled, err := strconv.ParseBool(getEnv("JOLPICA_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse JOLPICA_CIRCUIT_ENABLED: %w", err)
	}
	jolpicaCircuitFailureCount, err := getEnvAsInt("JOLPICA_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse JOLPICA_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if jolpicaCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("JOLPICA_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	jolpicaCircuitOpenTimeout, err := time.ParseDuration(getEnv("JOLPICA_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse JOLPICA_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if jolpicaCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("JOLPICA_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	jolpicaCircuitHalfOpenMaxReq, err := getEnvAsInt("JOLPICA_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse JOLPICA_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if jolpicaCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("JOLPICA_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cfg := Config{
		AppEnv:                       appEnv,
		ServiceName:                  getEnv("APP_SERVICE_NAME", "f1-fantasy-market-api"),
		ServiceVersion:               getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                     getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                        getEnv("DB_URL", ""),
		DBDisablePreparedBinary:      true,
		CORSAllowedOrigins:           splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		PprofEnabled:                 pprofEnabled,
		PprofAddr:                    pprofAddr,
		SwaggerEnabled:               swaggerEnabled,
		OpsToken:                     strings.TrimSpace(getEnv("OPS_TOKEN", "")),
		SeasonYear:                   seasonYear,
		PricerPoolSize:               pricerPoolSize,
		MarketBasePrice:              marketBasePrice,
		MarketPointsMultiplier:       marketPointsMultiplier,
		MarketPodiumBonus:            marketPodiumBonus,
		MarketVictoryBonus:           marketVictoryBonus,
		MarketBuyoutMultiplier:       marketBuyoutMultiplier,
		MarketSellRefundRate:         marketSellRefundRate,
		MarketLockDays:               marketLockDays,
		MarketMaxBuyoutsPerPair:      marketMaxBuyoutsPerPair,
		MarketMaxDrivers:             marketMaxDrivers,
		MarketMinLineup:              marketMinLineup,
		MarketInitialBudget:          marketInitialBudget,
		PaddockBaseURL:               getEnv("PADDOCK_BASE_URL", "http://localhost:8081"),
		PaddockIntrospectURL:         getEnv("PADDOCK_INTROSPECT_PATH", "/v1/auth/introspect"),
		PaddockAdminKey:              getEnv("PADDOCK_ADMIN_KEY", ""),
		UptraceEnabled:               uptraceEnabled,
		UptraceDSN:                   uptraceDSN,
		UptraceLogsEnabled:           uptraceLogsEnabled,
		PyroscopeEnabled:             pyroscopeEnabled,
		PyroscopeServerAddress:       pyroscopeServerAddress,
		PyroscopeAuthToken:           strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:       strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:   strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:          pyroscopeUploadRate,
		JolpicaEnabled:               jolpicaEnabled,
		JolpicaBaseURL:               strings.TrimSpace(getEnv("JOLPICA_BASE_URL", "https://api.jolpi.ca/ergast/f1")),
		JolpicaTimeout:               jolpicaTimeout,
		JolpicaMaxRetries:            jolpicaMaxRetries,
		JolpicaPageLimit:             jolpicaPageLimit,
		JolpicaCircuitEnabled:        jolpicaCircuitEnabled,
		JolpicaCircuitFailureCount:   jolpicaCircuitFailureCount,
		JolpicaCircuitOpenTimeout:    jolpicaCircuitOpenTimeout,
		JolpicaCircuitHalfOpenMaxReq: jolpicaCircuitHalfOpenMaxReq,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.JolpicaEnabled && cfg.JolpicaBaseURL == "" {
		return Config{}, fmt.Errorf("JOLPICA_BASE_URL is required when JOLPICA_ENABLED=true")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	cfg.DBDisablePreparedBinary = dbDisablePreparedBinary

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}
	cfg.CacheEnabled = cacheEnabled
	cfg.CacheTTL = cacheTTL

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	paddockTimeout, err := time.ParseDuration(getEnv("PADDOCK_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PADDOCK_TIMEOUT: %w", err)
	}
	if paddockTimeout <= 0 {
		return Config{}, fmt.Errorf("PADDOCK_TIMEOUT must be > 0")
	}

	cfg.ReadTimeout = readTimeout
	cfg.WriteTimeout = writeTimeout
	cfg.PaddockTimeout = paddockTimeout
	cfg.LogLevel = parseLogLevel(getEnv("APP_LOG_LEVEL", "info"))

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
