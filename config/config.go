package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tradeJournal/internal/accounting/descaling"
	"tradeJournal/internal/adapters/logger"
)

// Trade sources selectable with TRADE_SOURCE.
const (
	SourceSupabase = "supabase"
	SourceREST     = "rest"
	SourceSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	// Trade source
	Source      string // supabase, rest or sqlite
	UserID      string
	DatabaseURL string // Postgres DSN of the hosted row store
	RESTBaseURL string
	RESTToken   string
	HTTPTimeout time.Duration
	DBPath      string // Local journal file

	// Accounting
	StrictNormalization bool    // Reject the whole batch on a malformed record
	PrecisionLimit      float64 // Prices at or above this are scaled on write
	InstrumentsFile     string  // YAML instrument conventions, optional

	// Mark-to-market
	MarkToMarket bool
	APIKey       string
	SecretKey    string
	IsTestnet    bool

	// Logging
	LogLevel  logger.LogLevel
	LogFormat string // json or console
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	cfg.Source = strings.ToLower(getEnv("TRADE_SOURCE", SourceSQLite))
	cfg.UserID = getEnv("USER_ID", "")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	cfg.RESTBaseURL = getEnv("REST_BASE_URL", "")
	cfg.RESTToken = getEnv("REST_API_TOKEN", "")
	cfg.DBPath = getEnv("DB_PATH", "./data/journal.db")

	switch cfg.Source {
	case SourceSupabase:
		if cfg.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL must be set when TRADE_SOURCE=supabase")
		}
	case SourceREST:
		if cfg.RESTBaseURL == "" {
			errs = append(errs, "REST_BASE_URL must be set when TRADE_SOURCE=rest")
		}
	case SourceSQLite:
		if cfg.DBPath == "" {
			errs = append(errs, "DB_PATH must be set when TRADE_SOURCE=sqlite")
		}
		if cfg.UserID == "" {
			cfg.UserID = "local" // single-user journal file
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown TRADE_SOURCE %q (want supabase, rest or sqlite)", cfg.Source))
	}
	if cfg.UserID == "" {
		errs = append(errs, "USER_ID must be set")
	}

	timeoutSeconds, err := getEnvAsIntRequired("HTTP_TIMEOUT_SECONDS", 15)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid HTTP_TIMEOUT_SECONDS: %v", err))
	} else if timeoutSeconds <= 0 {
		errs = append(errs, "HTTP_TIMEOUT_SECONDS must be positive")
	}
	cfg.HTTPTimeout = time.Duration(timeoutSeconds) * time.Second

	cfg.StrictNormalization = getEnvAsBool("STRICT_NORMALIZATION", false)
	cfg.PrecisionLimit, err = getEnvAsFloatRequired("PRICE_PRECISION_LIMIT", descaling.DefaultPrecisionLimit)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid PRICE_PRECISION_LIMIT: %v", err))
	} else if cfg.PrecisionLimit <= 1 {
		errs = append(errs, "PRICE_PRECISION_LIMIT must be greater than 1")
	}
	cfg.InstrumentsFile = getEnv("INSTRUMENTS_FILE", "")

	// Binance is only used for public mark prices, so keys stay optional
	cfg.MarkToMarket = getEnvAsBool("MARK_TO_MARKET", false)
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "json"))
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		errs = append(errs, "LOG_FORMAT must be json or console")
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
