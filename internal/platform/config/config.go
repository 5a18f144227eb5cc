package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Currency conversion core
	BaseCurrency        string
	SupportedCurrencies []string
	RateAPIBaseURL      string
	RateAPITimeout      time.Duration

	// Exchange rate cache
	CacheCapacity        int
	CacheCurrentTTL      time.Duration
	CacheHistoricalTTL   time.Duration
	CacheCleanupInterval time.Duration

	// Backfill and freshness
	MigrationBatchSize int
	FreshnessTimeout   time.Duration

	// Rate limiting
	RateLimitFormatted string

	// Analytics
	PosthogAPIKey string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("BASE_CURRENCY", "EUR")
	viper.SetDefault("SUPPORTED_CURRENCIES", "EUR,USD,GBP,CHF,ZAR")
	viper.SetDefault("RATE_API_BASE_URL", "https://api.frankfurter.dev/v1")
	viper.SetDefault("RATE_API_TIMEOUT", "10s")
	viper.SetDefault("CACHE_CAPACITY", 1000)
	viper.SetDefault("CACHE_CURRENT_TTL", "1h")
	viper.SetDefault("CACHE_HISTORICAL_TTL", "24h")
	viper.SetDefault("CACHE_CLEANUP_INTERVAL", "5m")
	viper.SetDefault("MIGRATION_BATCH_SIZE", 500)
	viper.SetDefault("FRESHNESS_TIMEOUT", "5s")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("POSTHOG_API_KEY", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.BaseCurrency = strings.ToUpper(viper.GetString("BASE_CURRENCY"))
	if len(cfg.BaseCurrency) != 3 {
		log.Printf("Warning: BASE_CURRENCY ('%s') is not a 3-letter code. Defaulting to EUR.\n", cfg.BaseCurrency)
		cfg.BaseCurrency = "EUR"
	}

	cfg.SupportedCurrencies = parseCurrencyList(viper.GetString("SUPPORTED_CURRENCIES"))
	if len(cfg.SupportedCurrencies) == 0 {
		log.Println("Warning: SUPPORTED_CURRENCIES is empty. Backfill and refresh will have nothing to do.")
	}

	cfg.RateAPIBaseURL = viper.GetString("RATE_API_BASE_URL")
	cfg.RateAPITimeout = durationOrDefault("RATE_API_TIMEOUT", 10*time.Second)

	cfg.CacheCapacity = viper.GetInt("CACHE_CAPACITY")
	cfg.CacheCurrentTTL = durationOrDefault("CACHE_CURRENT_TTL", time.Hour)
	cfg.CacheHistoricalTTL = durationOrDefault("CACHE_HISTORICAL_TTL", 24*time.Hour)
	cfg.CacheCleanupInterval = durationOrDefault("CACHE_CLEANUP_INTERVAL", 5*time.Minute)

	cfg.MigrationBatchSize = viper.GetInt("MIGRATION_BATCH_SIZE")
	cfg.FreshnessTimeout = durationOrDefault("FRESHNESS_TIMEOUT", 5*time.Second)

	cfg.RateLimitFormatted = viper.GetString("RATE_LIMIT")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")

	return cfg, nil
}

// parseCurrencyList splits a comma-separated currency list, trimming blanks.
// Codes are upper-cased here because the configuration layer owns currency
// validation; the core treats them as opaque strings.
func parseCurrencyList(raw string) []string {
	var currencies []string
	for _, code := range strings.Split(raw, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			currencies = append(currencies, code)
		}
	}
	return currencies
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
