package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"tradeJournal/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Database
	DBPath string

	// Logging
	LogLevel  logger.LogLevel // Use the LogLevel type from the logger adapter
	LogFormat string          // json, console or pretty

	// Reporting
	BaseCurrency  string // Display only, no FX conversion is performed
	DefaultPeriod string // 1M, 3M, 6M, 1Y, YTD or ALL
	OutputFormat  string // table, json or yaml
	RMultipleSort string // avgR, count or winRate
	GroupSort     string // count, winRate or totalPnl
	SortOrder     string // asc or desc

	// Dashboard sections computed concurrently
	DashboardWorkers int

	// Open-book limits, zero disables
	MaxOpenPositions int
	MaxOpenRisk      float64
	MaxPositionRisk  float64

	// Import/export
	TagSeparator string
}

var (
	validPeriods = []string{"1M", "3M", "6M", "1Y", "YTD", "ALL"}
	validOutputs = []string{"table", "json", "yaml"}
	validRSorts  = []string{"avgR", "count", "winRate"}
	validGSorts  = []string{"count", "winRate", "totalPnl"}
	validFormats = []string{"json", "console", "pretty"}
	validOrders  = []string{"asc", "desc"}
)

// LoadConfig loads configuration from environment variables. When files are
// given they are loaded first and must exist; otherwise an optional .env in
// the working directory is used.
func LoadConfig(files ...string) (*Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	} else {
		// Don't fail if .env doesn't exist (allow pure env vars)
		_ = godotenv.Load()
	}

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/journal.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "json"))
	if !oneOf(cfg.LogFormat, validFormats) {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be one of %v", validFormats))
	}

	// Reporting
	cfg.BaseCurrency = strings.ToUpper(getEnv("BASE_CURRENCY", "GBP"))
	if len(cfg.BaseCurrency) != 3 {
		errs = append(errs, "BASE_CURRENCY must be a three letter currency code")
	}

	cfg.DefaultPeriod = strings.ToUpper(getEnv("DEFAULT_PERIOD", "ALL"))
	if !oneOf(cfg.DefaultPeriod, validPeriods) {
		errs = append(errs, fmt.Sprintf("DEFAULT_PERIOD must be one of %v", validPeriods))
	}

	cfg.OutputFormat = strings.ToLower(getEnv("OUTPUT_FORMAT", "table"))
	if !oneOf(cfg.OutputFormat, validOutputs) {
		errs = append(errs, fmt.Sprintf("OUTPUT_FORMAT must be one of %v", validOutputs))
	}

	cfg.RMultipleSort = getEnv("RMULTIPLE_SORT", "avgR")
	if !oneOf(cfg.RMultipleSort, validRSorts) {
		errs = append(errs, fmt.Sprintf("RMULTIPLE_SORT must be one of %v", validRSorts))
	}

	cfg.GroupSort = getEnv("GROUP_SORT", "count")
	if !oneOf(cfg.GroupSort, validGSorts) {
		errs = append(errs, fmt.Sprintf("GROUP_SORT must be one of %v", validGSorts))
	}

	cfg.SortOrder = strings.ToLower(getEnv("SORT_ORDER", "desc"))
	if !oneOf(cfg.SortOrder, validOrders) {
		errs = append(errs, "SORT_ORDER must be asc or desc")
	}

	cfg.DashboardWorkers = getEnvAsInt("DASHBOARD_WORKERS", 4)
	if cfg.DashboardWorkers <= 0 {
		errs = append(errs, "DASHBOARD_WORKERS must be positive")
	}

	// Risk limits
	cfg.MaxOpenPositions = getEnvAsInt("MAX_OPEN_POSITIONS", 0)
	if cfg.MaxOpenPositions < 0 {
		errs = append(errs, "MAX_OPEN_POSITIONS cannot be negative")
	}
	cfg.MaxOpenRisk, err = getEnvAsFloatRequired("MAX_OPEN_RISK", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_OPEN_RISK: %v", err))
	} else if cfg.MaxOpenRisk < 0 {
		errs = append(errs, "MAX_OPEN_RISK cannot be negative")
	}
	cfg.MaxPositionRisk, err = getEnvAsFloatRequired("MAX_POSITION_RISK", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_POSITION_RISK: %v", err))
	} else if cfg.MaxPositionRisk < 0 {
		errs = append(errs, "MAX_POSITION_RISK cannot be negative")
	}

	// Import/export
	cfg.TagSeparator = getEnv("TAG_SEPARATOR", ";")
	if cfg.TagSeparator == "," {
		errs = append(errs, "TAG_SEPARATOR cannot be a comma")
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		DBPath:           "./data/journal.db",
		LogLevel:         logger.LevelInfo,
		LogFormat:        "json",
		BaseCurrency:     "GBP",
		DefaultPeriod:    "ALL",
		OutputFormat:     "table",
		RMultipleSort:    "avgR",
		GroupSort:        "count",
		SortOrder:        "desc",
		DashboardWorkers: 4,
		TagSeparator:     ";",
	}
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
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

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
