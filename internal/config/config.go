package config

import (
	"os"
	"strconv"
	"strings"

	"nocturna/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Data   DataConfig
	Engine EngineConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DataConfig holds data ingest settings
type DataConfig struct {
	InputFile  string // CSV or XLSX; dispatched on extension
	SheetName  string // XLSX sheet, first sheet when empty
	DateColumn string
}

// EngineConfig holds the default analysis parameters. Every API request can
// override them per call; these are the values used when a request omits a
// parameter.
type EngineConfig struct {
	Alpha               float64 // significance level for all intervals
	RollingWindows      []int   // calendar-day window lengths
	ComplianceThreshold float64 // values ≥ threshold count as compliant
	BreakpointMinDelta  float64
	ChangePenalty       float64 // per-segment penalty for regime detection
	SeasonLength        int
	MaxLag              int
	LoessAlpha          float64 // neighbor fraction for the smoother
	QuantileNeighbors   int     // neighbor count for running quantiles
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: loadServerConfig(),
		Data:   loadDataConfig(),
		Engine: loadEngineConfig(),
	}
	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func loadDataConfig() DataConfig {
	return DataConfig{
		InputFile:  getEnvOrDefault("INPUT_FILE", ""),
		SheetName:  getEnvOrDefault("SHEET_NAME", ""),
		DateColumn: getEnvOrDefault("DATE_COLUMN", "date"),
	}
}

func loadEngineConfig() EngineConfig {
	return EngineConfig{
		Alpha:               getEnvFloatOrDefault("ALPHA", 0.05),
		RollingWindows:      getEnvIntListOrDefault("ROLLING_WINDOWS", []int{7, 30}),
		ComplianceThreshold: getEnvFloatOrDefault("COMPLIANCE_THRESHOLD", 4.0),
		BreakpointMinDelta:  getEnvFloatOrDefault("BREAKPOINT_MIN_DELTA", 0.25),
		ChangePenalty:       getEnvFloatOrDefault("CHANGE_PENALTY", 8.0),
		SeasonLength:        getEnvIntOrDefault("SEASON_LENGTH", 7),
		MaxLag:              getEnvIntOrDefault("MAX_LAG", 30),
		LoessAlpha:          getEnvFloatOrDefault("LOESS_ALPHA", 0.3),
		QuantileNeighbors:   getEnvIntOrDefault("QUANTILE_NEIGHBORS", 30),
	}
}

func validateConfig(config *Config) error {
	e := config.Engine
	if !(e.Alpha > 0 && e.Alpha < 1) {
		return errors.ConfigInvalid("ALPHA must be in (0, 1)")
	}
	if len(e.RollingWindows) == 0 {
		return errors.ConfigInvalid("ROLLING_WINDOWS must name at least one window")
	}
	for _, w := range e.RollingWindows {
		if w < 1 {
			return errors.ConfigInvalid("rolling windows must be at least 1 day")
		}
	}
	if e.SeasonLength < 2 {
		return errors.ConfigInvalid("SEASON_LENGTH must be at least 2")
	}
	if !(e.LoessAlpha > 0 && e.LoessAlpha <= 1) {
		return errors.ConfigInvalid("LOESS_ALPHA must be in (0, 1]")
	}
	if e.QuantileNeighbors < 1 {
		return errors.ConfigInvalid("QUANTILE_NEIGHBORS must be at least 1")
	}
	if e.MaxLag < 1 {
		return errors.ConfigInvalid("MAX_LAG must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvIntListOrDefault parses a comma-separated list of ints, e.g.
// ROLLING_WINDOWS=7,30,90. A malformed list falls back whole.
func getEnvIntListOrDefault(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return defaultValue
		}
		out = append(out, n)
	}
	return out
}
