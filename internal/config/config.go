package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the momo backtesting service.
type Config struct {
	Server     Server     `yaml:"server"`
	Storage    Storage    `yaml:"storage"`
	Logging    Logging    `yaml:"logging"`
	Alpaca     Alpaca     `yaml:"alpaca"`
	Simulation Simulation `yaml:"simulation"`
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Storage selects and locates the bar store backend.
type Storage struct {
	// Backend is "sqlite" or "parquet".
	Backend    string `yaml:"backend"`
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Alpaca holds credentials and endpoints for the Alpaca market-data API,
// used only by the historical bar fetcher.
type Alpaca struct {
	APIKey          string `yaml:"api_key"`
	APISecret       string `yaml:"api_secret"`
	DataURL         string `yaml:"data_url"`
	StartDate       string `yaml:"start_date"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
}

// Simulation holds the default strategy parameters. This is the single
// source of truth for the symbol universe and simulation length; handlers
// and commands read from here instead of carrying their own constants.
type Simulation struct {
	Symbols        []string `yaml:"symbols"`
	Days           int      `yaml:"days"`
	Window         int      `yaml:"window"`
	Fee            float64  `yaml:"fee"`
	FinancingRate  float64  `yaml:"financing_rate"`
	Allocation     float64  `yaml:"allocation"`
	InitialBalance float64  `yaml:"initial_balance"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the built-in configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: Server{Host: "0.0.0.0", Port: 8080},
		Storage: Storage{
			Backend:    "sqlite",
			DataDir:    "data",
			SQLitePath: "data/bars.db",
		},
		Logging: Logging{Level: "info", Format: "json"},
		Alpaca: Alpaca{
			StartDate:       "2020-01-01",
			RateLimitPerMin: 200,
		},
		Simulation: Simulation{
			Symbols:        []string{"VTI", "QQQ", "VT", "DIA", "SPY"},
			Days:           200,
			Window:         50,
			Fee:            0.005,
			FinancingRate:  0.03,
			Allocation:     0.05,
			InitialBalance: 100000.0,
		},
	}
}

// Load reads the YAML configuration file at the given path, merges it over
// the defaults, and applies environment variable overrides. A missing file
// is not an error; the defaults are used as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through to env overrides with defaults only.
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MOMO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars (canonical names used by the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
