// Package config loads gymassist configuration.
// Values come from an optional YAML file, then environment variables.
// Secrets (passwords, API keys) are only read from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when -config is not given.
const DefaultPath = "gymassist.yaml"

// Config holds all configuration for gymassist.
type Config struct {
	// DataDir holds the database and import files.
	DataDir string `yaml:"data_dir" env:"GYMASSIST_DATA_DIR"`
	// DatabasePath defaults to <data_dir>/gymassist.db when empty.
	DatabasePath string `yaml:"database_path" env:"GYMASSIST_DB"`

	// RequestTimeout bounds every component call made on behalf of one prompt.
	RequestTimeout time.Duration `yaml:"request_timeout" env:"GYMASSIST_REQUEST_TIMEOUT"`
	// MaxAttempts bounds re-prompting after invalid input.
	MaxAttempts int  `yaml:"max_attempts" env:"GYMASSIST_MAX_ATTEMPTS"`
	NoColor     bool `yaml:"no_color" env:"NO_COLOR"`

	Forecast ForecastConfig `yaml:"forecast"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Maps     MapsConfig     `yaml:"maps"`
	Wger     WgerConfig     `yaml:"wger"`
}

// ForecastConfig tunes the occupancy model.
type ForecastConfig struct {
	Trees          int     `yaml:"trees" env:"GYMASSIST_FOREST_TREES"`
	MaxDepth       int     `yaml:"max_depth" env:"GYMASSIST_FOREST_MAX_DEPTH"` // 0 = grow until pure
	MinSamplesLeaf int     `yaml:"min_samples_leaf" env:"GYMASSIST_FOREST_MIN_LEAF"`
	Seed           uint64  `yaml:"seed" env:"GYMASSIST_FOREST_SEED"`
	TestFraction   float64 `yaml:"test_fraction" env:"GYMASSIST_FOREST_TEST_FRACTION"`

	// CacheModels keeps fitted models keyed by occupancy data fingerprint.
	CacheModels bool          `yaml:"cache_models" env:"GYMASSIST_CACHE_MODELS"`
	CacheTTL    time.Duration `yaml:"cache_ttl" env:"GYMASSIST_MODEL_CACHE_TTL"`
}

// SMTPConfig configures enrollment confirmation mail. Empty Host disables sending.
type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT"`
	From     string `yaml:"from" env:"SMTP_FROM"`
	FromName string `yaml:"from_name" env:"SMTP_FROM_NAME"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"-" env:"SMTP_PASSWORD"`
}

// GeminiConfig enables the FAQ fallback. Empty APIKey and GCPProject disable it.
type GeminiConfig struct {
	APIKey     string `yaml:"-" env:"GEMINI_API_KEY"`
	Model      string `yaml:"model" env:"GEMINI_MODEL"`
	GCPProject string `yaml:"gcp_project" env:"GCP_PROJECT"`
}

// MapsConfig enables geocoding of zip codes missing from the zipcode table.
type MapsConfig struct {
	APIKey string `yaml:"-" env:"GOOGLE_MAPS_API_KEY"`
}

// WgerConfig points at the exercise database API.
type WgerConfig struct {
	BaseURL  string        `yaml:"base_url" env:"WGER_BASE_URL"`
	CacheTTL time.Duration `yaml:"cache_ttl" env:"WGER_CACHE_TTL"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Config {
	return &Config{
		DataDir:        "./data",
		RequestTimeout: 45 * time.Second,
		MaxAttempts:    5,
		Forecast: ForecastConfig{
			Trees:          100,
			MinSamplesLeaf: 1,
			Seed:           42,
			TestFraction:   0.2,
			CacheTTL:       time.Hour,
		},
		SMTP: SMTPConfig{
			Port:     587,
			FromName: "Anytime Fitness",
		},
		Gemini: GeminiConfig{Model: "gemini-2.5-flash-lite"},
		Wger: WgerConfig{
			BaseURL:  "https://wger.de/api/v2",
			CacheTTL: 24 * time.Hour,
		},
	}
}

// Load reads path (if it exists) and the environment over Defaults.
// Values set explicitly, zero included, are kept.
// A missing file at DefaultPath is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	case errors.Is(statErr, fs.ErrNotExist) && !explicit:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("config file %s: %w", path, statErr)
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(cfg.DataDir, "gymassist.db")
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.Forecast.Trees < 1 {
		return fmt.Errorf("forecast.trees must be at least 1, got %d", c.Forecast.Trees)
	}
	if c.Forecast.MinSamplesLeaf < 1 {
		return fmt.Errorf("forecast.min_samples_leaf must be at least 1, got %d", c.Forecast.MinSamplesLeaf)
	}
	if c.Forecast.TestFraction < 0 || c.Forecast.TestFraction >= 1 {
		return fmt.Errorf("forecast.test_fraction must be in [0,1), got %v", c.Forecast.TestFraction)
	}
	return nil
}

// GeminiEnabled reports whether the FAQ fallback has credentials.
func (c *Config) GeminiEnabled() bool {
	return c.Gemini.APIKey != "" || c.Gemini.GCPProject != ""
}

// Write dumps the non-secret configuration as YAML.
func Write(w io.Writer, c *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}
