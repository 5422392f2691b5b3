package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gymassist.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GYMASSIST_DATA_DIR", "/var/lib/gym")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabasePath != filepath.Join("/var/lib/gym", "gymassist.db") {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.Forecast.Trees != 100 || cfg.Forecast.Seed != 42 || cfg.Forecast.TestFraction != 0.2 {
		t.Errorf("forecast defaults = %+v", cfg.Forecast)
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %s", cfg.RequestTimeout)
	}
	if cfg.Wger.BaseURL != "https://wger.de/api/v2" {
		t.Errorf("Wger.BaseURL = %q", cfg.Wger.BaseURL)
	}
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	path := writeFile(t, `
data_dir: /srv/gym
max_attempts: 3
forecast:
  trees: 10
  cache_models: true
smtp:
  host: smtp.example.com
`)
	t.Setenv("GYMASSIST_FOREST_TREES", "25")
	t.Setenv("SMTP_PASSWORD", "hunter2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.Forecast.Trees != 25 {
		t.Errorf("Trees = %d, want env override 25", cfg.Forecast.Trees)
	}
	if !cfg.Forecast.CacheModels {
		t.Error("CacheModels not read from file")
	}
	if cfg.SMTP.Host != "smtp.example.com" || cfg.SMTP.Password != "hunter2" {
		t.Errorf("SMTP = %+v", cfg.SMTP)
	}
	if cfg.SMTP.Port != 587 {
		t.Errorf("SMTP.Port default = %d", cfg.SMTP.Port)
	}
}

func TestLoadKeepsExplicitZeros(t *testing.T) {
	path := writeFile(t, `
forecast:
  seed: 0
  test_fraction: 0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Forecast.Seed != 0 || cfg.Forecast.TestFraction != 0 {
		t.Errorf("forecast = %+v, want explicit zero seed and test_fraction", cfg.Forecast)
	}
	if cfg.Forecast.Trees != 100 || cfg.MaxAttempts != 5 {
		t.Errorf("unset fields lost their defaults: trees=%d attempts=%d", cfg.Forecast.Trees, cfg.MaxAttempts)
	}

	t.Setenv("GYMASSIST_FOREST_TEST_FRACTION", "0")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Forecast.TestFraction != 0 {
		t.Errorf("TestFraction = %v from env, want 0", cfg.Forecast.TestFraction)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero attempts", "max_attempts: 0\n"},
		{"bad fraction", "forecast:\n  test_fraction: 1.5\n"},
		{"no trees", "forecast:\n  trees: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.body)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWriteOmitsSecrets(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "secret-key")
	t.Setenv("SMTP_PASSWORD", "secret-pass")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.GeminiEnabled() {
		t.Error("GeminiEnabled() = false with API key set")
	}

	var buf bytes.Buffer
	if err := Write(&buf, cfg); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "secret") {
		t.Errorf("secrets leaked into YAML:\n%s", out)
	}
	if !strings.Contains(out, "trees: 100") {
		t.Errorf("forecast section missing:\n%s", out)
	}
}
