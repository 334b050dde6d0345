// Package config provides configuration management for the Stock Scout application.
package config

import (
	"os"
	"testing"
	"time"
)

const (
	validConfigPath            = "testdata/valid_config.yaml"
	expansionConfigPath        = "testdata/expansion_config.yaml"
	expansionConfigMissingPath = "testdata/expansion_config_missing.yaml"
	nonexistentConfigPath      = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoading     = "expected no error loading config, got %v"
	expectedNoErrorMsg         = "expected no error, got %v"
	developmentEnv             = "development"
	testDBPassword             = "TEST_DB_PASSWORD"
	expandedSecretValue        = "expanded_secret_value"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	if cfg.App.Name != "stock-scout" {
		t.Errorf("expected app name 'stock-scout', got '%s'", cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Database.Host != "localhost" {
		t.Errorf("expected database host 'localhost', got '%s'", cfg.Database.Host)
	}

	if cfg.Scan.BatchSize != 100 {
		t.Errorf("expected scan batch size 100, got %d", cfg.Scan.BatchSize)
	}

	if len(cfg.Scan.Analysts) != 3 {
		t.Errorf("expected 3 analysts, got %d", len(cfg.Scan.Analysts))
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoading, err)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests validation of invalid environment
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoading, err)
	}

	cfg.App.Environment = "invalid"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

// TestValidateUnknownAnalyst tests validation of unknown persona keys
func TestValidateUnknownAnalyst(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoading, err)
	}

	cfg.Scan.Analysts = []string{"michael_burry", "jim_cramer"}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for unknown analyst")
	}
}

// TestValidateEmptyAnalysts tests validation of an empty analyst list
func TestValidateEmptyAnalysts(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoading, err)
	}

	cfg.Scan.Analysts = []string{}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for empty analysts")
	}
}

// TestValidateSizingCrossField tests the volatility ordering constraint
func TestValidateSizingCrossField(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoading, err)
	}

	cfg.Sizing.FloorVolatility = 0.5
	cfg.Sizing.TargetVolatility = 0.2
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error when floor volatility exceeds target")
	}
}

// TestGetDatabaseDSN tests DSN generation
func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoading, err)
	}

	dsn := cfg.GetDatabaseDSN()
	if dsn == "" {
		t.Fatal("expected non-empty DSN")
	}

	if !containsSubstring(dsn, "postgres://") {
		t.Errorf("expected DSN to start with 'postgres://', got '%s'", dsn)
	}
}

// TestIsDevelopment tests environment check function
func TestIsDevelopment(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: developmentEnv},
	}

	if !cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return true")
	}

	if cfg.IsProduction() {
		t.Error("expected IsProduction() to return false")
	}
}

// TestIsProduction tests production environment check
func TestIsProduction(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "production"},
	}

	if !cfg.IsProduction() {
		t.Error("expected IsProduction() to return true")
	}

	if cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return false")
	}
}

// TestDurationHelpers tests duration conversions on config sections
func TestDurationHelpers(t *testing.T) {
	scan := ScanConfig{RateLimitDelayMS: 1500}
	if scan.RateLimitDelay() != 1500*time.Millisecond {
		t.Errorf("expected 1.5s delay, got %v", scan.RateLimitDelay())
	}

	md := MarketDataConfig{TimeoutSeconds: 30}
	if md.Timeout() != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", md.Timeout())
	}
}

// TestLoadConfigEnvironmentVariableExpansion tests ${VAR} expansion in config files
func TestLoadConfigEnvironmentVariableExpansion(t *testing.T) {
	os.Setenv(testDBPassword, expandedSecretValue)
	defer os.Unsetenv(testDBPassword)

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config with expansion, got %v", err)
	}

	if cfg.Database.Password != expandedSecretValue {
		t.Errorf("expected password '%s' from environment expansion, got '%s'", expandedSecretValue, cfg.Database.Password)
	}
}

// TestLoadConfigMissingEnvironmentVariable tests handling of unset variables
func TestLoadConfigMissingEnvironmentVariable(t *testing.T) {
	os.Unsetenv("TEST_MISSING_VAR")

	cfg, err := Load(expansionConfigMissingPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoading, err)
	}

	// os.ExpandEnv resolves unset variables to the empty string
	if cfg.Database.Password != "" {
		t.Errorf("expected empty password for unset env var, got %q", cfg.Database.Password)
	}
}

// TestLoadWithDefaults tests that defaults apply when the file is missing
func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Scan.BatchSize != 100 {
		t.Errorf("expected default batch size 100, got %d", cfg.Scan.BatchSize)
	}

	if cfg.Scan.ConvictionThreshold != 70 {
		t.Errorf("expected default conviction threshold 70, got %f", cfg.Scan.ConvictionThreshold)
	}
}

// Helper function
func containsSubstring(str, substr string) bool {
	for i := 0; i <= len(str)-len(substr); i++ {
		if str[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
