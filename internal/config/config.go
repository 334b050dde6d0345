// Package config provides configuration management for the Stock Scout application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	MarketData MarketDataConfig `mapstructure:"market_data" validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm" validate:"required"`
	Scan       ScanConfig       `mapstructure:"scan" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler" validate:"required"`
	Sizing     SizingConfig     `mapstructure:"sizing" validate:"required"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Features   FeaturesConfig   `mapstructure:"features"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// MarketDataConfig represents the financial data provider configuration
type MarketDataConfig struct {
	APIURL            string  `mapstructure:"api_url" validate:"required,url"`
	APIKey            string  `mapstructure:"api_key"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts     int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"required,gt=0"`
	CacheTTLSeconds   int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// LLMConfig represents the judgment engine configuration
type LLMConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model" validate:"required"`
	MaxTokens      int    `mapstructure:"max_tokens" validate:"required,gt=0"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}

// ScanConfig represents scan orchestration configuration
type ScanConfig struct {
	BatchSize           int      `mapstructure:"batch_size" validate:"required,gt=0"`
	RateLimitDelayMS    int      `mapstructure:"rate_limit_delay_ms" validate:"gte=0"`
	ConvictionThreshold float64  `mapstructure:"conviction_threshold" validate:"gte=0,lte=100"`
	Analysts            []string `mapstructure:"analysts" validate:"required,min=1,analysts"`
	PriceTriggerPct     float64  `mapstructure:"price_trigger_pct" validate:"gte=0"`
}

// SchedulerConfig represents cron scheduling configuration
type SchedulerConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	QuarterlyCron string `mapstructure:"quarterly_cron" validate:"required"`
}

// SizingConfig represents position sizing configuration
type SizingConfig struct {
	MaxPositionPct   float64 `mapstructure:"max_position_pct" validate:"required,gt=0,lte=100"`
	TargetVolatility float64 `mapstructure:"target_volatility" validate:"required,gt=0"`
	FloorVolatility  float64 `mapstructure:"floor_volatility" validate:"required,gt=0"`
}

// NotifyConfig represents notification configuration
type NotifyConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	WebhookURL string   `mapstructure:"webhook_url" validate:"omitempty,url"`
	SMTPHost   string   `mapstructure:"smtp_host"`
	SMTPPort   int      `mapstructure:"smtp_port" validate:"omitempty,min=1,max=65535"`
	SMTPUser   string   `mapstructure:"smtp_user"`
	SMTPPass   string   `mapstructure:"smtp_pass"`
	FromAddr   string   `mapstructure:"from_addr"`
	ToAddrs    []string `mapstructure:"to_addrs"`
}

// ServerConfig represents HTTP API server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	HealthPort   int    `mapstructure:"health_port" validate:"required,min=1,max=65535"`
	ReadTimeout  int    `mapstructure:"read_timeout_seconds" validate:"gt=0"`
	WriteTimeout int    `mapstructure:"write_timeout_seconds" validate:"gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	LLMRefinementEnabled bool `mapstructure:"llm_refinement_enabled"`
	RealtimeEnabled      bool `mapstructure:"realtime_enabled"`
	NotificationsEnabled bool `mapstructure:"notifications_enabled"`
	PriceTriggersEnabled bool `mapstructure:"price_triggers_enabled"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// RateLimitDelay returns the inter-batch scan delay as a duration.
func (c *ScanConfig) RateLimitDelay() time.Duration {
	return time.Duration(c.RateLimitDelayMS) * time.Millisecond
}

// Timeout returns the market data request timeout as a duration.
func (c *MarketDataConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout returns the LLM request timeout as a duration.
func (c *LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
