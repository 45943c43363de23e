package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Trends      TrendsConfig      `mapstructure:"trends"`
	Betting     BettingConfig     `mapstructure:"betting"`
	Feed        FeedConfig        `mapstructure:"feed"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Acceptance  AcceptanceConfig  `mapstructure:"acceptance"`
	Telegram    TelegramConfig    `mapstructure:"telegram"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// TrendsConfig holds trend provider configuration
type TrendsConfig struct {
	APIBaseURL      string        `mapstructure:"api_base_url"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Limit           int           `mapstructure:"limit"`
	MaxRetries      int           `mapstructure:"max_retries"`
}

// BettingConfig holds bet lifecycle configuration
type BettingConfig struct {
	BigBetThreshold int64 `mapstructure:"big_bet_threshold"`
}

// FeedConfig holds activity feed generation configuration
type FeedConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	SeedCap   int           `mapstructure:"seed_cap"`
	BufferCap int           `mapstructure:"buffer_cap"`
}

// LeaderboardConfig holds leaderboard polling configuration
type LeaderboardConfig struct {
	APIBaseURL   string        `mapstructure:"api_base_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Window       string        `mapstructure:"window"`
}

// AcceptanceConfig holds bet-acceptance collaborator configuration
type AcceptanceConfig struct {
	APIBaseURL string        `mapstructure:"api_base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// StorageConfig holds bet history persistence configuration
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// ServerConfig holds API and metrics server configuration
type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set config file
	v.SetConfigFile(path)

	// Set defaults
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("MEMEBET")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Trends defaults
	v.SetDefault("trends.api_base_url", "https://api.memebet.example.com")
	v.SetDefault("trends.refresh_interval", "1m")
	v.SetDefault("trends.timeout", "10s")
	v.SetDefault("trends.limit", 20)
	v.SetDefault("trends.max_retries", 3)

	// Betting defaults
	v.SetDefault("betting.big_bet_threshold", 100000)

	// Feed defaults
	v.SetDefault("feed.interval", "5s")
	v.SetDefault("feed.seed_cap", 5)
	v.SetDefault("feed.buffer_cap", 10)

	// Leaderboard defaults
	v.SetDefault("leaderboard.api_base_url", "https://api.memebet.example.com")
	v.SetDefault("leaderboard.poll_interval", "30s")
	v.SetDefault("leaderboard.timeout", "10s")
	v.SetDefault("leaderboard.window", "all-time")

	// Acceptance defaults
	v.SetDefault("acceptance.api_base_url", "https://api.memebet.example.com")
	v.SetDefault("acceptance.timeout", "10s")

	// Telegram defaults
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Storage defaults
	v.SetDefault("storage.db_path", "./data/memebet.db")

	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_port", 9090)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Trends config
	if c.Trends.APIBaseURL == "" {
		return fmt.Errorf("trends.api_base_url is required")
	}
	if c.Trends.RefreshInterval < 5*time.Second {
		return fmt.Errorf("trends.refresh_interval must be at least 5 seconds")
	}
	if c.Trends.Timeout < 1*time.Second {
		return fmt.Errorf("trends.timeout must be at least 1 second")
	}
	if c.Trends.Limit < 1 {
		return fmt.Errorf("trends.limit must be at least 1")
	}
	if c.Trends.MaxRetries < 0 {
		return fmt.Errorf("trends.max_retries must not be negative")
	}

	// Validate Betting config
	if c.Betting.BigBetThreshold < 1 {
		return fmt.Errorf("betting.big_bet_threshold must be at least 1")
	}

	// Validate Feed config
	if c.Feed.Interval < 1*time.Second {
		return fmt.Errorf("feed.interval must be at least 1 second")
	}
	if c.Feed.SeedCap < 1 {
		return fmt.Errorf("feed.seed_cap must be at least 1")
	}
	if c.Feed.BufferCap < c.Feed.SeedCap {
		return fmt.Errorf("feed.buffer_cap must be at least feed.seed_cap")
	}

	// Validate Leaderboard config
	if c.Leaderboard.APIBaseURL == "" {
		return fmt.Errorf("leaderboard.api_base_url is required")
	}
	if c.Leaderboard.PollInterval < 5*time.Second {
		return fmt.Errorf("leaderboard.poll_interval must be at least 5 seconds")
	}
	validWindows := map[string]bool{"daily": true, "weekly": true, "all-time": true}
	if !validWindows[c.Leaderboard.Window] {
		return fmt.Errorf("leaderboard.window must be one of: daily, weekly, all-time")
	}

	// Validate Acceptance config
	if c.Acceptance.APIBaseURL == "" {
		return fmt.Errorf("acceptance.api_base_url is required")
	}
	if c.Acceptance.Timeout < 1*time.Second {
		return fmt.Errorf("acceptance.timeout must be at least 1 second")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate Storage config
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	// Validate Server config
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MetricsPort < 1 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("server.metrics_port must be a valid port")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
