package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL             string `yaml:"url"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifeMins int    `yaml:"conn_max_life_mins"`
}

// ConnMaxLifetime returns the configured connection lifetime as a duration
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifeMins) * time.Minute
}

// RedisConfig holds optional Redis settings used for distributed locking
type RedisConfig struct {
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// SchedulerConfig holds reply scheduler settings
type SchedulerConfig struct {
	MinReplyDelaySeconds int `yaml:"min_reply_delay_seconds"`
	MaxReplyDelaySeconds int `yaml:"max_reply_delay_seconds"`
	// NoResponseAfterHours > 0 enables the sweep that moves stale pending
	// messages to no_response. 0 disables it.
	NoResponseAfterHours int `yaml:"no_response_after_hours"`
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
}

// MinReplyDelay returns the minimum simulated reply delay as a duration
func (c SchedulerConfig) MinReplyDelay() time.Duration {
	return time.Duration(c.MinReplyDelaySeconds) * time.Second
}

// MaxReplyDelay returns the maximum simulated reply delay as a duration
func (c SchedulerConfig) MaxReplyDelay() time.Duration {
	return time.Duration(c.MaxReplyDelaySeconds) * time.Second
}

// NoResponseAfter returns the pending-message cutoff as a duration (0 = disabled)
func (c SchedulerConfig) NoResponseAfter() time.Duration {
	return time.Duration(c.NoResponseAfterHours) * time.Hour
}

// SweepInterval returns how often the no-response sweep runs
func (c SchedulerConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// AnalyticsConfig holds daily aggregation settings
type AnalyticsConfig struct {
	EngagementWindowDays int `yaml:"engagement_window_days"`
	LockTTLSeconds       int `yaml:"lock_ttl_seconds"`
}

// EngagementWindow returns the trailing window used to classify active contacts
func (c AnalyticsConfig) EngagementWindow() time.Duration {
	return time.Duration(c.EngagementWindowDays) * 24 * time.Hour
}

// LockTTL returns the snapshot-generation lock TTL
func (c AnalyticsConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// LoggingConfig holds structured logging settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII bool   `yaml:"redact_pii"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifeMins == 0 {
		cfg.Database.ConnMaxLifeMins = 30
	}
	if cfg.Scheduler.MinReplyDelaySeconds == 0 {
		cfg.Scheduler.MinReplyDelaySeconds = 30
	}
	if cfg.Scheduler.MaxReplyDelaySeconds == 0 {
		cfg.Scheduler.MaxReplyDelaySeconds = 300
	}
	if cfg.Scheduler.SweepIntervalSeconds == 0 {
		cfg.Scheduler.SweepIntervalSeconds = 300
	}
	if cfg.Analytics.EngagementWindowDays == 0 {
		cfg.Analytics.EngagementWindowDays = 30
	}
	if cfg.Analytics.LockTTLSeconds == 0 {
		cfg.Analytics.LockTTLSeconds = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
		cfg.Redis.Enabled = true
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg, nil
}
