package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Env      string
	Timezone string
	API      APIConfig
	Session  SessionConfig
	Redis    RedisConfig
	Watch    WatchConfig
	OTEL     OTELConfig
}

// APIConfig holds the backend REST client configuration
type APIConfig struct {
	BaseURL      string
	Timeout      time.Duration
	RateLimitRPS float64
	RateBurst    int
}

// SessionConfig holds where the bearer session is persisted
type SessionConfig struct {
	Path string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	// DirectoryTTL is how long the doctor directory stays cached.
	DirectoryTTL time.Duration
}

// WatchConfig holds the live countdown cadence
type WatchConfig struct {
	Tick    time.Duration
	Refresh time.Duration
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables. Callers load any
// .env files into the environment first.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_TIMEZONE", "")
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("API_TIMEOUT", "10s")
	v.SetDefault("API_RATE_LIMIT_RPS", 10.0)
	v.SetDefault("API_RATE_LIMIT_BURST", 20)
	v.SetDefault("SESSION_PATH", defaultSessionPath())
	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_DIRECTORY_TTL", "5m")
	v.SetDefault("WATCH_TICK", "1s")
	v.SetDefault("WATCH_REFRESH", "1m")
	v.SetDefault("OTEL_SERVICE_NAME", "doctorconnect")
	v.SetDefault("OTEL_SERVICE_VERSION", "1.0.0")
	v.SetDefault("OTEL_ENDPOINT", "")
	v.SetDefault("OTEL_ENABLED", false)

	cfg := &Config{
		Env:      v.GetString("APP_ENV"),
		Timezone: v.GetString("APP_TIMEZONE"),
		API: APIConfig{
			BaseURL:      v.GetString("API_BASE_URL"),
			Timeout:      v.GetDuration("API_TIMEOUT"),
			RateLimitRPS: v.GetFloat64("API_RATE_LIMIT_RPS"),
			RateBurst:    v.GetInt("API_RATE_LIMIT_BURST"),
		},
		Session: SessionConfig{
			Path: v.GetString("SESSION_PATH"),
		},
		Redis: RedisConfig{
			Enabled:      v.GetBool("REDIS_ENABLED"),
			Host:         v.GetString("REDIS_HOST"),
			Port:         v.GetInt("REDIS_PORT"),
			Password:     v.GetString("REDIS_PASSWORD"),
			DB:           v.GetInt("REDIS_DB"),
			DirectoryTTL: v.GetDuration("REDIS_DIRECTORY_TTL"),
		},
		Watch: WatchConfig{
			Tick:    v.GetDuration("WATCH_TICK"),
			Refresh: v.GetDuration("WATCH_REFRESH"),
		},
		OTEL: OTELConfig{
			ServiceName:    v.GetString("OTEL_SERVICE_NAME"),
			ServiceVersion: v.GetString("OTEL_SERVICE_VERSION"),
			Endpoint:       v.GetString("OTEL_ENDPOINT"),
			Enabled:        v.GetBool("OTEL_ENABLED"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail late and confusingly.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got %s", c.API.Timeout)
	}
	if c.Watch.Tick <= 0 || c.Watch.Refresh <= 0 {
		return fmt.Errorf("WATCH_TICK and WATCH_REFRESH must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the zone appointment date/time values are interpreted
// in. The backend stores wall-clock values without a zone, so an unset
// APP_TIMEZONE means the process-local zone rather than UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// IsDev reports whether the client runs in development mode
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".doctorconnect-session.json"
	}
	return filepath.Join(dir, "doctorconnect", "session.json")
}
