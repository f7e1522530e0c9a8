// Package config loads service configuration from the environment.
//
// A .env file in the working directory is loaded first when present; real
// environment variables always win over it. Every key has a default so the
// service starts with nothing but DATABASE_URL set.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Service   ServiceConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Logging   LoggingConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Shop      ShopConfig
	Jobs      JobsConfig
}

type ServiceConfig struct {
	Name                string
	Version             string
	Env                 string
	Port                string
	ShutdownTimeout     string
	ReadinessDrainDelay string
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SessionConfig controls session transport and storage.
type SessionConfig struct {
	// Backend is "postgres" or "redis".
	Backend      string
	CookieName   string
	CookieSecure bool
	TTL          string
}

type LoggingConfig struct {
	Level string
}

type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

// ShopConfig holds business settings.
type ShopConfig struct {
	Timezone string
	Currency string
}

// JobsConfig holds housekeeping cron schedules.
type JobsConfig struct {
	Enabled              bool
	SessionPurgeSchedule string
	RosterPurgeSchedule  string
	RosterRetentionDays  int
}

// DefaultSessionTTL is the fixed session lifetime: 90 days.
const DefaultSessionTTL = 90 * 24 * time.Hour

var defaults = map[string]any{
	"SERVICE_NAME":                "pos-service",
	"SERVICE_VERSION":             "dev",
	"ENV":                         "development",
	"PORT":                        "8080",
	"SHUTDOWN_TIMEOUT":            "10s",
	"READINESS_DRAIN_DELAY":       "5s",
	"DATABASE_URL":                "",
	"DATABASE_MAX_CONNS":          10,
	"REDIS_ADDR":                  "localhost:6379",
	"REDIS_PASSWORD":              "",
	"REDIS_DB":                    0,
	"SESSION_BACKEND":             "postgres",
	"SESSION_COOKIE_NAME":         "pos_session",
	"SESSION_COOKIE_SECURE":       false,
	"SESSION_TTL":                 DefaultSessionTTL.String(),
	"LOG_LEVEL":                   "info",
	"TRACING_ENABLED":             false,
	"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4318",
	"OTEL_SAMPLE_RATE":            1.0,
	"PROFILING_ENABLED":           false,
	"PYROSCOPE_ENDPOINT":          "http://localhost:4040",
	"SHOP_TIMEZONE":               "Asia/Bangkok",
	"SHOP_CURRENCY":               "THB",
	"JOBS_ENABLED":                true,
	"JOBS_SESSION_PURGE_SCHEDULE": "@daily",
	"JOBS_ROSTER_PURGE_SCHEDULE":  "@daily",
	"JOBS_ROSTER_RETENTION_DAYS":  30,
}

// Load reads configuration from .env (optional) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return &Config{
		Service: ServiceConfig{
			Name:                v.GetString("SERVICE_NAME"),
			Version:             v.GetString("SERVICE_VERSION"),
			Env:                 v.GetString("ENV"),
			Port:                v.GetString("PORT"),
			ShutdownTimeout:     v.GetString("SHUTDOWN_TIMEOUT"),
			ReadinessDrainDelay: v.GetString("READINESS_DRAIN_DELAY"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			MaxConns: v.GetInt32("DATABASE_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			Backend:      strings.ToLower(v.GetString("SESSION_BACKEND")),
			CookieName:   v.GetString("SESSION_COOKIE_NAME"),
			CookieSecure: v.GetBool("SESSION_COOKIE_SECURE"),
			TTL:          v.GetString("SESSION_TTL"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Tracing: TracingConfig{
			Enabled:    v.GetBool("TRACING_ENABLED"),
			Endpoint:   v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			SampleRate: v.GetFloat64("OTEL_SAMPLE_RATE"),
		},
		Profiling: ProfilingConfig{
			Enabled:  v.GetBool("PROFILING_ENABLED"),
			Endpoint: v.GetString("PYROSCOPE_ENDPOINT"),
		},
		Shop: ShopConfig{
			Timezone: v.GetString("SHOP_TIMEZONE"),
			Currency: v.GetString("SHOP_CURRENCY"),
		},
		Jobs: JobsConfig{
			Enabled:              v.GetBool("JOBS_ENABLED"),
			SessionPurgeSchedule: v.GetString("JOBS_SESSION_PURGE_SCHEDULE"),
			RosterPurgeSchedule:  v.GetString("JOBS_ROSTER_PURGE_SCHEDULE"),
			RosterRetentionDays:  v.GetInt("JOBS_ROSTER_RETENTION_DAYS"),
		},
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Service.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	switch c.Session.Backend {
	case "postgres":
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when SESSION_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("SESSION_BACKEND must be postgres or redis, got %q", c.Session.Backend))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("SESSION_COOKIE_NAME is required"))
	}
	if ttl, err := time.ParseDuration(c.Session.TTL); err != nil {
		errs = append(errs, fmt.Errorf("SESSION_TTL: %w", err))
	} else if ttl <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.Session.TTL))
	}
	if _, err := time.LoadLocation(c.Shop.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("SHOP_TIMEZONE: %w", err))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be within [0,1], got %v", c.Tracing.SampleRate))
	}

	return errors.Join(errs...)
}

// GetShutdownTimeoutDuration returns the HTTP shutdown timeout, 10s on parse failure.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return parseDurationOr(c.Service.ShutdownTimeout, 10*time.Second)
}

// GetReadinessDrainDelayDuration returns how long /ready reports 503 before shutdown.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return parseDurationOr(c.Service.ReadinessDrainDelay, 0)
}

// GetSessionTTLDuration returns the session lifetime. Unparseable or
// non-positive values yield DefaultSessionTTL.
func (c *Config) GetSessionTTLDuration() time.Duration {
	ttl := parseDurationOr(c.Session.TTL, DefaultSessionTTL)
	if ttl <= 0 {
		return DefaultSessionTTL
	}
	return ttl
}

// ShopLocation returns the shop timezone, UTC if it cannot be loaded.
func (c *Config) ShopLocation() *time.Location {
	loc, err := time.LoadLocation(c.Shop.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
