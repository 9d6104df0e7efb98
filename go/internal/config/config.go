// Package config provides centralized configuration loaded from
// environment variables, with an optional YAML file for overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is populated from environment variables; a YAML file named by
// CONFIG_FILE may override the zero-value fields first.
type Config struct {
	// HTTP server
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Environment string `yaml:"environment"` // development, staging, production

	// Database
	DatabaseURL    string        `yaml:"database_url"`
	DBPoolMinConns int           `yaml:"db_pool_min_conns"`
	DBPoolMaxConns int           `yaml:"db_pool_max_conns"`
	DBPoolMaxLife  time.Duration `yaml:"db_pool_max_life"`

	// Messaging
	NATSURL string `yaml:"nats_url"`

	// CORS
	CORSAllowOrigins []string `yaml:"cors_allow_origins"`

	// Rate limiting
	RateLimitEnabled  bool          `yaml:"rate_limit_enabled"`
	RateLimitRequests int           `yaml:"rate_limit_requests"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`

	// Pick-clock scheduler
	SchedulerBatchSize int `yaml:"scheduler_batch_size"`
}

// Load reads configuration from the optional YAML file, then from
// environment variables with sensible defaults. Env wins over file.
func Load() (*Config, error) {
	var cfg Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Host = envOr("HOST", defaultStr(cfg.Host, "0.0.0.0"))
	cfg.Port = envInt("PORT", defaultInt(cfg.Port, 8080))
	cfg.Environment = envOr("ENVIRONMENT", defaultStr(cfg.Environment, "development"))

	cfg.DatabaseURL = envOr("DATABASE_URL", cfg.DatabaseURL)
	cfg.DBPoolMinConns = envInt("DB_POOL_MIN_CONNS", defaultInt(cfg.DBPoolMinConns, 2))
	cfg.DBPoolMaxConns = envInt("DB_POOL_MAX_CONNS", defaultInt(cfg.DBPoolMaxConns, 10))
	if cfg.DBPoolMaxLife == 0 {
		cfg.DBPoolMaxLife = time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute
	}

	cfg.NATSURL = envOr("NATS_URL", cfg.NATSURL)

	cfg.CORSAllowOrigins = envList("CORS_ALLOW_ORIGINS", defaultList(cfg.CORSAllowOrigins, []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}))

	cfg.RateLimitEnabled = envBool("RATE_LIMIT_ENABLED", true)
	cfg.RateLimitRequests = envInt("RATE_LIMIT_REQUESTS", defaultInt(cfg.RateLimitRequests, 100))
	if cfg.RateLimitWindow == 0 {
		cfg.RateLimitWindow = time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second
	}

	cfg.SchedulerBatchSize = envInt("SCHEDULER_BATCH_SIZE", defaultInt(cfg.SchedulerBatchSize, 32))

	return &cfg, nil
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func defaultStr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func defaultInt(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

func defaultList(v, fallback []string) []string {
	if len(v) > 0 {
		return v
	}
	return fallback
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
