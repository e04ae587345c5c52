package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP audit stream. Empty URL disables publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Signal detection
	SignalWindowDays int

	// Batch classification worker
	BatchCronSpec string

	// Rationale cache
	RationaleCacheSize int
	RationaleCacheTTL  time.Duration
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finpersona.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finpersona"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "persona_audit"),

		SignalWindowDays: getEnvInt("SIGNAL_WINDOW_DAYS", 180),

		BatchCronSpec: getEnv("BATCH_CRON_SPEC", "0 3 * * *"),

		RationaleCacheSize: getEnvInt("RATIONALE_CACHE_SIZE", 512),
		RationaleCacheTTL:  getEnvDuration("RATIONALE_CACHE_TTL", time.Hour),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SignalWindowDays < 30 {
		errors = append(errors, fmt.Sprintf("invalid signal window %d days: must be at least 30", c.SignalWindowDays))
	} else if c.SignalWindowDays > 730 {
		errors = append(errors, fmt.Sprintf("invalid signal window %d days: must be at most 730", c.SignalWindowDays))
	}

	if c.BatchCronSpec == "" {
		errors = append(errors, "batch cron spec cannot be empty")
	}

	if c.RationaleCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid rationale cache size %d: must be at least 1", c.RationaleCacheSize))
	}
	if c.RationaleCacheTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid rationale cache TTL %v: must be at least 1 minute", c.RationaleCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
