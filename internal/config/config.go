package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Session owner. Authentication is external; the owner id is trusted.
	OwnerID string

	// Backend selection
	DataBackend  string
	SQLiteDBPath string

	// AMQP. An empty URL keeps notifications in the log.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Engine
	ReminderDelay       time.Duration
	LowBalanceThreshold int64 // smallest currency unit, 0 disables
	CurrencyExponent    int
	RefreshInterval     time.Duration

	// Notification preferences
	NotifyTransactionAlerts bool
	NotifyTargetProgress    bool
	NotifyTargetAchieved    bool
	NotifyLowBalance        bool

	// Logging
	LogLevel  string
	LogFormat string
}

var validBackends = []string{"memory", "sqlite"}

func Load() *Config {
	return &Config{
		Port:    getEnv("PORT", "8081"),
		OwnerID: getEnv("OWNER_ID", "local"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/saldo.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "saldo"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "notifications"),

		ReminderDelay:       getEnvDuration("REMINDER_DELAY", 24*time.Hour),
		LowBalanceThreshold: getEnvInt64("LOW_BALANCE_THRESHOLD", 100000),
		CurrencyExponent:    getEnvInt("CURRENCY_EXPONENT", 0),
		RefreshInterval:     getEnvDuration("REFRESH_INTERVAL", time.Minute),

		NotifyTransactionAlerts: getEnvBool("NOTIFY_TRANSACTION_ALERTS", true),
		NotifyTargetProgress:    getEnvBool("NOTIFY_TARGET_PROGRESS", true),
		NotifyTargetAchieved:    getEnvBool("NOTIFY_TARGET_ACHIEVED", true),
		NotifyLowBalance:        getEnvBool("NOTIFY_LOW_BALANCE", true),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if strings.TrimSpace(c.OwnerID) == "" {
		errors = append(errors, "owner id cannot be empty")
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
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

	if c.ReminderDelay < time.Second {
		errors = append(errors, fmt.Sprintf("invalid reminder delay %v: must be at least 1 second", c.ReminderDelay))
	}
	if c.LowBalanceThreshold < 0 {
		errors = append(errors, fmt.Sprintf("invalid low balance threshold %d: must not be negative", c.LowBalanceThreshold))
	}
	if c.CurrencyExponent < 0 || c.CurrencyExponent > 4 {
		errors = append(errors, fmt.Sprintf("invalid currency exponent %d: must be between 0 and 4", c.CurrencyExponent))
	}
	if c.RefreshInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at least 1 second", c.RefreshInterval))
	} else if c.RefreshInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at most 24 hours", c.RefreshInterval))
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
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

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
