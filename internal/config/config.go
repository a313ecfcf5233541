package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultParticipants is the roster the tracker ships with; override
// with the PARTICIPANTS env var (comma-separated).
var DefaultParticipants = []string{
	"Del", "Giem", "Glaiz", "Jeun", "Joy", "Kokoy", "Leanne", "Lui",
	"Ramon", "Robert", "Sarah", "Sheila", "Shin", "Yohan", "Zephanny", "Sam",
}

type Config struct {
	// HTTP Server
	Port string

	// Persistence
	DataBackend  string // sqlite, file or memory
	SQLiteDBPath string
	DataFilePath string

	// Domain rules
	Participants   []string
	TargetSteps    int
	PenaltyAmount  int64
	CurrencySymbol string

	// Admin gate
	AdminPassword string
	SessionSecret string
	SessionTTL    time.Duration

	// AMQP (optional event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Audit worker
	AuditLogPath string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8082"),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/steptrack.db"),
		DataFilePath: getEnv("DATA_FILE_PATH", "./data/steptrack.json"),

		Participants:   getEnvList("PARTICIPANTS", DefaultParticipants),
		TargetSteps:    getEnvInt("TARGET_STEPS", 10000),
		PenaltyAmount:  int64(getEnvInt("PENALTY_AMOUNT", 50)),
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₱"),

		AdminPassword: getEnv("ADMIN_PASSWORD", "steps2025"),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getEnvDuration("SESSION_TTL", 12*time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "steptrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "tracker_events"),

		AuditLogPath: getEnv("AUDIT_LOG_PATH", "./data/audit.log"),
	}

	return cfg
}

// Validate checks the configuration and returns a single error listing
// every problem found.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"sqlite", "file", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.DataBackend == "file" && c.DataFilePath == "" {
		errors = append(errors, "data file path cannot be empty when using file backend")
	}

	if len(c.Participants) == 0 {
		errors = append(errors, "participant roster cannot be empty")
	}
	seen := map[string]bool{}
	for _, p := range c.Participants {
		if strings.TrimSpace(p) == "" {
			errors = append(errors, "participant names cannot be blank")
			continue
		}
		if seen[p] {
			errors = append(errors, fmt.Sprintf("duplicate participant '%s' in roster", p))
		}
		seen[p] = true
	}

	if c.TargetSteps < 1 {
		errors = append(errors, fmt.Sprintf("invalid target steps %d: must be at least 1", c.TargetSteps))
	}
	if c.PenaltyAmount < 0 {
		errors = append(errors, fmt.Sprintf("invalid penalty amount %d: must not be negative", c.PenaltyAmount))
	}

	if c.AdminPassword == "" {
		errors = append(errors, "admin password cannot be empty")
	}
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
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

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
