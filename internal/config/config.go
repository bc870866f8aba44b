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

type Config struct {
	// HTTP Server
	Port string

	// Ledger backend selection
	LedgerBackend string
	LedgerPath    string
	SQLiteDBPath  string

	// Assist collaborator (Gemini)
	GeminiAPIKey string
	GeminiModel  string

	// Speech-to-text collaborator
	SpeechAPIKey string
	SpeechAPIURL string
	SpeechModel  string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Behaviour
	SeedDemo        bool
	ShutdownTimeout time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		LedgerBackend: getEnv("LEDGER_BACKEND", "file"),
		LedgerPath:    getEnv("LEDGER_PATH", "./data/expenses.json"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/finsmart.db"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),

		SpeechAPIKey: getEnv("SPEECH_API_KEY", ""),
		SpeechAPIURL: getEnv("SPEECH_API_URL", ""),
		SpeechModel:  getEnv("SPEECH_MODEL", "whisper-large-v3"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finsmart"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		SeedDemo:        getEnvBool("SEED_DEMO", false),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate ledger backend
	validBackends := []string{"memory", "file", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.LedgerBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid ledger backend '%s': must be one of %v", c.LedgerBackend, validBackends))
	}

	// Validate file configuration if backend is file
	if c.LedgerBackend == "file" {
		if c.LedgerPath == "" {
			errors = append(errors, "ledger path cannot be empty when using file backend")
		} else {
			errors = append(errors, ensureDir(c.LedgerPath, "ledger")...)
		}
	}

	// Validate SQLite configuration if backend is sqlite
	if c.LedgerBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			errors = append(errors, ensureDir(c.SQLiteDBPath, "SQLite database")...)
		}
	}

	// Validate AMQP URL if provided
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

	// Validate speech configuration; the key alone selects a default endpoint,
	// a URL without a key cannot authenticate
	if c.SpeechAPIURL != "" && c.SpeechAPIKey == "" {
		errors = append(errors, "SPEECH_API_KEY is required when SPEECH_API_URL is provided")
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	} else if c.ShutdownTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at most 1 minute", c.ShutdownTimeout))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AssistEnabled reports whether the LLM collaborator can be constructed.
func (c *Config) AssistEnabled() bool {
	return c.GeminiAPIKey != ""
}

// SpeechEnabled reports whether the voice affordance can be constructed.
func (c *Config) SpeechEnabled() bool {
	return c.SpeechAPIKey != ""
}

func ensureDir(path, what string) []string {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return []string{fmt.Sprintf("cannot create %s directory '%s': %v", what, dir, err)}
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
