package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// HTTP Server
	Port string

	// Remote bill API
	APIBaseURL     string
	APIPathPrefix  string
	RequestTimeout time.Duration

	// Backend selection
	DataBackend string
	MemorySeed  bool

	// Local snapshot
	SnapshotDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleCredentialsFile string
	GoogleSpreadsheetID   string
	GoogleSheetName       string

	// Reminder worker
	ReminderInterval time.Duration

	// Report cache
	CacheSize int
	CacheTTL  time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// fileConfig is the YAML overlay shape. Every field is optional;
// values set in the file override the environment.
type fileConfig struct {
	Port             string `yaml:"port"`
	APIBaseURL       string `yaml:"api_base_url"`
	APIPathPrefix    string `yaml:"api_path_prefix"`
	RequestTimeout   string `yaml:"request_timeout"`
	DataBackend      string `yaml:"data_backend"`
	MemorySeed       bool   `yaml:"memory_seed"`
	SnapshotDBPath   string `yaml:"snapshot_db_path"`
	AMQPURL          string `yaml:"amqp_url"`
	AMQPExchange     string `yaml:"amqp_exchange"`
	AMQPQueue        string `yaml:"amqp_queue"`
	GoogleCredsFile  string `yaml:"google_credentials_file"`
	GoogleSheetID    string `yaml:"google_spreadsheet_id"`
	GoogleSheetName  string `yaml:"google_sheet_name"`
	ReminderInterval string `yaml:"reminder_interval"`
	CacheSize        int    `yaml:"cache_size"`
	CacheTTL         string `yaml:"cache_ttl"`
	LogLevel         string `yaml:"log_level"`
	LogFormat        string `yaml:"log_format"`
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8000"),
		APIPathPrefix:  getEnv("API_PATH_PREFIX", "/api/v1"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),

		DataBackend: getEnv("DATA_BACKEND", "remote"),
		MemorySeed:  getEnvBool("MEMORY_SEED", false),

		SnapshotDBPath: getEnv("SNAPSHOT_DB_PATH", "./data/contas.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "contas"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "bill_events"),

		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:       getEnv("GOOGLE_SHEET_NAME", ""),

		ReminderInterval: getEnvDuration("REMINDER_INTERVAL", time.Hour),

		CacheSize: getEnvInt("CACHE_SIZE", 16),
		CacheTTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		// A broken overlay is surfaced later by Validate, not here.
		_ = cfg.applyFile(path)
	}

	return cfg
}

// applyFile overlays values from a YAML file onto the config.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&c.Port, fc.Port)
	setString(&c.APIBaseURL, fc.APIBaseURL)
	setString(&c.APIPathPrefix, fc.APIPathPrefix)
	setDuration(&c.RequestTimeout, fc.RequestTimeout)
	setString(&c.DataBackend, fc.DataBackend)
	if fc.MemorySeed {
		c.MemorySeed = true
	}
	setString(&c.SnapshotDBPath, fc.SnapshotDBPath)
	setString(&c.AMQPURL, fc.AMQPURL)
	setString(&c.AMQPExchange, fc.AMQPExchange)
	setString(&c.AMQPQueue, fc.AMQPQueue)
	setString(&c.GoogleCredentialsFile, fc.GoogleCredsFile)
	setString(&c.GoogleSpreadsheetID, fc.GoogleSheetID)
	setString(&c.GoogleSheetName, fc.GoogleSheetName)
	setDuration(&c.ReminderInterval, fc.ReminderInterval)
	if fc.CacheSize > 0 {
		c.CacheSize = fc.CacheSize
	}
	setDuration(&c.CacheTTL, fc.CacheTTL)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogFormat, fc.LogFormat)
	return nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"remote", "memory"}
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

	if c.DataBackend == "remote" {
		if parsedURL, err := url.Parse(c.APIBaseURL); err != nil || c.APIBaseURL == "" {
			errors = append(errors, fmt.Sprintf("invalid API base URL '%s'", c.APIBaseURL))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}

	if c.RequestTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at least 1 second", c.RequestTimeout))
	} else if c.RequestTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at most 1 minute", c.RequestTimeout))
	}

	if c.SnapshotDBPath != "" {
		// The snapshot repository creates missing directories when it
		// opens; validation only rejects paths that can never work.
		dir := filepath.Dir(c.SnapshotDBPath)
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			errors = append(errors, fmt.Sprintf("invalid snapshot path '%s': '%s' is not a directory", c.SnapshotDBPath, dir))
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

	// The three Google settings come as a package.
	hasAnyGoogle := c.GoogleCredentialsFile != "" || c.GoogleSpreadsheetID != "" || c.GoogleSheetName != ""
	if hasAnyGoogle {
		if c.GoogleCredentialsFile == "" {
			errors = append(errors, "GOOGLE_CREDENTIALS_FILE is required when Google Sheets export is configured")
		} else if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
		}
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "GOOGLE_SPREADSHEET_ID is required when Google Sheets export is configured")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "GOOGLE_SHEET_NAME is required when Google Sheets export is configured")
		}
	}

	if c.ReminderInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid reminder interval %v: must be at least 1 minute", c.ReminderInterval))
	} else if c.ReminderInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid reminder interval %v: must be at most 24 hours", c.ReminderInterval))
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json", "pretty":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text, json or pretty", c.LogFormat))
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

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) {
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}
