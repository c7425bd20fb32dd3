package config

import (
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

var validBackends = []string{BackendMemory, BackendSQLite, BackendPostgres}

type Config struct {
	// HTTP Server
	Port            string
	ShutdownTimeout time.Duration

	// Storage
	DataBackend  string
	SQLiteDBPath string
	DatabaseURL  string

	// Ledger
	OwnerEmail         string
	MaxRecurrenceCount int

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	LogLevel string

	// fileErr records a CONFIG_FILE that could not be read; Validate reports it.
	fileErr error
}

// Load reads .env (if present), an optional CONFIG_FILE, and the process
// environment, in increasing order of precedence.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not load .env file", "error", err)
	}

	v := viper.New()
	v.SetDefault("port", "8081")
	v.SetDefault("shutdown_timeout", 30*time.Second)
	v.SetDefault("data_backend", BackendMemory)
	v.SetDefault("sqlite_db_path", "./data/saldo.db")
	v.SetDefault("database_url", "")
	v.SetDefault("owner_email", "demo@local")
	v.SetDefault("max_recurrence_count", 120)
	v.SetDefault("amqp_url", "")
	v.SetDefault("amqp_exchange", "saldo")
	v.SetDefault("amqp_queue", "ledger_events")
	v.SetDefault("google_spreadsheet_id", "")
	v.SetDefault("google_sheet_name", "Lancamentos")
	v.SetDefault("google_service_account_file", "")
	v.SetDefault("google_service_account_json", "")
	v.SetDefault("log_level", "info")
	v.AutomaticEnv()

	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			cfg.fileErr = fmt.Errorf("cannot read config file '%s': %v", path, err)
		}
	}

	cfg.Port = v.GetString("port")
	cfg.ShutdownTimeout = v.GetDuration("shutdown_timeout")
	cfg.DataBackend = strings.ToLower(strings.TrimSpace(v.GetString("data_backend")))
	cfg.SQLiteDBPath = v.GetString("sqlite_db_path")
	cfg.DatabaseURL = v.GetString("database_url")
	cfg.OwnerEmail = strings.TrimSpace(v.GetString("owner_email"))
	cfg.MaxRecurrenceCount = v.GetInt("max_recurrence_count")
	cfg.AMQPURL = v.GetString("amqp_url")
	cfg.AMQPExchange = v.GetString("amqp_exchange")
	cfg.AMQPQueue = v.GetString("amqp_queue")
	cfg.GoogleSpreadsheetID = v.GetString("google_spreadsheet_id")
	cfg.GoogleSheetName = v.GetString("google_sheet_name")
	cfg.GoogleServiceAccountFile = v.GetString("google_service_account_file")
	cfg.GoogleServiceAccountJSON = v.GetString("google_service_account_json")
	cfg.LogLevel = v.GetString("log_level")

	return cfg
}

// EventsEnabled reports whether ledger events should be published.
func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

// MirrorEnabled reports whether the spreadsheet mirror is configured.
func (c *Config) MirrorEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.fileErr != nil {
		errors = append(errors, c.fileErr.Error())
	}

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	// Validate data backend
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when using postgres backend")
		} else if u, err := url.Parse(c.DatabaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid DATABASE_URL: %v", err))
		} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			errors = append(errors, fmt.Sprintf("invalid DATABASE_URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
		}
	}

	if _, err := mail.ParseAddress(c.OwnerEmail); err != nil {
		errors = append(errors, fmt.Sprintf("invalid owner email '%s'", c.OwnerEmail))
	}

	if c.MaxRecurrenceCount < 1 {
		errors = append(errors, fmt.Sprintf("invalid max recurrence count %d: must be at least 1", c.MaxRecurrenceCount))
	} else if c.MaxRecurrenceCount > 600 {
		errors = append(errors, fmt.Sprintf("invalid max recurrence count %d: must be at most 600", c.MaxRecurrenceCount))
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

	if c.MirrorEnabled() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when GOOGLE_SPREADSHEET_ID is set")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		hasJSON := c.GoogleServiceAccountJSON != ""
		if !hasFile && !hasJSON && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for the sheets mirror")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateWorker adds the requirements of the mirror worker on top of Validate.
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	var errors []string
	if !c.EventsEnabled() {
		errors = append(errors, "AMQP_URL is required by the worker")
	}
	if !c.MirrorEnabled() {
		errors = append(errors, "GOOGLE_SPREADSHEET_ID is required by the worker")
	}
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
