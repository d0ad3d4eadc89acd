// config/config.go - Environment configuration
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Translator TranslatorConfig
	Logging    LoggingConfig

	// Location is the calendar used to truncate award timestamps to days.
	Location *time.Location
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	Environment     string
	CORSOrigins     string
	BodyLimit       int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds store configuration
type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
	LogLevel        string
}

// TranslatorConfig selects and configures the localization backend
type TranslatorConfig struct {
	Backend        string // catalog, http, none
	URL            string
	APIKey         string
	SourceLanguage string
	Timeout        time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	TranslatorCatalog = "catalog"
	TranslatorHTTP    = "http"
	TranslatorNone    = "none"
)

// Load reads the configuration from the process environment.
// Malformed numbers and durations fall back to their defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "3000"),
			Environment:     getEnv("APP_ENV", "development"),
			CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
			BodyLimit:       getEnvInt("BODY_LIMIT", 4*1024*1024),
			ReadTimeout:     getEnvDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			QueryTimeout:    getEnvDuration("DB_QUERY_TIMEOUT", 5*time.Second),
			LogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
		},
		Translator: TranslatorConfig{
			Backend:        strings.ToLower(getEnv("TRANSLATOR", TranslatorCatalog)),
			URL:            os.Getenv("TRANSLATOR_URL"),
			APIKey:         os.Getenv("TRANSLATOR_API_KEY"),
			SourceLanguage: getEnv("SOURCE_LANGUAGE", "en"),
			Timeout:        getEnvDuration("TRANSLATOR_TIMEOUT", 3*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	cfg.Database.URL = databaseURL(cfg.Database.Driver)

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the application cannot start with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Translator.Backend {
	case TranslatorCatalog, TranslatorNone:
	case TranslatorHTTP:
		if c.Translator.URL == "" {
			return fmt.Errorf("TRANSLATOR_URL must be set when TRANSLATOR=http")
		}
	default:
		return fmt.Errorf("unsupported TRANSLATOR %q", c.Translator.Backend)
	}

	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("DB_QUERY_TIMEOUT must be positive")
	}
	if c.Location == nil {
		return fmt.Errorf("timezone is not configured")
	}
	return nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// databaseURL prefers DATABASE_URL and otherwise assembles a DSN for the driver
func databaseURL(driver string) string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	if driver == DriverSQLite {
		return getEnv("DB_PATH", "file:achievements.db?_foreign_keys=on")
	}

	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "")
	dbname := getEnv("DB_NAME", "users_achievements")
	sslmode := getEnv("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return def
}
