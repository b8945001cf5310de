// Package config provides configuration for the application
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// APIKey protects the assistant and session routes when set.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Logging  LoggingConfig
	CORS     CORSConfig
	OpenAI   OpenAIConfig
	Gateway  GatewayConfig
	Session  SessionConfig
	Media    MediaConfig
	APIKey   string
}

// DatabaseConfig holds database connection settings.
// The database is optional; without DB_HOST the background list comes from configuration.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// OpenAIConfig holds the hosted assistant settings
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	AssistantID string
	Timeout     time.Duration
}

// GatewayConfig points the chat client at a remote gateway instead of the in-process one
type GatewayConfig struct {
	URL string
}

// SessionConfig holds editor session settings
type SessionConfig struct {
	TTL time.Duration
}

// MediaConfig holds background image settings
type MediaConfig struct {
	BasePath         string
	BackgroundImages []string
}

const (
	defaultServerPort     = 8080
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
	defaultAssistantID    = "asst_x73uyEtK0Ye5upLjW63hbA7A"
	defaultOpenAITimeout  = 60 * time.Second
	defaultSessionTTL     = 2 * time.Hour
	defaultMediaBasePath  = "./media"
	defaultDatabasePort   = 3306
	defaultLogLevel       = "info"
	defaultEnvFile        = ".env"
	maxOpenAITimeoutInSec = 600
)

// Load reads configuration from environment variables, after applying an optional .env file
func Load() (*Config, error) {
	if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only
func FromEnv() (*Config, error) {
	cfg := &Config{}

	// Server configuration
	port, err := intEnv("SERVER_PORT", defaultServerPort)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = port

	// Logging configuration
	cfg.Logging.Level = stringEnv("LOG_LEVEL", defaultLogLevel)

	// CORS configuration
	cfg.CORS.AllowedOrigins = listEnv("CORS_ALLOWED_ORIGINS")
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}

	cfg.APIKey = os.Getenv("API_KEY")

	// Assistant configuration
	cfg.OpenAI.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.OpenAI.BaseURL = strings.TrimRight(stringEnv("OPENAI_BASE_URL", defaultOpenAIBaseURL), "/")
	cfg.OpenAI.AssistantID = stringEnv("OPENAI_ASSISTANT_ID", defaultAssistantID)
	timeoutSec, err := intEnv("OPENAI_TIMEOUT_SECONDS", int(defaultOpenAITimeout/time.Second))
	if err != nil {
		return nil, err
	}
	if timeoutSec <= 0 || timeoutSec > maxOpenAITimeoutInSec {
		return nil, fmt.Errorf("OPENAI_TIMEOUT_SECONDS must be between 1 and %d", maxOpenAITimeoutInSec)
	}
	cfg.OpenAI.Timeout = time.Duration(timeoutSec) * time.Second

	cfg.Gateway.URL = strings.TrimRight(os.Getenv("GATEWAY_URL"), "/")

	// Session configuration
	cfg.Session.TTL = defaultSessionTTL
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
		}
		if ttl < 0 {
			return nil, fmt.Errorf("SESSION_TTL must not be negative")
		}
		cfg.Session.TTL = ttl
	}

	// Media configuration
	cfg.Media.BasePath = stringEnv("MEDIA_BASE_PATH", defaultMediaBasePath)
	cfg.Media.BackgroundImages = listEnv("BACKGROUND_IMAGES")

	// Database configuration
	if err := loadDatabase(&cfg.Database); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadDatabase(db *DatabaseConfig) error {
	db.Host = os.Getenv("DB_HOST")
	if db.Host == "" {
		return nil
	}

	port, err := intEnv("DB_PORT", defaultDatabasePort)
	if err != nil {
		return err
	}
	db.Port = port

	db.User = os.Getenv("DB_USER")
	if db.User == "" {
		return fmt.Errorf("DB_USER is required when DB_HOST is set")
	}
	db.Password = os.Getenv("DB_PASSWORD")
	if db.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required when DB_HOST is set")
	}
	db.DBName = os.Getenv("DB_NAME")
	if db.DBName == "" {
		return fmt.Errorf("DB_NAME is required when DB_HOST is set")
	}
	return nil
}

// DatabaseEnabled reports whether a database was configured
func (c *Config) DatabaseEnabled() bool {
	return c.Database.Host != ""
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// listEnv splits a comma separated variable, dropping blank items
func listEnv(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
