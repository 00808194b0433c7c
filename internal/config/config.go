// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database     DatabaseConfig
	Server       ServerConfig
	Logging      LoggingConfig
	CORS         CORSConfig
	SMTP         SMTPConfig
	Registration RegistrationConfig
	Tools        ToolsConfig
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	Path string
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

// SMTPConfig holds mail relay configuration. The relay endpoint and sender
// credentials are operationally sensitive and must come from the environment.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// RegistrationConfig holds registration settings
type RegistrationConfig struct {
	// ModeratorCode is the shared secret checked when an account registers
	// with the moderator role.
	ModeratorCode string
}

// ToolsConfig holds settings for remote workbench capabilities
type ToolsConfig struct {
	// RemoteBaseURL is the base URL the remote capabilities (extraction, OCR,
	// recognition services) are reachable under. Optional; remote
	// capabilities report an error when unset.
	RemoteBaseURL string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "users.db" // default
	}
	cfg.Database.Path = dbPath

	// Server configuration
	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = "8080" // default port
	}
	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if corsOrigins == "" {
		// Default to allow all origins if not specified (for development)
		cfg.CORS.AllowedOrigins = []string{"*"}
	} else {
		// Parse comma-separated origins
		origins := strings.Split(corsOrigins, ",")
		cfg.CORS.AllowedOrigins = make([]string, 0, len(origins))
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, origin)
			}
		}
		if len(cfg.CORS.AllowedOrigins) == 0 {
			cfg.CORS.AllowedOrigins = []string{"*"}
		}
	}

	// SMTP configuration
	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		return nil, fmt.Errorf("SMTP_HOST is required")
	}
	cfg.SMTP.Host = smtpHost

	smtpPortStr := os.Getenv("SMTP_PORT")
	if smtpPortStr == "" {
		smtpPortStr = "587" // default
	}
	smtpPort, err := strconv.Atoi(smtpPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	cfg.SMTP.Port = smtpPort

	smtpUsername := os.Getenv("SMTP_USERNAME")
	if smtpUsername == "" {
		return nil, fmt.Errorf("SMTP_USERNAME is required")
	}
	cfg.SMTP.Username = smtpUsername

	smtpPassword := os.Getenv("SMTP_PASSWORD")
	if smtpPassword == "" {
		return nil, fmt.Errorf("SMTP_PASSWORD is required")
	}
	cfg.SMTP.Password = smtpPassword

	smtpFrom := os.Getenv("SMTP_FROM")
	if smtpFrom == "" {
		smtpFrom = smtpUsername // default to the relay account
	}
	cfg.SMTP.From = smtpFrom

	// Moderator registration code
	moderatorCode := os.Getenv("MODERATOR_CODE")
	if moderatorCode == "" {
		return nil, fmt.Errorf("MODERATOR_CODE is required")
	}
	cfg.Registration.ModeratorCode = moderatorCode

	// Remote capability base URL (optional)
	cfg.Tools.RemoteBaseURL = strings.TrimRight(os.Getenv("TOOLS_REMOTE_BASE_URL"), "/")

	return cfg, nil
}

// DSN returns the SQLite connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", c.Database.Path)
}
