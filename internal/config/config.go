package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	AppEnv   string
	AppDebug bool
	AppURL   string

	ServerPort string

	// Database: MySQL when USE_MYSQL is set, SQLite file otherwise.
	UseMySQL     bool
	DatabaseType string
	DatabaseURL  string
	DatabasePath string

	DBHost string
	DBName string
	DBUser string
	DBPass string

	SessionLifetime time.Duration
	CSRFSecret      string

	SMTPFrom      string
	EmailFromName string
	AWSRegion     string

	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
	AppleClientID        string
	AppleClientSecret    string

	StaticFilesPath string
	TemplatesPath   string
	MigrationsPath  string
	UploadsPath     string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := &Config{
		AppEnv:     getEnv("APP_ENV", "production"),
		AppDebug:   getEnvBool("APP_DEBUG", false),
		AppURL:     getEnv("APP_URL", "http://localhost:8080"),
		ServerPort: getEnv("PORT", "8080"),

		UseMySQL:     getEnvBool("USE_MYSQL", false),
		DatabasePath: getEnv("DB_PATH", "./communityhub.db"),
		DBHost:       getEnv("DB_HOST", "127.0.0.1"),
		DBName:       getEnv("DB_NAME", "communityhub"),
		DBUser:       getEnv("DB_USER", "communityhub"),
		DBPass:       getEnv("DB_PASS", ""),

		SessionLifetime: getEnvSeconds("SESSION_LIFETIME", 24*time.Hour),
		CSRFSecret:      getEnv("CSRF_SECRET", "dev-only-csrf-secret"),

		SMTPFrom:      getEnv("SMTP_FROM", ""),
		EmailFromName: getEnv("SMTP_FROM_NAME", "CommunityHub"),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		FacebookClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
		FacebookClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),
		AppleClientID:        getEnv("APPLE_CLIENT_ID", ""),
		AppleClientSecret:    getEnv("APPLE_CLIENT_SECRET", ""),

		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		TemplatesPath:   getEnv("TEMPLATES_PATH", "./internal/templates"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		UploadsPath:     getEnv("UPLOADS_PATH", "./static/uploads"),
	}

	if cfg.UseMySQL {
		cfg.DatabaseType = "mysql"
		cfg.DatabaseURL = fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4",
			cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBName)
	} else {
		cfg.DatabaseType = "sqlite"
	}

	return cfg
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool reads a boolean environment variable
func getEnvBool(key string, defaultValue bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return defaultValue
}

// getEnvSeconds reads a duration expressed as a number of seconds
func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		log.Printf("Invalid %s value %q, using default", key, value)
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
