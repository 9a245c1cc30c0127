package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Logging  LoggingConfig
	Jobs     JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        string
	TimeZone    string
}

type DatabaseConfig struct {
	Driver   string // postgres | sqlite
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string // sqlite file
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type JobsConfig struct {
	LowStockCron string // empty disables the job
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using process environment")
	}

	ttlHours, err := strconv.Atoi(getEnv("JWT_TTL_HOURS", "12"))
	if err != nil {
		return nil, fmt.Errorf("JWT_TTL_HOURS: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Toko Bangunan POS"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("PORT", "3000"),
			TimeZone:    getEnv("APP_TIMEZONE", "Asia/Jakarta"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "toko_bangunan"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "pos.db"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
			TokenTTL:      time.Duration(ttlHours) * time.Hour,
			AdminUsername: getEnv("ADMIN_USERNAME", "owner"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "owner123"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Jobs: JobsConfig{
			LowStockCron: getEnv("LOW_STOCK_CRON", "0 7 * * *"),
		},
	}

	return cfg, nil
}

// DSN returns the connection string for the configured driver.
func (c *DatabaseConfig) DSN(timeZone string) string {
	if c.Driver == "sqlite" {
		return c.Path
	}
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, timeZone)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
