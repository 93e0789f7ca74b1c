package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Database DatabaseConfig
	Store    StoreConfig
	App      AppConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// StoreConfig selects the backing store for employees, attendance and
// payroll records.
type StoreConfig struct {
	Driver     string
	SQLitePath string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

type PayrollConfig struct {
	LateRate         decimal.Decimal
	AbsentRate       decimal.Decimal
	Workers          int
	ScheduleInterval time.Duration
	BackfillOnStart  bool
}

// Rates returns the configured deduction rates.
func (c PayrollConfig) Rates() payroll.Rates {
	return payroll.Rates{Late: c.LateRate, Absent: c.AbsentRate}
}

// Load reads configuration from the environment, after loading .env when
// one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "payroll_db"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	config.Store = StoreConfig{
		Driver:     strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		SQLitePath: getEnv("SQLITE_PATH", "payroll.db"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// Payroll configuration
	lateRate, err := decimal.NewFromString(getEnv("PAYROLL_LATE_RATE", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_LATE_RATE: %w", err)
	}
	absentRate, err := decimal.NewFromString(getEnv("PAYROLL_ABSENT_RATE", "500"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_ABSENT_RATE: %w", err)
	}
	workers, err := strconv.Atoi(getEnv("PAYROLL_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_WORKERS: %w", err)
	}
	interval, err := time.ParseDuration(getEnv("PAYROLL_SCHEDULE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_SCHEDULE_INTERVAL: %w", err)
	}
	backfill, err := strconv.ParseBool(getEnv("PAYROLL_BACKFILL_ON_START", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_BACKFILL_ON_START: %w", err)
	}

	config.Payroll = PayrollConfig{
		LateRate:         lateRate,
		AbsentRate:       absentRate,
		Workers:          workers,
		ScheduleInterval: interval,
		BackfillOnStart:  backfill,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StoreDriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of %s, %s, %s", StoreDriverPostgres, StoreDriverSQLite, StoreDriverMemory)
	}

	if err := c.Payroll.Rates().Validate(); err != nil {
		return fmt.Errorf("PAYROLL_LATE_RATE and PAYROLL_ABSENT_RATE: %w", err)
	}
	if c.Payroll.Workers < 1 {
		return fmt.Errorf("PAYROLL_WORKERS must be at least 1")
	}
	if c.Payroll.ScheduleInterval <= 0 {
		return fmt.Errorf("PAYROLL_SCHEDULE_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto slog levels, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
