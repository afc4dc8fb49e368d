package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Ledger   LedgerConfig
	Notify   NotifyConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

// LedgerConfig holds the attendance ledger configuration
type LedgerConfig struct {
	Store              string // xlsx | memory
	WorkbookPath       string
	NameMatch          string // exact | fold
	YearEpoch          string // buddhist | gregorian
	Language           string // en | th
	AutoProvision      bool
	VerifyBeforeAppend bool
	SchemaRegistry     string // memory | postgres
}

// NotifyConfig holds notification configuration
type NotifyConfig struct {
	DedupWindow time.Duration
	DedupSize   int
	Workers     int
	QueueSize   int
}

const (
	StoreXLSX   = "xlsx"
	StoreMemory = "memory"

	RegistryMemory   = "memory"
	RegistryPostgres = "postgres"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance_ledger"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "12h"),
	}

	// Ledger configuration
	autoProvision, err := getEnvBool("LEDGER_AUTO_PROVISION", true)
	if err != nil {
		return nil, err
	}
	verify, err := getEnvBool("LEDGER_VERIFY_BEFORE_APPEND", true)
	if err != nil {
		return nil, err
	}

	config.Ledger = LedgerConfig{
		Store:              strings.ToLower(getEnv("LEDGER_STORE", StoreXLSX)),
		WorkbookPath:       getEnv("LEDGER_WORKBOOK_PATH", "attendance.xlsx"),
		NameMatch:          strings.ToLower(getEnv("LEDGER_NAME_MATCH", "exact")),
		YearEpoch:          strings.ToLower(getEnv("LEDGER_YEAR_EPOCH", "buddhist")),
		Language:           getEnv("LEDGER_LANGUAGE", "en"),
		AutoProvision:      autoProvision,
		VerifyBeforeAppend: verify,
		SchemaRegistry:     strings.ToLower(getEnv("SCHEMA_REGISTRY", RegistryMemory)),
	}

	// Notification configuration
	dedupWindow, err := time.ParseDuration(getEnv("NOTIFY_DEDUP_WINDOW", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_DEDUP_WINDOW: %w", err)
	}
	dedupSize, err := getEnvInt("NOTIFY_DEDUP_SIZE", 1024)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvInt("NOTIFY_WORKERS", 2)
	if err != nil {
		return nil, err
	}
	queueSize, err := getEnvInt("NOTIFY_QUEUE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	config.Notify = NotifyConfig{
		DedupWindow: dedupWindow,
		DedupSize:   dedupSize,
		Workers:     workers,
		QueueSize:   queueSize,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" {
		errs = append(errs, fmt.Errorf("JWT_SECRET_KEY is required"))
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		errs = append(errs, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err))
	}

	switch c.Ledger.Store {
	case StoreXLSX:
		if c.Ledger.WorkbookPath == "" {
			errs = append(errs, fmt.Errorf("LEDGER_WORKBOOK_PATH is required when LEDGER_STORE=xlsx"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("LEDGER_STORE must be one of: xlsx, memory"))
	}

	switch c.Ledger.NameMatch {
	case "exact", "fold":
	default:
		errs = append(errs, fmt.Errorf("LEDGER_NAME_MATCH must be one of: exact, fold"))
	}

	switch c.Ledger.YearEpoch {
	case "buddhist", "gregorian":
	default:
		errs = append(errs, fmt.Errorf("LEDGER_YEAR_EPOCH must be one of: buddhist, gregorian"))
	}

	switch c.Ledger.SchemaRegistry {
	case RegistryMemory:
	case RegistryPostgres:
		if c.Database.Password == "" {
			errs = append(errs, fmt.Errorf("DB_PASSWORD is required when SCHEMA_REGISTRY=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("SCHEMA_REGISTRY must be one of: memory, postgres"))
	}

	if c.Notify.DedupWindow <= 0 {
		errs = append(errs, fmt.Errorf("NOTIFY_DEDUP_WINDOW must be positive"))
	}
	if c.Notify.Workers < 1 {
		errs = append(errs, fmt.Errorf("NOTIFY_WORKERS must be at least 1"))
	}

	return errors.Join(errs...)
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

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info
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

func getEnvInt(key string, fallback int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
