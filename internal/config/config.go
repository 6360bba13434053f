package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Timecard TimecardConfig
	Report   ReportConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// TimecardConfig holds the compliance thresholds and the auto-approval cadence.
type TimecardConfig struct {
	LongShiftThreshold  time.Duration
	InferredBreak       time.Duration
	MandatoryBreakAfter time.Duration
	MaxShift            time.Duration
	MinShift            time.Duration
	MaxBreak            time.Duration
	StandardDayMinutes  int
	Location            *time.Location

	// AutoApprovalInterval is zero unless AUTO_APPROVAL_INTERVAL is set, in
	// which case the API runs the sweep itself.
	AutoApprovalInterval time.Duration
}

type ReportConfig struct {
	Locale  string
	Timeout time.Duration
}

func Load() (*Config, error) {
	// .env is optional; the environment wins when both set a key.
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
		slog.Debug("No .env file found, using environment only")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "timecard"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "timecard"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Timecard configuration
	timecard := TimecardConfig{}
	durations := []struct {
		key      string
		fallback string
		target   *time.Duration
	}{
		{"TIMECARD_LONG_SHIFT_THRESHOLD", "6h", &timecard.LongShiftThreshold},
		{"TIMECARD_INFERRED_BREAK", "1h", &timecard.InferredBreak},
		{"TIMECARD_MANDATORY_BREAK_AFTER", "6h", &timecard.MandatoryBreakAfter},
		{"TIMECARD_MAX_SHIFT", "16h", &timecard.MaxShift},
		{"TIMECARD_MIN_SHIFT", "5m", &timecard.MinShift},
		{"TIMECARD_MAX_BREAK", "4h", &timecard.MaxBreak},
		{"AUTO_APPROVAL_INTERVAL", "0", &timecard.AutoApprovalInterval},
	}
	for _, d := range durations {
		if *d.target, err = time.ParseDuration(getEnv(d.key, d.fallback)); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
	}

	if timecard.StandardDayMinutes, err = strconv.Atoi(getEnv("TIMECARD_STANDARD_DAY_MINUTES", "480")); err != nil {
		return nil, fmt.Errorf("invalid TIMECARD_STANDARD_DAY_MINUTES: %w", err)
	}

	if timecard.Location, err = time.LoadLocation(getEnv("TIMECARD_TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("invalid TIMECARD_TIMEZONE: %w", err)
	}
	config.Timecard = timecard

	// Report configuration
	reportTimeout, err := time.ParseDuration(getEnv("REPORT_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_TIMEOUT: %w", err)
	}
	config.Report = ReportConfig{
		Locale:  getEnv("REPORT_LOCALE", "en"),
		Timeout: reportTimeout,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	if c.Timecard.MinShift >= c.Timecard.MaxShift {
		return fmt.Errorf("TIMECARD_MIN_SHIFT must be below TIMECARD_MAX_SHIFT")
	}
	if c.Timecard.StandardDayMinutes <= 0 {
		return fmt.Errorf("TIMECARD_STANDARD_DAY_MINUTES must be positive")
	}
	if c.Timecard.AutoApprovalInterval < 0 {
		return fmt.Errorf("AUTO_APPROVAL_INTERVAL must not be negative")
	}
	if !slices.Contains([]string{"en", "pt-BR"}, c.Report.Locale) {
		return fmt.Errorf("REPORT_LOCALE must be one of: en, pt-BR")
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

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
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
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
