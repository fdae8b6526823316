package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
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

// AppConfig holds application configuration
type AppConfig struct {
	Env      string
	LogLevel string
}

// PayrollConfig holds the tunable factors of the payroll engine
type PayrollConfig struct {
	// Fraction of the base salary paid by each thirteenth-salary installment.
	ThirteenthFirstInstallmentFactor  decimal.Decimal
	ThirteenthSecondInstallmentFactor decimal.Decimal
}

// DefaultPayrollConfig pays half of the base salary on each installment.
func DefaultPayrollConfig() PayrollConfig {
	half := decimal.RequireFromString("0.50")
	return PayrollConfig{
		ThirteenthFirstInstallmentFactor:  half,
		ThirteenthSecondInstallmentFactor: half,
	}
}

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
		Name:     getEnv("DB_NAME", "payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	config.App = AppConfig{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Payroll configuration
	defaults := DefaultPayrollConfig()
	firstFactor, err := getEnvDecimal("THIRTEENTH_FIRST_INSTALLMENT_FACTOR", defaults.ThirteenthFirstInstallmentFactor)
	if err != nil {
		return nil, err
	}
	secondFactor, err := getEnvDecimal("THIRTEENTH_SECOND_INSTALLMENT_FACTOR", defaults.ThirteenthSecondInstallmentFactor)
	if err != nil {
		return nil, err
	}
	config.Payroll = PayrollConfig{
		ThirteenthFirstInstallmentFactor:  firstFactor,
		ThirteenthSecondInstallmentFactor: secondFactor,
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
	if err := c.Payroll.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks that both installment factors are fractions of the base salary.
func (p PayrollConfig) Validate() error {
	one := decimal.NewFromInt(1)
	if p.ThirteenthFirstInstallmentFactor.IsNegative() || p.ThirteenthFirstInstallmentFactor.GreaterThan(one) {
		return fmt.Errorf("THIRTEENTH_FIRST_INSTALLMENT_FACTOR must be between 0 and 1")
	}
	if p.ThirteenthSecondInstallmentFactor.IsNegative() || p.ThirteenthSecondInstallmentFactor.GreaterThan(one) {
		return fmt.Errorf("THIRTEENTH_SECOND_INSTALLMENT_FACTOR must be between 0 and 1")
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

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
