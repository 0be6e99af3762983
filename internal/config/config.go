package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Log       LogConfig       `yaml:"log"`
	Interest  InterestConfig  `yaml:"interest"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig selects the SQL driver and its connection settings.
// Path is used by sqlite3 only; the rest by postgres.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "postgres" or "sqlite3"
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	Path     string `yaml:"path"`
}

// SendGridConfig contains email notification settings. An empty APIKey
// disables email.
type SendGridConfig struct {
	APIKey     string   `yaml:"api_key"`
	FromEmail  string   `yaml:"from_email"`
	FromName   string   `yaml:"from_name"`
	Recipients []string `yaml:"recipients"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// InterestConfig contains accrual settings
type InterestConfig struct {
	MonthlyRatePercent float64 `yaml:"monthly_rate_percent"`
	Timezone           string  `yaml:"timezone"`
	BatchConcurrency   int     `yaml:"batch_concurrency"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ApplyDailyInterest string `yaml:"apply_daily_interest"`
	EmbedInServer      bool   `yaml:"embed_in_server"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_DRIVER"); val != "" {
		c.Database.Driver = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}
	if val := os.Getenv("DB_PATH"); val != "" {
		c.Database.Path = val
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("NOTIFY_RECIPIENTS"); val != "" {
		c.SendGrid.Recipients = strings.Split(val, ",")
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Interest
	if val := os.Getenv("INTEREST_RATE_PERCENT"); val != "" {
		fmt.Sscanf(val, "%g", &c.Interest.MonthlyRatePercent)
	}
	if val := os.Getenv("INTEREST_TIMEZONE"); val != "" {
		c.Interest.Timezone = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	case "sqlite3":
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for sqlite3")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	// SendGrid validation
	if c.SendGrid.APIKey != "" && c.SendGrid.FromEmail == "" {
		return fmt.Errorf("sendgrid from_email is required when an api key is set")
	}

	// Interest defaults
	if c.Interest.MonthlyRatePercent < 0 {
		return fmt.Errorf("invalid monthly interest rate: %g", c.Interest.MonthlyRatePercent)
	}
	if c.Interest.MonthlyRatePercent == 0 {
		c.Interest.MonthlyRatePercent = 1.5
	}
	if c.Interest.Timezone == "" {
		c.Interest.Timezone = "Asia/Kolkata"
	}
	if _, err := time.LoadLocation(c.Interest.Timezone); err != nil {
		return fmt.Errorf("invalid interest timezone %q: %w", c.Interest.Timezone, err)
	}
	if c.Interest.BatchConcurrency <= 0 {
		c.Interest.BatchConcurrency = 4
	}

	// Scheduler defaults
	if c.Scheduler.ApplyDailyInterest == "" {
		c.Scheduler.ApplyDailyInterest = "0 0 1 * * *"
	}

	return nil
}

// Location returns the timezone that defines "today" for accrual.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Interest.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetDatabaseDSN returns the driver-specific data source name
func (c *Config) GetDatabaseDSN() string {
	if c.Database.Driver == "sqlite3" {
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", c.Database.Path)
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
