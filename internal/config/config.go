// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`

	// File paths
	DatabasePath    string `mapstructure:"storagepath"`
	DatabaseName    string `mapstructure:"-"` // Derived from other settings
	PublicDirectory string `mapstructure:"publicdir"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseMaxOpenConns int `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int `mapstructure:"dbmaxidleconns"`

	// Outbound email settings
	SMTPHost          string `mapstructure:"smtphost"`
	SMTPPort          int    `mapstructure:"smtpport"`
	SMTPUsername      string `mapstructure:"smtpusername"`
	SMTPPassword      string `mapstructure:"smtppassword"`
	FromEmail         string `mapstructure:"fromemail"`
	NotificationEmail string `mapstructure:"notificationemail"`

	// Security settings
	CORSOrigin          string `mapstructure:"corsorigin"`
	RateLimitMax        int    `mapstructure:"ratelimitmax"`
	RateLimitWindowSecs int    `mapstructure:"ratelimitwindowseconds"`

	// Reporting settings
	SummaryDefaultDays int `mapstructure:"summarydefaultdays"`
	TopPagesLimit      int `mapstructure:"toppageslimit"`

	// Job scheduling settings
	JobIntervalSeconds int `mapstructure:"jobintervalseconds"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		// Set defaults
		v.SetDefault("appname", "docucloud")
		v.SetDefault("appport", "3000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("storagepath", "storage")
		v.SetDefault("publicdir", "public")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("smtphost", "")
		v.SetDefault("smtpport", 587)
		v.SetDefault("smtpusername", "")
		v.SetDefault("smtppassword", "")
		v.SetDefault("fromemail", "noreply@docucloudsolutions.com")
		v.SetDefault("notificationemail", "info@docucloudsolutions.com")
		v.SetDefault("corsorigin", "https://docucloudsolutions.com")
		v.SetDefault("ratelimitmax", 100)
		v.SetDefault("ratelimitwindowseconds", 900)
		v.SetDefault("summarydefaultdays", 30)
		v.SetDefault("toppageslimit", 10)
		v.SetDefault("jobintervalseconds", 300)

		// Bind environment variables
		v.BindEnv("appname", "DOCUCLOUD_APP_NAME")
		v.BindEnv("appport", "DOCUCLOUD_APP_PORT")
		v.BindEnv("environment", "DOCUCLOUD_ENV")
		v.BindEnv("loglevel", "DOCUCLOUD_LOG_LEVEL")
		v.BindEnv("storagepath", "DOCUCLOUD_STORAGE_PATH")
		v.BindEnv("publicdir", "DOCUCLOUD_PUBLIC_DIR")
		v.BindEnv("logsdir", "DOCUCLOUD_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "DOCUCLOUD_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "DOCUCLOUD_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "DOCUCLOUD_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbmaxopenconns", "DOCUCLOUD_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "DOCUCLOUD_DB_MAX_IDLE_CONNS")
		v.BindEnv("smtphost", "DOCUCLOUD_SMTP_HOST")
		v.BindEnv("smtpport", "DOCUCLOUD_SMTP_PORT")
		v.BindEnv("smtpusername", "DOCUCLOUD_SMTP_USERNAME")
		v.BindEnv("smtppassword", "DOCUCLOUD_SMTP_PASSWORD")
		v.BindEnv("fromemail", "DOCUCLOUD_FROM_EMAIL")
		v.BindEnv("notificationemail", "DOCUCLOUD_NOTIFICATION_EMAIL")
		v.BindEnv("corsorigin", "DOCUCLOUD_CORS_ORIGIN")
		v.BindEnv("ratelimitmax", "DOCUCLOUD_RATE_LIMIT_MAX")
		v.BindEnv("ratelimitwindowseconds", "DOCUCLOUD_RATE_LIMIT_WINDOW_SECONDS")
		v.BindEnv("summarydefaultdays", "DOCUCLOUD_SUMMARY_DEFAULT_DAYS")
		v.BindEnv("toppageslimit", "DOCUCLOUD_TOP_PAGES_LIMIT")
		v.BindEnv("jobintervalseconds", "DOCUCLOUD_JOB_INTERVAL_SECONDS")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		// Validate
		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		// Set derived values
		cfg.DatabaseName = cfg.GetDatabasePath()
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	if c.SummaryDefaultDays <= 0 {
		return fmt.Errorf("invalid summary default window: %d", c.SummaryDefaultDays)
	}

	if c.RateLimitMax <= 0 || c.RateLimitWindowSecs <= 0 {
		return fmt.Errorf("invalid rate limit settings: max=%d window=%d",
			c.RateLimitMax, c.RateLimitWindowSecs)
	}

	return nil
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.DatabasePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment.
// If explicitly set via env var, uses that value. Otherwise:
// - Test: 1 (required for in-memory database stability)
// - Development/Production: 10 (allows concurrent reads under tracking traffic)
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 10
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment.
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 5
}

// RateLimitWindow returns the rate limit window as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSecs) * time.Second
}

// JobInterval returns the background job interval as a duration.
func (c *Config) JobInterval() time.Duration {
	return time.Duration(c.JobIntervalSeconds) * time.Second
}

// EmailConfigured reports whether outbound email can be sent.
func (c *Config) EmailConfigured() bool {
	return c.SMTPHost != ""
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
