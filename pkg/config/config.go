// pkg/config/config.go
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

	"github.com/David-Botos/s3-ingress/pkg/cleaner"
	"github.com/David-Botos/s3-ingress/pkg/storage"
)

// ErrMissingSetting is wrapped by every error about a required variable that is not set
var ErrMissingSetting = errors.New("missing required setting")

// WarehouseKind selects the warehouse the staged file is copied into
type WarehouseKind string

const (
	WarehouseRedshift  WarehouseKind = "redshift"
	WarehouseSnowflake WarehouseKind = "snowflake"
)

// Config represents the application configuration
type Config struct {
	// Warehouse connection, only the selected kind is loaded
	WarehouseKind WarehouseKind
	Redshift      *RedshiftConfig
	Snowflake     *SnowflakeConfig

	// Object store settings
	AWSRegion     string
	S3Endpoint    string
	StagingBucket string
	StagingPrefix string

	// Transfer settings
	SourceEncoding  string
	CleaningProfile string
	VerifyLoad      bool
	LoadAuditTable  string
	LoadTimeout     time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadDotEnv loads variables from .env files without overriding the environment.
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		WarehouseKind: WarehouseKind(strings.ToLower(getEnv("WAREHOUSE_KIND", string(WarehouseRedshift)))),

		AWSRegion:     getEnv("AWS_REGION", ""),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		StagingBucket: getEnv("STAGING_BUCKET", "e-commerce-processed"),
		StagingPrefix: getEnv("STAGING_PREFIX", ""),

		SourceEncoding:  getEnv("SOURCE_ENCODING", storage.EncodingLatin1),
		CleaningProfile: getEnv("CLEANING_PROFILE", string(cleaner.ProfileBaseline)),
		VerifyLoad:      getEnvAsBool("VERIFY_LOAD", false),
		LoadAuditTable:  getEnv("LOAD_AUDIT_TABLE", ""),
		LoadTimeout:     time.Duration(getEnvAsInt("LOAD_TIMEOUT_SECONDS", 0)) * time.Second,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	switch cfg.WarehouseKind {
	case WarehouseRedshift:
		rsConfig, err := LoadRedshiftConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load Redshift configuration: %w", err)
		}
		cfg.Redshift = rsConfig
	case WarehouseSnowflake:
		sfConfig, err := LoadSnowflakeConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load Snowflake configuration: %w", err)
		}
		cfg.Snowflake = sfConfig
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.WarehouseKind {
	case WarehouseRedshift:
		if c.Redshift == nil {
			return errors.New("redshift configuration is required")
		}
	case WarehouseSnowflake:
		if c.Snowflake == nil {
			return errors.New("snowflake configuration is required")
		}
	default:
		return fmt.Errorf("unsupported warehouse kind %q", c.WarehouseKind)
	}

	if c.StagingBucket == "" {
		return fmt.Errorf("%w: STAGING_BUCKET", ErrMissingSetting)
	}

	if _, err := storage.LookupEncoding(c.SourceEncoding); err != nil {
		return err
	}

	if _, err := cleaner.ParseProfile(c.CleaningProfile); err != nil {
		return err
	}

	// Zero leaves the load unbounded
	if c.LoadTimeout < 0 {
		return errors.New("load timeout cannot be negative")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%w: %s environment variable is required", ErrMissingSetting, key)
	}
	return value, nil
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
