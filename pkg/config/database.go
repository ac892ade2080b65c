// pkg/config/database.go
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"
)

// RedshiftConfig holds Redshift connection parameters
type RedshiftConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Schema   string // Empty loads into the search_path default

	// IAM role Redshift assumes to read the staged object
	IAMRole string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Statement timeout
	StatementTimeout time.Duration
}

// SnowflakeConfig holds Snowflake connection parameters
type SnowflakeConfig struct {
	User          string
	Password      string
	Account       string
	Warehouse     string
	Database      string
	Schema        string
	Role          string
	Authenticator gosnowflake.AuthType

	// Storage integration granting Snowflake read access to the staging bucket
	StorageIntegration string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Session statement timeout, zero keeps the account default
	QueryTimeout time.Duration
}

// LoadRedshiftConfig loads Redshift configuration from environment variables
func LoadRedshiftConfig() (*RedshiftConfig, error) {
	host, err := requireEnv("REDSHIFT_HOST")
	if err != nil {
		return nil, err
	}

	database, err := requireEnv("REDSHIFT_DB")
	if err != nil {
		return nil, err
	}

	user, err := requireEnv("REDSHIFT_USER")
	if err != nil {
		return nil, err
	}

	password, err := requireEnv("REDSHIFT_PASSWORD")
	if err != nil {
		return nil, err
	}

	iamRole, err := requireEnv("REDSHIFT_IAM_ROLE")
	if err != nil {
		return nil, err
	}

	cfg := &RedshiftConfig{
		Host:     host,
		Port:     getEnvAsInt("REDSHIFT_PORT", 5439),
		User:     user,
		Password: password,
		Database: database,
		SSLMode:  getEnv("REDSHIFT_SSLMODE", "require"),
		Schema:   getEnv("REDSHIFT_SCHEMA", ""),
		IAMRole:  iamRole,

		// A single invocation holds at most one connection
		MaxOpenConns:     getEnvAsInt("REDSHIFT_MAX_OPEN_CONNS", 2),
		MaxIdleConns:     getEnvAsInt("REDSHIFT_MAX_IDLE_CONNS", 1),
		ConnMaxLifetime:  time.Duration(getEnvAsInt("REDSHIFT_CONN_MAX_LIFETIME_SECONDS", 1800)) * time.Second,
		ConnMaxIdleTime:  time.Duration(getEnvAsInt("REDSHIFT_CONN_MAX_IDLE_TIME_SECONDS", 600)) * time.Second,
		StatementTimeout: time.Duration(getEnvAsInt("REDSHIFT_STATEMENT_TIMEOUT_SECONDS", 300)) * time.Second,
	}

	return cfg, nil
}

// LoadSnowflakeConfig loads Snowflake configuration from environment variables
func LoadSnowflakeConfig() (*SnowflakeConfig, error) {
	user, err := requireEnv("SNOWFLAKE_USER")
	if err != nil {
		return nil, err
	}

	password, err := requireEnv("SNOWFLAKE_PASSWORD")
	if err != nil {
		return nil, err
	}

	account, err := requireEnv("SNOWFLAKE_ACCOUNT")
	if err != nil {
		return nil, err
	}

	warehouse, err := requireEnv("SNOWFLAKE_WAREHOUSE")
	if err != nil {
		return nil, err
	}

	integration, err := requireEnv("SNOWFLAKE_STORAGE_INTEGRATION")
	if err != nil {
		return nil, err
	}

	cfg := &SnowflakeConfig{
		User:               user,
		Password:           password,
		Account:            account,
		Warehouse:          warehouse,
		Database:           getEnv("SNOWFLAKE_DATABASE", "E_COMMERCE"),
		Schema:             getEnv("SNOWFLAKE_SCHEMA", "PUBLIC"),
		Role:               getEnv("SNOWFLAKE_ROLE", ""),
		Authenticator:      parseAuthenticator(getEnv("SNOWFLAKE_AUTHENTICATOR", "snowflake")),
		StorageIntegration: integration,

		MaxOpenConns:    getEnvAsInt("SNOWFLAKE_MAX_OPEN_CONNS", 2),
		MaxIdleConns:    getEnvAsInt("SNOWFLAKE_MAX_IDLE_CONNS", 1),
		ConnMaxLifetime: time.Duration(getEnvAsInt("SNOWFLAKE_CONN_MAX_LIFETIME_SECONDS", 600)) * time.Second,
		ConnMaxIdleTime: time.Duration(getEnvAsInt("SNOWFLAKE_CONN_MAX_IDLE_TIME_SECONDS", 300)) * time.Second,
		QueryTimeout:    time.Duration(getEnvAsInt("SNOWFLAKE_QUERY_TIMEOUT_SECONDS", 300)) * time.Second,
	}

	return cfg, nil
}

// parseAuthenticator converts an authenticator name to the driver type
func parseAuthenticator(name string) gosnowflake.AuthType {
	switch strings.ToLower(name) {
	case "oauth":
		return gosnowflake.AuthTypeOAuth
	case "externalbrowser":
		return gosnowflake.AuthTypeExternalBrowser
	case "username_password_mfa":
		return gosnowflake.AuthTypeUsernamePasswordMFA
	case "jwt":
		return gosnowflake.AuthTypeJwt
	case "token":
		return gosnowflake.AuthTypeTokenAccessor
	case "okta":
		return gosnowflake.AuthTypeOkta
	default:
		return gosnowflake.AuthTypeSnowflake
	}
}

// DriverConfig returns the gosnowflake configuration used to build the DSN
func (c *SnowflakeConfig) DriverConfig() *gosnowflake.Config {
	driverCfg := &gosnowflake.Config{
		Account:       c.Account,
		User:          c.User,
		Password:      c.Password,
		Database:      c.Database,
		Schema:        c.Schema,
		Warehouse:     c.Warehouse,
		Role:          c.Role,
		Authenticator: c.Authenticator,
	}

	if c.QueryTimeout > 0 {
		seconds := strconv.FormatInt(int64(c.QueryTimeout/time.Second), 10)
		driverCfg.Params = map[string]*string{
			"STATEMENT_TIMEOUT_IN_SECONDS": &seconds,
		}
	}

	return driverCfg
}

// ConnectionString returns a formatted Redshift connection string for the pgx driver
func (c *RedshiftConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}
