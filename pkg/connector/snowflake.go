// pkg/connector/snowflake.go
package connector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/David-Botos/s3-ingress/pkg/config"
)

// SnowflakeConnector implements the Warehouse interface for Snowflake
type SnowflakeConnector struct {
	db         *sqlx.DB
	logger     *zap.Logger
	cfg        *config.SnowflakeConfig
	auditTable string
}

// NewSnowflakeConnector opens a Snowflake connection pool without connecting
func NewSnowflakeConnector(cfg *config.SnowflakeConfig, auditTable string, logger *zap.Logger) (*SnowflakeConnector, error) {
	// Log connection attempt (without credentials)
	logger.Named("snowflake-connector").Info("Opening Snowflake connection pool",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("role", cfg.Role))

	dsn, err := sf.DSN(cfg.DriverConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := sqlx.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}

	ApplyConnectionSettings(
		db.DB,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	connector, err := newSnowflakeConnector(db, cfg, auditTable, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return connector, nil
}

func newSnowflakeConnector(db *sqlx.DB, cfg *config.SnowflakeConfig, auditTable string, logger *zap.Logger) (*SnowflakeConnector, error) {
	if err := ValidateIdentifier(cfg.StorageIntegration); err != nil {
		return nil, fmt.Errorf("storage integration: %w", err)
	}
	if cfg.Schema != "" {
		if err := ValidateIdentifier(cfg.Schema); err != nil {
			return nil, fmt.Errorf("snowflake schema: %w", err)
		}
	}
	if auditTable != "" {
		if _, err := splitQualified(auditTable); err != nil {
			return nil, fmt.Errorf("audit table: %w", err)
		}
	}

	return &SnowflakeConnector{
		db:         db,
		logger:     logger.Named("snowflake-connector"),
		cfg:        cfg,
		auditTable: auditTable,
	}, nil
}

// Kind names the warehouse
func (c *SnowflakeConnector) Kind() string {
	return "Snowflake"
}

// Validate verifies the Snowflake connection and session context
func (c *SnowflakeConnector) Validate(ctx context.Context) error {
	if err := PingWithTimeout(ctx, c.db.DB, 10*time.Second); err != nil {
		return fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	var role, database, warehouse string
	err := c.db.QueryRowContext(ctx, "SELECT CURRENT_ROLE(), CURRENT_DATABASE(), CURRENT_WAREHOUSE()").Scan(
		&role, &database, &warehouse)
	if err != nil {
		return fmt.Errorf("failed to verify Snowflake access: %w", err)
	}

	c.logger.Info("Connected to Snowflake",
		zap.String("role", role),
		zap.String("database", database),
		zap.String("warehouse", warehouse))

	if !strings.EqualFold(database, c.cfg.Database) {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)",
			database, c.cfg.Database)
	}

	return nil
}

// Close closes the database connection
func (c *SnowflakeConnector) Close() error {
	c.logger.Info("Closing Snowflake connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db.DB)
	return c.db.Close()
}

// CopyStatement builds the COPY INTO command for a request.
// Fields are optionally enclosed in double quotes, matching what the stager writes.
// FORCE reloads the staging key even when Snowflake has seen it before.
func (c *SnowflakeConnector) CopyStatement(req CopyRequest) (string, error) {
	table, err := c.qualifiedTable(req)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("COPY INTO %s FROM '%s' STORAGE_INTEGRATION = %s FILE_FORMAT = (TYPE = CSV FIELD_DELIMITER = ',' FIELD_OPTIONALLY_ENCLOSED_BY = '\"') FORCE = TRUE",
		table,
		strings.ReplaceAll(req.StagingURI, "'", "''"),
		c.cfg.StorageIntegration,
	), nil
}

// BulkCopy runs COPY INTO and sums rows_loaded over the per-file result rows
func (c *SnowflakeConnector) BulkCopy(ctx context.Context, req CopyRequest) (*CopyResult, error) {
	statement, err := c.CopyStatement(req)
	if err != nil {
		return nil, err
	}
	table, _ := c.qualifiedTable(req)

	c.logger.Info("Copying staged file into Snowflake",
		zap.String("table", table),
		zap.String("staging_uri", req.StagingURI),
		zap.String("run_id", req.RunID))

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryxContext(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("failed to copy %s into %s: %w", req.StagingURI, table, err)
	}

	var loaded int64
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan copy result: %w", err)
		}
		for column, value := range row {
			if strings.EqualFold(column, "rows_loaded") {
				n, err := toInt64(value)
				if err != nil {
					rows.Close()
					return nil, fmt.Errorf("unexpected rows_loaded value: %w", err)
				}
				loaded += n
			}
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating copy result: %w", err)
	}

	result := &CopyResult{Table: table, RowsLoaded: loaded}

	if c.auditTable != "" {
		if err := insertAudit(ctx, tx, c.auditTable, table, req, loaded); err != nil {
			return nil, err
		}
		result.Audited = true
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit load of %s: %w", table, err)
	}

	return result, nil
}

func (c *SnowflakeConnector) qualifiedTable(req CopyRequest) (string, error) {
	if err := ValidateIdentifier(req.Table); err != nil {
		return "", err
	}

	schema := req.Schema
	if schema == "" {
		schema = c.cfg.Schema
	}
	if schema == "" {
		return req.Table, nil
	}
	if err := ValidateIdentifier(schema); err != nil {
		return "", err
	}
	return schema + "." + req.Table, nil
}

// toInt64 converts a driver value of unknown numeric representation
func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}
