// pkg/connector/redshift.go
package connector

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/s3-ingress/pkg/config"
)

// RedshiftConnector implements the Warehouse interface for Amazon Redshift
type RedshiftConnector struct {
	db         *sqlx.DB
	logger     *zap.Logger
	cfg        *config.RedshiftConfig
	auditTable string // Quoted, empty when auditing is off
}

// NewRedshiftConnector opens a Redshift connection pool.
// The pool connects lazily, so an unreachable cluster surfaces on the first load.
func NewRedshiftConnector(cfg *config.RedshiftConfig, auditTable string, logger *zap.Logger) (*RedshiftConnector, error) {
	logger.Named("redshift-connector").Info("Opening Redshift connection pool",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	dsn := cfg.ConnectionString()
	if cfg.StatementTimeout > 0 {
		dsn += fmt.Sprintf(" statement_timeout=%d", cfg.StatementTimeout.Milliseconds())
	}

	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redshift connection: %w", err)
	}

	ApplyConnectionSettings(
		db.DB,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	connector, err := newRedshiftConnector(db, cfg, auditTable, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return connector, nil
}

func newRedshiftConnector(db *sqlx.DB, cfg *config.RedshiftConfig, auditTable string, logger *zap.Logger) (*RedshiftConnector, error) {
	if cfg.Schema != "" {
		if err := ValidateIdentifier(cfg.Schema); err != nil {
			return nil, fmt.Errorf("redshift schema: %w", err)
		}
	}

	var quotedAudit string
	if auditTable != "" {
		parts, err := splitQualified(auditTable)
		if err != nil {
			return nil, fmt.Errorf("audit table: %w", err)
		}
		quotedAudit = quoteIdentifiers(parts...)
	}

	return &RedshiftConnector{
		db:         db,
		logger:     logger.Named("redshift-connector"),
		cfg:        cfg,
		auditTable: quotedAudit,
	}, nil
}

// Kind names the warehouse
func (c *RedshiftConnector) Kind() string {
	return "Redshift"
}

// Validate verifies the Redshift connection
func (c *RedshiftConnector) Validate(ctx context.Context) error {
	if err := PingWithTimeout(ctx, c.db.DB, 5*time.Second); err != nil {
		return fmt.Errorf("failed to connect to Redshift: %w", err)
	}

	var version string
	if err := c.db.GetContext(ctx, &version, "SELECT version()"); err != nil {
		return fmt.Errorf("failed to query Redshift version: %w", err)
	}

	c.logger.Info("Connected to Redshift",
		zap.String("version", version),
		zap.String("database", c.cfg.Database),
		zap.String("host", c.cfg.Host))

	LogConnectionStats(c.logger, c.cfg.Database, c.db.DB)
	return nil
}

// Close closes the database connection
func (c *RedshiftConnector) Close() error {
	c.logger.Info("Closing Redshift connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db.DB)
	return c.db.Close()
}

// CopyStatement builds the COPY command for a request
func (c *RedshiftConnector) CopyStatement(req CopyRequest) (string, error) {
	table, err := c.qualifiedTable(req)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("COPY %s FROM %s IAM_ROLE %s FORMAT AS CSV DELIMITER ','",
		table,
		pq.QuoteLiteral(req.StagingURI),
		pq.QuoteLiteral(c.cfg.IAMRole),
	), nil
}

// BulkCopy runs COPY, reads the loaded row count and writes the audit row in one transaction
func (c *RedshiftConnector) BulkCopy(ctx context.Context, req CopyRequest) (*CopyResult, error) {
	statement, err := c.CopyStatement(req)
	if err != nil {
		return nil, err
	}
	table, _ := c.qualifiedTable(req)

	c.logger.Info("Copying staged file into Redshift",
		zap.String("table", table),
		zap.String("staging_uri", req.StagingURI),
		zap.String("run_id", req.RunID))

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, statement); err != nil {
		return nil, fmt.Errorf("failed to copy %s into %s: %w", req.StagingURI, table, err)
	}

	var loaded int64
	if err := tx.GetContext(ctx, &loaded, "SELECT pg_last_copy_count()"); err != nil {
		return nil, fmt.Errorf("failed to read copy count: %w", err)
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

func (c *RedshiftConnector) qualifiedTable(req CopyRequest) (string, error) {
	if err := ValidateIdentifier(req.Table); err != nil {
		return "", err
	}

	schema := req.Schema
	if schema == "" {
		schema = c.cfg.Schema
	}
	if schema == "" {
		return quoteIdentifiers(req.Table), nil
	}
	if err := ValidateIdentifier(schema); err != nil {
		return "", err
	}
	return quoteIdentifiers(schema, req.Table), nil
}

func quoteIdentifiers(parts ...string) string {
	quoted := make([]string, len(parts))
	for i, part := range parts {
		quoted[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(quoted, ".")
}
