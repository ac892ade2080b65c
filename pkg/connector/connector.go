// pkg/connector/connector.go
package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrInvalidIdentifier is returned for table or schema names that cannot be used unquoted
var ErrInvalidIdentifier = errors.New("invalid identifier")

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// CopyRequest describes one bulk load of a staged object into a table
type CopyRequest struct {
	RunID          string
	Schema         string // Optional
	Table          string
	StagingURI     string
	SourceURI      string
	RowsStaged     int
	CleanedColumns []string
}

// CopyResult reports what the warehouse did with a CopyRequest
type CopyResult struct {
	Table      string
	RowsLoaded int64
	Audited    bool
}

// Warehouse defines the interface for warehouses that bulk load staged files
type Warehouse interface {
	// Kind names the warehouse for logs and messages
	Kind() string

	// BulkCopy loads the staged object into the target table
	BulkCopy(ctx context.Context, req CopyRequest) (*CopyResult, error)

	// Validate verifies the connection
	Validate(ctx context.Context) error

	// Close closes the connection and releases resources
	Close() error
}

// ValidateIdentifier checks that name is a plain SQL identifier
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// splitQualified splits and validates a possibly schema-qualified name
func splitQualified(name string) ([]string, error) {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	for _, part := range parts {
		if err := ValidateIdentifier(part); err != nil {
			return nil, err
		}
	}
	return parts, nil
}

// auditInsert is bound with Rebind so it works for both placeholder styles
const auditInsert = `INSERT INTO %s (run_id, table_name, source_uri, staging_uri, rows_staged, rows_loaded, cleaned_columns, loaded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// insertAudit records the load in the audit table inside the load transaction
func insertAudit(ctx context.Context, tx *sqlx.Tx, auditTable, table string, req CopyRequest, loaded int64) error {
	query := tx.Rebind(fmt.Sprintf(auditInsert, auditTable))
	_, err := tx.ExecContext(ctx, query,
		req.RunID,
		table,
		req.SourceURI,
		req.StagingURI,
		req.RowsStaged,
		loaded,
		strings.Join(req.CleanedColumns, ","),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record load in %s: %w", auditTable, err)
	}
	return nil
}

// ConnStats contains standardized connection statistics
type ConnStats struct {
	OpenConnections int
	InUse           int
	Idle            int
	MaxOpenConns    int
	WaitCount       int64
	WaitDuration    time.Duration
}

// GetConnectionStats returns connection pool statistics for logging
func GetConnectionStats(db *sql.DB) ConnStats {
	stats := db.Stats()
	return ConnStats{
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		MaxOpenConns:    stats.MaxOpenConnections,
		WaitCount:       stats.WaitCount,
		WaitDuration:    stats.WaitDuration,
	}
}

// LogConnectionStats logs connection pool statistics
func LogConnectionStats(logger *zap.Logger, name string, db *sql.DB) {
	stats := GetConnectionStats(db)
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int("max_open", stats.MaxOpenConns),
		zap.Int64("wait_count", stats.WaitCount),
		zap.Duration("wait_duration", stats.WaitDuration),
	)
}

// PingWithTimeout attempts to ping a database with a timeout
func PingWithTimeout(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- db.PingContext(pingCtx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-pingCtx.Done():
		return fmt.Errorf("ping timed out after %v: %w", timeout, pingCtx.Err())
	}
}

// ApplyConnectionSettings configures database connection pool settings
func ApplyConnectionSettings(db *sql.DB, maxOpen, maxIdle int, maxLifetime, maxIdleTime time.Duration) {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime > 0 {
		db.SetConnMaxLifetime(maxLifetime)
	}
	if maxIdleTime > 0 {
		db.SetConnMaxIdleTime(maxIdleTime)
	}
}
