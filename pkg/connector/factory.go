// pkg/connector/factory.go
package connector

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/s3-ingress/pkg/config"
)

// ConnectorFactory creates warehouse connectors
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateWarehouse creates the connector for the configured warehouse kind
func (f *ConnectorFactory) CreateWarehouse() (Warehouse, error) {
	switch f.cfg.WarehouseKind {
	case config.WarehouseRedshift:
		conn, err := f.CreateRedshiftConnector()
		if err != nil {
			return nil, err
		}
		return conn, nil
	case config.WarehouseSnowflake:
		conn, err := f.CreateSnowflakeConnector()
		if err != nil {
			return nil, err
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("unsupported warehouse kind %q", f.cfg.WarehouseKind)
	}
}

// CreateRedshiftConnector creates a new Redshift connector
func (f *ConnectorFactory) CreateRedshiftConnector() (*RedshiftConnector, error) {
	if f.cfg.Redshift == nil {
		return nil, fmt.Errorf("redshift configuration is required")
	}
	f.logger.Info("Creating Redshift connector")

	connector, err := NewRedshiftConnector(f.cfg.Redshift, f.cfg.LoadAuditTable, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redshift connector: %w", err)
	}

	return connector, nil
}

// CreateSnowflakeConnector creates a new Snowflake connector
func (f *ConnectorFactory) CreateSnowflakeConnector() (*SnowflakeConnector, error) {
	if f.cfg.Snowflake == nil {
		return nil, fmt.Errorf("snowflake configuration is required")
	}
	f.logger.Info("Creating Snowflake connector")

	connector, err := NewSnowflakeConnector(f.cfg.Snowflake, f.cfg.LoadAuditTable, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Snowflake connector: %w", err)
	}

	return connector, nil
}
