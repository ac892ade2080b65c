// pkg/cleaner/cleaner.go

// Package cleaner normalizes the fields of known datasets before they are staged.
package cleaner

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/s3-ingress/pkg/model"
)

// CleanFunc mutates a record set in place and records what it did
type CleanFunc func(rs *model.RecordSet, report *model.CleaningReport) error

// DataCleaner dispatches a record set to the cleaner for its source file
type DataCleaner struct {
	logger  *zap.Logger
	profile Profile
}

// NewDataCleaner creates a new DataCleaner instance
func NewDataCleaner(logger *zap.Logger, profile Profile) (*DataCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if profile == "" {
		profile = ProfileBaseline
	}
	if profile != ProfileBaseline && profile != ProfileExtended {
		return nil, fmt.Errorf("unknown cleaning profile %q", profile)
	}

	return &DataCleaner{
		logger:  logger.Named("cleaner"),
		profile: profile,
	}, nil
}

// Profile returns the active cleaning profile
func (c *DataCleaner) Profile() Profile {
	return c.profile
}

// Resolve returns the dataset and cleaner selected for a file name
func (c *DataCleaner) Resolve(fileName string) (Dataset, CleanFunc) {
	dataset := ResolveDataset(fileName)
	return dataset, cleanerFor(dataset, c.profile)
}

// Clean applies the dataset cleaner for fileName to rs. Unknown files pass through unchanged.
func (c *DataCleaner) Clean(fileName string, rs *model.RecordSet) (*model.CleaningReport, error) {
	if rs == nil {
		return nil, errors.New("record set cannot be nil")
	}

	dataset, clean := c.Resolve(fileName)
	report := &model.CleaningReport{
		Dataset: dataset.String(),
		Profile: string(c.profile),
		Rows:    rs.Len(),
	}

	if dataset == DatasetUnknown {
		c.logger.Info("No cleaning required for file", zap.String("file", fileName))
		return report, nil
	}

	c.logger.Info("Cleaning data for file",
		zap.String("file", fileName),
		zap.String("dataset", dataset.String()),
		zap.String("profile", string(c.profile)))

	if err := clean(rs, report); err != nil {
		return report, fmt.Errorf("failed to clean %s: %w", dataset, err)
	}

	if len(report.MissingColumns) > 0 {
		c.logger.Warn("Expected columns not found, rules skipped",
			zap.String("dataset", dataset.String()),
			zap.Strings("missing_columns", report.MissingColumns))
	}

	c.logger.Info("Data cleaning complete",
		zap.String("dataset", dataset.String()),
		zap.Int("rows", rs.Len()),
		zap.Int("columns", len(rs.Columns())),
		zap.Int("values_changed", report.ValuesChanged()))

	return report, nil
}

// cleanerFor binds a dataset to its cleaning function for a profile
func cleanerFor(dataset Dataset, profile Profile) CleanFunc {
	if dataset == DatasetCustomers {
		return cleanCustomers
	}

	if profile != ProfileExtended {
		return passThrough
	}

	switch {
	case dataset == DatasetCustomersNew:
		return cleanCustomersNew
	case dataset.IsSales():
		return cleanSales
	case dataset == DatasetReturns:
		return cleanReturns
	case dataset == DatasetProducts:
		return cleanProducts
	default:
		return passThrough
	}
}
