package transfer

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/s3-ingress/pkg/connector"
)

// ErrRowCountMismatch is returned when an enforced verification finds a different row count
var ErrRowCountMismatch = errors.New("row count mismatch")

// VerificationReport contains the results of a load verification
type VerificationReport struct {
	Table            string
	VerificationTime time.Time
	RowCountMatches  bool
	StagedRowCount   int64
	LoadedRowCount   int64
	Enforced         bool
}

// Verifier compares the rows a warehouse reports loaded with the rows staged
type Verifier struct {
	logger  *zap.Logger
	enforce bool
}

// NewVerifier creates a new verifier. When enforce is false mismatches are only logged.
func NewVerifier(logger *zap.Logger, enforce bool) *Verifier {
	return &Verifier{
		logger:  logger.Named("verifier"),
		enforce: enforce,
	}
}

// VerifyLoad checks a copy result against the staged row count
func (v *Verifier) VerifyLoad(staged int64, result *connector.CopyResult) (*VerificationReport, error) {
	if result == nil {
		return nil, errors.New("copy result cannot be nil")
	}

	report := &VerificationReport{
		Table:            result.Table,
		VerificationTime: time.Now(),
		StagedRowCount:   staged,
		LoadedRowCount:   result.RowsLoaded,
		RowCountMatches:  staged == result.RowsLoaded,
		Enforced:         v.enforce,
	}

	if report.RowCountMatches {
		v.logger.Debug("Row counts match",
			zap.String("table", report.Table),
			zap.Int64("rows", staged))
		return report, nil
	}

	v.logger.Warn("Row count mismatch",
		zap.String("table", report.Table),
		zap.Int64("staged", staged),
		zap.Int64("loaded", result.RowsLoaded),
		zap.Bool("enforced", v.enforce))

	if v.enforce {
		return report, fmt.Errorf("%w: staged %d rows, %s reports %d loaded",
			ErrRowCountMismatch, staged, report.Table, result.RowsLoaded)
	}
	return report, nil
}
