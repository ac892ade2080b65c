// Package transfer runs one source file through fetch, parse, clean, stage, load and verify.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"github.com/David-Botos/s3-ingress/pkg/cleaner"
	"github.com/David-Botos/s3-ingress/pkg/connector"
	"github.com/David-Botos/s3-ingress/pkg/storage"
)

// Options tunes a TransferManager
type Options struct {
	Encoding    encoding.Encoding // Source file encoding
	VerifyLoad  bool              // Fail when the loaded row count differs from the staged one
	LoadTimeout time.Duration     // Upper bound for the warehouse copy, zero for none
}

// TransferManager orchestrates the data transfer process
type TransferManager struct {
	store       storage.ObjectStore
	warehouse   connector.Warehouse
	dataCleaner *cleaner.DataCleaner
	verifier    *Verifier
	opts        Options
	logger      *zap.Logger
}

// NewTransferManager creates a new transfer manager
func NewTransferManager(
	store storage.ObjectStore,
	warehouse connector.Warehouse,
	dataCleaner *cleaner.DataCleaner,
	opts Options,
	logger *zap.Logger,
) (*TransferManager, error) {
	if store == nil {
		return nil, errors.New("object store cannot be nil")
	}
	if warehouse == nil {
		return nil, errors.New("warehouse cannot be nil")
	}
	if dataCleaner == nil {
		return nil, errors.New("data cleaner cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if opts.Encoding == nil {
		enc, err := storage.LookupEncoding("")
		if err != nil {
			return nil, err
		}
		opts.Encoding = enc
	}

	return &TransferManager{
		store:       store,
		warehouse:   warehouse,
		dataCleaner: dataCleaner,
		verifier:    NewVerifier(logger, opts.VerifyLoad),
		opts:        opts,
		logger:      logger.Named("transfer"),
	}, nil
}

// Warehouse returns the warehouse the manager loads into
func (tm *TransferManager) Warehouse() connector.Warehouse {
	return tm.warehouse
}

// Transfer moves one source object through every stage. Any failure aborts the transfer
// and is returned as a *TransferError naming the stage.
func (tm *TransferManager) Transfer(ctx context.Context, job LoadJob) (*TransferResult, error) {
	target := job.Target
	result := NewTransferResult(job)

	logger := tm.logger.With(
		zap.String("run_id", job.ID),
		zap.String("bucket", target.SourceBucket),
		zap.String("key", target.SourceKey))

	fail := func(stage Stage, err error) (*TransferResult, error) {
		result.Complete(false)
		logger.Error("Transfer failed",
			zap.String("stage", stage.String()),
			zap.Error(err),
			zap.Duration("duration", result.Duration))
		return result, newTransferError(stage, target.FileName, err)
	}

	if target.FileName == "" {
		return fail(StageFetch, fmt.Errorf("source key %q does not name a file", target.SourceKey))
	}

	logger.Info("Starting transfer",
		zap.String("file", target.FileName),
		zap.String("table", target.QualifiedTable()))

	// Fetch
	stop := result.Metrics.Start(StageFetch)
	data, err := tm.store.GetObject(ctx, target.SourceBucket, target.SourceKey)
	stop()
	if err != nil {
		return fail(StageFetch, err)
	}
	result.BytesRead = int64(len(data))

	// Parse
	stop = result.Metrics.Start(StageParse)
	rs, err := storage.DecodeRecordSet(data, tm.opts.Encoding)
	stop()
	if err != nil {
		return fail(StageParse, err)
	}
	result.RowsRead = int64(rs.Len())

	// Clean
	stop = result.Metrics.Start(StageClean)
	report, err := tm.dataCleaner.Clean(target.FileName, rs)
	stop()
	if err != nil {
		return fail(StageClean, err)
	}
	result.Dataset = report.Dataset
	result.CleaningOperations = len(report.Operations)
	result.ValuesChanged = report.ValuesChanged()
	result.CleanedColumns = report.CleanedColumns()
	for _, col := range report.MissingColumns {
		result.AddWarning(fmt.Sprintf("column %s not found, rules skipped", col))
	}

	// Stage
	stop = result.Metrics.Start(StageStage)
	body, err := storage.EncodeRecordSet(rs)
	if err == nil {
		err = tm.store.PutObject(ctx, target.StagingBucket, target.StagingKey, body, storage.CSVContentType)
	}
	stop()
	if err != nil {
		return fail(StageStage, err)
	}
	result.RowsStaged = int64(rs.Len())
	result.BytesStaged = int64(len(body))

	// Load
	stop = result.Metrics.Start(StageLoad)
	copyResult, err := tm.load(ctx, job, result)
	stop()
	if err != nil {
		return fail(StageLoad, err)
	}
	result.Table = copyResult.Table
	result.RowsLoaded = copyResult.RowsLoaded
	result.Audited = copyResult.Audited

	// Verify
	stop = result.Metrics.Start(StageVerify)
	verification, err := tm.verifier.VerifyLoad(result.RowsStaged, copyResult)
	stop()
	result.Verification = verification
	if err != nil {
		return fail(StageVerify, err)
	}
	if !verification.RowCountMatches {
		result.AddWarning(fmt.Sprintf("staged %d rows but %d were loaded", result.RowsStaged, result.RowsLoaded))
	}

	result.Complete(true)

	fields := []zap.Field{
		zap.String("file", target.FileName),
		zap.String("dataset", result.Dataset),
		zap.String("table", result.Table),
		zap.String("staging_uri", result.StagingURI),
		zap.Int64("rows_read", result.RowsRead),
		zap.Int64("rows_loaded", result.RowsLoaded),
		zap.Int64("bytes_read", result.BytesRead),
		zap.Int64("bytes_staged", result.BytesStaged),
		zap.Int("values_changed", result.ValuesChanged),
		zap.Duration("duration", result.Duration),
	}
	logger.Info("Transfer completed successfully", append(fields, result.Metrics.Fields()...)...)

	return result, nil
}

// load issues the warehouse bulk copy, bounded by the load timeout
func (tm *TransferManager) load(ctx context.Context, job LoadJob, result *TransferResult) (*connector.CopyResult, error) {
	if tm.opts.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tm.opts.LoadTimeout)
		defer cancel()
	}

	return tm.warehouse.BulkCopy(ctx, connector.CopyRequest{
		RunID:          job.ID,
		Schema:         job.Target.Schema,
		Table:          job.Target.Table,
		SourceURI:      job.Target.SourceURI(),
		StagingURI:     result.StagingURI,
		RowsStaged:     int(result.RowsStaged),
		CleanedColumns: result.CleanedColumns,
	})
}
