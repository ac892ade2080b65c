// Package handler turns S3 object-created events into transfers and status responses.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/David-Botos/s3-ingress/pkg/model"
	"github.com/David-Botos/s3-ingress/pkg/transfer"
)

// ErrNoRecords is returned for an event without S3 records
var ErrNoRecords = errors.New("event contains no S3 records")

// Response is the invocation result returned to the Lambda runtime
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Transferer runs one load job
type Transferer interface {
	Transfer(ctx context.Context, job transfer.LoadJob) (*transfer.TransferResult, error)
}

// Config names where staged files go and which warehouse receives them
type Config struct {
	StagingBucket string
	StagingPrefix string
	WarehouseName string
}

// Handler processes S3 events
type Handler struct {
	transferer Transferer
	cfg        Config
	logger     *zap.Logger
}

// NewHandler creates a new event handler
func NewHandler(transferer Transferer, cfg Config, logger *zap.Logger) (*Handler, error) {
	if transferer == nil {
		return nil, errors.New("transferer cannot be nil")
	}
	if cfg.StagingBucket == "" {
		return nil, errors.New("staging bucket is required")
	}

	return &Handler{
		transferer: transferer,
		cfg:        cfg,
		logger:     logger.Named("handler"),
	}, nil
}

// Handle processes the first record of an S3 event. Every failure is reported as a
// 500 response, so the returned error is always nil.
func (h *Handler) Handle(ctx context.Context, event events.S3Event) (Response, error) {
	if err := h.handle(ctx, event); err != nil {
		return Response{
			StatusCode: http.StatusInternalServerError,
			Body:       fmt.Sprintf("Error processing data: %v", err),
		}, nil
	}

	return Response{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf("Data cleaned and uploaded to %s successfully.", h.cfg.WarehouseName),
	}, nil
}

func (h *Handler) handle(ctx context.Context, event events.S3Event) error {
	if len(event.Records) == 0 {
		h.logger.Error("Error processing data", zap.Error(ErrNoRecords))
		return ErrNoRecords
	}
	if len(event.Records) > 1 {
		h.logger.Warn("Event has more than one record, only the first is processed",
			zap.Int("records", len(event.Records)))
	}

	bucket, key := ObjectLocation(event.Records[0])
	h.logger.Info("Received object",
		zap.String("bucket", bucket),
		zap.String("key", key))

	target := model.NewLoadTarget(bucket, key, h.cfg.StagingBucket, h.cfg.StagingPrefix, "")
	job := transfer.NewLoadJob(target)

	result, err := h.transferer.Transfer(ctx, job)
	if err != nil {
		fields := []zap.Field{
			zap.String("run_id", job.ID),
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Error(err),
		}
		if stage, ok := transfer.StageOf(err); ok {
			fields = append(fields, zap.String("stage", stage.String()))
		}
		h.logger.Error("Error processing data", fields...)
		return err
	}

	for _, warning := range result.Warnings {
		h.logger.Warn("Transfer warning", zap.String("run_id", job.ID), zap.String("warning", warning))
	}

	return nil
}

// ObjectLocation returns the bucket and key of a record, preferring the URL-decoded key
func ObjectLocation(record events.S3EventRecord) (string, string) {
	key := record.S3.Object.URLDecodedKey
	if key == "" {
		key = record.S3.Object.Key
	}
	return record.S3.Bucket.Name, key
}
