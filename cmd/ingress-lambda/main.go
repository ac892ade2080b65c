// Command ingress-lambda cleans CSV files dropped into S3 and bulk loads them into the warehouse.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/David-Botos/s3-ingress/pkg/cleaner"
	"github.com/David-Botos/s3-ingress/pkg/config"
	"github.com/David-Botos/s3-ingress/pkg/connector"
	"github.com/David-Botos/s3-ingress/pkg/handler"
	"github.com/David-Botos/s3-ingress/pkg/storage"
	"github.com/David-Botos/s3-ingress/pkg/transfer"
)

func main() {
	ctx := context.Background()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	h, err := newHandler(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}

	logger.Info("Starting ingress lambda",
		zap.String("warehouse", string(cfg.WarehouseKind)),
		zap.String("staging_bucket", cfg.StagingBucket),
		zap.String("cleaning_profile", cfg.CleaningProfile))

	lambda.Start(h.Handle)
}

// newHandler builds the process-wide clients once per cold start
func newHandler(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*handler.Handler, error) {
	var awsOpts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		awsOpts = append(awsOpts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	store := storage.NewS3Store(client, logger)

	enc, err := storage.LookupEncoding(cfg.SourceEncoding)
	if err != nil {
		return nil, err
	}

	profile, err := cleaner.ParseProfile(cfg.CleaningProfile)
	if err != nil {
		return nil, err
	}
	dataCleaner, err := cleaner.NewDataCleaner(logger, profile)
	if err != nil {
		return nil, err
	}

	warehouse, err := connector.NewConnectorFactory(cfg, logger).CreateWarehouse()
	if err != nil {
		return nil, err
	}

	// The pool is lazy; an unreachable warehouse fails the first load instead of the cold start
	validateCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := warehouse.Validate(validateCtx); err != nil {
		logger.Warn("Warehouse not reachable at startup", zap.Error(err))
	}

	manager, err := transfer.NewTransferManager(store, warehouse, dataCleaner, transfer.Options{
		Encoding:    enc,
		VerifyLoad:  cfg.VerifyLoad,
		LoadTimeout: cfg.LoadTimeout,
	}, logger)
	if err != nil {
		warehouse.Close()
		return nil, err
	}

	return handler.NewHandler(manager, handler.Config{
		StagingBucket: cfg.StagingBucket,
		StagingPrefix: cfg.StagingPrefix,
		WarehouseName: warehouse.Kind(),
	}, logger)
}
