package transfer

import (
	"time"

	"github.com/google/uuid"

	"github.com/David-Botos/s3-ingress/pkg/model"
)

// LoadJob represents the transfer of one source object
type LoadJob struct {
	ID        string // Unique run identifier
	Target    model.LoadTarget
	CreatedAt time.Time
}

// NewLoadJob creates a new load job for a target
func NewLoadJob(target model.LoadTarget) LoadJob {
	return LoadJob{
		ID:        uuid.New().String(),
		Target:    target,
		CreatedAt: time.Now(),
	}
}

// TransferResult represents the result of a single file transfer
type TransferResult struct {
	JobID              string
	FileName           string
	Dataset            string
	Table              string
	StagingURI         string
	Success            bool
	RowsRead           int64
	RowsStaged         int64
	RowsLoaded         int64
	BytesRead          int64
	BytesStaged        int64
	CleaningOperations int
	ValuesChanged      int
	CleanedColumns     []string
	Audited            bool
	Verification       *VerificationReport
	Metrics            *StageMetrics
	Warnings           []string
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

// NewTransferResult initializes a transfer result for a job
func NewTransferResult(job LoadJob) *TransferResult {
	return &TransferResult{
		JobID:      job.ID,
		FileName:   job.Target.FileName,
		Table:      job.Target.QualifiedTable(),
		StagingURI: job.Target.StagingURI(),
		Metrics:    NewStageMetrics(),
		StartTime:  time.Now(),
		Warnings:   make([]string, 0),
	}
}

// Complete marks the transfer as complete and calculates duration
func (r *TransferResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

// AddWarning adds a warning to the result
func (r *TransferResult) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}
