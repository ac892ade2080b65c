package transfer

import (
	"errors"
	"fmt"
)

// Stage identifies the step of a transfer that failed
type Stage int

const (
	StageFetch Stage = iota
	StageParse
	StageClean
	StageStage
	StageLoad
	StageVerify
)

// String returns a string representation of the stage
func (s Stage) String() string {
	switch s {
	case StageFetch:
		return "fetch"
	case StageParse:
		return "parse"
	case StageClean:
		return "clean"
	case StageStage:
		return "stage"
	case StageLoad:
		return "load"
	case StageVerify:
		return "verify"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// TransferError ties a failure to the stage and source file it happened in
type TransferError struct {
	Stage Stage
	File  string
	Err   error
}

func newTransferError(stage Stage, file string, err error) *TransferError {
	return &TransferError{Stage: stage, File: file, Err: err}
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Stage, e.File, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// StageOf reports the stage a transfer error happened in
func StageOf(err error) (Stage, bool) {
	var te *TransferError
	if errors.As(err, &te) {
		return te.Stage, true
	}
	return 0, false
}
