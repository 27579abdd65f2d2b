package jobcontext

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyRunID        KeyContext = "run_id"
	keyRunType      KeyContext = "run_type"
	keyRunStartTime KeyContext = "run_start_time"
)

// Run types tracked through contexts.
const (
	RunTypeExtraction = "extraction"
	RunTypeIndexing   = "indexing"
)

// RunMetadata holds metadata for a single pipeline run.
type RunMetadata struct {
	RunID     uuid.UUID
	RunType   string
	StartTime time.Time
}

// Begin initializes a run context with metadata and a timeout. The timeout
// bounds the whole run; a run that fails is left terminal and never retried
// here.
func Begin(parentCtx context.Context, runID uuid.UUID, runType string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parentCtx, timeout)

	ctx = context.WithValue(ctx, keyRunID, runID)
	ctx = context.WithValue(ctx, keyRunType, runType)
	ctx = context.WithValue(ctx, keyRunStartTime, time.Now())

	return ctx, cancel
}

// Execute runs the function with panic recovery so a crashing run surfaces
// as an error instead of taking the process down.
func Execute(ctx context.Context, runFunc func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before run execution: %w", ctx.Err())
	}
	return runFunc(ctx)
}

// GetRunID extracts the run ID from context.
func GetRunID(ctx context.Context) (uuid.UUID, bool) {
	runID, ok := ctx.Value(keyRunID).(uuid.UUID)
	return runID, ok
}

// GetRunType extracts the run type from context.
func GetRunType(ctx context.Context) (string, bool) {
	runType, ok := ctx.Value(keyRunType).(string)
	return runType, ok
}

// GetRunStartTime extracts the run start time from context.
func GetRunStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyRunStartTime).(time.Time)
	return startTime, ok
}

// GetRunMetadata extracts all run metadata from context.
func GetRunMetadata(ctx context.Context) *RunMetadata {
	runID, _ := GetRunID(ctx)
	runType, _ := GetRunType(ctx)
	startTime, _ := GetRunStartTime(ctx)

	return &RunMetadata{
		RunID:     runID,
		RunType:   runType,
		StartTime: startTime,
	}
}
