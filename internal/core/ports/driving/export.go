package driving

import (
	"context"

	"github.com/runninglog/runlog-cli/internal/core/domain"
)

// Exporter coordinates a full export run for one athlete.
type Exporter interface {
	// StartExport discovers pending workouts and exports them.
	// Cancelling the context stops admission of new items; in-flight
	// items finish naturally and remain marked done. Run-level
	// failures (domain.ErrDiscovery, domain.ErrCorruptState) abort
	// before any work begins; item-level failures are isolated and
	// reported in the summary.
	StartExport(ctx context.Context, athleteID int64, opts ExportOptions) (*domain.Summary, error)

	// Status returns the progress of a running export.
	Status(ctx context.Context, athleteID int64) (*ExportStatus, error)
}

// ExportOptions configures one export run.
type ExportOptions struct {
	// Concurrency bounds the number of simultaneously active items.
	// Zero selects the default.
	Concurrency int

	// Overrides adjusts the pending set before execution.
	Overrides Overrides
}

// Overrides widen the pending set beyond the normal incremental run.
type Overrides struct {
	// ForceAll clears all completion state first, re-exporting every
	// discovered workout.
	ForceAll bool

	// ForceIDs clears only the named workout IDs, re-exporting
	// exactly those.
	ForceIDs []int64
}

// Phase identifies where in its lifecycle an export run is.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseDiscovering      Phase = "discovering"
	PhaseComputingPending Phase = "computing-pending"
	PhaseExecuting        Phase = "executing"
	PhaseFinalizing       Phase = "finalizing"
)

// ExportStatus represents the current state of an export run.
type ExportStatus struct {
	// RunID identifies the run, empty when idle.
	RunID string

	// AthleteID identifies the athlete being exported.
	AthleteID int64

	// Phase is the lifecycle phase the run is in.
	Phase Phase

	// Pending is the number of items selected for this run.
	Pending int

	// Processed counts items that reached a terminal state so far.
	Processed int

	// Failed counts items that reached a failed terminal state.
	Failed int
}
