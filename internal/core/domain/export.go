package domain

import "time"

// OutcomeStatus is the terminal state of one work item within a run.
type OutcomeStatus string

const (
	// OutcomeExported means the artifact was written and the item
	// marked done.
	OutcomeExported OutcomeStatus = "exported"

	// OutcomeFailed means the item failed permanently or exhausted
	// its retries. It is not marked done and a later run retries it.
	OutcomeFailed OutcomeStatus = "failed"

	// OutcomeCancelled means the run was cancelled before the item
	// reached a natural terminal state.
	OutcomeCancelled OutcomeStatus = "cancelled"
)

// Outcome records the terminal state of one workout within a run.
type Outcome struct {
	// WID identifies the workout.
	WID int64

	// Status is the terminal state reached.
	Status OutcomeStatus

	// Attempts is how many fetch attempts were made.
	Attempts int

	// Reason describes the failure, empty on success.
	Reason string
}

// FailedItem pairs a workout ID with the reason it failed, for the
// run summary and targeted re-runs.
type FailedItem struct {
	WID    int64
	Reason string
}

// Summary aggregates the result of one export run.
type Summary struct {
	// RunID uniquely identifies the run.
	RunID string

	// AthleteID is the athlete the run exported.
	AthleteID int64

	// Discovered is the size of the full identifier universe.
	Discovered int

	// Succeeded counts items exported during this run.
	Succeeded int

	// Skipped counts items already done before the run started.
	Skipped int

	// Failed lists items that reached a failed terminal state.
	Failed []FailedItem

	// Cancelled reports whether the run ended by cancellation.
	Cancelled bool

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}
