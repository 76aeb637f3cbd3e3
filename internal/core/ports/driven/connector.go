package driven

import (
	"context"

	"github.com/runninglog/runlog-cli/internal/core/domain"
)

// Discoverer enumerates the full workout identifier universe for an
// athlete.
type Discoverer interface {
	// ListWorkoutIDs returns every workout ID known for the athlete,
	// in no particular order. If the listing is entirely unreachable
	// it fails with an error wrapping domain.ErrDiscovery.
	ListWorkoutIDs(ctx context.Context, athleteID int64) ([]int64, error)
}

// WorkoutFetcher fetches and parses a single workout.
type WorkoutFetcher interface {
	// FetchWorkout retrieves one workout page and converts it into
	// the domain form. Failures wrap exactly one of
	// domain.ErrTransient, domain.ErrRateLimited or
	// domain.ErrPermanent so the retry policy can classify them.
	FetchWorkout(ctx context.Context, athleteID, wid int64) (*domain.Workout, error)
}

// ArtifactWriter persists a converted workout to its output artifact.
type ArtifactWriter interface {
	// Write stores the workout artifact and returns its path.
	// Failures are transient unless the path itself is invalid.
	Write(ctx context.Context, workout *domain.Workout) (string, error)
}

// ProgressObserver receives per-item outcomes as they happen.
//
// Notifications are fire-and-forget: a slow or failing observer must
// never stall the worker pool, so callers deliver outcomes off the
// critical path and may drop them under pressure.
type ProgressObserver interface {
	OnItemOutcome(outcome domain.Outcome)
}
