package driven

import (
	"context"

	"github.com/runninglog/runlog-cli/internal/core/domain"
)

// StateStore persists export progress for one athlete.
//
// Every mutation is durably persisted before the call returns, and
// mutations are serialised against each other: two concurrent calls
// never interleave their writes, and each call observes every mutation
// completed before it. Implementations must persist atomically so a
// crash mid-write leaves either the previous or the new valid record,
// never a mixture.
type StateStore interface {
	// State returns a snapshot of the current export state.
	// The caller owns the returned value; mutating it does not
	// affect the store.
	State(ctx context.Context) (*domain.ExportState, error)

	// IsDone reports whether the workout has been fully exported.
	IsDone(ctx context.Context, wid int64) bool

	// MarkDone records a workout as fully exported. Call only after
	// the artifact is durably written.
	MarkDone(ctx context.Context, wid int64) error

	// AddDiscovered records workout IDs seen during discovery.
	AddDiscovered(ctx context.Context, wids []int64) error

	// MarkPageProcessed records a workout-list page as scraped, so a
	// resumed discovery skips it.
	MarkPageProcessed(ctx context.Context, page int) error

	// Remove clears specific workout IDs from the done set, forcing
	// them to be re-exported.
	Remove(ctx context.Context, wids []int64) error

	// Clear empties the done set entirely.
	Clear(ctx context.Context) error

	// Flush ensures the latest state has reached storage. A no-op for
	// stores that persist on every mutation.
	Flush(ctx context.Context) error
}
