package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/runninglog/runlog-cli/internal/core/domain"
	"github.com/runninglog/runlog-cli/internal/core/ports/driven"
	"github.com/runninglog/runlog-cli/internal/core/ports/driving"
	"github.com/runninglog/runlog-cli/internal/logger"
	"github.com/runninglog/runlog-cli/internal/ratelimit"
)

// Ensure ExportOrchestrator implements the interface.
var _ driving.Exporter = (*ExportOrchestrator)(nil)

// ExportOrchestrator coordinates a full export run: discovery, pending
// set computation, rate-limited concurrent execution and finalisation.
type ExportOrchestrator struct {
	discoverer driven.Discoverer
	fetcher    driven.WorkoutFetcher
	writer     driven.ArtifactWriter
	store      driven.StateStore
	observer   driven.ProgressObserver
	limiter    *ratelimit.Limiter
	retry      RetryPolicy

	// Status tracking
	mu         sync.RWMutex
	activeRuns map[int64]*driving.ExportStatus
}

// NewExportOrchestrator creates a new export orchestrator. The
// observer is optional - if nil, per-item progress is not reported.
func NewExportOrchestrator(
	discoverer driven.Discoverer,
	fetcher driven.WorkoutFetcher,
	writer driven.ArtifactWriter,
	store driven.StateStore,
	observer driven.ProgressObserver,
	limiter *ratelimit.Limiter,
	retry RetryPolicy,
) *ExportOrchestrator {
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.DefaultRate, ratelimit.DefaultBurst)
	}
	return &ExportOrchestrator{
		discoverer: discoverer,
		fetcher:    fetcher,
		writer:     writer,
		store:      store,
		observer:   observer,
		limiter:    limiter,
		retry:      retry,
		activeRuns: make(map[int64]*driving.ExportStatus),
	}
}

// StartExport runs the export pipeline for one athlete.
func (o *ExportOrchestrator) StartExport(ctx context.Context, athleteID int64, opts driving.ExportOptions) (*domain.Summary, error) {
	start := time.Now()
	runID := uuid.NewString()

	status := &driving.ExportStatus{
		RunID:     runID,
		AthleteID: athleteID,
		Phase:     driving.PhaseDiscovering,
	}
	o.setStatus(athleteID, status)
	defer o.clearStatus(athleteID)

	logger.Info("Starting export run %s for athlete %d", runID, athleteID)

	// 1. Discover the full identifier universe. Total unreachability
	// aborts the run before any state mutation.
	logger.Section("Discovery")
	discovered, err := o.discoverer.ListWorkoutIDs(ctx, athleteID)
	if err != nil {
		if !errors.Is(err, domain.ErrDiscovery) {
			err = fmt.Errorf("%w: %w", domain.ErrDiscovery, err)
		}
		return nil, err
	}
	logger.Info("Discovered %d workouts for athlete %d", len(discovered), athleteID)

	// 2. Compute the pending set against the durable done set,
	// applying operator overrides first.
	o.setPhase(athleteID, driving.PhaseComputingPending)

	if opts.Overrides.ForceAll {
		if err := o.store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear state: %w", err)
		}
	} else if len(opts.Overrides.ForceIDs) > 0 {
		if err := o.store.Remove(ctx, opts.Overrides.ForceIDs); err != nil {
			return nil, fmt.Errorf("reset workouts: %w", err)
		}
	}

	pending := o.pendingSet(ctx, discovered)
	skipped := len(discovered) - len(pending)

	summary := &domain.Summary{
		RunID:      runID,
		AthleteID:  athleteID,
		Discovered: len(discovered),
		Skipped:    skipped,
	}

	if len(pending) == 0 {
		logger.Info("No new workouts to export for athlete %d", athleteID)
		summary.Duration = time.Since(start)
		return summary, nil
	}

	// 3. Execute under the shared rate budget.
	logger.Section("Export")
	o.mu.Lock()
	status.Phase = driving.PhaseExecuting
	status.Pending = len(pending)
	o.mu.Unlock()

	notify := newNotifier(o.observer)
	pool := &workerPool{
		fetcher: o.fetcher,
		writer:  o.writer,
		store:   o.store,
		limiter: o.limiter,
		retry:   o.retry,
		notify: func(out domain.Outcome) {
			o.recordOutcome(athleteID, out)
			notify.publish(out)
		},
	}
	outcomes := pool.run(ctx, athleteID, pending, opts.Concurrency)
	notify.close()

	// 4. Finalise: make sure the last mutation reached disk, then
	// aggregate outcomes.
	o.setPhase(athleteID, driving.PhaseFinalizing)
	if err := o.store.Flush(ctx); err != nil {
		return nil, fmt.Errorf("flush state: %w", err)
	}

	for _, out := range outcomes {
		switch out.Status {
		case domain.OutcomeExported:
			summary.Succeeded++
		case domain.OutcomeFailed:
			summary.Failed = append(summary.Failed, domain.FailedItem{WID: out.WID, Reason: out.Reason})
		case domain.OutcomeCancelled:
			summary.Cancelled = true
		}
	}
	sort.Slice(summary.Failed, func(i, j int) bool { return summary.Failed[i].WID < summary.Failed[j].WID })
	if ctx.Err() != nil {
		summary.Cancelled = true
	}
	summary.Duration = time.Since(start)

	logger.Info("Export run %s finished: %d exported, %d failed, %d skipped, cancelled=%v",
		runID, summary.Succeeded, len(summary.Failed), summary.Skipped, summary.Cancelled)
	return summary, nil
}

// Status returns the progress of a running export. Idle athletes get a
// zero status.
func (o *ExportOrchestrator) Status(_ context.Context, athleteID int64) (*driving.ExportStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if status, ok := o.activeRuns[athleteID]; ok {
		// Return a copy to avoid race conditions.
		copied := *status
		return &copied, nil
	}
	return &driving.ExportStatus{AthleteID: athleteID, Phase: driving.PhaseIdle}, nil
}

// pendingSet returns the discovered IDs not yet done, newest first.
// Iteration order is deterministic so runs are reproducible.
func (o *ExportOrchestrator) pendingSet(ctx context.Context, discovered []int64) []int64 {
	seen := make(map[int64]struct{}, len(discovered))
	pending := make([]int64, 0, len(discovered))
	for _, wid := range discovered {
		if _, dup := seen[wid]; dup {
			continue
		}
		seen[wid] = struct{}{}
		if !o.store.IsDone(ctx, wid) {
			pending = append(pending, wid)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i] > pending[j] })
	return pending
}

func (o *ExportOrchestrator) setStatus(athleteID int64, status *driving.ExportStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.activeRuns[athleteID] = status
}

func (o *ExportOrchestrator) clearStatus(athleteID int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.activeRuns, athleteID)
}

func (o *ExportOrchestrator) setPhase(athleteID int64, phase driving.Phase) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if status, ok := o.activeRuns[athleteID]; ok {
		status.Phase = phase
	}
}

func (o *ExportOrchestrator) recordOutcome(athleteID int64, out domain.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	status, ok := o.activeRuns[athleteID]
	if !ok {
		return
	}
	status.Processed++
	if out.Status == domain.OutcomeFailed {
		status.Failed++
	}
}

// notifier decouples observer delivery from the worker pool. Outcomes
// are handed to the observer on a separate goroutine and dropped when
// the buffer is full, so a slow observer never stalls a pool slot.
type notifier struct {
	ch   chan domain.Outcome
	done chan struct{}
}

func newNotifier(observer driven.ProgressObserver) *notifier {
	if observer == nil {
		return nil
	}
	n := &notifier{
		ch:   make(chan domain.Outcome, 256),
		done: make(chan struct{}),
	}
	go func() {
		defer close(n.done)
		for out := range n.ch {
			observer.OnItemOutcome(out)
		}
	}()
	return n
}

// publish hands an outcome to the observer without blocking.
func (n *notifier) publish(out domain.Outcome) {
	if n == nil {
		return
	}
	select {
	case n.ch <- out:
	default:
	}
}

// close stops delivery after draining buffered outcomes.
func (n *notifier) close() {
	if n == nil {
		return
	}
	close(n.ch)
	<-n.done
}
