package services

import (
	"context"
	"sync"
	"time"

	"github.com/runninglog/runlog-cli/internal/core/domain"
	"github.com/runninglog/runlog-cli/internal/core/ports/driven"
	"github.com/runninglog/runlog-cli/internal/logger"
	"github.com/runninglog/runlog-cli/internal/ratelimit"
)

// DefaultConcurrency is the default number of simultaneously active
// export units.
const DefaultConcurrency = 5

// workerPool applies the fetch-convert-persist unit of work to each
// pending workout with bounded concurrency. Items fail independently:
// a workout exhausting its retries never stops the others.
type workerPool struct {
	fetcher driven.WorkoutFetcher
	writer  driven.ArtifactWriter
	store   driven.StateStore
	limiter *ratelimit.Limiter
	retry   RetryPolicy

	// notify receives each outcome as it is reached. Never nil.
	notify func(domain.Outcome)
}

// run processes every pending workout and returns one outcome per
// item. On cancellation no new items are started; items already in
// flight reach their own terminal state, and items never started are
// reported as cancelled.
func (p *workerPool) run(ctx context.Context, athleteID int64, pending []int64, concurrency int) []domain.Outcome {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency > len(pending) {
		concurrency = len(pending)
	}

	jobs := make(chan int64)
	results := make(chan domain.Outcome)

	// Workers and the feeder all report through results; the channel
	// closes once every producer is done, so exactly one outcome is
	// emitted per pending item.
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for wid := range jobs {
				results <- p.processOne(ctx, athleteID, wid)
			}
		}()
	}

	// Feed items until done or cancelled. Cancellation stops
	// admission; whatever was never handed to a worker is reported
	// as cancelled.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		for i, wid := range pending {
			select {
			case jobs <- wid:
			case <-ctx.Done():
				for _, rest := range pending[i:] {
					results <- domain.Outcome{
						WID:    rest,
						Status: domain.OutcomeCancelled,
						Reason: ctx.Err().Error(),
					}
				}
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]domain.Outcome, 0, len(pending))
	for out := range results {
		p.notify(out)
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// processOne drives one workout to a terminal state: admission, fetch,
// artifact write, then the durable done mark. The done mark is written
// only after the artifact is on disk, so a crash in between leaves the
// workout pending and safe to re-process.
func (p *workerPool) processOne(ctx context.Context, athleteID, wid int64) domain.Outcome {
	attempt := 0
	for {
		attempt++

		// Allow consumes a token when one is free, skipping the
		// blocking path; when the budget is exhausted the stall shows
		// up under --verbose.
		if !p.limiter.Allow() {
			logger.Debug("workout %d waiting for a request slot", wid)
			if err := p.limiter.Wait(ctx); err != nil {
				return domain.Outcome{WID: wid, Status: domain.OutcomeCancelled, Attempts: attempt, Reason: err.Error()}
			}
		}

		err := p.exportOnce(ctx, athleteID, wid)
		if err == nil {
			return domain.Outcome{WID: wid, Status: domain.OutcomeExported, Attempts: attempt}
		}
		if ctx.Err() != nil {
			return domain.Outcome{WID: wid, Status: domain.OutcomeCancelled, Attempts: attempt, Reason: ctx.Err().Error()}
		}

		if domain.Classify(err) == domain.KindRateLimited {
			// Treat the signal as evidence the shared budget is
			// over-subscribed, not just this worker's.
			p.limiter.RecordRateLimited(domain.RetryAfterHint(err))
		}

		delay, retryable := p.retry.Next(err, attempt)
		if !retryable {
			logger.Warn("workout %d failed after %d attempt(s): %v", wid, attempt, err)
			return domain.Outcome{WID: wid, Status: domain.OutcomeFailed, Attempts: attempt, Reason: err.Error()}
		}

		logger.Debug("workout %d attempt %d failed (%s), retrying in %s: %v",
			wid, attempt, domain.Classify(err), delay, err)

		select {
		case <-ctx.Done():
			return domain.Outcome{WID: wid, Status: domain.OutcomeCancelled, Attempts: attempt, Reason: ctx.Err().Error()}
		case <-time.After(delay):
		}
	}
}

// exportOnce performs a single fetch-convert-persist attempt.
func (p *workerPool) exportOnce(ctx context.Context, athleteID, wid int64) error {
	workout, err := p.fetcher.FetchWorkout(ctx, athleteID, wid)
	if err != nil {
		return err
	}

	path, err := p.writer.Write(ctx, workout)
	if err != nil {
		return err
	}
	logger.Debug("workout %d written to %s", wid, path)

	return p.store.MarkDone(ctx, wid)
}
