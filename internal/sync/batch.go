package sync

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kemari/confsync/internal/model"
)

// Runner executes a plan's documents with a bounded worker pool.
//
// Design decision: We use errgroup.SetLimit rather than a hand-rolled
// worker pool because it handles the concurrency bound correctly with
// less machinery. Each document gets its own goroutine; only
// 'concurrency' of them run at once.
type Runner struct {
	syncer *Syncer

	// concurrency is the maximum number of documents in flight.
	concurrency int

	logger *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithConcurrency sets the maximum number of concurrent documents.
// Default is 4.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRunnerLogger sets the batch-level logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner over the given syncer.
func NewRunner(syncer *Syncer, opts ...RunnerOption) *Runner {
	r := &Runner{
		syncer:      syncer,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run synchronizes every document in the plan and returns one result
// per document in plan order. A failed document is recorded in its
// result and never aborts its siblings; cancelling the context stops
// scheduling new documents while in-flight ones finish.
func (r *Runner) Run(ctx context.Context, plan *Plan, opts Options) []*model.SyncResult {
	files := plan.Files()
	opts.ParentID = plan.ParentID

	r.logger.Info("starting put batch",
		slog.Int("total", len(files)),
		slog.Int("linked", len(plan.Linked)),
		slog.Int("unlinked", len(plan.Unlinked)),
		slog.Int("concurrency", r.concurrency))
	start := time.Now()

	results := make([]*model.SyncResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = model.NewSyncResult(file).Finish(model.ActionNoOp, ctx.Err())
				return nil
			default:
			}

			// Each goroutine owns a distinct slice index, so no lock
			// is needed. Errors live in the result, not the errgroup,
			// to keep sibling documents running.
			results[i] = r.syncer.SyncFile(ctx, file, opts)
			if err := results[i].Err; err != nil {
				r.logger.Warn("document sync failed",
					slog.String("file", file),
					slog.Any("error", err))
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // goroutines never return errors

	r.logger.Info("put batch complete",
		slog.Int("total", len(files)),
		slog.Duration("elapsed", time.Since(start)))
	return results
}
