// Package batch processes a number of documents one after another. A failing
// document is reported and skipped, the rest of the batch still runs.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Job is a single document to process.
type Job struct {
	Name string
	Run  func(ctx context.Context, log *zap.Logger) error
}

// Result is the outcome of one job.
type Result struct {
	ID      uuid.UUID
	Name    string
	Err     error
	Elapsed time.Duration
	// Skipped is set for jobs never started because the batch was canceled
	Skipped bool
}

// OK reports whether the job completed.
func (r Result) OK() bool {
	return r.Err == nil && !r.Skipped
}

// Summary holds results in job order.
type Summary struct {
	Results []Result
}

// Succeeded returns number of completed jobs.
func (s Summary) Succeeded() int {
	var n int
	for _, r := range s.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

// Err combines errors of all failed jobs, nil when every job succeeded.
func (s Summary) Err() error {
	var err error
	for _, r := range s.Results {
		if r.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", r.Name, r.Err))
		}
	}
	return err
}

// Runner runs jobs strictly in sequence.
type Runner struct {
	Log *zap.Logger
	// Yield is called between jobs, runtime.Gosched when nil
	Yield func()
}

// NewRunner creates a sequential runner.
func NewRunner(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{Log: log}
}

// Run processes jobs in order. Cancellation is checked between jobs only, a
// started job always runs to completion.
func (r *Runner) Run(ctx context.Context, jobs []Job) Summary {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	yield := r.Yield
	if yield == nil {
		yield = runtime.Gosched
	}

	sum := Summary{Results: make([]Result, 0, len(jobs))}
	for i, job := range jobs {
		if i > 0 {
			yield()
		}
		res := Result{ID: newID(), Name: job.Name}
		if err := ctx.Err(); err != nil {
			res.Skipped, res.Err = true, err
			sum.Results = append(sum.Results, res)
			continue
		}

		jlog := log.With(zap.Stringer("job", res.ID), zap.String("name", job.Name))
		start := time.Now()
		res.Err = runJob(ctx, job, jlog)
		res.Elapsed = time.Since(start)

		if res.Err != nil {
			jlog.Error("Document processing failed", zap.Duration("elapsed", res.Elapsed), zap.Error(res.Err))
		} else {
			jlog.Info("Document processed", zap.Duration("elapsed", res.Elapsed))
		}
		sum.Results = append(sum.Results, res)
	}

	log.Debug("Batch done", zap.Int("jobs", len(jobs)), zap.Int("succeeded", sum.Succeeded()))
	return sum
}

func runJob(ctx context.Context, job Job, log *zap.Logger) (rerr error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Document processing ended with panic", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("processing panic: %v", r)
		}
	}()
	if job.Run == nil {
		return fmt.Errorf("nothing to run")
	}
	return job.Run(ctx, log)
}

func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
