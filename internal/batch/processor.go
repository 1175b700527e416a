// Package batch runs independent file-writing jobs on a bounded worker pool.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"mitsuba-export/internal/log"
)

// Job is one unit of work, usually writing one output file.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Options configures a Run.
type Options struct {
	Workers int
	// Progress is the interval between progress log lines; zero disables them.
	Progress time.Duration
	Logger   *log.Logger
}

// Result holds the outcome of one job.
type Result struct {
	Name    string
	Success bool
	Error   string
}

// Run executes jobs with at most Workers in flight. The first failure
// cancels the context passed to the remaining jobs and is returned wrapped
// with the job name. Results are in job order; jobs that never started are
// reported as failed with the context error.
func Run(ctx context.Context, jobs []Job, opts Options) ([]Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := log.OrNop(opts.Logger)

	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64
	start := time.Now()

	done := make(chan struct{})
	if opts.Progress > 0 {
		go func() {
			ticker := time.NewTicker(opts.Progress)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						logger.Infow("writing", "done", p, "total", total, "files_per_sec", rate)
					}
				}
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		i, job := i, job
		results[i] = Result{Name: job.Name}
		g.Go(func() error {
			defer processed.Add(1)
			if err := gctx.Err(); err != nil {
				results[i].Error = err.Error()
				return err
			}
			if err := job.Run(gctx); err != nil {
				results[i].Error = err.Error()
				return fmt.Errorf("batch: %s: %w", job.Name, err)
			}
			results[i].Success = true
			return nil
		})
	}
	err := g.Wait()
	close(done)

	logger.Debugw("batch finished", "jobs", total, "elapsed", time.Since(start).String())
	return results, err
}
