// Package ingest schedules CPU-bound parse jobs onto a bounded worker
// pool, keeping long parses off any request-handling goroutine. The
// parsers themselves are pure and stateless, so jobs need no coordination
// beyond the shared concurrency cap.
package ingest

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Job is one unit of parse work. Jobs observe ctx for cooperative
// cancellation and keep whatever partial output they produced.
type Job func(ctx context.Context) error

// Pool bounds how many jobs run at once.
type Pool struct {
	limit int
}

// NewPool creates a pool running at most limit jobs concurrently.
// A non-positive limit defaults to the number of CPUs.
func NewPool(limit int) *Pool {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	return &Pool{limit: limit}
}

// Run executes all jobs and waits for them. The first job error cancels
// the remaining jobs' context and is returned; jobs already running finish
// with partial results per their own contracts.
func (p *Pool) Run(ctx context.Context, jobs []Job) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)
	for _, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return job(ctx)
		})
	}
	return g.Wait()
}
