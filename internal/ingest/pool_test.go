package ingest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolRunsAllJobs(t *testing.T) {
	var n atomic.Int64
	jobs := make([]Job, 50)
	for i := range jobs {
		jobs[i] = func(context.Context) error {
			n.Add(1)
			return nil
		}
	}
	require.NoError(t, NewPool(4).Run(context.Background(), jobs))
	require.Equal(t, int64(50), n.Load())
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const limit = 3
	var mu sync.Mutex
	running, peak := 0, 0

	jobs := make([]Job, 20)
	for i := range jobs {
		jobs[i] = func(context.Context) error {
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()

			mu.Lock()
			running--
			mu.Unlock()
			return nil
		}
	}
	require.NoError(t, NewPool(limit).Run(context.Background(), jobs))
	require.LessOrEqual(t, peak, limit)
}

func TestPoolPropagatesFirstError(t *testing.T) {
	boom := errors.New("boom")
	jobs := []Job{
		func(context.Context) error { return nil },
		func(context.Context) error { return boom },
		func(context.Context) error { return nil },
	}
	err := NewPool(1).Run(context.Background(), jobs)
	require.ErrorIs(t, err, boom)
}

func TestPoolCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewPool(2).Run(ctx, []Job{
		func(ctx context.Context) error { return ctx.Err() },
	})
	require.ErrorIs(t, err, context.Canceled)
}
