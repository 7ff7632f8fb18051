package generator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	pool := newWorkerPool(3)
	defer pool.close()

	var running, peak atomic.Int32
	jobs := make([]func(context.Context) error, 12)
	for i := range jobs {
		jobs[i] = func(context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil
		}
	}

	require.NoError(t, pool.run(context.Background(), jobs))
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestWorkerPoolReusedAcrossRuns(t *testing.T) {
	pool := newWorkerPool(2)
	defer pool.close()

	var count atomic.Int32
	for range 5 {
		jobs := []func(context.Context) error{
			func(context.Context) error { count.Add(1); return nil },
			func(context.Context) error { count.Add(1); return nil },
		}
		require.NoError(t, pool.run(context.Background(), jobs))
	}
	assert.Equal(t, int32(10), count.Load())
}

func TestWorkerPoolFirstErrorSkipsRest(t *testing.T) {
	pool := newWorkerPool(1)
	defer pool.close()

	boom := errors.New("boom")
	var ran atomic.Int32
	jobs := []func(context.Context) error{
		func(context.Context) error { ran.Add(1); return boom },
		func(context.Context) error { ran.Add(1); return nil },
		func(context.Context) error { ran.Add(1); return nil },
	}

	err := pool.run(context.Background(), jobs)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), ran.Load())
}

func TestWorkerPoolParentCancelled(t *testing.T) {
	pool := newWorkerPool(2)
	defer pool.close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int32
	err := pool.run(ctx, []func(context.Context) error{
		func(context.Context) error { ran.Add(1); return nil },
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, ran.Load())
}
