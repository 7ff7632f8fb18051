package generator

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// workerPool is a fixed set of goroutines fed through a task channel. It is
// started once per request and reused by every batch.
type workerPool struct {
	tasks chan func()
	group errgroup.Group
}

func newWorkerPool(workers int) *workerPool {
	p := &workerPool{tasks: make(chan func())}
	for i := 0; i < workers; i++ {
		p.group.Go(func() error {
			for task := range p.tasks {
				task()
			}
			return nil
		})
	}
	return p
}

// run executes every job on the pool and waits for all of them. After the
// first failure the batch context is cancelled and jobs that have not
// started yet are skipped. The first error is returned.
func (p *workerPool) run(parent context.Context, jobs []func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for _, job := range jobs {
		wg.Add(1)
		p.tasks <- func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := job(ctx); err != nil {
				fail(err)
			}
		}
	}
	wg.Wait()
	if firstErr == nil {
		// Jobs skipped because the caller cancelled.
		return parent.Err()
	}
	return firstErr
}

// close stops the workers once queued tasks have drained.
func (p *workerPool) close() {
	close(p.tasks)
	_ = p.group.Wait()
}
