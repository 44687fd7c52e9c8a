package benchmark

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// AsyncTestFunc starts a test that reports its outcome through c. It may
// return before the work is done; the runner waits for c.Done.
type AsyncTestFunc func(ctx context.Context, c *Completion)

// Completion is the signal an async test uses to report that it finished.
// Done must be called exactly once; later calls are ignored.
type Completion struct {
	once sync.Once
	ch   chan error
	log  *logrus.Entry
}

func newCompletion(log *logrus.Entry) *Completion {
	return &Completion{ch: make(chan error, 1), log: log}
}

func (c *Completion) Done(err error) {
	first := false
	c.once.Do(func() {
		first = true
		c.ch <- err
	})
	if !first {
		c.log.Warn("Completion signalled more than once, ignoring")
	}
}

func (c *Completion) wait(ctx context.Context) error {
	select {
	case err := <-c.ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddAsync registers a test that signals completion instead of returning.
// The pass does not move on until the test calls Done or ctx ends.
func (r *Runner) AddAsync(name string, fn AsyncTestFunc) *Runner {
	log := r.log.WithField("test", name)
	return r.Add(name, func(ctx context.Context) error {
		c := newCompletion(log)
		fn(ctx, c)
		return c.wait(ctx)
	})
}

// Callback receives the outcome of RunAsync: either a failure or a result.
type Callback func(err error, res *Result)

// RunAsync performs Run on a separate goroutine and hands the outcome to
// callback exactly once. Tests still execute one at a time on that goroutine.
func (r *Runner) RunAsync(ctx context.Context, cycles int, callback Callback) {
	go func() {
		res, err := r.Run(ctx, cycles)
		callback(err, res)
	}()
}
