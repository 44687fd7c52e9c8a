// Package benchmark runs a named set of test functions serially for a number
// of cycles and aggregates their timings.
package benchmark

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// TestFunc performs one execution of a test. It returns when the work is
// complete; a non-nil error fails the run.
type TestFunc func(ctx context.Context) error

type TestCase struct {
	Name string
	Run  TestFunc
}

// Clock returns the current time. Runners use time.Now unless told otherwise.
type Clock func() time.Time

type Option func(*Runner)

// WithClock replaces the clock used to stamp test start and end times.
func WithClock(clock Clock) Option {
	return func(r *Runner) {
		r.now = clock
	}
}

// WithLogger sets the entry the runner logs through.
func WithLogger(log *logrus.Entry) Option {
	return func(r *Runner) {
		r.log = log
	}
}

// Runner holds an ordered list of tests. It is not safe for concurrent use;
// register every test before calling Run.
type Runner struct {
	Name  string
	tests []TestCase
	now   Clock
	log   *logrus.Entry
}

func New(name string, opts ...Option) *Runner {
	r := &Runner{
		Name: name,
		now:  time.Now,
		log:  logrus.WithField("benchmark", name),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add appends a test and returns the runner so registrations can be chained.
// Names are not required to be unique.
func (r *Runner) Add(name string, fn TestFunc) *Runner {
	r.tests = append(r.tests, TestCase{Name: name, Run: fn})
	return r
}

// Tests returns the registered tests in registration order.
func (r *Runner) Tests() []TestCase {
	out := make([]TestCase, len(r.tests))
	copy(out, r.tests)
	return out
}

// RunOnePass executes every test once, in registration order.
func (r *Runner) RunOnePass(ctx context.Context) (PassResult, error) {
	tests := r.Tests()
	if len(tests) == 0 {
		return nil, ErrNoTests
	}
	return r.runPass(ctx, tests, 1)
}

// Run executes cycles passes one after another. The first test failure stops
// the run and is returned unchanged; no partial result is produced.
func (r *Runner) Run(ctx context.Context, cycles int) (*Result, error) {
	if cycles < 1 {
		return nil, ErrNoCycles
	}
	tests := r.Tests()
	if len(tests) == 0 {
		return nil, ErrNoTests
	}

	passes := make([]PassResult, 0, cycles)
	for cycle := 1; cycle <= cycles; cycle++ {
		r.log.WithField("cycle", cycle).Debug("Starting pass")
		pass, err := r.runPass(ctx, tests, cycle)
		if err != nil {
			return nil, err
		}
		passes = append(passes, pass)
	}
	return NewResult(passes)
}

func (r *Runner) runPass(ctx context.Context, tests []TestCase, cycle int) (PassResult, error) {
	pass := make(PassResult, 0, len(tests))
	for _, tc := range tests {
		log := r.log.WithFields(logrus.Fields{"test": tc.Name, "cycle": cycle})
		if err := ctx.Err(); err != nil {
			log.WithError(err).Error("Run cancelled")
			return nil, err
		}

		startedAt := r.now()
		if err := tc.Run(ctx); err != nil {
			log.WithError(err).Error("Test failed")
			return nil, err
		}
		endedAt := r.now()

		res := newTestResult(tc.Name, startedAt, endedAt)
		log.WithField("duration", res.Duration).Debug("Test finished")
		pass = append(pass, res)
	}
	return pass, nil
}
