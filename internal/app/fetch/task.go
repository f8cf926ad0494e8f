package fetch

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/strataboard/internal/app/source"
	"golang.org/x/sync/errgroup"
)

// Task is one entry of a fetch table: a source call, the value to use when
// it fails, and the time it is allowed to take. Build tasks with Bind.
type Task struct {
	Name    string
	Timeout time.Duration

	call     func(ctx context.Context) (apply func(), err error)
	fallback func()
}

// Bind makes a task that stores the result of call in dst, or def when the
// call fails, times out or panics. dst is written only by Run, after the
// call has settled, so a call that outlives its timeout cannot race with
// the default.
func Bind[T any](name string, timeout time.Duration, dst *T, call func(context.Context) (T, error), def T) Task {
	return Task{
		Name:    name,
		Timeout: timeout,
		call: func(ctx context.Context) (func(), error) {
			v, err := call(ctx)
			if err != nil {
				return nil, err
			}
			return func() { *dst = v }, nil
		},
		fallback: func() { *dst = def },
	}
}

type outcome struct {
	apply func()
	err   error
}

// exec runs the call under its own deadline. It returns when the call
// returns or the deadline passes, whichever is first.
func (t Task) exec(parent context.Context) (func(), error) {
	ctx, cancel := parent, context.CancelFunc(func() {})
	if t.Timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, t.Timeout)
	}
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: panic: %v", source.ErrUnavailable, r)}
			}
		}()
		apply, err := t.call(ctx)
		done <- outcome{apply: apply, err: err}
	}()

	select {
	case o := <-done:
		return o.apply, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run executes every task concurrently and waits for all of them to settle.
// A failing task never stops its siblings: its default is assigned and a
// SourceError is recorded. limit bounds the number of calls in flight; 0
// means unbounded. The returned errors are ordered by source name.
func Run(ctx context.Context, tasks []Task, limit int) []source.SourceError {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []source.SourceError
	)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, t := range tasks {
		g.Go(func() error {
			apply, err := t.exec(ctx)
			if err == nil && apply != nil {
				apply()
				return nil
			}
			t.fallback()
			if err != nil {
				mu.Lock()
				errs = append(errs, source.NewSourceError(t.Name, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	slices.SortStableFunc(errs, func(a, b source.SourceError) int {
		return strings.Compare(a.Source, b.Source)
	})
	return errs
}
