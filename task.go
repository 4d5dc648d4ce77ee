package lse

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is the future type every suspending public operation (§5)
// returns. It wraps a single errgroup-managed goroutine; Wait blocks
// until that goroutine returns. If it returned an error while the
// context was cancelled, Wait returns an *Error with KindCancelled.
type Task[T any] struct {
	group  *errgroup.Group
	ctx    context.Context
	result T
}

// run dispatches fn to a worker goroutine and returns a Task that
// resolves to fn's result. fn receives a context derived from the ctx
// passed to run (via errgroup.WithContext) and should poll ctx.Err() at piece boundaries and before adapter
// dispatches, per §5's cancellation contract.
func run[T any](ctx context.Context, op string, fn func(ctx context.Context) (T, error)) *Task[T] {
	g, gctx := errgroup.WithContext(ctx)
	t := &Task[T]{group: g, ctx: ctx}
	g.Go(func() error {
		v, err := fn(gctx)
		if err != nil {
			return err
		}
		t.result = v
		return nil
	})
	return t
}

// Wait blocks until the task's goroutine completes and returns its
// result, or the error it failed with. When the goroutine failed and
// the task's context has been cancelled, the error is reported as
// KindCancelled instead.
func (t *Task[T]) Wait() (T, error) {
	if err := t.group.Wait(); err != nil {
		if t.ctx.Err() != nil {
			return t.result, newErr("task", KindCancelled, t.ctx.Err())
		}
		return t.result, err
	}
	return t.result, nil
}

// checkCancelled returns a KindCancelled *Error if ctx has been
// cancelled, and nil otherwise. Call sites use this at piece
// boundaries and before each adapter dispatch per §5.
func checkCancelled(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return newErr(op, KindCancelled, ctx.Err())
	default:
		return nil
	}
}
