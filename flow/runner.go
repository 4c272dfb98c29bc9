package flow

import (
	"context"
	"sync/atomic"
)

// Runner tracks a single node's "am I busy" flag and wraps asynchronous
// work so the flag is maintained without per-handler boilerplate.
//
// Runner never writes node data and never swallows errors: the wrapped
// function's error is returned unchanged for the caller to convert into
// the node's error field.
type Runner struct {
	processing atomic.Bool
}

// IsProcessing reports whether an execution is currently in flight.
func (r *Runner) IsProcessing() bool {
	return r.processing.Load()
}

// TryBegin atomically claims the runner for an execution.
//
// Returns false when an execution is already in flight, making
// double-triggering (rapid clicks, programmatic re-entry) a no-op instead
// of a race between two concurrent write-backs. Callers that claim the
// runner must release it with End.
func (r *Runner) TryBegin() bool {
	return r.processing.CompareAndSwap(false, true)
}

// End releases a claim taken with TryBegin.
func (r *Runner) End() {
	r.processing.Store(false)
}

// ExecuteAsync runs fn with the processing flag held.
//
// The flag is set synchronously before fn is invoked and cleared when fn
// settles, on both the success and failure paths. Nothing here prevents a
// second concurrent call; both invocations run and toggle the same flag,
// last write wins. Use TryBegin where mutual exclusion is required.
func ExecuteAsync[T any](r *Runner, ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	r.processing.Store(true)
	defer r.processing.Store(false)

	return fn(ctx)
}
