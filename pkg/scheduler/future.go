package scheduler

import "context"

// Future is the pending result of a work item.
type Future struct {
	c      chan Result[any]
	cancel context.CancelFunc
}

func newFuture(c chan Result[any], cancel context.CancelFunc) *Future {
	return &Future{c: c, cancel: cancel}
}

// C returns the channel the result is delivered on. It receives exactly one value.
func (f *Future) C() <-chan Result[any] {
	return f.c
}

// Stop cancels the context of the work item.
func (f *Future) Stop() {
	f.cancel()
}
