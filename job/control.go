// Copyright (c) 2023 BVK Chaitanya

package job

import (
	"context"
	"sync"
	"sync/atomic"
)

// Control is the per-run handle the scheduler lends to a job processor. It
// carries the stop request from the scheduler to the processor and the
// processor's completion result back to the scheduler.
//
// Stop requests are advisory. Processors check StopRequested before starting
// irreversible work; once such work is issued, a stop has no effect on it.
type Control struct {
	stop atomic.Bool

	finished          atomic.Bool
	continueRequested atomic.Bool

	mu    sync.Mutex
	cause error

	stopf func() bool
}

// NewControl creates a control handle. A stop is requested automatically
// when the context is canceled.
func NewControl(ctx context.Context) *Control {
	c := new(Control)
	if ctx.Err() != nil {
		c.RequestStop(context.Cause(ctx))
	}
	c.stopf = context.AfterFunc(ctx, func() {
		c.RequestStop(context.Cause(ctx))
	})
	return c
}

// Release detaches the control from its context. Controls must not be used
// after they are released.
func (c *Control) Release() {
	if c.stopf != nil {
		c.stopf()
	}
}

// RequestStop asks the processor to stop. Only the first cause is kept.
func (c *Control) RequestStop(cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop.Load() {
		return
	}
	c.cause = cause
	c.stop.Store(true)
}

func (c *Control) StopRequested() bool {
	return c.stop.Load()
}

func (c *Control) Cause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cause
}

// Finish records the processor's result. A true value requests the scheduler
// to keep the job running. Scheduler calls it with Start's return value unless
// the processor has already called it.
func (c *Control) Finish(continueRequested bool) {
	c.continueRequested.Store(continueRequested)
	c.finished.Store(true)
}

func (c *Control) Finished() bool {
	return c.finished.Load()
}

func (c *Control) ContinueRequested() bool {
	return c.continueRequested.Load()
}
