// Copyright (c) 2023 BVK Chaitanya

package ctxutil

import (
	"context"
	"os"
	"sync"
)

// CloseGroup runs goroutines that share a context which is canceled with
// os.ErrClosed on Close. Zero value is ready to use.
type CloseGroup struct {
	initOnce sync.Once
	ctx      context.Context
	cancel   context.CancelCauseFunc

	wg sync.WaitGroup
}

func (cg *CloseGroup) lazyInit() {
	cg.initOnce.Do(func() {
		cg.ctx, cg.cancel = context.WithCancelCause(context.Background())
	})
}

// Go runs f in a new goroutine with the group context.
func (cg *CloseGroup) Go(f func(ctx context.Context)) {
	cg.lazyInit()
	cg.wg.Add(1)
	go func() {
		defer cg.wg.Done()
		f(cg.ctx)
	}()
}

// Context returns the group context.
func (cg *CloseGroup) Context() context.Context {
	cg.lazyInit()
	return cg.ctx
}

// Close cancels the group context and waits for all goroutines to return.
func (cg *CloseGroup) Close() {
	cg.lazyInit()
	cg.cancel(os.ErrClosed)
	cg.wg.Wait()
}
