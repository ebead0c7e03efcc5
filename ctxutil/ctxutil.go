// Copyright (c) 2023 BVK Chaitanya

// Package ctxutil has small helpers for context aware waiting and retrying.
package ctxutil

import (
	"context"
	"time"
)

// Sleep waits for the duration or until the context is done, whichever comes
// first.
func Sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Retry calls f every interval until it returns nil or the context is done.
// It returns the last error from f.
func Retry(ctx context.Context, interval time.Duration, f func() error) error {
	for {
		err := f()
		if err == nil || ctx.Err() != nil {
			return err
		}
		Sleep(ctx, interval)
	}
}

// RetryTimeout is like Retry but gives up after the timeout.
func RetryTimeout(ctx context.Context, interval, timeout time.Duration, f func() error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return Retry(ctx, interval, f)
}
