// Copyright (c) 2023 BVK Chaitanya

package ctxutil

import "time"

// Backoff returns base * 2^retry capped at max. Negative retry counts return
// the base duration.
func Backoff(retry int, base, max time.Duration) time.Duration {
	if retry < 0 {
		return base
	}
	if retry > 30 {
		return max
	}
	d := base * time.Duration(1<<retry)
	if d <= 0 || d > max {
		return max
	}
	return d
}
