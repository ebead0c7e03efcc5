// Copyright (c) 2023 BVK Chaitanya

package httputil

import (
	"fmt"
	"os"
	"time"
)

type Options struct {
	// ReadyTimeout is the max time StartTCP waits for the new listener to
	// serve a probe request.
	ReadyTimeout time.Duration

	// ReadyRetryInterval is the wait between the probe requests.
	ReadyRetryInterval time.Duration

	// ShutdownTimeout is the max time Stop and Close wait for in-flight
	// requests before closing the connections forcibly.
	ShutdownTimeout time.Duration

	// LogRequests enables debug logs for every request.
	LogRequests bool
}

func (v *Options) setDefaults() {
	if v.ReadyTimeout == 0 {
		v.ReadyTimeout = 10 * time.Second
	}
	if v.ReadyRetryInterval == 0 {
		v.ReadyRetryInterval = 100 * time.Millisecond
	}
	if v.ShutdownTimeout == 0 {
		v.ShutdownTimeout = 5 * time.Second
	}
}

func (v *Options) Check() error {
	if v.ReadyTimeout < 0 || v.ReadyRetryInterval < 0 || v.ShutdownTimeout < 0 {
		return fmt.Errorf("http server timeouts cannot be negative: %w", os.ErrInvalid)
	}
	return nil
}
