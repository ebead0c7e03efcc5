// Copyright (c) 2023 BVK Chaitanya

package dispatch

import (
	"fmt"
	"os"
	"time"
)

type Options struct {
	// RescheduleDelay is the wait before a processor that requested
	// continuation is started again.
	RescheduleDelay time.Duration
}

func (v *Options) setDefaults() {
	if v.RescheduleDelay == 0 {
		v.RescheduleDelay = 30 * time.Second
	}
}

func (v *Options) Check() error {
	if v.RescheduleDelay < 0 {
		return fmt.Errorf("reschedule delay cannot be negative: %w", os.ErrInvalid)
	}
	return nil
}
