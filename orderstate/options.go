// Copyright (c) 2023 BVK Chaitanya

package orderstate

import (
	"fmt"
	"os"
	"time"
)

type Options struct {
	// PollInterval is the delay between two order state fetches. It is also
	// the base for the exponential backoff on errors.
	PollInterval time.Duration

	// MaxBackoff caps the delay between retries after errors.
	MaxBackoff time.Duration

	// MaxConsecutiveErrors is the number of failed fetches in a row after
	// which the run gives up and asks to be rescheduled.
	MaxConsecutiveErrors int
}

func (v *Options) setDefaults() {
	if v.PollInterval == 0 {
		v.PollInterval = 5 * time.Second
	}
	if v.MaxBackoff == 0 {
		v.MaxBackoff = 2 * time.Minute
	}
	if v.MaxConsecutiveErrors == 0 {
		v.MaxConsecutiveErrors = 10
	}
}

func (v *Options) Check() error {
	if v.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive: %w", os.ErrInvalid)
	}
	if v.MaxBackoff < v.PollInterval {
		return fmt.Errorf("max backoff cannot be smaller than the poll interval: %w", os.ErrInvalid)
	}
	if v.MaxConsecutiveErrors <= 0 {
		return fmt.Errorf("max consecutive errors must be positive: %w", os.ErrInvalid)
	}
	return nil
}
