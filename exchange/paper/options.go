// Copyright (c) 2023 BVK Chaitanya

package paper

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

type Options struct {
	// RequestsPerSecond limits the rate of gateway calls.
	RequestsPerSecond float64

	// FeePct is the fee percentage charged on the filled value.
	FeePct decimal.Decimal
}

func (v *Options) setDefaults() {
	if v.RequestsPerSecond == 0 {
		v.RequestsPerSecond = 25
	}
}

func (v *Options) Check() error {
	if v.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second cannot be negative: %w", os.ErrInvalid)
	}
	if v.FeePct.IsNegative() {
		return fmt.Errorf("fee percentage cannot be negative: %w", os.ErrInvalid)
	}
	return nil
}
