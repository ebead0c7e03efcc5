// Copyright (c) 2023 BVK Chaitanya

package api

import (
	"fmt"
	"os"

	"github.com/bvk/oco/jobdef"
	"github.com/bvk/oco/ticker"
	"github.com/shopspring/decimal"
)

const LimitPath = "/oco/limit"

type LimitRequest struct {
	// Ticker is in exchange:BASE/COUNTER form.
	Ticker string

	Direction string

	Amount decimal.Decimal
	Price  decimal.Decimal

	// NoTrack disables the order state notifications for the placed order.
	NoTrack bool
}

type LimitResponse struct {
	UID string
}

func (r *LimitRequest) Check() error {
	if _, err := ticker.Parse(r.Ticker); err != nil {
		return fmt.Errorf("invalid ticker: %w", err)
	}
	if _, err := jobdef.ParseDirection(r.Direction); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive: %w", os.ErrInvalid)
	}
	if !r.Price.IsPositive() {
		return fmt.Errorf("price must be positive: %w", os.ErrInvalid)
	}
	return nil
}

// Job returns the limit order job for the request.
func (r *LimitRequest) Job() (*jobdef.Job, error) {
	if err := r.Check(); err != nil {
		return nil, err
	}
	spec, _ := ticker.Parse(r.Ticker)
	dir, _ := jobdef.ParseDirection(r.Direction)
	j := jobdef.NewLimitOrder(spec, dir, r.Amount, r.Price)
	j.LimitOrder.Track = !r.NoTrack
	return j, nil
}
