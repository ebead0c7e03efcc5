// Copyright (c) 2023 BVK Chaitanya

// Package jobdef defines the job descriptions. Jobs are immutable data;
// processors registered with the dispatcher give them behavior.
package jobdef

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/bvk/oco/ticker"
	"github.com/shopspring/decimal"
)

type Type string

const (
	LimitOrderType         Type = "LimitOrder"
	OrderStateNotifierType Type = "OrderStateNotifier"
)

type Direction string

const (
	BUY  Direction = "BUY"
	SELL Direction = "SELL"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToUpper(s)); d {
	case BUY, SELL:
		return d, nil
	}
	return "", fmt.Errorf("invalid direction %q: %w", s, os.ErrInvalid)
}

// LimitOrderJob places one limit order and optionally tracks it.
type LimitOrderJob struct {
	TickTrigger ticker.Spec
	Direction   Direction
	Amount      decimal.Decimal
	LimitPrice  decimal.Decimal

	// Track submits an OrderStateNotifierJob for the placed order.
	Track bool
}

func (v *LimitOrderJob) Check() error {
	if err := v.TickTrigger.Check(); err != nil {
		return err
	}
	if v.Direction != BUY && v.Direction != SELL {
		return fmt.Errorf("invalid direction %q: %w", v.Direction, os.ErrInvalid)
	}
	if !v.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive: %w", os.ErrInvalid)
	}
	if !v.LimitPrice.IsPositive() {
		return fmt.Errorf("limit price must be positive: %w", os.ErrInvalid)
	}
	return nil
}

// OrderStateNotifierJob watches an order till it reaches a terminal state.
type OrderStateNotifierJob struct {
	OrderID     string
	TickTrigger ticker.Spec
}

func (v *OrderStateNotifierJob) Check() error {
	if err := v.TickTrigger.Check(); err != nil {
		return err
	}
	if len(v.OrderID) == 0 {
		return fmt.Errorf("order id cannot be empty: %w", os.ErrInvalid)
	}
	return nil
}

// Job is a tagged union of all job descriptions. Exactly one of the variant
// pointers is non-nil and it matches the Type.
type Job struct {
	Type Type

	LimitOrder         *LimitOrderJob
	OrderStateNotifier *OrderStateNotifierJob
}

// NewLimitOrder returns a limit order job with tracking enabled.
func NewLimitOrder(spec ticker.Spec, dir Direction, amount, price decimal.Decimal) *Job {
	return &Job{
		Type: LimitOrderType,
		LimitOrder: &LimitOrderJob{
			TickTrigger: spec,
			Direction:   dir,
			Amount:      amount,
			LimitPrice:  price,
			Track:       true,
		},
	}
}

func NewOrderStateNotifier(spec ticker.Spec, orderID string) *Job {
	return &Job{
		Type: OrderStateNotifierType,
		OrderStateNotifier: &OrderStateNotifierJob{
			OrderID:     orderID,
			TickTrigger: spec,
		},
	}
}

func (v *Job) Check() error {
	switch v.Type {
	case LimitOrderType:
		if v.LimitOrder == nil || v.OrderStateNotifier != nil {
			return fmt.Errorf("job variant does not match the type %q: %w", v.Type, os.ErrInvalid)
		}
		return v.LimitOrder.Check()
	case OrderStateNotifierType:
		if v.OrderStateNotifier == nil || v.LimitOrder != nil {
			return fmt.Errorf("job variant does not match the type %q: %w", v.Type, os.ErrInvalid)
		}
		return v.OrderStateNotifier.Check()
	}
	return fmt.Errorf("unknown job type %q: %w", v.Type, os.ErrInvalid)
}

// DedupKey returns a non-empty key for jobs that must not have more than one
// active instance. Limit orders are never de-duplicated: every submission is
// an independent order.
func (v *Job) DedupKey() string {
	if v.Type == OrderStateNotifierType && v.OrderStateNotifier != nil {
		return path.Join(v.OrderStateNotifier.TickTrigger.Exchange, v.OrderStateNotifier.OrderID)
	}
	return ""
}

func (v *Job) String() string {
	switch {
	case v.LimitOrder != nil:
		j := v.LimitOrder
		return fmt.Sprintf("%s %s %s @ %s on %s", v.Type, j.Direction, j.Amount, j.LimitPrice, j.TickTrigger)
	case v.OrderStateNotifier != nil:
		j := v.OrderStateNotifier
		return fmt.Sprintf("%s order %s on %s", v.Type, j.OrderID, j.TickTrigger)
	}
	return string(v.Type)
}

// Submitter schedules new jobs for independent execution. SubmitNew returns
// once the job is accepted and returns its id.
type Submitter interface {
	SubmitNew(ctx context.Context, job *Job) (string, error)
}
