// Copyright (c) 2023 BVK Chaitanya

package gobs

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ServerOrderID string
	ClientOrderID string
	CreateTime    time.Time
	FinishTime    time.Time

	Side   string
	Status string

	Price decimal.Decimal
	Size  decimal.Decimal

	FilledFee   decimal.Decimal
	FilledSize  decimal.Decimal
	FilledPrice decimal.Decimal

	Done       bool
	DoneReason string
}

type OrderStateNotifierState struct {
	LastOrder *Order

	// ConsecutiveErrors counts the gateway failures since the last successful
	// order fetch.
	ConsecutiveErrors int

	// Delayed is true when the operator was told about a tracking delay and
	// has not been told it has recovered.
	Delayed bool
}
