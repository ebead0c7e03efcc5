// Copyright (c) 2023 BVK Chaitanya

// Package api defines the JSON request and response types for the daemon's
// http endpoints. All endpoints take POST requests.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

const APIPath = "/oco"

// Order is the order information returned by the exchange endpoints.
type Order struct {
	OrderID       string
	ClientOrderID string
	Pair          string
	Side          string
	CreateTime    time.Time
	FinishTime    time.Time
	Price         decimal.Decimal
	Size          decimal.Decimal
	Fee           decimal.Decimal
	FilledSize    decimal.Decimal
	FilledPrice   decimal.Decimal
	Status        string
	Done          bool
	DoneReason    string
}
