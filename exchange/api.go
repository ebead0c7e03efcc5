// Copyright (c) 2023 BVK Chaitanya

// Package exchange defines the trade gateway capability used by the jobs.
// Exchange connectivity itself lives in gateway implementations, like the
// paper exchange.
package exchange

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/visvasity/topic"
)

type Side string

const (
	ASK Side = "ASK"
	BID Side = "BID"
)

// Order statuses. FILLED, CANCELLED and REJECTED are terminal.
const (
	OPEN      = "OPEN"
	FILLED    = "FILLED"
	CANCELLED = "CANCELLED"
	REJECTED  = "REJECTED"
)

func IsDone(status string) bool {
	return status == FILLED || status == CANCELLED || status == REJECTED
}

// LimitOrder is a request to place a limit order.
type LimitOrder struct {
	Side Side

	Base    string
	Counter string

	Size  decimal.Decimal
	Price decimal.Decimal

	ClientOrderID uuid.UUID
}

// Pair returns the product id for the order in BASE-COUNTER form.
func (v *LimitOrder) Pair() string {
	return v.Base + "-" + v.Counter
}

type Order struct {
	ServerOrderID string
	ClientOrderID string

	Pair string
	Side Side

	Price decimal.Decimal
	Size  decimal.Decimal

	CreateTime RemoteTime
	FinishTime RemoteTime

	Fee         decimal.Decimal
	FilledSize  decimal.Decimal
	FilledPrice decimal.Decimal

	Status string

	// Done is true if order is complete. DoneReason below indicates if order has
	// failed or succeeded.
	Done bool

	// When Done is true, an empty DoneReason value indicates a successfull
	// execution of the order and a non-empty DoneReason indicates a failure with
	// the reason for the failure.
	DoneReason string
}

// Gateway is a handle to one exchange. Gateways are shared across concurrent
// jobs and must be safe for concurrent use.
type Gateway interface {
	ExchangeName() string

	// PlaceLimitOrder submits a limit order and returns the exchange assigned
	// order id. Errors are reported as *TradeError values.
	PlaceLimitOrder(ctx context.Context, order *LimitOrder) (string, error)

	// GetOrder returns the current state of an order. Unknown orders are
	// reported with an error wrapping os.ErrNotExist.
	GetOrder(ctx context.Context, pair, orderID string) (*Order, error)
}

// OrderUpdater is an optional interface for gateways that can push order
// updates. Receivers must be closed by the caller.
type OrderUpdater interface {
	GetOrderUpdates() (*topic.Receiver[*Order], error)
}

// Resolver finds the gateway for an exchange name. Unknown names are
// reported with an error wrapping ErrNotConfigured.
type Resolver interface {
	Resolve(name string) (Gateway, error)
}
