// Copyright (c) 2023 BVK Chaitanya

// Package paper implements a simulated exchange. Orders are kept in memory
// and are filled when the price set through SetPrice crosses the limit
// price.
package paper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/bvk/oco/exchange"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/visvasity/topic"
	"golang.org/x/time/rate"
)

type Exchange struct {
	name string
	opts Options

	limiter *rate.Limiter

	updates *topic.Topic[*exchange.Order]

	mu sync.Mutex

	lastID int64

	pairs []string

	priceMap map[string]decimal.Decimal

	orderMap map[string]*exchange.Order

	clientIDMap map[uuid.UUID]string
}

var _ exchange.Gateway = &Exchange{}
var _ exchange.OrderUpdater = &Exchange{}

// New creates a simulated exchange that trades the given BASE-COUNTER
// products.
func New(name string, pairs []string, opts *Options) (*Exchange, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	if len(name) == 0 {
		return nil, fmt.Errorf("exchange name cannot be empty: %w", os.ErrInvalid)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("at least one product is required: %w", os.ErrInvalid)
	}

	ex := &Exchange{
		name:        name,
		opts:        *opts,
		limiter:     rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		updates:     topic.New[*exchange.Order](),
		pairs:       slices.Clone(pairs),
		priceMap:    make(map[string]decimal.Decimal),
		orderMap:    make(map[string]*exchange.Order),
		clientIDMap: make(map[uuid.UUID]string),
	}
	return ex, nil
}

func (ex *Exchange) Close() error {
	ex.updates.Close()
	return nil
}

func (ex *Exchange) ExchangeName() string {
	return ex.name
}

func (ex *Exchange) tradeError(op string, err error) error {
	return &exchange.TradeError{Exchange: ex.name, Op: op, Err: err}
}

func (ex *Exchange) PlaceLimitOrder(ctx context.Context, req *exchange.LimitOrder) (string, error) {
	if err := ex.limiter.Wait(ctx); err != nil {
		return "", ex.tradeError("place-limit-order", err)
	}

	pair := req.Pair()
	if !slices.Contains(ex.pairs, pair) {
		return "", ex.tradeError("place-limit-order", fmt.Errorf("product %q is not traded: %w", pair, os.ErrInvalid))
	}
	if req.Side != exchange.ASK && req.Side != exchange.BID {
		return "", ex.tradeError("place-limit-order", fmt.Errorf("invalid order side %q: %w", req.Side, os.ErrInvalid))
	}
	if !req.Size.IsPositive() || !req.Price.IsPositive() {
		return "", ex.tradeError("place-limit-order", fmt.Errorf("order size and price must be positive: %w", os.ErrInvalid))
	}

	ex.mu.Lock()
	defer ex.mu.Unlock()

	if req.ClientOrderID != uuid.Nil {
		if id, ok := ex.clientIDMap[req.ClientOrderID]; ok {
			slog.Info("duplicate client order id returns the existing order", "exchange", ex.name, "client-id", req.ClientOrderID, "order", id)
			return id, nil
		}
	}

	ex.lastID++
	id := strconv.FormatInt(ex.lastID, 10)
	order := &exchange.Order{
		ServerOrderID: id,
		ClientOrderID: req.ClientOrderID.String(),
		Pair:          pair,
		Side:          req.Side,
		Price:         req.Price,
		Size:          req.Size,
		CreateTime:    exchange.RemoteTime{Time: time.Now()},
		Status:        exchange.OPEN,
	}
	ex.orderMap[id] = order
	if req.ClientOrderID != uuid.Nil {
		ex.clientIDMap[req.ClientOrderID] = id
	}
	ex.publishLocked(order)

	if price, ok := ex.priceMap[pair]; ok {
		ex.fillLocked(order, price)
	}
	return id, nil
}

func (ex *Exchange) GetOrder(ctx context.Context, pair, orderID string) (*exchange.Order, error) {
	if err := ex.limiter.Wait(ctx); err != nil {
		return nil, ex.tradeError("get-order", err)
	}

	ex.mu.Lock()
	defer ex.mu.Unlock()

	order, ok := ex.orderMap[orderID]
	if !ok || order.Pair != pair {
		return nil, ex.tradeError("get-order", fmt.Errorf("order %q in %q: %w", orderID, pair, os.ErrNotExist))
	}
	clone := *order
	return &clone, nil
}

func (ex *Exchange) GetOrderUpdates() (*topic.Receiver[*exchange.Order], error) {
	return topic.Subscribe(ex.updates, 0, false)
}

// SetPrice updates the last traded price of a product and fills all open
// orders that cross the new price.
func (ex *Exchange) SetPrice(pair string, price decimal.Decimal) error {
	if !slices.Contains(ex.pairs, pair) {
		return fmt.Errorf("product %q is not traded: %w", pair, os.ErrNotExist)
	}
	if !price.IsPositive() {
		return fmt.Errorf("price must be positive: %w", os.ErrInvalid)
	}

	ex.mu.Lock()
	defer ex.mu.Unlock()

	ex.priceMap[pair] = price
	for _, order := range ex.orderMap {
		if order.Pair == pair && !order.Done {
			ex.fillLocked(order, price)
		}
	}
	return nil
}

// Cancel cancels an open order.
func (ex *Exchange) Cancel(orderID string) error {
	ex.mu.Lock()
	defer ex.mu.Unlock()

	order, ok := ex.orderMap[orderID]
	if !ok {
		return fmt.Errorf("order %q: %w", orderID, os.ErrNotExist)
	}
	if order.Done {
		return fmt.Errorf("order %q is already %s: %w", orderID, order.Status, os.ErrInvalid)
	}
	ex.finishLocked(order, exchange.CANCELLED, "canceled by user")
	return nil
}

func (ex *Exchange) fillLocked(order *exchange.Order, price decimal.Decimal) {
	switch order.Side {
	case exchange.ASK:
		if price.LessThan(order.Price) {
			return
		}
	case exchange.BID:
		if price.GreaterThan(order.Price) {
			return
		}
	}

	order.FilledSize = order.Size
	order.FilledPrice = order.Price
	order.Fee = order.Size.Mul(order.Price).Mul(ex.opts.FeePct).Div(decimal.NewFromInt(100))
	ex.finishLocked(order, exchange.FILLED, "")
}

func (ex *Exchange) finishLocked(order *exchange.Order, status, reason string) {
	order.Status = status
	order.Done = true
	order.DoneReason = reason
	order.FinishTime = exchange.RemoteTime{Time: time.Now()}
	ex.publishLocked(order)
}

func (ex *Exchange) publishLocked(order *exchange.Order) {
	clone := *order
	ex.updates.Send(&clone)
}
