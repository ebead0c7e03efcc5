// Copyright (c) 2023 BVK Chaitanya

package api

import (
	"fmt"
	"os"

	"github.com/bvk/oco/ticker"
)

const ExchangeGetOrderPath = "/oco/exchange/get-order"

type ExchangeGetOrderRequest struct {
	Ticker string

	OrderID string
}

type ExchangeGetOrderResponse struct {
	// Error holds the exchange error, if any.
	Error string

	Order *Order
}

func (r *ExchangeGetOrderRequest) Check() error {
	if _, err := ticker.Parse(r.Ticker); err != nil {
		return fmt.Errorf("invalid ticker: %w", err)
	}
	if len(r.OrderID) == 0 {
		return fmt.Errorf("order id cannot be empty: %w", os.ErrInvalid)
	}
	return nil
}
