// Copyright (c) 2023 BVK Chaitanya

package api

import (
	"fmt"
	"os"

	"github.com/bvk/oco/ticker"
	"github.com/shopspring/decimal"
)

const (
	PaperSetPricePath = "/oco/paper/set-price"
	PaperCancelPath   = "/oco/paper/cancel"
)

// PaperSetPriceRequest moves the price of a product in a paper exchange,
// which fills the crossing orders.
type PaperSetPriceRequest struct {
	Ticker string

	Price decimal.Decimal
}

type PaperSetPriceResponse struct {
}

func (r *PaperSetPriceRequest) Check() error {
	if _, err := ticker.Parse(r.Ticker); err != nil {
		return fmt.Errorf("invalid ticker: %w", err)
	}
	if !r.Price.IsPositive() {
		return fmt.Errorf("price must be positive: %w", os.ErrInvalid)
	}
	return nil
}

type PaperCancelRequest struct {
	Exchange string

	OrderID string
}

type PaperCancelResponse struct {
}

func (r *PaperCancelRequest) Check() error {
	if len(r.Exchange) == 0 {
		return fmt.Errorf("exchange name cannot be empty: %w", os.ErrInvalid)
	}
	if len(r.OrderID) == 0 {
		return fmt.Errorf("order id cannot be empty: %w", os.ErrInvalid)
	}
	return nil
}
