// Copyright (c) 2023 BVK Chaitanya

package exchange

import (
	"errors"
	"fmt"
)

// ErrNotConfigured indicates that no gateway is configured for an exchange
// name. It is a configuration problem, not a trading problem.
var ErrNotConfigured = errors.New("exchange is not configured")

// TradeError reports a failure while talking to an exchange. It covers both
// rejections by the exchange and communication failures.
type TradeError struct {
	Exchange string
	Op       string
	Err      error
}

func (v *TradeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", v.Exchange, v.Op, v.Err)
}

func (v *TradeError) Unwrap() error {
	return v.Err
}

// IsTradeError returns true if err has a *TradeError in its chain.
func IsTradeError(err error) bool {
	var terr *TradeError
	return errors.As(err, &terr)
}

// IsConfigError returns true if err is about a missing gateway.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}
