// Copyright (c) 2023 BVK Chaitanya

// Package ticker defines the value that identifies a tradeable instrument on
// a named exchange.
package ticker

import (
	"fmt"
	"os"
	"strings"
)

// Spec identifies a currency pair on an exchange. Specs are compared by
// value.
type Spec struct {
	Exchange string
	Base     string
	Counter  string
}

func (s Spec) Check() error {
	if len(s.Exchange) == 0 {
		return fmt.Errorf("exchange name cannot be empty: %w", os.ErrInvalid)
	}
	if len(s.Base) == 0 {
		return fmt.Errorf("base currency cannot be empty: %w", os.ErrInvalid)
	}
	if len(s.Counter) == 0 {
		return fmt.Errorf("counter currency cannot be empty: %w", os.ErrInvalid)
	}
	if strings.EqualFold(s.Base, s.Counter) {
		return fmt.Errorf("base and counter currencies must differ: %w", os.ErrInvalid)
	}
	return nil
}

// Pair returns the exchange product id in BASE-COUNTER form.
func (s Spec) Pair() string {
	return s.Base + "-" + s.Counter
}

func (s Spec) String() string {
	return fmt.Sprintf("%s:%s/%s", s.Exchange, s.Base, s.Counter)
}

// Parse parses exchange:BASE/COUNTER strings. Exchange names are lower-cased
// and currency symbols are upper-cased.
func Parse(v string) (Spec, error) {
	exchange, pair, ok := strings.Cut(v, ":")
	if !ok {
		return Spec{}, fmt.Errorf("ticker %q has no exchange prefix: %w", v, os.ErrInvalid)
	}
	base, counter, ok := strings.Cut(pair, "/")
	if !ok {
		base, counter, ok = strings.Cut(pair, "-")
	}
	if !ok {
		return Spec{}, fmt.Errorf("ticker %q has no currency pair: %w", v, os.ErrInvalid)
	}
	s := Spec{
		Exchange: strings.ToLower(exchange),
		Base:     strings.ToUpper(base),
		Counter:  strings.ToUpper(counter),
	}
	if err := s.Check(); err != nil {
		return Spec{}, err
	}
	return s, nil
}
