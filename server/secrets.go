// Copyright (c) 2023 BVK Chaitanya

package server

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bvk/oco/pushover"
	"github.com/bvk/oco/telegram"
	"github.com/shopspring/decimal"
)

// PaperExchange configures one simulated exchange.
type PaperExchange struct {
	Name string `json:"name"`

	// Products lists the BASE-COUNTER products traded in the exchange.
	Products []string `json:"products"`

	// Prices holds the initial prices for the products, if any.
	Prices map[string]decimal.Decimal `json:"prices"`

	FeePct decimal.Decimal `json:"fee_pct"`

	RequestsPerSecond float64 `json:"requests_per_second"`
}

type Secrets struct {
	Pushover *pushover.Keys    `json:"pushover"`
	Telegram *telegram.Secrets `json:"telegram"`

	Paper []*PaperExchange `json:"paper"`
}

func SecretsFromFile(fpath string) (*Secrets, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}
	s := new(Secrets)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("could not parse secrets file %q: %w", fpath, err)
	}
	if err := s.Check(); err != nil {
		return nil, fmt.Errorf("invalid secrets file %q: %w", fpath, err)
	}
	return s, nil
}

func (v *Secrets) Check() error {
	if v.Telegram != nil {
		if err := v.Telegram.Check(); err != nil {
			return err
		}
	}
	if v.Pushover != nil {
		if err := v.Pushover.Check(); err != nil {
			return err
		}
	}
	names := make(map[string]bool)
	for _, p := range v.Paper {
		if p == nil || len(p.Name) == 0 {
			return fmt.Errorf("paper exchange name cannot be empty: %w", os.ErrInvalid)
		}
		name := strings.ToLower(p.Name)
		if names[name] {
			return fmt.Errorf("paper exchange %q is repeated: %w", p.Name, os.ErrInvalid)
		}
		names[name] = true
		for pair, price := range p.Prices {
			if !price.IsPositive() {
				return fmt.Errorf("initial price for %q in %q must be positive: %w", pair, p.Name, os.ErrInvalid)
			}
		}
	}
	return nil
}
