// Copyright (c) 2025 BVK Chaitanya

package setup

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/bvk/oco/cli"
	"github.com/bvk/oco/server"
	"github.com/shopspring/decimal"
)

type Paper struct {
	secretsFlags

	name     string
	products string
	prices   map[string]decimal.Decimal

	feePct            string
	requestsPerSecond float64

	remove bool
}

func (c *Paper) Synopsis() string {
	return "Configures a simulated exchange for paper trading"
}

func (c *Paper) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("paper", flag.ContinueOnError)
	c.secretsFlags.setFlags(fset)
	fset.StringVar(&c.name, "name", "", "name for the paper exchange")
	fset.StringVar(&c.products, "products", "", "comma separated list of BASE-COUNTER products")
	fset.Func("price", "initial price for a product as PRODUCT=PRICE (can be repeated)", c.parsePrice)
	fset.StringVar(&c.feePct, "fee-pct", "0", "fee percentage charged on the filled value")
	fset.Float64Var(&c.requestsPerSecond, "requests-per-second", 0, "rate limit for the exchange requests (zero for default)")
	fset.BoolVar(&c.remove, "remove", false, "when true, removes the named paper exchange")
	return fset, cli.CmdFunc(c.run)
}

func (c *Paper) CommandHelp() string {
	return `

Command "paper" adds, replaces or removes a simulated exchange in the secrets
file. Paper exchanges fill the limit orders when their prices are moved with
the "oco paper set-price" command.

  $ oco setup paper -name=paperex -products=BTC-USDT -price=BTC-USDT=60000

`
}

func (c *Paper) parsePrice(s string) error {
	product, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("price must be in PRODUCT=PRICE form: %w", os.ErrInvalid)
	}
	price, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("could not parse price %q: %w", value, err)
	}
	if c.prices == nil {
		c.prices = make(map[string]decimal.Decimal)
	}
	c.prices[strings.ToUpper(product)] = price
	return nil
}

func (c *Paper) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}
	if len(c.name) == 0 {
		return fmt.Errorf("paper exchange name cannot be empty: %w", os.ErrInvalid)
	}

	sameName := func(p *server.PaperExchange) bool {
		return strings.EqualFold(p.Name, c.name)
	}
	if c.remove {
		return c.secretsFlags.update(func(s *server.Secrets) error {
			if !slices.ContainsFunc(s.Paper, sameName) {
				return fmt.Errorf("paper exchange %q is not configured: %w", c.name, os.ErrNotExist)
			}
			s.Paper = slices.DeleteFunc(s.Paper, sameName)
			return nil
		})
	}

	var products []string
	for _, p := range strings.Split(c.products, ",") {
		if p = strings.TrimSpace(p); len(p) != 0 {
			products = append(products, strings.ToUpper(p))
		}
	}
	if len(products) == 0 {
		return fmt.Errorf("at least one product is required: %w", os.ErrInvalid)
	}
	for product := range c.prices {
		if !slices.Contains(products, product) {
			return fmt.Errorf("price is given for unknown product %q: %w", product, os.ErrInvalid)
		}
	}
	feePct, err := decimal.NewFromString(c.feePct)
	if err != nil {
		return fmt.Errorf("could not parse fee percentage: %w", err)
	}
	if feePct.IsNegative() {
		return fmt.Errorf("fee percentage cannot be negative: %w", os.ErrInvalid)
	}

	ex := &server.PaperExchange{
		Name:              c.name,
		Products:          products,
		Prices:            c.prices,
		FeePct:            feePct,
		RequestsPerSecond: c.requestsPerSecond,
	}
	return c.secretsFlags.update(func(s *server.Secrets) error {
		s.Paper = append(slices.DeleteFunc(s.Paper, sameName), ex)
		return nil
	})
}
