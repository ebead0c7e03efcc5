// Copyright (c) 2025 BVK Chaitanya

// Package paper implements the commands that drive the simulated exchanges
// of a running oco service.
package paper

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/oco/api"
	"github.com/bvk/oco/cli"
	"github.com/bvk/oco/subcmds/cmdutil"
	"github.com/shopspring/decimal"
)

type SetPrice struct {
	cmdutil.ClientFlags
}

func (c *SetPrice) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("set-price", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *SetPrice) Synopsis() string {
	return "Moves a product price, filling the crossed limit orders"
}

func (c *SetPrice) run(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("this command takes two (ticker and price) arguments")
	}
	price, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("could not parse price %q: %w", args[1], err)
	}
	req := &api.PaperSetPriceRequest{
		Ticker: args[0],
		Price:  price,
	}
	if err := req.Check(); err != nil {
		return err
	}
	if _, err := cmdutil.Post[api.PaperSetPriceResponse](ctx, &c.ClientFlags, api.PaperSetPricePath, req); err != nil {
		return err
	}
	return nil
}

type Cancel struct {
	cmdutil.ClientFlags
}

func (c *Cancel) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("cancel", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Cancel) Synopsis() string {
	return "Cancels an open order in a paper exchange"
}

func (c *Cancel) run(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("this command takes two (exchange and order-id) arguments")
	}
	req := &api.PaperCancelRequest{
		Exchange: args[0],
		OrderID:  args[1],
	}
	if err := req.Check(); err != nil {
		return err
	}
	if _, err := cmdutil.Post[api.PaperCancelResponse](ctx, &c.ClientFlags, api.PaperCancelPath, req); err != nil {
		return err
	}
	return nil
}
