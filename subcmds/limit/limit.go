// Copyright (c) 2023 BVK Chaitanya

package limit

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/oco/api"
	"github.com/bvk/oco/cli"
	"github.com/bvk/oco/subcmds/cmdutil"
	"github.com/shopspring/decimal"
)

type limitFlags struct {
	cmdutil.ClientFlags

	amount  string
	price   string
	noTrack bool
}

func (f *limitFlags) setFlags(fset *flag.FlagSet) {
	f.ClientFlags.SetFlags(fset)
	fset.StringVar(&f.amount, "amount", "", "order size in the base currency units")
	fset.StringVar(&f.price, "price", "", "limit price in the counter currency units")
	fset.BoolVar(&f.noTrack, "no-track", false, "when true, order state changes are not notified")
}

func (f *limitFlags) submit(ctx context.Context, direction string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("command takes one (exchange:BASE/COUNTER ticker) argument")
	}
	amount, err := decimal.NewFromString(f.amount)
	if err != nil {
		return fmt.Errorf("could not parse amount %q: %w", f.amount, err)
	}
	price, err := decimal.NewFromString(f.price)
	if err != nil {
		return fmt.Errorf("could not parse price %q: %w", f.price, err)
	}

	req := &api.LimitRequest{
		Ticker:    args[0],
		Direction: direction,
		Amount:    amount,
		Price:     price,
		NoTrack:   f.noTrack,
	}
	if err := req.Check(); err != nil {
		return err
	}
	resp, err := cmdutil.Post[api.LimitResponse](ctx, &f.ClientFlags, api.LimitPath, req)
	if err != nil {
		return fmt.Errorf("could not submit limit order job: %w", err)
	}
	fmt.Println(resp.UID)
	return nil
}

type Buy struct {
	limitFlags
}

func (c *Buy) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("buy", flag.ContinueOnError)
	c.limitFlags.setFlags(fset)
	return fset, cli.CmdFunc(func(ctx context.Context, args []string) error {
		return c.limitFlags.submit(ctx, "BUY", args)
	})
}

func (c *Buy) Synopsis() string {
	return "Places a limit buy order"
}

type Sell struct {
	limitFlags
}

func (c *Sell) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("sell", flag.ContinueOnError)
	c.limitFlags.setFlags(fset)
	return fset, cli.CmdFunc(func(ctx context.Context, args []string) error {
		return c.limitFlags.submit(ctx, "SELL", args)
	})
}

func (c *Sell) Synopsis() string {
	return "Places a limit sell order"
}

func (c *Sell) CommandHelp() string {
	return `

Command "sell" submits a job that places one limit sell order in the exchange
named by the ticker argument. Job id is printed on success. Order placement
and the final order state are notified unless -no-track is given.

  $ oco limit sell -amount=0.5 -price=65000 paperex:BTC/USDT

`
}
