// Copyright (c) 2023 BVK Chaitanya

package exchange

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/bvk/oco/api"
	"github.com/bvk/oco/cli"
	"github.com/bvk/oco/subcmds/cmdutil"
)

type GetOrder struct {
	cmdutil.ClientFlags
}

func (c *GetOrder) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("get-order", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *GetOrder) Synopsis() string {
	return "Fetches an order's current state from the exchange"
}

func (c *GetOrder) run(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("this command takes two (ticker and order-id) arguments")
	}

	req := &api.ExchangeGetOrderRequest{
		Ticker:  args[0],
		OrderID: args[1],
	}
	if err := req.Check(); err != nil {
		return err
	}
	resp, err := cmdutil.Post[api.ExchangeGetOrderResponse](ctx, &c.ClientFlags, api.ExchangeGetOrderPath, req)
	if err != nil {
		return fmt.Errorf("POST request to get-order failed: %w", err)
	}
	if len(resp.Error) != 0 {
		return fmt.Errorf("exchange has failed: %s", resp.Error)
	}
	jsdata, _ := json.MarshalIndent(resp.Order, "", "  ")
	fmt.Printf("%s\n", jsdata)
	return nil
}
