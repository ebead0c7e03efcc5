// Copyright (c) 2023 BVK Chaitanya

package job

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/oco/api"
	"github.com/bvk/oco/cli"
	"github.com/bvk/oco/subcmds/cmdutil"
)

type Cancel struct {
	cmdutil.ClientFlags
}

func (c *Cancel) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (job-id) argument")
	}

	req := &api.JobCancelRequest{UID: args[0]}
	resp, err := cmdutil.Post[api.JobCancelResponse](ctx, &c.ClientFlags, api.JobCancelPath, req)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", req.UID, resp.FinalState)
	return nil
}

func (c *Cancel) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("cancel", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Cancel) Synopsis() string {
	return "Cancels a job"
}

func (c *Cancel) CommandHelp() string {
	return `

Command "cancel" stops a job permanently. Canceling a limit order job does not
cancel the order placed in the exchange, if any. Canceling an order tracking
job stops the notifications for the order.

`
}
