// Copyright (c) 2023 BVK Chaitanya

package job

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/bvk/oco/api"
	"github.com/bvk/oco/cli"
	"github.com/bvk/oco/subcmds/cmdutil"
)

type Get struct {
	cmdutil.ClientFlags
}

func (c *Get) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("get", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Get) Synopsis() string {
	return "Prints a job's state and description"
}

func (c *Get) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (job-id) argument")
	}

	req := &api.JobGetRequest{UID: args[0]}
	resp, err := cmdutil.Post[api.JobGetResponse](ctx, &c.ClientFlags, api.JobGetPath, req)
	if err != nil {
		return err
	}
	jsdata, _ := json.MarshalIndent(resp.Job, "", "  ")
	fmt.Printf("%s\n", jsdata)
	return nil
}
