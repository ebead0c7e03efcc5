// Copyright (c) 2023 BVK Chaitanya

package job

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/bvk/oco/api"
	"github.com/bvk/oco/cli"
	"github.com/bvk/oco/subcmds/cmdutil"
)

type List struct {
	cmdutil.ClientFlags

	all    bool
	asJSON bool
}

func (c *List) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.BoolVar(&c.all, "all", false, "when true, finished jobs are also listed")
	fset.BoolVar(&c.asJSON, "json", false, "when true, prints the jobs in json format")
	return fset, cli.CmdFunc(c.run)
}

func (c *List) Synopsis() string {
	return "Prints the jobs"
}

func (c *List) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}

	req := &api.JobListRequest{All: c.all}
	resp, err := cmdutil.Post[api.JobListResponse](ctx, &c.ClientFlags, api.JobListPath, req)
	if err != nil {
		return err
	}
	if c.asJSON {
		jsdata, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Printf("%s\n", jsdata)
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "UID\tSTATE\tCREATED\tDESCRIPTION\n")
	for _, j := range resp.Jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", j.UID, j.State, j.CreateTime.Local().Format(time.DateTime), j.Description)
	}
	return tw.Flush()
}
