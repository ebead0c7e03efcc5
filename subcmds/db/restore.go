// Copyright (c) 2023 BVK Chaitanya

package db

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bvk/oco/cli"
	"github.com/bvk/oco/kvutil"
	"github.com/bvk/oco/subcmds/cmdutil"
)

type Restore struct {
	cmdutil.DBFlags

	batchSize int
}

func (c *Restore) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("restore", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.IntVar(&c.batchSize, "num-ops-per-tx", 100, "max number of keys deleted or restored per transaction")
	return fset, cli.CmdFunc(c.run)
}

func (c *Restore) Synopsis() string {
	return "Replaces the database content with a backup file"
}

func (c *Restore) CommandHelp() string {
	return `

Command "restore" deletes all keys in the database and loads the keys from a
backup file taken by the "backup" command. Restoring into the database of a
running service is refused; use -data-dir to restore into a stopped service's
database directly.

`
}

func (c *Restore) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("command takes one (input backup file) argument")
	}
	if c.DBFlags.IsRemoteDatabase() {
		return fmt.Errorf("restore into a remote database is not supported: %w", os.ErrInvalid)
	}
	if c.batchSize <= 0 {
		return fmt.Errorf("num-ops-per-tx must be positive: %w", os.ErrInvalid)
	}

	fp, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer fp.Close()

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	if err := kvutil.ClearDB(ctx, db, c.batchSize); err != nil {
		return fmt.Errorf("could not clear the database: %w", err)
	}
	if err := kvutil.ImportDB(ctx, db, bufio.NewReader(fp), c.batchSize); err != nil {
		return fmt.Errorf("could not restore from %q: %w", args[0], err)
	}
	return nil
}
