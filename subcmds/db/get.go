// Copyright (c) 2023 BVK Chaitanya

package db

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/oco/cli"
	"github.com/bvk/oco/subcmds/cmdutil"
	"github.com/bvkgo/kv"
)

type Get struct {
	cmdutil.DBFlags

	valueType string
}

func (c *Get) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("get", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.valueType, "value-type", "", "gob type name for the value (default: picked from the key)")
	return fset, cli.CmdFunc(c.run)
}

func (c *Get) Synopsis() string {
	return "Prints the value of a key in the database"
}

func (c *Get) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("command takes one (key) argument")
	}
	key, typename := args[0], c.valueType
	if typename == "" {
		typename, _ = KeyTypeName(key)
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	var out string
	if err := kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		v, err := r.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("could not get key %q: %w", key, err)
		}
		out, err = formatValue(typename, v, "  ")
		return err
	}); err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
