// Copyright (c) 2023 BVK Chaitanya

package db

import (
	"context"
	"flag"
	"fmt"
	"io"
	"regexp"

	"github.com/bvk/oco/cli"
	"github.com/bvk/oco/kvutil"
	"github.com/bvk/oco/subcmds/cmdutil"
	"github.com/bvkgo/kv"
)

type List struct {
	cmdutil.DBFlags

	keyRegexp   string
	printValues bool
}

func (c *List) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.keyRegexp, "key-regexp", "", "lists only the keys matching the regular expression")
	fset.BoolVar(&c.printValues, "print-values", false, "prints the values in json format")
	return fset, cli.CmdFunc(c.run)
}

func (c *List) Synopsis() string {
	return "Prints keys and values in the database"
}

func (c *List) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}
	re, err := regexp.Compile(c.keyRegexp)
	if err != nil {
		return fmt.Errorf("could not compile the key regexp: %w", err)
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	show := func(key string, value io.Reader) error {
		if !re.MatchString(key) {
			return nil
		}
		if !c.printValues {
			fmt.Println(key)
			return nil
		}
		typename, ok := KeyTypeName(key)
		if !ok {
			fmt.Println(key, "<unknown value type>")
			return nil
		}
		s, err := formatValue(typename, value, "")
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		fmt.Println(key, s)
		return nil
	}
	return kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		return kvutil.Walk(ctx, r, show)
	})
}
