// Copyright (c) 2023 BVK Chaitanya

package main

import (
	"context"
	"log"
	"os"

	"github.com/bvk/oco/cli"
	"github.com/bvk/oco/envfile"
	"github.com/bvk/oco/subcmds"
	"github.com/bvk/oco/subcmds/db"
	"github.com/bvk/oco/subcmds/exchange"
	"github.com/bvk/oco/subcmds/job"
	"github.com/bvk/oco/subcmds/limit"
	"github.com/bvk/oco/subcmds/paper"
	"github.com/bvk/oco/subcmds/setup"
)

func main() {
	// Variables from ~/.ocoenv are only defaults; real environment wins.
	if err := envfile.UpdateEnv(".ocoenv", envfile.VariableNamePrefix("OCO_"), envfile.OverwriteIfExists(false)); err != nil {
		log.Printf("could not load ~/.ocoenv file (ignored): %v", err)
	}

	limitCmds := []cli.Command{
		new(limit.Buy),
		new(limit.Sell),
	}

	jobCmds := []cli.Command{
		new(job.List),
		new(job.Get),
		new(job.Cancel),
	}

	exchangeCmds := []cli.Command{
		new(exchange.GetOrder),
	}

	paperCmds := []cli.Command{
		new(paper.SetPrice),
		new(paper.Cancel),
	}

	dbCmds := []cli.Command{
		new(db.Get),
		new(db.List),
		new(db.Backup),
		new(db.Restore),
	}

	setupCmds := []cli.Command{
		new(setup.Telegram),
		new(setup.PushOver),
		new(setup.Paper),
	}

	cmds := []cli.Command{
		new(subcmds.Run),
		cli.CommandGroup("limit", "Place limit orders", limitCmds...),
		cli.CommandGroup("job", "Inspect and cancel jobs", jobCmds...),
		cli.CommandGroup("exchange", "Query exchanges directly", exchangeCmds...),
		cli.CommandGroup("paper", "Drive paper trading exchanges", paperCmds...),
		cli.CommandGroup("db", "View/update database directly", dbCmds...),
		cli.CommandGroup("setup", "Configure notification channels and exchanges", setupCmds...),
	}
	if err := cli.Run(context.Background(), cmds, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
