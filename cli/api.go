// Copyright (c) 2023 BVK Chaitanya

// Package cli parses command lines into nested subcommands, each with its own
// flag.FlagSet. Flags of a parent command are visible to all of its
// subcommands, so a flag can appear anywhere after the command that defines
// it.
//
// Top-level commands "help", "flags" and "commands" are built in. Commands can
// document themselves by implementing the optional `Synopsis() string` and
// `CommandHelp() string` methods.
//
// A command is any type that returns its flags and its run function:
//
//	type trackCmd struct {
//		cmdutil.ClientFlags
//	}
//
//	func (c *trackCmd) Command() (*flag.FlagSet, cli.CmdFunc) {
//		fset := flag.NewFlagSet("track", flag.ContinueOnError)
//		c.ClientFlags.SetFlags(fset)
//		return fset, cli.CmdFunc(c.run)
//	}
package cli

import (
	"context"
	"flag"
	"os"
)

// CmdFunc runs a command with the arguments left after flag parsing.
type CmdFunc func(ctx context.Context, args []string) error

type Command interface {
	// Command returns the command's flags and run function. FlagSet name is
	// used as the command name and must not be nil.
	Command() (*flag.FlagSet, CmdFunc)
}

// CommandGroup returns a command that has no run function of its own and
// dispatches to one of the cmds by name.
func CommandGroup(name, synopsis string, cmds ...Command) Command {
	return &group{
		fset:     flag.NewFlagSet(name, flag.ContinueOnError),
		synopsis: synopsis,
		cmds:     cmds,
	}
}

// Run resolves the command to execute from args and runs it. Flags from
// flag.CommandLine are accepted before and after the command names.
func Run(ctx context.Context, cmds []Command, args []string) error {
	if len(cmds) == 0 {
		return os.ErrInvalid
	}
	root := &group{fset: flag.CommandLine, cmds: cmds}
	return root.run(ctx, args)
}
