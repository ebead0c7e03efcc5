// Copyright (c) 2023 BVK Chaitanya

package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"
)

type group struct {
	fset     *flag.FlagSet
	synopsis string
	cmds     []Command
}

var builtinCmds = []string{"help", "flags", "commands"}

func (g *group) Command() (*flag.FlagSet, CmdFunc) {
	return g.fset, nil
}

func (g *group) find(name string) Command {
	for _, c := range g.cmds {
		if commandName(c) == name {
			return c
		}
	}
	return nil
}

// resolution is the state of command line parsing.
type resolution struct {
	path    []Command
	fsets   []*flag.FlagSet
	builtin string
}

func (r *resolution) last() Command {
	return r.path[len(r.path)-1]
}

// lookup finds the flag in the deepest command that defines it.
func (r *resolution) lookup(name string) *flag.Flag {
	for i := len(r.fsets) - 1; i >= 0; i-- {
		if f := r.fsets[i].Lookup(name); f != nil {
			return f
		}
	}
	return nil
}

// setFlag parses the flag at args[0] and returns the number of arguments
// consumed.
func (r *resolution) setFlag(args []string) (int, error) {
	arg := args[0]
	name, value, hasValue := strings.Cut(strings.TrimPrefix(arg[1:], "-"), "=")
	if name == "" || name[0] == '-' {
		return 0, fmt.Errorf("bad flag syntax: %s", arg)
	}
	f := r.lookup(name)
	if f == nil {
		return 0, fmt.Errorf("flag provided but not defined: -%s", name)
	}

	if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
		if !hasValue {
			value = "true"
		}
		if err := f.Value.Set(value); err != nil {
			return 0, fmt.Errorf("invalid boolean value %q for -%s: %w", value, name, err)
		}
		return 1, nil
	}

	n := 1
	if !hasValue {
		if len(args) < 2 {
			return 0, fmt.Errorf("flag needs an argument: -%s", name)
		}
		value, n = args[1], 2
	}
	if err := f.Value.Set(value); err != nil {
		return 0, fmt.Errorf("invalid value %q for flag -%s: %w", value, name, err)
	}
	return n, nil
}

func (g *group) resolve(args []string) (*resolution, []string, error) {
	r := &resolution{
		path:  []Command{g},
		fsets: []*flag.FlagSet{g.fset},
	}
	for len(args) > 0 {
		arg := args[0]
		if arg == "--" {
			return r, args[1:], nil
		}
		if len(arg) > 1 && arg[0] == '-' {
			n, err := r.setFlag(args)
			if err != nil {
				return nil, nil, err
			}
			args = args[n:]
			continue
		}

		// Remaining arguments belong to the leaf command.
		cg, ok := r.last().(*group)
		if !ok {
			break
		}
		if sub := cg.find(arg); sub != nil {
			fset, _ := sub.Command()
			r.path = append(r.path, sub)
			r.fsets = append(r.fsets, fset)
			args = args[1:]
			continue
		}
		if len(r.path) == 1 && r.builtin == "" && slices.Contains(builtinCmds, arg) {
			r.builtin = arg
			args = args[1:]
			continue
		}
		return nil, nil, fmt.Errorf("command not defined: %s", arg)
	}
	return r, args, nil
}

func (g *group) run(ctx context.Context, args []string) error {
	r, args, err := g.resolve(args)
	if err != nil {
		return err
	}

	switch r.builtin {
	case "flags":
		return printFlags(os.Stderr, r.path)
	case "commands":
		return printCommands(os.Stderr, r.path)
	case "help":
		return printHelp(os.Stderr, r.path)
	}

	if _, fn := r.last().Command(); fn != nil {
		return fn(ctx, args)
	}
	return printHelp(os.Stderr, r.path)
}
