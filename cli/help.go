// Copyright (c) 2023 BVK Chaitanya

package cli

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
)

func commandName(c Command) string {
	fset, _ := c.Command()
	return filepath.Base(fset.Name())
}

func hasFlags(fset *flag.FlagSet) bool {
	found := false
	fset.VisitAll(func(*flag.Flag) { found = true })
	return found
}

func synopsis(c Command) string {
	switch v := c.(type) {
	case interface{ Synopsis() string }:
		return v.Synopsis()
	case *group:
		return v.synopsis
	}
	return ""
}

func helpDoc(c Command) string {
	if v, ok := c.(interface{ CommandHelp() string }); ok {
		return v.CommandHelp()
	}
	return synopsis(c)
}

func usage(path []Command) string {
	var words []string
	withFlags := false
	for _, c := range path {
		fset, _ := c.Command()
		words = append(words, commandName(c))
		withFlags = withFlags || hasFlags(fset)
	}
	if withFlags {
		words = append(words, "<flags>")
	}
	if _, ok := path[len(path)-1].(*group); ok {
		words = append(words, "<subcommand>")
	}
	return strings.Join(append(words, "<args>"), " ")
}

// subcommands returns name and synopsis pairs for the last command in the
// path. Undocumented commands are listed first.
func subcommands(path []Command) [][2]string {
	cg, ok := path[len(path)-1].(*group)
	if !ok {
		return nil
	}
	var subs [][2]string
	for _, c := range cg.cmds {
		subs = append(subs, [2]string{commandName(c), synopsis(c)})
	}
	slices.SortFunc(subs, func(a, b [2]string) int {
		if (a[1] == "") != (b[1] == "") {
			if a[1] == "" {
				return -1
			}
			return 1
		}
		return strings.Compare(a[0], b[0])
	})
	return subs
}

// inheritedFlags returns the flags defined by the parents of the last command.
// When a name is defined more than once, the deepest definition wins.
func inheritedFlags(path []Command) *flag.FlagSet {
	flags := make(map[string]*flag.Flag)
	for _, c := range path[:len(path)-1] {
		fset, _ := c.Command()
		fset.VisitAll(func(f *flag.Flag) { flags[f.Name] = f })
	}
	inherited := flag.NewFlagSet("inherited", flag.ContinueOnError)
	for _, f := range flags {
		inherited.Var(f.Value, f.Name, f.Usage)
	}
	return inherited
}

func printCommandList(w io.Writer, subs [][2]string) {
	for _, sub := range subs {
		switch {
		case sub[1] != "":
			fmt.Fprintf(w, "\t%-15s  %s\n", sub[0], sub[1])
		case sub[0] != "":
			fmt.Fprintf(w, "\t%s\n", sub[0])
		default:
			fmt.Fprintln(w)
		}
	}
}

func printCommands(w io.Writer, path []Command) error {
	printCommandList(w, subcommands(path))
	return nil
}

func printFlags(w io.Writer, path []Command) error {
	fset, _ := path[len(path)-1].Command()
	fset.SetOutput(w)
	fset.PrintDefaults()
	return nil
}

func printHelp(w io.Writer, path []Command) error {
	cmd := path[len(path)-1]
	fmt.Fprintf(w, "Usage: %s\n", usage(path))

	if doc := helpDoc(cmd); doc != "" {
		fmt.Fprintf(w, "\n%s\n", doc)
	}

	subs := subcommands(path)
	if len(path) == 1 {
		subs = append([][2]string{
			{"help", "describe subcommands and flags"},
			{"flags", "describe all known flags"},
			{"commands", "list all command names"},
			{},
		}, subs...)
	}
	if len(subs) > 0 {
		fmt.Fprintf(w, "\nSubcommands:\n")
		printCommandList(w, subs)
	}

	if fset, _ := cmd.Command(); hasFlags(fset) {
		fmt.Fprintf(w, "\nFlags:\n")
		fset.SetOutput(w)
		fset.PrintDefaults()
	}
	if inherited := inheritedFlags(path); hasFlags(inherited) {
		fmt.Fprintf(w, "\nInherited Flags:\n")
		inherited.SetOutput(w)
		inherited.PrintDefaults()
	}
	return nil
}
