// Copyright (c) 2025 BVK Chaitanya

package envfile

import (
	"fmt"
	"os"
	"regexp"
)

type options struct {
	prefix    string
	overwrite bool

	// fromCwd searches the working directory instead of the home directory.
	fromCwd bool
	// upwards also searches the ancestors of the working directory.
	upwards bool
}

// Option customizes UpdateEnv behavior.
type Option func(*options) error

// nameRe matches valid environment variable names and name prefixes.
var nameRe = regexp.MustCompile("^[a-zA-Z][0-9a-zA-Z_]*$")

// SearchCurrentDir looks for the env file in the working directory instead of
// the home directory. With parents set, the ancestor directories up to the
// root are searched too, nearest first.
func SearchCurrentDir(parents bool) Option {
	return func(opts *options) error {
		opts.fromCwd, opts.upwards = true, parents
		return nil
	}
}

// VariableNamePrefix prepends the prefix to every variable name in the file.
func VariableNamePrefix(prefix string) Option {
	return func(opts *options) error {
		if !nameRe.MatchString(prefix) {
			return fmt.Errorf("variable name prefix %q has invalid characters: %w", prefix, os.ErrInvalid)
		}
		opts.prefix = prefix
		return nil
	}
}

// OverwriteIfExists controls whether file values replace variables that are
// already set to a non-empty value.
func OverwriteIfExists(overwrite bool) Option {
	return func(opts *options) error {
		opts.overwrite = overwrite
		return nil
	}
}
