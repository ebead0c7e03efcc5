// Copyright (c) 2025 BVK Chaitanya

// Package envfile loads KEY=VALUE lines from a file into the process
// environment. Variables already set in the environment are kept unless the
// OverwriteIfExists option is given, so env files only supply defaults.
package envfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// UpdateEnv updates current process's environment with the values read from
// the env filename found in the user's home directory. The location of the env
// file search path and other behaviors can be changed by the input options.
// Only the first env file found in the search path is used.
//
// Empty lines and lines starting with # are skipped. NO shell escaping or
// expansion is performed on the values.
func UpdateEnv(filename string, opts ...Option) error {
	if strings.ContainsRune(filename, os.PathSeparator) {
		return fmt.Errorf("file name contains path separator: %w", os.ErrInvalid)
	}
	var fopts options
	for _, v := range opts {
		if err := v(&fopts); err != nil {
			return err
		}
	}
	fpaths, err := searchPaths(filename, &fopts)
	if err != nil {
		return err
	}
	for _, fpath := range fpaths {
		vars, err := readFile(fpath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		for _, kv := range vars {
			key := fopts.prefix + kv[0]
			if len(os.Getenv(key)) != 0 && !fopts.overwrite {
				continue
			}
			if err := os.Setenv(key, kv[1]); err != nil {
				return fmt.Errorf("could not set environment variable %q: %w", key, err)
			}
		}
		return nil
	}
	return nil
}

func searchPaths(filename string, fopts *options) ([]string, error) {
	var fpaths []string
	if fopts.fromCwd {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		fpaths = []string{filepath.Join(cwd, filename)}
		if fopts.upwards {
			last, dir := cwd, filepath.Dir(cwd)
			for dir != last {
				fpaths = append(fpaths, filepath.Join(dir, filename))
				last, dir = dir, filepath.Dir(dir)
			}
		}
		return fpaths, nil
	}

	user, err := user.Current()
	if err != nil {
		return nil, err
	}
	if len(user.HomeDir) == 0 {
		return nil, fmt.Errorf("could not determine current user's home directory")
	}
	return []string{filepath.Join(user.HomeDir, filename)}, nil
}

func readFile(fpath string) ([][2]string, error) {
	fp, err := os.Open(fpath)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	vars, err := parse(fp)
	if err != nil {
		return nil, fmt.Errorf("could not parse env file %q: %w", fpath, err)
	}
	return vars, nil
}

func parse(r io.Reader) ([][2]string, error) {
	var vars [][2]string
	scanner := bufio.NewScanner(r)
	for i := 1; scanner.Scan(); i++ {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid/unrecognized variable assignment on line %d: %w", i, os.ErrInvalid)
		}
		if !nameRe.MatchString(key) {
			return nil, fmt.Errorf("invalid environment variable name %q on line %d: %w", key, i, os.ErrInvalid)
		}
		vars = append(vars, [2]string{key, value})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return vars, nil
}
