// Copyright (c) 2025 BVK Chaitanya

package setup

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bvk/oco/server"
	"github.com/bvk/oco/subcmds/defaults"
)

type secretsFlags struct {
	dataDir     string
	secretsPath string
}

func (f *secretsFlags) setFlags(fset *flag.FlagSet) {
	fset.StringVar(&f.dataDir, "data-dir", defaults.DataDir(), "path to the data directory")
	fset.StringVar(&f.secretsPath, "secrets-file", "", "path to credentials file (default: secrets.json in the data directory)")
}

func (f *secretsFlags) path() (string, error) {
	if len(f.secretsPath) != 0 {
		return filepath.Abs(f.secretsPath)
	}
	if err := os.MkdirAll(f.dataDir, 0700); err != nil {
		return "", fmt.Errorf("could not create data directory %q: %w", f.dataDir, err)
	}
	dataDir, err := filepath.Abs(f.dataDir)
	if err != nil {
		return "", fmt.Errorf("could not determine data-dir %q absolute path: %w", f.dataDir, err)
	}
	return filepath.Join(dataDir, "secrets.json"), nil
}

// update loads the secrets file, applies the update function and saves the
// secrets back when they are still valid. Missing secrets file is treated as
// empty.
func (f *secretsFlags) update(fn func(*server.Secrets) error) error {
	secretsPath, err := f.path()
	if err != nil {
		return err
	}

	secrets, err := server.SecretsFromFile(secretsPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		secrets = new(server.Secrets)
	}

	if err := fn(secrets); err != nil {
		return err
	}
	if err := secrets.Check(); err != nil {
		return err
	}

	js, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal secrets: %w", err)
	}
	if err := os.WriteFile(secretsPath, js, os.FileMode(0600)); err != nil {
		return fmt.Errorf("could not write secrets file %q: %w", secretsPath, err)
	}
	return nil
}
