// Copyright (c) 2025 BVK Chaitanya

package setup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bvk/oco/server"
)

func runPaper(t *testing.T, dir string, args ...string) error {
	t.Helper()
	c := new(Paper)
	fset, run := c.Command()
	if err := fset.Parse(append([]string{"-data-dir", dir}, args...)); err != nil {
		t.Fatal(err)
	}
	return run(context.Background(), fset.Args())
}

func TestPaper(t *testing.T) {
	dir := t.TempDir()

	if err := runPaper(t, dir, "-name", "PaperEx", "-products", "btc-usdt, eth-usdt", "-price", "BTC-USDT=60000.5", "-fee-pct", "0.1"); err != nil {
		t.Fatal(err)
	}
	secrets, err := server.SecretsFromFile(filepath.Join(dir, "secrets.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(secrets.Paper) != 1 {
		t.Fatalf("wanted one paper exchange, got %d", len(secrets.Paper))
	}
	p := secrets.Paper[0]
	if len(p.Products) != 2 || p.Products[0] != "BTC-USDT" || p.Products[1] != "ETH-USDT" {
		t.Fatalf("wanted BTC-USDT and ETH-USDT products, got %v", p.Products)
	}
	if v := p.Prices["BTC-USDT"]; v.String() != "60000.5" {
		t.Fatalf("wanted price 60000.5, got %s", v)
	}

	// Same name in a different case replaces the exchange.
	if err := runPaper(t, dir, "-name", "paperex", "-products", "SOL-USDT"); err != nil {
		t.Fatal(err)
	}
	secrets, err = server.SecretsFromFile(filepath.Join(dir, "secrets.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(secrets.Paper) != 1 || secrets.Paper[0].Products[0] != "SOL-USDT" {
		t.Fatalf("wanted replaced paper exchange, got %+v", secrets.Paper)
	}

	if err := runPaper(t, dir, "-name", "paperex", "-remove"); err != nil {
		t.Fatal(err)
	}
	if err := runPaper(t, dir, "-name", "paperex", "-remove"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("wanted os.ErrNotExist, got %v", err)
	}
}

func TestPaperInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := [][]string{
		{"-products", "BTC-USDT"},
		{"-name", "paperex"},
		{"-name", "paperex", "-products", "BTC-USDT", "-price", "ETH-USDT=1"},
		{"-name", "paperex", "-products", "BTC-USDT", "-price", "BTC-USDT=-1"},
		{"-name", "paperex", "-products", "BTC-USDT", "-fee-pct", "-1"},
	}
	for i, args := range bad {
		if err := runPaper(t, dir, args...); err == nil {
			t.Fatalf("%d: wanted an error for %v", i, args)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "secrets.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("wanted no secrets file, got %v", err)
	}
}
