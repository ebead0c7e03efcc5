// Copyright (c) 2025 BVK Chaitanya

package envfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
# server settings
SERVER_PORT=10001
DATA_DIR=/var/lib/oco=x
`
	vars, err := parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(vars) != 2 {
		t.Fatalf("wanted 2 variables, got %d", len(vars))
	}
	if vars[0] != [2]string{"SERVER_PORT", "10001"} {
		t.Fatalf("wanted SERVER_PORT=10001, got %v", vars[0])
	}
	if vars[1] != [2]string{"DATA_DIR", "/var/lib/oco=x"} {
		t.Fatalf("wanted DATA_DIR=/var/lib/oco=x, got %v", vars[1])
	}

	for _, bad := range []string{"NOVALUE", "1X=2", "A-B=3"} {
		if _, err := parse(strings.NewReader(bad)); !errors.Is(err, os.ErrInvalid) {
			t.Fatalf("%s: wanted os.ErrInvalid, got %v", bad, err)
		}
	}
}

func TestUpdateEnv(t *testing.T) {
	dir := t.TempDir()
	data := "SERVER_PORT=10001\nLOG_DIR=logs\n"
	if err := os.WriteFile(filepath.Join(dir, ".testenv"), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })

	t.Setenv("OCOTEST_SERVER_PORT", "")
	t.Setenv("OCOTEST_LOG_DIR", "mylogs")

	if err := UpdateEnv(".testenv", SearchCurrentDir(false), VariableNamePrefix("OCOTEST_")); err != nil {
		t.Fatal(err)
	}
	if v := os.Getenv("OCOTEST_SERVER_PORT"); v != "10001" {
		t.Fatalf("wanted 10001, got %q", v)
	}
	if v := os.Getenv("OCOTEST_LOG_DIR"); v != "mylogs" {
		t.Fatalf("wanted existing value to be kept, got %q", v)
	}

	if err := UpdateEnv(".testenv", SearchCurrentDir(false), VariableNamePrefix("OCOTEST_"), OverwriteIfExists(true)); err != nil {
		t.Fatal(err)
	}
	if v := os.Getenv("OCOTEST_LOG_DIR"); v != "logs" {
		t.Fatalf("wanted overwritten value, got %q", v)
	}

	if err := UpdateEnv("a/b", SearchCurrentDir(false)); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("wanted os.ErrInvalid, got %v", err)
	}
}
