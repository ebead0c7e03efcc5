// Copyright (c) 2025 BVK Chaitanya

package defaults

import (
	"path/filepath"
	"testing"
)

func TestServerPort(t *testing.T) {
	t.Setenv(ServerPortEnv, "")
	if v := ServerPort(); v != 10000 {
		t.Fatalf("wanted 10000, got %d", v)
	}
	t.Setenv(ServerPortEnv, "12345")
	if v := ServerPort(); v != 12345 {
		t.Fatalf("wanted 12345, got %d", v)
	}
	for _, bad := range []string{"abc", "0", "-1", "70000"} {
		t.Setenv(ServerPortEnv, bad)
		if v := ServerPort(); v != 10000 {
			t.Fatalf("%s: wanted 10000, got %d", bad, v)
		}
	}
}

func TestDirs(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(DataDirEnv, dir)

	t.Setenv(LogDirEnv, "")
	if v := LogDir(); v != filepath.Join(dir, "logs") {
		t.Fatalf("wanted logs under data dir, got %s", v)
	}
	t.Setenv(LogDirEnv, "oco-logs")
	if v := LogDir(); v != filepath.Join(dir, "oco-logs") {
		t.Fatalf("wanted oco-logs under data dir, got %s", v)
	}
	t.Setenv(LogDirEnv, "a/b")
	if v := LogDir(); v != filepath.Join(dir, "logs") {
		t.Fatalf("wanted default log dir, got %s", v)
	}

	t.Setenv(DataDirEnv, "relative")
	if v := DataDir(); v == "relative" {
		t.Fatalf("wanted relative data dir to be ignored")
	}
}
