// Copyright (c) 2023 BVK Chaitanya

package daemonize

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"testing"
)

func TestIsBackground(t *testing.T) {
	t.Setenv(EnvKey, "")
	if IsBackground() {
		t.Fatalf("wanted foreground process")
	}
	t.Setenv(EnvKey, "1234")
	if !IsBackground() {
		t.Fatalf("wanted background process")
	}
}

func TestChildEnv(t *testing.T) {
	t.Setenv("OCO_SERVER_PORT", "12000")
	t.Setenv("OCOX", "ignored")
	t.Setenv("SECRET_TOKEN", "ignored")

	env := childEnv()
	if want := fmt.Sprintf("%s=%d", EnvKey, os.Getpid()); env[0] != want {
		t.Fatalf("wanted %q as the first variable, got %q", want, env[0])
	}
	if !slices.Contains(env, "OCO_SERVER_PORT=12000") {
		t.Fatalf("wanted OCO_SERVER_PORT to be passed down, got %v", env)
	}
	for _, kv := range env {
		if strings.HasPrefix(kv, "OCOX=") || strings.HasPrefix(kv, "SECRET_TOKEN=") {
			t.Fatalf("wanted %q to be filtered out", kv)
		}
	}
}
