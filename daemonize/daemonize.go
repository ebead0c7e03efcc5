// Copyright (c) 2023 BVK Chaitanya

// Package daemonize turns a foreground command into a background daemon by
// re-executing itself in a new session.
package daemonize

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"log/syslog"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// EnvKey identifies the background process. Its value in the background
// process is the pid of the parent process that spawned it.
var EnvKey = "OCO_DAEMONIZE"

// SyslogTag is the syslog tag for the standard library logger in the
// background process.
var SyslogTag = "oco"

// CheckInterval is the delay between the readiness checks in the parent.
var CheckInterval = time.Second

// Daemonize must be called early during the startup, before opening databases
// or starting servers.
//
// In the foreground process, it starts a copy of the program with the same
// arguments in the background and calls check until the copy reports ready.
// The foreground process then exits with zero status. An error is returned if
// the copy dies or the context expires first.
//
// In the background process, it starts a new session, redirects the standard
// library logger to syslog and returns nil. Standard input and outputs of the
// background process are /dev/null.
func Daemonize(ctx context.Context, check func(context.Context) error) error {
	if IsBackground() {
		if err := detach(); err != nil {
			os.Exit(1)
		}
		return nil
	}
	if err := spawn(ctx, check); err != nil {
		return err
	}
	os.Exit(0)
	return nil
}

// IsBackground returns true in the process spawned by Daemonize.
func IsBackground() bool {
	return os.Getenv(EnvKey) != ""
}

// childEnv returns the environment for the background process. Only the
// program's own settings and the basic paths are passed down.
func childEnv() []string {
	env := []string{fmt.Sprintf("%s=%d", EnvKey, os.Getpid())}
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "OCO_") || name == "HOME" || name == "PATH" {
			env = append(env, kv)
		}
	}
	return env
}

func spawn(ctx context.Context, check func(context.Context) error) error {
	binary, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not determine the executable path: %w", err)
	}

	cmd := exec.Command(binary, os.Args[1:]...)
	cmd.Dir = "/"
	cmd.Env = childEnv()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("could not start the background process: %w", err)
	}
	pid := cmd.Process.Pid
	slog.Info("started background process", "pid", pid)

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	if check == nil {
		return nil
	}
	ticker := time.NewTicker(CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("background process %d is not ready: %w", pid, context.Cause(ctx))
		case err := <-exited:
			return fmt.Errorf("background process %d has died: %w", pid, err)
		case <-ticker.C:
		}
		if err := check(ctx); err != nil {
			slog.Warn("background process is not ready yet", "pid", pid, "err", err)
			continue
		}
		return nil
	}
}

func detach() error {
	if _, err := unix.Setsid(); err != nil {
		return fmt.Errorf("could not create a new session: %w", err)
	}
	// Standard outputs are closed, so the logs are dropped without syslog.
	if w, err := syslog.New(syslog.LOG_INFO, SyslogTag); err == nil {
		log.SetOutput(w)
	} else {
		log.SetOutput(io.Discard)
	}
	return nil
}
