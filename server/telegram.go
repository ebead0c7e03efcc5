// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"fmt"

	"github.com/bvk/oco/job"
	"github.com/bvk/oco/telegram"
	"github.com/visvasity/cli"
)

func (s *Server) AddTelegramCommand(ctx context.Context, name, purpose string, handler telegram.CmdFunc) error {
	if s.telegramClient != nil {
		return s.telegramClient.AddCommand(ctx, name, purpose, handler)
	}
	return nil // Ignored
}

func (s *Server) jobsTelegramCmd(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}
	jds, err := s.dispatcher.List(ctx)
	if err != nil {
		return err
	}

	stdout := cli.Stdout(ctx)
	n := 0
	for _, jd := range jds {
		if job.IsDone(jd.State) {
			continue
		}
		item := s.describe(ctx, jd)
		fmt.Fprintf(stdout, "%s %s %s\n", item.UID, item.State, item.Description)
		n++
	}
	if n == 0 {
		fmt.Fprintln(stdout, "No active jobs")
	}
	return nil
}
