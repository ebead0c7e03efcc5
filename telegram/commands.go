// Copyright (c) 2025 BVK Chaitanya

package telegram

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/visvasity/cli"
)

type CmdFunc = cli.CmdFunc

type command struct {
	purpose string
	handler CmdFunc
}

// parseCommand splits a "/name[@bot] args..." message into the command name
// and its arguments.
func parseCommand(msg *models.Message) (string, []string, error) {
	if msg == nil || len(msg.Entities) == 0 {
		return "", nil, os.ErrInvalid
	}
	e := msg.Entities[0]
	if e.Type != models.MessageEntityTypeBotCommand || e.Offset != 0 {
		return "", nil, os.ErrInvalid
	}
	if e.Length < 2 || len(msg.Text) < e.Length || msg.Text[0] != '/' {
		return "", nil, os.ErrInvalid
	}
	name, _, _ := strings.Cut(msg.Text[1:e.Length], "@")
	return name, strings.Fields(msg.Text[e.Length:]), nil
}

func (c *Client) lookup(name string) (CmdFunc, error) {
	cmd, ok := c.commandMap.Load(name)
	if !ok {
		return nil, fmt.Errorf("command /%s is not defined: %w", name, os.ErrNotExist)
	}
	return cmd.handler, nil
}

func (c *Client) botCommands() *bot.SetMyCommandsParams {
	p := new(bot.SetMyCommandsParams)
	for name, cmd := range c.commandMap.Range {
		p.Commands = append(p.Commands, models.BotCommand{Command: name, Description: cmd.purpose})
	}
	slices.SortFunc(p.Commands, func(a, b models.BotCommand) int {
		return strings.Compare(a.Command, b.Command)
	})
	return p
}

func (c *Client) publishCommands(ctx context.Context) error {
	ok, err := c.bot.SetMyCommands(ctx, c.botCommands())
	if err != nil {
		return fmt.Errorf("could not set telegram bot commands: %w", err)
	}
	if !ok {
		return fmt.Errorf("telegram rejected the bot commands")
	}
	return nil
}

func (c *Client) helpCmd(ctx context.Context, _ []string) error {
	stdout := cli.Stdout(ctx)
	for _, cmd := range c.botCommands().Commands {
		fmt.Fprintf(stdout, "/%s - %s\n", cmd.Command, cmd.Description)
	}
	return nil
}

func (c *Client) uptimeCmd(ctx context.Context, _ []string) error {
	d := time.Since(startTime).Truncate(time.Second)
	if days := d / (24 * time.Hour); days > 0 {
		fmt.Fprintf(cli.Stdout(ctx), "%dd%v", days, d%(24*time.Hour))
		return nil
	}
	fmt.Fprintf(cli.Stdout(ctx), "%v", d)
	return nil
}

func (c *Client) versionCmd(ctx context.Context, _ []string) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fmt.Errorf("could not read build information")
	}
	// Dependency versions are skipped to stay under the message size limit.
	stdout := cli.Stdout(ctx)
	fmt.Fprintf(stdout, "Go: %s\n", info.GoVersion)
	fmt.Fprintf(stdout, "Module: %s %s\n", info.Main.Path, info.Main.Version)
	for _, s := range info.Settings {
		if strings.HasPrefix(s.Key, "vcs.") {
			fmt.Fprintf(stdout, "%s: %s\n", s.Key, s.Value)
		}
	}
	return nil
}
