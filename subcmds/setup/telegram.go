// Copyright (c) 2025 BVK Chaitanya

package setup

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bvk/oco/cli"
	"github.com/bvk/oco/ctxutil"
	"github.com/bvk/oco/server"
	"github.com/bvk/oco/telegram"
	"github.com/bvkgo/kv/kvmemdb"
	"golang.org/x/term"
)

type Telegram struct {
	secretsFlags

	skipTesting bool

	ownerID  string
	adminID  string
	botToken string
}

func (c *Telegram) Synopsis() string {
	return "Configures Telegram service API parameters"
}

func (c *Telegram) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("telegram", flag.ContinueOnError)
	c.secretsFlags.setFlags(fset)
	fset.StringVar(&c.ownerID, "owner-id", "", "Owner's telegram user id")
	fset.StringVar(&c.adminID, "admin-id", "", "Administrator's telegram user id")
	fset.StringVar(&c.botToken, "bot-token", "", "Telegram bot's authentication token")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the parameters")
	return fset, cli.CmdFunc(c.run)
}

func (c *Telegram) CommandHelp() string {
	return `

Command "telegram" helps users configure order notifications to their
Telegram account through a Telegram bot.

Telegram configuration is optional. This is only required to receive
notifications to the mobile phones. They can be configured as follows:

  $ oco setup telegram -owner-id=username -bot-token=USCJS2...TVP4KV

`
}

func (c *Telegram) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}

	secrets := &telegram.Secrets{
		OwnerID:  c.ownerID,
		AdminID:  c.adminID,
		BotToken: c.botToken,
	}
	if err := secrets.Check(); err != nil {
		return err
	}

	if !c.skipTesting {
		fmt.Println("Start a chat with telegram bot and then press any key")
		if err := waitForKey(); err != nil {
			return err
		}

		client, err := telegram.New(ctx, kvmemdb.New(), secrets)
		if err != nil {
			return err
		}
		defer client.Close()

		ctxutil.Sleep(ctx, time.Second)
		if err := client.SendMessage(ctx, time.Now(), "Test message from Telegram config setup; please ignore."); err != nil {
			return fmt.Errorf("could not send test message: %w", err)
		}
	}

	return c.secretsFlags.update(func(s *server.Secrets) error {
		s.Telegram = secrets
		return nil
	})
}

func waitForKey() error {
	// switch stdin into 'raw' mode
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("could not switch terminal into raw mode: %w", err)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	b := make([]byte, 1)
	if _, err := os.Stdin.Read(b); err != nil {
		return fmt.Errorf("could not read from stdin: %w", err)
	}
	return nil
}
