// Copyright (c) 2025 BVK Chaitanya

package setup

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/bvk/oco/cli"
	"github.com/bvk/oco/pushover"
	"github.com/bvk/oco/server"
)

type PushOver struct {
	secretsFlags

	skipTesting bool

	appID  string
	userID string
}

func (c *PushOver) Synopsis() string {
	return "Configures PushOver service API parameters"
}

func (c *PushOver) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("pushover", flag.ContinueOnError)
	c.secretsFlags.setFlags(fset)
	fset.StringVar(&c.userID, "user-id", "", "PushOver service user identifier")
	fset.StringVar(&c.appID, "app-id", "", "PushOver service Application identifier")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the parameters")
	return fset, cli.CmdFunc(c.run)
}

func (c *PushOver) CommandHelp() string {
	return `

Command "pushover" helps users configure order notifications through the
Pushover service.

Pushover keys are optional. They are only required to receive notifications to
the mobile phones. They can be configured as follows:

  $ oco setup pushover -app-id=awja5ue...ito7svf -user-id=uscjs2...tvp4kv

`
}

func (c *PushOver) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}

	keys := &pushover.Keys{
		ApplicationKey: c.appID,
		UserKey:        c.userID,
	}
	if err := keys.Check(); err != nil {
		return err
	}

	if !c.skipTesting {
		// Send a test message to validate the keys.
		client, err := pushover.New(keys, "oco")
		if err != nil {
			return err
		}
		if err := client.SendMessage(ctx, time.Now(), "Test message from Pushover config setup; please ignore."); err != nil {
			return fmt.Errorf("could not send test message: %w", err)
		}
	}

	return c.secretsFlags.update(func(s *server.Secrets) error {
		s.Pushover = keys
		return nil
	})
}
