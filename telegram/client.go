// Copyright (c) 2025 BVK Chaitanya

// Package telegram implements a notification channel over a Telegram bot.
// Authorized users can also query the daemon through bot commands.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bvk/oco/ctxutil"
	"github.com/bvk/oco/gobs"
	"github.com/bvk/oco/kvutil"
	"github.com/bvk/oco/syncmap"
	"github.com/bvkgo/kv"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/visvasity/cli"
)

var startTime = time.Now()

// maxMessageSize is the telegram limit for a single message text.
const maxMessageSize = 4096

type Client struct {
	cg ctxutil.CloseGroup

	db      kv.Database
	bot     *bot.Bot
	self    *models.User
	secrets *Secrets

	commandMap syncmap.Map[string, *command]

	mu    sync.Mutex
	state *gobs.TelegramState
}

// New connects to the bot and starts receiving the bot updates in the
// background.
func New(ctx context.Context, db kv.Database, secrets *Secrets) (*Client, error) {
	if err := secrets.Check(); err != nil {
		return nil, err
	}
	c := &Client{
		db:      db,
		secrets: secrets.Clone(),
	}

	b, err := bot.New(secrets.BotToken, bot.WithDefaultHandler(c.onUpdate))
	if err != nil {
		return nil, fmt.Errorf("could not create telegram bot: %w", err)
	}
	c.bot = b

	if c.self, err = b.GetMe(ctx); err != nil {
		return nil, fmt.Errorf("could not fetch telegram bot information: %w", err)
	}
	if c.state, err = loadState(ctx, db, c.self.Username); err != nil {
		return nil, err
	}

	c.commandMap.Store("help", &command{"Lists all commands", c.helpCmd})
	c.commandMap.Store("uptime", &command{"Prints daemon uptime", c.uptimeCmd})
	c.commandMap.Store("version", &command{"Prints version information", c.versionCmd})
	if err := c.publishCommands(ctx); err != nil {
		return nil, err
	}

	c.cg.Go(b.Start)
	return c, nil
}

func (c *Client) Close() error {
	c.cg.Close()
	return nil
}

func (c *Client) BotUserName() string {
	return c.self.Username
}

func (c *Client) OwnerUserName() string {
	return c.secrets.OwnerID
}

// AddCommand registers a new bot command. Handler output written to
// cli.Stdout is sent back as the reply.
func (c *Client) AddCommand(ctx context.Context, name, purpose string, handler CmdFunc) error {
	if name == "" || purpose == "" || handler == nil {
		return os.ErrInvalid
	}
	if _, loaded := c.commandMap.LoadOrStore(name, &command{purpose, handler}); loaded {
		return fmt.Errorf("telegram command %q: %w", name, os.ErrExist)
	}
	return c.publishCommands(ctx)
}

// SendMessage sends the text to the owner and other users. Users who never
// messaged the bot are skipped because their chat id is unknown.
func (c *Client) SendMessage(ctx context.Context, at time.Time, text string) error {
	msg := at.Format("2006-01-02 15:04:05 MST") + " " + text
	if len(msg) > maxMessageSize {
		msg = msg[:maxMessageSize]
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, user := range c.secrets.receivers() {
		chatID, ok := c.state.UserChatIDMap[user]
		if !ok {
			slog.Warn("could not notify telegram user without a chat id", "user", user)
			continue
		}
		if _, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msg}); err != nil {
			slog.Error("could not notify telegram user (ignored)", "user", user, "err", err)
		}
	}
	return nil
}

func (c *Client) onUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	sender := msg.From.Username
	if !c.secrets.isAllowed(sender) {
		slog.Warn("ignored telegram message from unknown user", "sender", sender, "text", msg.Text)
		return
	}
	if err := c.saveChatID(ctx, sender, msg.Chat.ID); err != nil {
		slog.Warn("could not save telegram chat id (ignored)", "user", sender, "err", err)
	}

	reply := c.execute(ctx, msg)
	if reply == "" {
		return
	}
	disabled := true
	p := &bot.SendMessageParams{
		ChatID:             msg.Chat.ID,
		Text:               reply,
		ReplyParameters:    &models.ReplyParameters{MessageID: msg.ID},
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: &disabled},
	}
	if _, err := b.SendMessage(ctx, p); err != nil {
		slog.Error("could not reply to telegram user (ignored)", "user", sender, "err", err)
	}
}

// execute runs the command in the message and returns the reply text, which
// is the error message when the command fails.
func (c *Client) execute(ctx context.Context, msg *models.Message) string {
	name, args, err := parseCommand(msg)
	if err != nil {
		return "not a bot command"
	}
	handler, err := c.lookup(name)
	if err != nil {
		return err.Error()
	}
	var sb strings.Builder
	if err := handler(cli.WithStdout(ctx, &sb), args); err != nil {
		slog.Error("telegram command failed", "command", name, "args", args, "err", err)
		return err.Error()
	}
	return sb.String()
}

func (c *Client) saveChatID(ctx context.Context, user string, chatID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !learnChatID(c.state, user, chatID) {
		return nil
	}
	slog.Info("learned telegram chat id", "user", user, "chat-id", chatID)
	return kvutil.SetDB(ctx, c.db, stateKey(c.BotUserName()), c.state)
}
