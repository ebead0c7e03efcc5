// Copyright (c) 2025 BVK Chaitanya

package telegram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/bvk/oco/gobs"
	"github.com/bvk/oco/kvutil"
	"github.com/bvkgo/kv"
)

// Telegram bots can only message users who have messaged the bot before, so
// chat ids learned from incoming messages are persisted per bot.

func stateKey(botName string) string {
	return path.Join("/telegram", botName, "state")
}

func loadState(ctx context.Context, db kv.Database, botName string) (*gobs.TelegramState, error) {
	state, err := kvutil.GetDB[gobs.TelegramState](ctx, db, stateKey(botName))
	if errors.Is(err, os.ErrNotExist) {
		return &gobs.TelegramState{UserChatIDMap: make(map[string]int64)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not load telegram state for bot %q: %w", botName, err)
	}
	if state.UserChatIDMap == nil {
		state.UserChatIDMap = make(map[string]int64)
	}
	return state, nil
}

// learnChatID records the chat id for the user and reports whether the state
// has changed.
func learnChatID(state *gobs.TelegramState, user string, chatID int64) bool {
	if id, ok := state.UserChatIDMap[user]; ok && id == chatID {
		return false
	}
	state.UserChatIDMap[user] = chatID
	return true
}
