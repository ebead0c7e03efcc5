// Copyright (c) 2025 BVK Chaitanya

package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/bvk/oco/kvutil"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/go-telegram/bot/models"
)

var testingSecrets *Secrets

func checkSecrets() bool {
	if testingSecrets != nil {
		return true
	}
	data, err := os.ReadFile("telegram-creds.json")
	if err != nil {
		return false
	}
	s := new(Secrets)
	if err := json.Unmarshal(data, s); err != nil {
		return false
	}
	if err := s.Check(); err != nil {
		return false
	}
	testingSecrets = s
	return true
}

func TestClient(t *testing.T) {
	ctx := context.Background()

	if !checkSecrets() {
		t.Skip("no credentials")
		return
	}

	db := kvmemdb.New()
	c, err := New(ctx, db, testingSecrets)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			t.Fatal(err)
		}
	}()

	t.Logf("Authorized on account %s with owner %s", c.BotUserName(), c.OwnerUserName())

	c.SendMessage(ctx, time.Now(), "hello")
}

func TestParseCommand(t *testing.T) {
	newMessage := func(text string, length int) *models.Message {
		return &models.Message{
			Text: text,
			Entities: []models.MessageEntity{
				{Type: models.MessageEntityTypeBotCommand, Offset: 0, Length: length},
			},
		}
	}

	name, args, err := parseCommand(newMessage("/jobs all  active", 5))
	if err != nil {
		t.Fatal(err)
	}
	if name != "jobs" {
		t.Fatalf("wanted jobs command, got %q", name)
	}
	if len(args) != 2 || args[0] != "all" || args[1] != "active" {
		t.Fatalf("wanted [all active], got %v", args)
	}

	if name, _, err := parseCommand(newMessage("/jobs@ocobot", 12)); err != nil || name != "jobs" {
		t.Fatalf("wanted jobs command without the bot suffix, got %q (%v)", name, err)
	}
	if _, _, err := parseCommand(&models.Message{Text: "hello"}); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("wanted ErrInvalid, got %v", err)
	}
	if _, _, err := parseCommand(newMessage("/", 1)); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("wanted ErrInvalid for an empty command, got %v", err)
	}

	c := new(Client)
	c.commandMap.Store("jobs", &command{"Lists jobs", func(context.Context, []string) error { return nil }})
	if _, err := c.lookup("jobs"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.lookup("missing"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("wanted ErrNotExist, got %v", err)
	}
}

func TestSecretsCheck(t *testing.T) {
	valid := &Secrets{BotToken: "token", OwnerID: "owner", AdminID: "admin", OtherIDs: []string{"a", "b"}}
	if err := valid.Check(); err != nil {
		t.Fatal(err)
	}
	if !valid.isAllowed("admin") || !valid.isAllowed("b") || valid.isAllowed("c") || valid.isAllowed("") {
		t.Fatalf("wanted only configured users to be allowed")
	}
	if r := valid.receivers(); len(r) != 3 || r[0] != "owner" {
		t.Fatalf("wanted owner and others as receivers, got %v", r)
	}

	for _, s := range []*Secrets{
		{OwnerID: "owner"},
		{BotToken: "token"},
		{BotToken: "token", OwnerID: "owner", OtherIDs: []string{""}},
		{BotToken: "token", OwnerID: "owner", OtherIDs: []string{"owner"}},
		{BotToken: "token", OwnerID: "owner", AdminID: "admin", OtherIDs: []string{"admin"}},
		{BotToken: "token", OwnerID: "owner", OtherIDs: []string{"a", "a"}},
	} {
		if err := s.Check(); !errors.Is(err, os.ErrInvalid) {
			t.Fatalf("wanted ErrInvalid for %+v, got %v", s, err)
		}
	}
}

func TestState(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	state, err := loadState(ctx, db, "ocobot")
	if err != nil {
		t.Fatal(err)
	}
	if len(state.UserChatIDMap) != 0 {
		t.Fatalf("wanted empty state, got %v", state.UserChatIDMap)
	}
	if !learnChatID(state, "owner", 42) {
		t.Fatalf("wanted a new chat id to change the state")
	}
	if learnChatID(state, "owner", 42) {
		t.Fatalf("wanted the same chat id to leave the state unchanged")
	}
	if err := kvutil.SetDB(ctx, db, stateKey("ocobot"), state); err != nil {
		t.Fatal(err)
	}

	loaded, err := loadState(ctx, db, "ocobot")
	if err != nil {
		t.Fatal(err)
	}
	if id := loaded.UserChatIDMap["owner"]; id != 42 {
		t.Fatalf("wanted chat id 42, got %d", id)
	}
}
