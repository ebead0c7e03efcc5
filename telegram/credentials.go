// Copyright (c) 2025 BVK Chaitanya

package telegram

import (
	"fmt"
	"os"
	"slices"
)

// Secrets holds the bot token and the telegram user names that are allowed to
// talk to the bot. Notifications are sent to the owner and the others.
type Secrets struct {
	BotToken string   `json:"token"`
	OwnerID  string   `json:"owner"`
	AdminID  string   `json:"admin"`
	OtherIDs []string `json:"others"`
}

func (v *Secrets) Check() error {
	if v.BotToken == "" || v.OwnerID == "" {
		return fmt.Errorf("bot token and owner are required: %w", os.ErrInvalid)
	}
	for i, id := range v.OtherIDs {
		switch {
		case id == "":
			return fmt.Errorf("other user at index %d is empty: %w", i, os.ErrInvalid)
		case id == v.OwnerID || id == v.AdminID:
			return fmt.Errorf("user %q is repeated in other users: %w", id, os.ErrInvalid)
		case slices.Contains(v.OtherIDs[:i], id):
			return fmt.Errorf("user %q is listed more than once: %w", id, os.ErrInvalid)
		}
	}
	return nil
}

func (v *Secrets) Clone() *Secrets {
	c := *v
	c.OtherIDs = slices.Clone(v.OtherIDs)
	return &c
}

// isAllowed returns true if user can send commands to the bot.
func (v *Secrets) isAllowed(user string) bool {
	return user != "" && (user == v.OwnerID || user == v.AdminID || slices.Contains(v.OtherIDs, user))
}

// receivers returns the users who receive notifications.
func (v *Secrets) receivers() []string {
	return append([]string{v.OwnerID}, v.OtherIDs...)
}
