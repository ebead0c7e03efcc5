// Copyright (c) 2023 BVK Chaitanya

// Package pushover sends notifications through the Pushover messages API.
package pushover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// MessagesURL is the pushover api endpoint for sending messages.
const MessagesURL = "https://api.pushover.net/1/messages.json"

// maxMessageLen is the pushover limit for the message text in runes.
const maxMessageLen = 1024

type Client struct {
	keys     Keys
	title    string
	endpoint string
	client   *http.Client
}

type message struct {
	Token     string `json:"token"`
	User      string `json:"user"`
	Title     string `json:"title,omitempty"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type response struct {
	Status  int      `json:"status"`
	Request string   `json:"request"`
	Errors  []string `json:"errors"`
}

// New creates a client that sends messages with the given title. Pushover uses
// the application name when title is empty.
func New(keys *Keys, title string) (*Client, error) {
	if err := keys.Check(); err != nil {
		return nil, err
	}
	c := &Client{
		keys:     *keys,
		title:    title,
		endpoint: MessagesURL,
		client:   &http.Client{Timeout: time.Minute},
	}
	return c, nil
}

// SendMessage posts the text as a notification with the given timestamp.
// Texts beyond the pushover limit are truncated.
func (c *Client) SendMessage(ctx context.Context, at time.Time, text string) error {
	if r := []rune(text); len(r) > maxMessageLen {
		text = string(r[:maxMessageLen])
	}
	body, err := json.Marshal(&message{
		Token:     c.keys.ApplicationKey,
		User:      c.keys.UserKey,
		Title:     c.title,
		Message:   text,
		Timestamp: at.Unix(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("could not post pushover message: %w", err)
	}
	defer resp.Body.Close()

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return fmt.Errorf("could not decode pushover response (http status %d): %w", resp.StatusCode, err)
	}
	if r.Status != 1 {
		return fmt.Errorf("pushover rejected the message (http status %d): %s", resp.StatusCode, strings.Join(r.Errors, "; "))
	}
	return nil
}
