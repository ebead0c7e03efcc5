// Copyright (c) 2023 BVK Chaitanya

// Package notify delivers operator notifications. Delivery is asynchronous:
// callers never wait on, or learn about, delivery failures.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bvk/oco/ctxutil"
)

// Channel accepts plain-text messages for the operator. Send must not block
// the caller on delivery.
type Channel interface {
	Send(text string)
}

// Sender delivers one message to a single destination.
type Sender interface {
	SendMessage(ctx context.Context, at time.Time, text string) error
}

type Options struct {
	// QueueSize is the maximum number of undelivered messages. Messages are
	// dropped when the queue is full.
	QueueSize int

	// SendTimeout limits the time spent delivering a message to one sender.
	SendTimeout time.Duration
}

func (v *Options) setDefaults() {
	if v.QueueSize == 0 {
		v.QueueSize = 100
	}
	if v.SendTimeout == 0 {
		v.SendTimeout = 30 * time.Second
	}
}

func (v *Options) Check() error {
	if v.QueueSize < 0 {
		return fmt.Errorf("queue size cannot be negative: %w", os.ErrInvalid)
	}
	if v.SendTimeout < 0 {
		return fmt.Errorf("send timeout cannot be negative: %w", os.ErrInvalid)
	}
	return nil
}

type message struct {
	at   time.Time
	text string
}

// Async is a Channel that delivers messages to all senders from a background
// goroutine.
type Async struct {
	cg ctxutil.CloseGroup

	opts Options

	senders []Sender

	queue chan *message
}

var _ Channel = &Async{}

func New(opts *Options, senders ...Sender) (*Async, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}

	a := &Async{
		opts:    *opts,
		senders: senders,
		queue:   make(chan *message, opts.QueueSize),
	}
	a.cg.Go(a.goDeliver)
	return a, nil
}

// Close stops the delivery goroutine. Messages that are still queued are
// delivered before Close returns.
func (a *Async) Close() error {
	a.cg.Close()
	return nil
}

func (a *Async) Send(text string) {
	m := &message{at: time.Now(), text: text}
	slog.Info("notifying operator", "message", text)
	select {
	case a.queue <- m:
	default:
		slog.Warn("notification queue is full; message is dropped", "message", text)
	}
}

func (a *Async) goDeliver(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case m := <-a.queue:
					a.deliver(m)
				default:
					return
				}
			}
		case m := <-a.queue:
			a.deliver(m)
		}
	}
}

func (a *Async) deliver(m *message) {
	for _, s := range a.senders {
		ctx, cancel := context.WithTimeout(context.Background(), a.opts.SendTimeout)
		if err := s.SendMessage(ctx, m.at, m.text); err != nil {
			slog.Error("could not deliver notification (ignored)", "message", m.text, "err", err)
		}
		cancel()
	}
}

// Log is a Sender that writes notifications to the log.
type Log struct{}

func (Log) SendMessage(ctx context.Context, at time.Time, text string) error {
	slog.InfoContext(ctx, "notification", "at", at, "message", text)
	return nil
}
