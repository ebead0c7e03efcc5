// Copyright (c) 2023 BVK Chaitanya

package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu       sync.Mutex
	messages []string
	err      error
	block    chan struct{}
}

func (r *recorder) SendMessage(ctx context.Context, at time.Time, text string) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
	return r.err
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func TestFanOut(t *testing.T) {
	r1 := &recorder{}
	r2 := &recorder{err: errors.New("unreachable")}

	a, err := New(nil, r1, r2, Log{})
	if err != nil {
		t.Fatal(err)
	}
	a.Send("one")
	a.Send("two")
	a.Close()

	for _, r := range []*recorder{r1, r2} {
		got := r.get()
		if len(got) != 2 || got[0] != "one" || got[1] != "two" {
			t.Fatalf("wanted [one two], got %v", got)
		}
	}
}

func TestSendDoesNotBlock(t *testing.T) {
	r := &recorder{block: make(chan struct{})}

	a, err := New(&Options{QueueSize: 1}, r)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			a.Send("message")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Send blocked on a stuck sender")
	}

	close(r.block)
	a.Close()

	if n := len(r.get()); n == 0 || n > 2 {
		t.Fatalf("wanted one or two delivered messages, got %d", n)
	}
}
