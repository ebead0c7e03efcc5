// Copyright (c) 2023 BVK Chaitanya

package jobdef

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"testing"

	"github.com/bvk/oco/ticker"
	"github.com/shopspring/decimal"
)

var fooex = ticker.Spec{Exchange: "fooex", Base: "FOO", Counter: "USDT"}

func TestCheck(t *testing.T) {
	amount, price := decimal.NewFromInt(1000), decimal.NewFromInt(95)

	job := NewLimitOrder(fooex, SELL, amount, price)
	if err := job.Check(); err != nil {
		t.Fatal(err)
	}
	if !job.LimitOrder.Track {
		t.Fatalf("wanted tracking to be enabled by default")
	}
	if key := job.DedupKey(); key != "" {
		t.Fatalf("wanted no dedup key for limit orders, got %q", key)
	}

	bad := []*Job{
		NewLimitOrder(fooex, SELL, decimal.Zero, price),
		NewLimitOrder(fooex, BUY, amount, decimal.NewFromInt(-1)),
		NewLimitOrder(fooex, "HOLD", amount, price),
		NewLimitOrder(ticker.Spec{}, BUY, amount, price),
		NewOrderStateNotifier(fooex, ""),
		{Type: LimitOrderType},
		{Type: "Unknown"},
	}
	for i, j := range bad {
		if err := j.Check(); err == nil {
			t.Fatalf("%d: wanted non-nil error for %v", i, j)
		}
	}

	watcher := NewOrderStateNotifier(fooex, "1")
	if err := watcher.Check(); err != nil {
		t.Fatal(err)
	}
	if key := watcher.DedupKey(); key != "fooex/1" {
		t.Fatalf("wanted fooex/1, got %q", key)
	}
}

func TestLosslessEncoding(t *testing.T) {
	amount := decimal.RequireFromString("1000.123456789012345678901234567890")
	price := decimal.RequireFromString("0.000000000000000000000000000095")
	job := NewLimitOrder(fooex, BUY, amount, price)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(job); err != nil {
		t.Fatal(err)
	}
	gv := new(Job)
	if err := gob.NewDecoder(&buf).Decode(gv); err != nil {
		t.Fatal(err)
	}
	if !gv.LimitOrder.Amount.Equal(amount) || !gv.LimitOrder.LimitPrice.Equal(price) {
		t.Fatalf("gob: wanted %s @ %s, got %s @ %s", amount, price, gv.LimitOrder.Amount, gv.LimitOrder.LimitPrice)
	}

	data, err := json.Marshal(job)
	if err != nil {
		t.Fatal(err)
	}
	jv := new(Job)
	if err := json.Unmarshal(data, jv); err != nil {
		t.Fatal(err)
	}
	if !jv.LimitOrder.Amount.Equal(amount) || !jv.LimitOrder.LimitPrice.Equal(price) {
		t.Fatalf("json: wanted %s @ %s, got %s @ %s", amount, price, jv.LimitOrder.Amount, jv.LimitOrder.LimitPrice)
	}
	if jv.LimitOrder.TickTrigger != job.LimitOrder.TickTrigger || jv.LimitOrder.Direction != job.LimitOrder.Direction || jv.LimitOrder.Track != job.LimitOrder.Track {
		t.Fatalf("json: wanted %v, got %v", job, jv)
	}
}
