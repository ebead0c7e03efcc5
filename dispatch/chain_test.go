// Copyright (c) 2023 BVK Chaitanya

package dispatch

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bvk/oco/exchange"
	"github.com/bvk/oco/exchange/paper"
	"github.com/bvk/oco/gobs"
	"github.com/bvk/oco/jobdef"
	"github.com/bvk/oco/limitorder"
	"github.com/bvk/oco/orderstate"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/shopspring/decimal"
)

func TestLimitOrderChain(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	msgs := new(messages)

	ex, err := paper.New("fooex", []string{"FOO-USDT"}, &paper.Options{RequestsPerSecond: 1000})
	if err != nil {
		t.Fatal(err)
	}
	defer ex.Close()

	registry, err := exchange.NewRegistry(ex)
	if err != nil {
		t.Fatal(err)
	}

	d := newDispatcher(t, db, msgs)
	limitCtor := func(uid string, j *jobdef.Job) (Processor, error) {
		return limitorder.New(uid, j.LimitOrder, registry, msgs, d), nil
	}
	watchCtor := func(uid string, j *jobdef.Job) (Processor, error) {
		opts := &orderstate.Options{PollInterval: 10 * time.Millisecond, MaxBackoff: 20 * time.Millisecond}
		return orderstate.New(uid, j.OrderStateNotifier, registry, msgs, db, opts)
	}
	if err := d.Register(jobdef.LimitOrderType, limitCtor); err != nil {
		t.Fatal(err)
	}
	if err := d.Register(jobdef.OrderStateNotifierType, watchCtor); err != nil {
		t.Fatal(err)
	}

	uid, err := d.SubmitNew(ctx, jobdef.NewLimitOrder(fooex, jobdef.SELL, decimal.NewFromInt(1000), decimal.NewFromInt(95)))
	if err != nil {
		t.Fatal(err)
	}
	if jd := waitState(t, d, uid); jd.State != gobs.COMPLETED {
		t.Fatalf("wanted COMPLETED limit order job, got %s", jd.State)
	}

	// Limit order job must have submitted the watcher.
	jds, err := d.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(jds) != 2 {
		t.Fatalf("wanted 2 jobs, got %d", len(jds))
	}
	var watcherID string
	for _, jd := range jds {
		if jd.Typename == string(jobdef.OrderStateNotifierType) {
			watcherID = jd.ID
		}
	}
	if watcherID == "" {
		t.Fatalf("wanted an order state notifier job")
	}
	_, wj, err := d.Get(ctx, watcherID)
	if err != nil {
		t.Fatal(err)
	}
	if wj.OrderStateNotifier.OrderID != "1" || wj.OrderStateNotifier.TickTrigger != fooex {
		t.Fatalf("wanted watcher for order 1 on %s, got %s", fooex, wj)
	}

	if err := ex.SetPrice("FOO-USDT", decimal.NewFromInt(95)); err != nil {
		t.Fatal(err)
	}
	if jd := waitState(t, d, watcherID); jd.State != gobs.COMPLETED {
		t.Fatalf("wanted COMPLETED watcher job, got %s", jd.State)
	}

	list := msgs.get()
	if len(list) != 2 {
		t.Fatalf("wanted 2 notifications, got %v", list)
	}
	if !strings.HasPrefix(list[0], "Placed") || !strings.Contains(list[1], exchange.FILLED) {
		t.Fatalf("wanted placed and filled notifications, got %v", list)
	}
}
