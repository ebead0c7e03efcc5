// Copyright (c) 2023 BVK Chaitanya

package api

import (
	"testing"

	"github.com/bvk/oco/jobdef"
	"github.com/shopspring/decimal"
)

func TestLimitRequest(t *testing.T) {
	req := &LimitRequest{
		Ticker:    "fooex:foo/usdt",
		Direction: "sell",
		Amount:    decimal.NewFromInt(1000),
		Price:     decimal.RequireFromString("95.000000001"),
	}
	j, err := req.Job()
	if err != nil {
		t.Fatal(err)
	}
	if j.Type != jobdef.LimitOrderType || j.LimitOrder.Direction != jobdef.SELL || !j.LimitOrder.Track {
		t.Fatalf("wanted tracked SELL limit order job, got %s", j)
	}
	if s := j.LimitOrder.TickTrigger.String(); s != "fooex:FOO/USDT" {
		t.Fatalf("wanted fooex:FOO/USDT, got %s", s)
	}
	if !j.LimitOrder.LimitPrice.Equal(req.Price) {
		t.Fatalf("wanted price %s, got %s", req.Price, j.LimitOrder.LimitPrice)
	}

	req.NoTrack = true
	if j, err := req.Job(); err != nil {
		t.Fatal(err)
	} else if j.LimitOrder.Track {
		t.Fatalf("wanted untracked limit order job")
	}

	bad := []*LimitRequest{
		{Ticker: "FOO/USDT", Direction: "BUY", Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(1)},
		{Ticker: "fooex:FOO/USDT", Direction: "HOLD", Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(1)},
		{Ticker: "fooex:FOO/USDT", Direction: "BUY", Amount: decimal.Zero, Price: decimal.NewFromInt(1)},
		{Ticker: "fooex:FOO/USDT", Direction: "BUY", Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(-1)},
	}
	for i, r := range bad {
		if err := r.Check(); err == nil {
			t.Fatalf("%d: wanted an error for %+v", i, r)
		}
	}
}
