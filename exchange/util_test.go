// Copyright (c) 2023 BVK Chaitanya

package exchange

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMerge(t *testing.T) {
	d := decimal.RequireFromString
	known := &Order{
		ServerOrderID: "o1",
		Side:          BID,
		Price:         d("100.5"),
		Size:          d("2"),
		CreateTime:    RemoteTime{time.Now()},
		FilledSize:    d("1"),
		FilledPrice:   d("100.5"),
		Fee:           d("0.1"),
		Status:        "OPEN",
	}

	// Stale update must not move the order backwards.
	stale := &Order{ServerOrderID: "o1", FilledSize: d("0.5"), FilledPrice: d("100.5"), Fee: d("0.05"), Status: "OPEN"}
	m := Merge(known, stale)
	if !m.FilledSize.Equal(d("1")) || !m.Fee.Equal(d("0.1")) {
		t.Fatalf("wanted filled size 1 and fee 0.1, got %s and %s", m.FilledSize, m.Fee)
	}

	done := &Order{ServerOrderID: "o1", ClientOrderID: "c1", FilledSize: d("2"), FilledPrice: d("100.4"), Fee: d("0.2"), Status: "FILLED", Done: true}
	m = Merge(known, done)
	if !m.Done || m.Status != "FILLED" || m.ClientOrderID != "c1" {
		t.Fatalf("wanted done FILLED order with client id, got %v", m)
	}
	if !m.FilledSize.Equal(d("2")) || !m.FilledPrice.Equal(d("100.4")) {
		t.Fatalf("wanted filled 2 at 100.4, got %s at %s", m.FilledSize, m.FilledPrice)
	}
	if m.Side != BID || !m.Price.Equal(d("100.5")) {
		t.Fatalf("wanted known side and price to be kept, got %s %s", m.Side, m.Price)
	}

	if again := Merge(m, &Order{ServerOrderID: "o1", Status: "OPEN"}); !again.Done || again.Status != "FILLED" {
		t.Fatalf("wanted done order to stay done, got %v", again)
	}
	if other := Merge(known, &Order{ServerOrderID: "o2", Done: true}); other != known {
		t.Fatalf("wanted updates for other orders to be ignored")
	}
}

func TestGobRoundTrip(t *testing.T) {
	d := decimal.RequireFromString
	order := &Order{
		ServerOrderID: "o1",
		Pair:          "BTC-USDT",
		Side:          ASK,
		Price:         d("65000.000000001"),
		Size:          d("0.00000001"),
		CreateTime:    RemoteTime{time.Now().UTC()},
		Done:          true,
		DoneReason:    "canceled",
	}
	back := OrderFromGob(order.Pair, order.Gob())
	if !back.Price.Equal(order.Price) || !back.Size.Equal(order.Size) {
		t.Fatalf("wanted exact price and size, got %s and %s", back.Price, back.Size)
	}
	if back.Side != ASK || !back.Done || back.DoneReason != "canceled" || !back.CreateTime.Equal(order.CreateTime.Time) {
		t.Fatalf("wanted same order after round trip, got %v", back)
	}
}

func TestErrorKinds(t *testing.T) {
	terr := fmt.Errorf("placing order: %w", &TradeError{Exchange: "paper", Op: "LimitBuy", Err: errors.New("insufficient funds")})
	if !IsTradeError(terr) || IsConfigError(terr) {
		t.Fatalf("wanted a trade error only")
	}
	cerr := fmt.Errorf("exchange %q: %w", "missing", ErrNotConfigured)
	if !IsConfigError(cerr) || IsTradeError(cerr) {
		t.Fatalf("wanted a configuration error only")
	}
}

type namedGateway string

func (g namedGateway) ExchangeName() string { return string(g) }

func (g namedGateway) PlaceLimitOrder(context.Context, *LimitOrder) (string, error) {
	return "", os.ErrInvalid
}

func (g namedGateway) GetOrder(context.Context, string, string) (*Order, error) {
	return nil, os.ErrNotExist
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(namedGateway("paper"), namedGateway("coinbase"))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Add(namedGateway("paper")); !errors.Is(err, os.ErrExist) {
		t.Fatalf("wanted os.ErrExist for a duplicate exchange, got %v", err)
	}
	if names := r.Names(); fmt.Sprint(names) != "[coinbase paper]" {
		t.Fatalf("wanted sorted names, got %v", names)
	}
	if g, err := r.Resolve("paper"); err != nil || g.ExchangeName() != "paper" {
		t.Fatalf("wanted paper gateway, got %v (%v)", g, err)
	}

	_, err = r.Resolve("kraken")
	if !IsConfigError(err) {
		t.Fatalf("wanted a configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "coinbase,paper") {
		t.Fatalf("wanted configured exchanges in the error, got %v", err)
	}
}
