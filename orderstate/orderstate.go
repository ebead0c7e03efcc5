// Copyright (c) 2023 BVK Chaitanya

// Package orderstate implements the processor that watches an order till the
// exchange reports a terminal state for it.
package orderstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/bvk/oco/ctxutil"
	"github.com/bvk/oco/exchange"
	"github.com/bvk/oco/gobs"
	"github.com/bvk/oco/job"
	"github.com/bvk/oco/jobdef"
	"github.com/bvk/oco/kvutil"
	"github.com/bvk/oco/notify"
	"github.com/bvkgo/kv"
	"github.com/visvasity/topic"
)

const Keyspace = "/orderstate/"

type Processor struct {
	uid string
	job *jobdef.OrderStateNotifierJob

	opts Options

	db       kv.Database
	resolver exchange.Resolver
	notifier notify.Channel

	state *gobs.OrderStateNotifierState
}

func New(uid string, j *jobdef.OrderStateNotifierJob, resolver exchange.Resolver, notifier notify.Channel, db kv.Database, opts *Options) (*Processor, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	p := &Processor{
		uid:      uid,
		job:      j,
		opts:     *opts,
		db:       db,
		resolver: resolver,
		notifier: notifier,
	}
	return p, nil
}

func stateKey(uid string) string {
	return path.Join(Keyspace, uid)
}

// State returns the persisted watcher state for a job.
func State(ctx context.Context, r kv.Reader, uid string) (*gobs.OrderStateNotifierState, error) {
	return kvutil.Get[gobs.OrderStateNotifierState](ctx, r, stateKey(uid))
}

func (p *Processor) load(ctx context.Context) error {
	state, err := kvutil.GetDB[gobs.OrderStateNotifierState](ctx, p.db, stateKey(p.uid))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("could not load order state notifier state: %w", err)
		}
		state = new(gobs.OrderStateNotifierState)
	}
	p.state = state
	return nil
}

func (p *Processor) save() {
	// State must be saved even when the run is being stopped.
	if err := kvutil.SetDB(context.Background(), p.db, stateKey(p.uid), p.state); err != nil {
		slog.Error("could not save order state notifier state (ignored)", "job", p.uid, "err", err)
	}
}

func (p *Processor) describe() string {
	return fmt.Sprintf("order %s on %s", p.job.OrderID, p.job.TickTrigger)
}

// update merges an order snapshot into the state and returns true if the
// order has reached a terminal state.
func (p *Processor) update(order *exchange.Order) bool {
	if order.ServerOrderID != p.job.OrderID {
		return false
	}
	if p.state.LastOrder != nil {
		order = exchange.Merge(exchange.OrderFromGob(order.Pair, p.state.LastOrder), order)
	}
	p.state.LastOrder = order.Gob()
	return order.Done || exchange.IsDone(order.Status)
}

func (p *Processor) notifyDone() {
	last := p.state.LastOrder
	msg := fmt.Sprintf("%s %s is %s: filled %s at average price %s", last.Side, p.describe(), last.Status, last.FilledSize, last.FilledPrice)
	if !last.FilledFee.IsZero() {
		msg = fmt.Sprintf("%s with %s fee", msg, last.FilledFee)
	}
	if last.DoneReason != "" {
		msg = fmt.Sprintf("%s (%s)", msg, last.DoneReason)
	}
	p.notifier.Send(msg)
}

// Start watches the order. It returns false once the order is terminal or
// unknown to the exchange, and true when the run is stopped or when the
// exchange could not be reached for too long.
func (p *Processor) Start(ctx context.Context, ctl *job.Control) (bool, error) {
	spec := p.job.TickTrigger
	gateway, err := p.resolver.Resolve(spec.Exchange)
	if err != nil {
		return false, fmt.Errorf("could not resolve trade gateway for job %q: %w", p.uid, err)
	}
	if err := p.load(ctx); err != nil {
		if ctx.Err() != nil {
			return true, nil
		}
		return false, err
	}

	var updatesCh <-chan *exchange.Order
	if updater, ok := gateway.(exchange.OrderUpdater); ok {
		receiver, err := updater.GetOrderUpdates()
		if err != nil {
			slog.Warn("could not subscribe to order updates (ignored)", "job", p.uid, "exchange", spec.Exchange, "err", err)
		} else {
			defer receiver.Close()

			ch, err := topic.ReceiveCh(receiver)
			if err != nil {
				slog.Warn("could not create order updates channel (ignored)", "job", p.uid, "err", err)
			}
			updatesCh = ch
		}
	}

	pair := spec.Pair()
	for {
		if ctl.StopRequested() || ctx.Err() != nil {
			p.save()
			return true, nil
		}

		wait := p.opts.PollInterval
		order, err := gateway.GetOrder(ctx, pair, p.job.OrderID)
		switch {
		case err == nil:
			if p.state.ConsecutiveErrors > 0 || p.state.Delayed {
				slog.Info("order tracking has recovered", "job", p.uid, "order", p.job.OrderID, "errors", p.state.ConsecutiveErrors)
			}
			p.state.ConsecutiveErrors, p.state.Delayed = 0, false
			if p.update(order) {
				p.notifyDone()
				p.save()
				return false, nil
			}
			p.save()

		case errors.Is(err, os.ErrNotExist):
			slog.Error("order is not found", "job", p.uid, "order", p.job.OrderID, "err", err)
			p.notifier.Send(fmt.Sprintf("Could not track %s: order is not found", p.describe()))
			p.save()
			return false, nil

		case ctx.Err() != nil:
			p.save()
			return true, nil

		default:
			p.state.ConsecutiveErrors++
			slog.Warn("could not fetch order state (will retry)", "job", p.uid, "order", p.job.OrderID, "errors", p.state.ConsecutiveErrors, "err", err)
			if p.state.ConsecutiveErrors >= p.opts.MaxConsecutiveErrors {
				if !p.state.Delayed {
					p.notifier.Send(fmt.Sprintf("Tracking of %s is delayed: %v", p.describe(), err))
					p.state.Delayed = true
				}
				p.state.ConsecutiveErrors = 0
				p.save()
				return true, nil
			}
			p.save()
			wait = ctxutil.Backoff(p.state.ConsecutiveErrors, p.opts.PollInterval, p.opts.MaxBackoff)
		}

		if done := p.waitForUpdates(ctx, updatesCh, wait); done {
			p.notifyDone()
			p.save()
			return false, nil
		}
	}
}

// waitForUpdates consumes the pushed order updates for the given duration.
// Returns true if an update moved the order to a terminal state.
func (p *Processor) waitForUpdates(ctx context.Context, updatesCh <-chan *exchange.Order, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return false
		case order, ok := <-updatesCh:
			if !ok {
				updatesCh = nil
				continue
			}
			if p.update(order) {
				return true
			}
		}
	}
}

// Stop is a no-op. Start observes the stop request through its context.
func (p *Processor) Stop(*job.Control) {}
