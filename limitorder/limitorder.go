// Copyright (c) 2023 BVK Chaitanya

// Package limitorder implements the processor for limit order jobs. A run
// places exactly one limit order, submits a watcher job for it when tracking
// is requested, and notifies the operator about the outcome.
package limitorder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bvk/oco/exchange"
	"github.com/bvk/oco/idgen"
	"github.com/bvk/oco/job"
	"github.com/bvk/oco/jobdef"
	"github.com/bvk/oco/notify"
)

type Processor struct {
	uid string
	job *jobdef.LimitOrderJob

	resolver  exchange.Resolver
	notifier  notify.Channel
	submitter jobdef.Submitter
}

func New(uid string, j *jobdef.LimitOrderJob, resolver exchange.Resolver, notifier notify.Channel, submitter jobdef.Submitter) *Processor {
	return &Processor{
		uid:       uid,
		job:       j,
		resolver:  resolver,
		notifier:  notifier,
		submitter: submitter,
	}
}

func side(dir jobdef.Direction) exchange.Side {
	if dir == jobdef.SELL {
		return exchange.ASK
	}
	return exchange.BID
}

func (p *Processor) describe() string {
	spec := p.job.TickTrigger
	return fmt.Sprintf("%s limit order for %s %s at %s %s on %s", p.job.Direction, p.job.Amount, spec.Base, p.job.LimitPrice, spec.Counter, spec.Exchange)
}

// Start places the order. It never requests a continuation. Only a missing
// gateway is reported as an error; trade failures are reported to the
// operator instead. A pause before the placement returns the pause cause so
// that the order is placed when the job is resumed.
func (p *Processor) Start(ctx context.Context, ctl *job.Control) (bool, error) {
	spec := p.job.TickTrigger
	gateway, err := p.resolver.Resolve(spec.Exchange)
	if err != nil {
		return false, fmt.Errorf("could not resolve trade gateway for job %q: %w", p.uid, err)
	}

	order := &exchange.LimitOrder{
		Side:          side(p.job.Direction),
		Base:          spec.Base,
		Counter:       spec.Counter,
		Size:          p.job.Amount,
		Price:         p.job.LimitPrice,
		ClientOrderID: idgen.ClientOrderID(p.uid, 0),
	}

	if ctl.StopRequested() {
		if cause := ctl.Cause(); job.IsPause(cause) {
			slog.Info("limit order job is paused before placing the order", "job", p.uid)
			return false, cause
		}
		slog.Info("limit order job is stopped before placing the order", "job", p.uid, "cause", ctl.Cause())
		p.notifier.Send(fmt.Sprintf("Did not place %s: job was stopped", p.describe()))
		return false, nil
	}

	// Order placement cannot be recalled once it is sent, so stop requests
	// must not interrupt the call or the watcher submission.
	nctx := context.WithoutCancel(ctx)
	orderID, err := gateway.PlaceLimitOrder(nctx, order)
	if err != nil {
		slog.Error("could not place limit order", "job", p.uid, "order", p.describe(), "err", err)
		p.notifier.Send(fmt.Sprintf("Could not place %s: %v", p.describe(), err))
		return false, nil
	}
	slog.Info("placed limit order", "job", p.uid, "order", p.describe(), "order-id", orderID)

	msg := fmt.Sprintf("Placed %s (order %s)", p.describe(), orderID)
	if p.job.Track {
		watcher := jobdef.NewOrderStateNotifier(spec, orderID)
		if wid, err := p.submitter.SubmitNew(nctx, watcher); err != nil {
			slog.Error("could not submit order state notifier", "job", p.uid, "order-id", orderID, "err", err)
			msg = fmt.Sprintf("%s; could not start tracking the order: %v", msg, err)
		} else {
			slog.Info("submitted order state notifier", "job", p.uid, "order-id", orderID, "watcher", wid)
		}
	}
	p.notifier.Send(msg)
	return false, nil
}

// Stop is a no-op: Start does not leave any work behind.
func (p *Processor) Stop(*job.Control) {}
