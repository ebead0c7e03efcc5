// Copyright (c) 2023 BVK Chaitanya

// Package server wires the exchanges, the notification senders and the job
// dispatcher together and exposes them over http.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/bvk/oco/api"
	"github.com/bvk/oco/dispatch"
	"github.com/bvk/oco/exchange"
	"github.com/bvk/oco/exchange/paper"
	"github.com/bvk/oco/jobdef"
	"github.com/bvk/oco/limitorder"
	"github.com/bvk/oco/notify"
	"github.com/bvk/oco/orderstate"
	"github.com/bvk/oco/pushover"
	"github.com/bvk/oco/telegram"
	"github.com/bvkgo/kv"
)

type Server struct {
	db   kv.Database
	opts Options

	registry *exchange.Registry

	paperMap map[string]*paper.Exchange

	telegramClient *telegram.Client

	notifier *notify.Async

	dispatcher *dispatch.Dispatcher

	handlerMap map[string]http.Handler
}

func New(ctx context.Context, secrets *Secrets, db kv.Database, opts *Options) (_ *Server, status error) {
	if opts == nil {
		opts = new(Options)
	}
	if secrets == nil {
		secrets = new(Secrets)
	}
	if err := secrets.Check(); err != nil {
		return nil, err
	}

	s := &Server{
		db:         db,
		opts:       *opts,
		paperMap:   make(map[string]*paper.Exchange),
		handlerMap: make(map[string]http.Handler),
	}
	defer func() {
		if status != nil {
			s.Close()
		}
	}()

	registry, err := exchange.NewRegistry()
	if err != nil {
		return nil, err
	}
	s.registry = registry

	for _, p := range secrets.Paper {
		if err := s.addPaperExchange(p); err != nil {
			return nil, err
		}
	}

	var senders []notify.Sender
	if secrets.Telegram != nil {
		client, err := telegram.New(ctx, db, secrets.Telegram)
		if err != nil {
			return nil, fmt.Errorf("could not create telegram client: %w", err)
		}
		s.telegramClient = client
		senders = append(senders, client)
	}
	if secrets.Pushover != nil {
		client, err := pushover.New(secrets.Pushover, "oco")
		if err != nil {
			return nil, fmt.Errorf("could not create pushover client: %w", err)
		}
		senders = append(senders, client)
	}
	if len(senders) == 0 {
		slog.Warn("no notification channels are configured; notifications are only logged")
		senders = append(senders, notify.Log{})
	}
	notifier, err := notify.New(&s.opts.Notify, senders...)
	if err != nil {
		return nil, err
	}
	s.notifier = notifier

	dispatcher, err := dispatch.New(db, notifier, &s.opts.Dispatch)
	if err != nil {
		return nil, err
	}
	s.dispatcher = dispatcher

	if err := dispatcher.Register(jobdef.LimitOrderType, s.newLimitOrder); err != nil {
		return nil, err
	}
	if err := dispatcher.Register(jobdef.OrderStateNotifierType, s.newOrderStateNotifier); err != nil {
		return nil, err
	}

	s.handlerMap[api.LimitPath] = httpPostJSONHandler(s.doLimit)
	s.handlerMap[api.JobListPath] = httpPostJSONHandler(s.doJobList)
	s.handlerMap[api.JobGetPath] = httpPostJSONHandler(s.doJobGet)
	s.handlerMap[api.JobCancelPath] = httpPostJSONHandler(s.doJobCancel)
	s.handlerMap[api.ExchangeGetOrderPath] = httpPostJSONHandler(s.doExchangeGetOrder)
	s.handlerMap[api.PaperSetPricePath] = httpPostJSONHandler(s.doPaperSetPrice)
	s.handlerMap[api.PaperCancelPath] = httpPostJSONHandler(s.doPaperCancel)
	return s, nil
}

func (s *Server) Close() error {
	if s.notifier != nil {
		s.notifier.Close()
	}
	if s.telegramClient != nil {
		s.telegramClient.Close()
	}
	for _, ex := range s.paperMap {
		ex.Close()
	}
	return nil
}

func (s *Server) addPaperExchange(p *PaperExchange) error {
	name := strings.ToLower(p.Name)
	popts := &paper.Options{
		RequestsPerSecond: p.RequestsPerSecond,
		FeePct:            p.FeePct,
	}
	ex, err := paper.New(name, p.Products, popts)
	if err != nil {
		return fmt.Errorf("could not create paper exchange %q: %w", p.Name, err)
	}
	for pair, price := range p.Prices {
		if err := ex.SetPrice(pair, price); err != nil {
			ex.Close()
			return fmt.Errorf("could not set initial price for %q in %q: %w", pair, p.Name, err)
		}
	}
	if err := s.registry.Add(ex); err != nil {
		ex.Close()
		return err
	}
	s.paperMap[name] = ex
	slog.Info("added paper exchange", "exchange", name, "products", p.Products)
	return nil
}

func (s *Server) newLimitOrder(uid string, j *jobdef.Job) (dispatch.Processor, error) {
	if j.LimitOrder == nil {
		return nil, fmt.Errorf("job %q has no limit order data: %w", uid, os.ErrInvalid)
	}
	return limitorder.New(uid, j.LimitOrder, s.registry, s.notifier, s.dispatcher), nil
}

func (s *Server) newOrderStateNotifier(uid string, j *jobdef.Job) (dispatch.Processor, error) {
	if j.OrderStateNotifier == nil {
		return nil, fmt.Errorf("job %q has no order state notifier data: %w", uid, os.ErrInvalid)
	}
	opts := s.opts.OrderState
	return orderstate.New(uid, j.OrderStateNotifier, s.registry, s.notifier, s.db, &opts)
}

// Start resumes the unfinished jobs and registers the telegram commands.
func (s *Server) Start(ctx context.Context) error {
	if err := s.AddTelegramCommand(ctx, "jobs", "Lists active jobs", s.jobsTelegramCmd); err != nil {
		slog.Warn("could not add telegram command (ignored)", "command", "jobs", "err", err)
	}
	if s.opts.NoResume {
		return nil
	}
	if err := s.dispatcher.Start(ctx); err != nil {
		return fmt.Errorf("could not resume jobs: %w", err)
	}
	return nil
}

// Stop pauses all running jobs.
func (s *Server) Stop(ctx context.Context) error {
	return s.dispatcher.Stop(ctx)
}

// HandlerMap returns the http handlers for all api endpoints.
func (s *Server) HandlerMap() map[string]http.Handler {
	m := make(map[string]http.Handler, len(s.handlerMap))
	for k, v := range s.handlerMap {
		m[k] = v
	}
	return m
}
