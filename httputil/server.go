// Copyright (c) 2023 BVK Chaitanya

// Package httputil implements an HTTP server whose handlers can be added and
// removed while it is serving on one or more listeners.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bvk/oco/ctxutil"
	"github.com/bvk/oco/syncmap"
	"github.com/google/uuid"
)

type Server struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	wg     sync.WaitGroup

	opts Options

	lastID  atomic.Int64
	servers syncmap.Map[int64, *http.Server]

	// mux is rebuilt on every handler change because http.ServeMux does not
	// support removing patterns.
	mux atomic.Pointer[http.ServeMux]

	mu       sync.Mutex
	handlers map[string]http.Handler
}

func New(opts *Options) (*Server, error) {
	s := &Server{handlers: make(map[string]http.Handler)}
	if opts != nil {
		s.opts = *opts
	}
	s.opts.setDefaults()
	if err := s.opts.Check(); err != nil {
		return nil, err
	}
	s.ctx, s.cancel = context.WithCancelCause(context.Background())
	s.mux.Store(http.NewServeMux())
	return s, nil
}

// Close stops all listeners and waits for the serving goroutines.
func (s *Server) Close() error {
	s.cancel(os.ErrClosed)
	for id := range s.servers.Range {
		s.Stop(id)
	}
	s.wg.Wait()
	return nil
}

// StartTCP starts serving on the address and returns after a probe request is
// served successfully. Port zero picks a free port, which is written back
// into the addr.
func (s *Server) StartTCP(ctx context.Context, addr *net.TCPAddr) (int64, error) {
	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return -1, fmt.Errorf("could not listen on %s: %w", addr, err)
	}
	addr.Port = l.Addr().(*net.TCPAddr).Port

	hs := &http.Server{
		Handler:     s,
		BaseContext: func(net.Listener) context.Context { return s.ctx },
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := hs.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "addr", addr, "err", err)
		}
	}()

	if err := s.waitReady(ctx, l.Addr().String()); err != nil {
		hs.Close()
		return -1, err
	}

	id := s.lastID.Add(1)
	s.servers.Store(id, hs)
	slog.Info("http server is ready", "id", id, "addr", addr)
	return id, nil
}

// waitReady retries a probe request on a temporary handler until it succeeds.
func (s *Server) waitReady(ctx context.Context, hostport string) error {
	probe := "/" + uuid.NewString()
	s.AddHandler(probe, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer s.RemoveHandler(probe)

	client := &http.Client{Timeout: s.opts.ReadyTimeout}
	get := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+hostport+probe, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("probe request failed with http status %d", resp.StatusCode)
		}
		return nil
	}
	if err := ctxutil.RetryTimeout(ctx, s.opts.ReadyRetryInterval, s.opts.ReadyTimeout, get); err != nil {
		return fmt.Errorf("http server on %s is not ready: %w", hostport, err)
	}
	return nil
}

// Stop shuts down the listener with the id gracefully.
func (s *Server) Stop(id int64) error {
	hs, ok := s.servers.LoadAndDelete(id)
	if !ok {
		return fmt.Errorf("http server %d not found: %w", id, os.ErrNotExist)
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(ctx); err != nil {
		slog.Warn("http server did not shutdown in time; closing forcibly", "id", id, "err", err)
		return hs.Close()
	}
	return nil
}

func (s *Server) AddHandler(pattern string, handler http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers[pattern] = handler
	s.rebuildMux()
}

func (s *Server) RemoveHandler(pattern string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.handlers[pattern]; !ok {
		return false
	}
	delete(s.handlers, pattern)
	s.rebuildMux()
	return true
}

func (s *Server) rebuildMux() {
	mux := http.NewServeMux()
	for pattern, h := range s.handlers {
		mux.Handle(pattern, h)
	}
	s.mux.Store(mux)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.opts.LogRequests {
		s.mux.Load().ServeHTTP(w, r)
		return
	}
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	s.mux.Load().ServeHTTP(sw, r)
	slog.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr, "status", sw.status, "took", time.Since(start))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
