// Copyright (c) 2025 BVK Chaitanya

package sglog

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"
)

type Backend struct {
	opts Options

	level slog.LevelVar

	mu    sync.Mutex
	files []*levelFile

	closeOnce sync.Once
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

// NewBackend creates a log backend. Log files are created lazily on the first
// message of their severity.
func NewBackend(opts *Options) *Backend {
	v := &Backend{
		closeCh: make(chan struct{}),
	}
	if opts != nil {
		v.opts = *opts
	}
	v.opts.setDefaults()

	levels := slices.Clone(v.opts.Levels)
	slices.Sort(levels)
	for _, l := range slices.Compact(levels) {
		v.files = append(v.files, v.newLevelFile(l))
	}

	v.wg.Add(1)
	go v.flushDaemon()
	return v
}

// Close flushes and closes the log files. Messages logged after Close are
// dropped.
func (v *Backend) Close() {
	v.closeOnce.Do(func() {
		close(v.closeCh)
		v.wg.Wait()

		v.mu.Lock()
		defer v.mu.Unlock()
		for _, f := range v.files {
			f.close()
		}
		v.files = nil
	})
}

// Handler returns slog.Handler for the log backend.
func (v *Backend) Handler() slog.Handler {
	return &slogHandler{backend: v}
}

// EnableDebugLog enables logging for slog.LevelDebug messages.
func (v *Backend) EnableDebugLog() {
	v.level.Set(slog.LevelDebug)
}

// DisableDebugLog disables logging for slog.LevelDebug messages.
func (v *Backend) DisableDebugLog() {
	v.level.Set(slog.LevelInfo)
}

// Flush writes the buffered messages to the log files.
func (v *Backend) Flush() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	var errs []error
	for _, f := range v.files {
		if err := f.flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (v *Backend) emit(now time.Time, level slog.Level, msg []byte) error {
	if v.opts.Stderr != nil {
		v.opts.Stderr.Write(msg)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	var errs []error
	minLevel := v.level.Level()
	for _, f := range v.files {
		if f.level < minLevel || f.level > level {
			continue
		}
		if err := f.write(now, msg); err != nil {
			errs = append(errs, err)
			continue
		}
		if level >= slog.LevelWarn {
			if err := f.flush(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (v *Backend) flushDaemon() {
	defer v.wg.Done()

	tick := time.NewTicker(v.opts.FlushTimeout)
	defer tick.Stop()

	for {
		select {
		case <-v.closeCh:
			return
		case <-tick.C:
			v.Flush()
		}
	}
}
