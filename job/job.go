// Copyright (c) 2023 BVK Chaitanya

// Package job implements an api to manage jobs. Jobs are activities that can
// be canceled, paused or resumed through the context.Context argument.
package job

import (
	"context"
	"errors"
	"sync"

	"github.com/bvk/oco/gobs"
)

type Func func(ctx context.Context) error

var (
	errPause  = errors.New("ErrPause")
	errCancel = errors.New("ErrCancel")
)

// Job is a single run of a job function.
type Job struct {
	cancel context.CancelCauseFunc

	done chan struct{}

	mu sync.Mutex

	status gobs.State

	err error
}

// Run starts the job function in a new goroutine. Job function must return
// when its context is canceled.
func Run(f Func, ctx context.Context) *Job {
	jctx, jcancel := context.WithCancelCause(ctx)
	j := &Job{
		cancel: jcancel,
		done:   make(chan struct{}),
		status: gobs.RUNNING,
	}
	go j.goRun(jctx, f)
	return j
}

func (j *Job) goRun(ctx context.Context, f Func) {
	defer close(j.done)
	defer j.cancel(nil)

	err := f(ctx)

	j.mu.Lock()
	defer j.mu.Unlock()

	j.err = err
	switch {
	case err == nil:
		j.status = gobs.COMPLETED
	case errors.Is(err, errPause):
		j.status = gobs.PAUSED
	case errors.Is(err, errCancel):
		j.status = gobs.CANCELED
	default:
		j.status = gobs.FAILED
	}
}

// Pause requests the job to stop. The job can be resumed later.
func (j *Job) Pause() {
	j.cancel(errPause)
}

// Cancel requests the job to stop permanently.
func (j *Job) Cancel() {
	j.cancel(errCancel)
}

// Done returns a channel that is closed when the job function returns.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks till the job function returns or the context is canceled.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-j.done:
		return nil
	}
}

// Err returns the job function's return value after it has returned.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

func (j *Job) state() gobs.State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func IsDone(s gobs.State) bool {
	return s == gobs.COMPLETED || s == gobs.CANCELED || s == gobs.FAILED
}

// IsPause returns true if the error is the cause of a paused run's context.
// Such runs can be resumed later.
func IsPause(err error) bool {
	return errors.Is(err, errPause)
}
