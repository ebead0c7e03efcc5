// Copyright (c) 2023 BVK Chaitanya

package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bvk/oco/gobs"
)

func TestJobStates(t *testing.T) {
	ctx := context.Background()
	errFailure := errors.New("operation failed")

	tests := []struct {
		name    string
		stop    func(*Job, chan<- error)
		want    gobs.State
		wantErr error
	}{
		{"pause", func(j *Job, _ chan<- error) { j.Pause() }, gobs.PAUSED, errPause},
		{"cancel", func(j *Job, _ chan<- error) { j.Cancel() }, gobs.CANCELED, errCancel},
		{"failure", func(_ *Job, ch chan<- error) { ch <- errFailure }, gobs.FAILED, errFailure},
		{"success", func(_ *Job, ch chan<- error) { close(ch) }, gobs.COMPLETED, nil},
	}
	for _, test := range tests {
		ch := make(chan error)
		j := Run(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return context.Cause(ctx)
			case err := <-ch:
				return err
			}
		}, ctx)
		if s := j.state(); s != gobs.RUNNING {
			t.Fatalf("%s: wanted RUNNING, got %v", test.name, s)
		}

		test.stop(j, ch)
		j.Wait(ctx)
		if s := j.state(); s != test.want {
			t.Fatalf("%s: wanted %v, got %v (%v)", test.name, test.want, s, j.Err())
		}
		if !errors.Is(j.Err(), test.wantErr) {
			t.Fatalf("%s: wanted error %v, got %v", test.name, test.wantErr, j.Err())
		}
	}
}

func TestControl(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())

	c := NewControl(ctx)
	defer c.Release()

	if c.StopRequested() || c.Finished() {
		t.Fatalf("new control must not be stopped or finished")
	}

	errFirst := errors.New("first")
	cancel(errFirst)
	// The AfterFunc runs in its own goroutine.
	for deadline := time.Now().Add(5 * time.Second); !c.StopRequested(); {
		if time.Now().After(deadline) {
			t.Fatalf("stop was not requested after the context is canceled")
		}
		time.Sleep(time.Millisecond)
	}
	c.RequestStop(errors.New("second"))
	if !errors.Is(c.Cause(), errFirst) {
		t.Fatalf("wanted first cause, got %v", c.Cause())
	}

	c.Finish(true)
	if !c.Finished() || !c.ContinueRequested() {
		t.Fatalf("wanted finished control with continuation request")
	}
}

func TestControlStoppedContext(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	errStop := errors.New("stop")
	cancel(errStop)

	c := NewControl(ctx)
	defer c.Release()

	if !c.StopRequested() {
		t.Fatalf("wanted stop request for a canceled context")
	}
	if !errors.Is(c.Cause(), errStop) {
		t.Fatalf("wanted cause %v, got %v", errStop, c.Cause())
	}
}

func TestIsPause(t *testing.T) {
	ctx := context.Background()

	causes := make(chan error, 1)
	wait := func(ctx context.Context) error {
		<-ctx.Done()
		causes <- context.Cause(ctx)
		return context.Cause(ctx)
	}

	j := Run(wait, ctx)
	j.Pause()
	j.Wait(ctx)
	if cause := <-causes; !IsPause(cause) {
		t.Fatalf("wanted pause cause, got %v", cause)
	}

	j = Run(wait, ctx)
	j.Cancel()
	j.Wait(ctx)
	if cause := <-causes; IsPause(cause) {
		t.Fatalf("wanted cancel cause to not be a pause, got %v", cause)
	}
}
