// Copyright (c) 2025 BVK Chaitanya

package job

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/bvk/oco/gobs"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
)

func waitingJob(ch <-chan error) Func {
	return func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case err := <-ch:
			return err
		}
	}
}

func TestRunner1(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	runner := NewRunner(db)
	defer runner.PauseAll(ctx)

	if err := runner.Add(ctx, nil, "1", "JobOne"); err != nil {
		t.Fatal(err)
	}
	if err := runner.Add(ctx, nil, "1", "OtherJob"); err == nil || !errors.Is(err, os.ErrExist) {
		t.Fatalf("wanted ErrExist, got %v", err)
	}

	if jd, err := runner.Get(ctx, nil, "1"); err != nil {
		t.Fatal(err)
	} else if jd.State != gobs.PAUSED {
		t.Fatalf("wanted PAUSED, got %v", jd.State)
	}

	ch := make(chan error)
	jobFunc := waitingJob(ch)

	if err := runner.Resume(ctx, "1", jobFunc, ctx); err != nil {
		t.Fatal(err)
	}
	if err := runner.Resume(ctx, "1", jobFunc, ctx); !errors.Is(err, os.ErrExist) {
		t.Fatalf("wanted ErrExist for a running job, got %v", err)
	}

	if jd, err := runner.Get(ctx, nil, "1"); err != nil {
		t.Fatal(err)
	} else if jd.State != gobs.RUNNING {
		t.Fatalf("wanted RUNNING, got %v", jd.State)
	}

	if err := runner.Pause(ctx, "1"); err != nil {
		t.Fatal(err)
	}
	if jd, err := runner.Get(ctx, nil, "1"); err != nil {
		t.Fatal(err)
	} else if jd.State != gobs.PAUSED {
		t.Fatalf("wanted PAUSED, got %v", jd.State)
	}

	if err := runner.Resume(ctx, "1", jobFunc, ctx); err != nil {
		t.Fatal(err)
	}

	// Cancel a running job.
	if state, err := runner.Cancel(ctx, "1"); err != nil {
		t.Fatal(err)
	} else if state != gobs.CANCELED {
		t.Fatalf("wanted CANCELED, got %v", state)
	}
	if jd, err := runner.Get(ctx, nil, "1"); err != nil {
		t.Fatal(err)
	} else if jd.State != gobs.CANCELED {
		t.Fatalf("wanted CANCELED, got %v", jd.State)
	}

	if err := runner.Resume(ctx, "1", jobFunc, ctx); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("wanted ErrInvalid, got %v", err)
	}
}

func TestRunner2(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	runner := NewRunner(db)
	defer runner.PauseAll(ctx)

	if err := runner.Add(ctx, nil, "1", "JobOne"); err != nil {
		t.Fatal(err)
	}

	// Cancel a PAUSED job.
	if _, err := runner.Cancel(ctx, "1"); err != nil {
		t.Fatal(err)
	}
	if jd, err := runner.Get(ctx, nil, "1"); err != nil {
		t.Fatal(err)
	} else if jd.State != gobs.CANCELED {
		t.Fatalf("wanted CANCELED, got %v", jd.State)
	}

	ch := make(chan error)
	if err := runner.Resume(ctx, "1", waitingJob(ch), ctx); err == nil {
		t.Fatalf("wanted non-nil, got %v", err)
	}
}

func TestRunner3(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	runner := NewRunner(db)
	defer runner.PauseAll(ctx)

	{
		tx, err := db.NewTransaction(ctx)
		if err != nil {
			t.Fatal(err)
		}
		defer tx.Rollback(ctx)

		if err := runner.Add(ctx, tx, "1", "JobOne"); err != nil {
			t.Fatal(err)
		}
		if err := runner.Add(ctx, tx, "1", "OtherJob"); err == nil || !errors.Is(err, os.ErrExist) {
			t.Fatalf("wanted ErrExist, got %v", err)
		}

		if jd, err := runner.Get(ctx, tx, "1"); err != nil {
			t.Fatal(err)
		} else if jd.State != gobs.PAUSED {
			t.Fatalf("wanted PAUSED, got %v", jd.State)
		}
		if err := tx.Commit(ctx); err != nil {
			t.Fatal(err)
		}
	}

	ch := make(chan error)
	if err := runner.Resume(ctx, "1", waitingJob(ch), ctx); err != nil {
		t.Fatal(err)
	}

	errFailure := errors.New("job failure")
	ch <- errFailure
	if err := runner.Wait(ctx, "1"); err != nil {
		t.Fatal(err)
	}

	jd, err := runner.Get(ctx, nil, "1")
	if err != nil {
		t.Fatal(err)
	}
	if jd.State != gobs.FAILED {
		t.Fatalf("wanted FAILED, got %v", jd.State)
	}
	if jd.Error != errFailure.Error() {
		t.Fatalf("wanted %q, got %q", errFailure, jd.Error)
	}
}

func TestRunnerScan(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	runner := NewRunner(db)
	defer runner.PauseAll(ctx)

	for _, uid := range []string{"a", "b", "c"} {
		if err := runner.Add(ctx, nil, uid, "JobOne"); err != nil {
			t.Fatal(err)
		}
	}
	ch := make(chan error)
	if err := runner.Resume(ctx, "b", waitingJob(ch), ctx); err != nil {
		t.Fatal(err)
	}

	states := make(map[string]gobs.State)
	collect := func(ctx context.Context, _ kv.Reader, jd *gobs.JobData) error {
		states[jd.ID] = jd.State
		return nil
	}
	if err := runner.Scan(ctx, nil, collect); err != nil {
		t.Fatal(err)
	}
	if len(states) != 3 || states["a"] != gobs.PAUSED || states["b"] != gobs.RUNNING || states["c"] != gobs.PAUSED {
		t.Fatalf("wanted a:PAUSED b:RUNNING c:PAUSED, got %v", states)
	}

	runner.PauseAll(ctx)
	if jd, err := runner.Get(ctx, nil, "b"); err != nil {
		t.Fatal(err)
	} else if jd.State != gobs.PAUSED {
		t.Fatalf("wanted PAUSED after PauseAll, got %v", jd.State)
	}

	if err := runner.Resume(ctx, "a", waitingJob(ch), ctx); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("wanted os.ErrClosed after PauseAll, got %v", err)
	}
	if runner.IsRunning("a") {
		t.Fatalf("wanted no run after PauseAll")
	}
	if jd, err := runner.Get(ctx, nil, "a"); err != nil {
		t.Fatal(err)
	} else if jd.State != gobs.PAUSED {
		t.Fatalf("wanted job to stay PAUSED, got %v", jd.State)
	}
}
