// Copyright (c) 2023 BVK Chaitanya

// Package dispatch runs jobs by handing them to the processors registered
// for their types. It owns job submission, supervision of the runs and
// recovery of unfinished jobs after a restart.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"runtime/debug"
	"slices"
	"sync"

	"github.com/bvk/oco/ctxutil"
	"github.com/bvk/oco/exchange"
	"github.com/bvk/oco/gobs"
	"github.com/bvk/oco/job"
	"github.com/bvk/oco/jobdef"
	"github.com/bvk/oco/kvutil"
	"github.com/bvk/oco/notify"
	"github.com/bvk/oco/syncmap"
	"github.com/bvkgo/kv"
	"github.com/google/uuid"
)

const Keyspace = "/jobdefs/"

// Processor is the behavior of one job run.
//
// Start performs the job and returns true when the job wants to be started
// again later. Stop is called once after Start returns; it may also be
// called while Start is in progress and must be safe for that.
type Processor interface {
	Start(ctx context.Context, ctl *job.Control) (bool, error)
	Stop(ctl *job.Control)
}

// Constructor creates a fresh processor for a run of the job.
type Constructor func(uid string, j *jobdef.Job) (Processor, error)

type Dispatcher struct {
	db       kv.Database
	notifier notify.Channel
	opts     Options

	runner *job.Runner

	ctx    context.Context
	cancel context.CancelCauseFunc

	mu       sync.Mutex
	registry map[jobdef.Type]Constructor

	// keyMap maps the de-duplication keys of active jobs to their uids.
	keyMap syncmap.Map[string, string]
}

var _ jobdef.Submitter = &Dispatcher{}

func New(db kv.Database, notifier notify.Channel, opts *Options) (*Dispatcher, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancelCause(context.Background())
	d := &Dispatcher{
		db:       db,
		notifier: notifier,
		opts:     *opts,
		runner:   job.NewRunner(db),
		ctx:      ctx,
		cancel:   cancel,
		registry: make(map[jobdef.Type]Constructor),
	}
	return d, nil
}

func defKey(uid string) string {
	return path.Join(Keyspace, uid)
}

// Register adds the constructor for a job type. A type can be registered
// only once.
func (d *Dispatcher) Register(typ jobdef.Type, ctor Constructor) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.registry[typ]; ok {
		return fmt.Errorf("job type %q is already registered: %w", typ, os.ErrExist)
	}
	d.registry[typ] = ctor
	return nil
}

func (d *Dispatcher) lookup(typ jobdef.Type) (Constructor, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctor, ok := d.registry[typ]
	return ctor, ok
}

// Start resumes all unfinished jobs from the database.
func (d *Dispatcher) Start(ctx context.Context) error {
	var uids []string
	collect := func(ctx context.Context, r kv.Reader, jd *gobs.JobData) error {
		if job.IsDone(jd.State) {
			return nil
		}
		j, err := kvutil.Get[jobdef.Job](ctx, r, defKey(jd.ID))
		if err != nil {
			slog.Error("could not load job description (skipped)", "job", jd.ID, "err", err)
			return nil
		}
		if key := j.DedupKey(); key != "" {
			d.keyMap.Store(key, jd.ID)
		}
		uids = append(uids, jd.ID)
		return nil
	}
	if err := d.runner.Scan(ctx, nil, collect); err != nil {
		return fmt.Errorf("could not scan jobs: %w", err)
	}

	for _, uid := range uids {
		if err := d.Dispatch(ctx, uid); err != nil {
			slog.Error("could not resume job (ignored)", "job", uid, "err", err)
			continue
		}
		slog.Info("resumed job", "job", uid)
	}
	return nil
}

// Stop pauses all running jobs. They are resumed by the next Start. Jobs
// submitted by the runs while they are being paused are saved, but are not
// started till the next Start.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.runner.PauseAll(ctx)
	d.cancel(os.ErrClosed)
	return nil
}

// SubmitNew saves a new job and starts it. When an active job already holds
// the same de-duplication key, its uid is returned and no new job is made.
func (d *Dispatcher) SubmitNew(ctx context.Context, j *jobdef.Job) (string, error) {
	if err := j.Check(); err != nil {
		return "", fmt.Errorf("invalid job: %w", err)
	}

	uid := uuid.NewString()
	key := j.DedupKey()
	if key != "" {
		if existing, loaded := d.keyMap.LoadOrStore(key, uid); loaded {
			slog.Info("an active job already exists for the key", "key", key, "job", existing, "new", j)
			return existing, nil
		}
	}

	save := func(ctx context.Context, rw kv.ReadWriter) error {
		if err := kvutil.Set(ctx, rw, defKey(uid), j); err != nil {
			return fmt.Errorf("could not save job description: %w", err)
		}
		return d.runner.Add(ctx, rw, uid, string(j.Type))
	}
	if err := kv.WithReadWriter(ctx, d.db, save); err != nil {
		if key != "" {
			d.keyMap.CompareAndDelete(key, uid)
		}
		return "", fmt.Errorf("could not create job: %w", err)
	}
	slog.Info("created new job", "job", uid, "description", j)

	if err := d.Dispatch(ctx, uid); err != nil {
		d.releaseKey(uid, j)
		return uid, err
	}
	return uid, nil
}

// Dispatch starts a run for a saved job. It is a no-op when the job is
// already running. After Stop, jobs are left PAUSED for the next Start.
func (d *Dispatcher) Dispatch(ctx context.Context, uid string) error {
	if d.runner.IsRunning(uid) {
		slog.Info("job is already running", "job", uid)
		return nil
	}

	j, err := kvutil.GetDB[jobdef.Job](ctx, d.db, defKey(uid))
	if err != nil {
		return fmt.Errorf("could not load job %q: %w", uid, err)
	}

	var fn job.Func
	var cerr error
	if ctor, ok := d.lookup(j.Type); ok {
		fn = d.supervise(uid, j, ctor)
	} else {
		// Jobs without a processor are recorded as failed runs.
		cerr = fmt.Errorf("no processor for job type %q: %w", j.Type, exchange.ErrNotConfigured)
		fn = func(context.Context) error {
			d.notifier.Send(fmt.Sprintf("incident: job %s (%s) has failed: %v", uid, j, cerr))
			d.releaseKey(uid, j)
			return cerr
		}
	}

	if err := d.runner.Resume(ctx, uid, fn, d.ctx); err != nil {
		if errors.Is(err, os.ErrExist) {
			slog.Info("job is already running", "job", uid)
			return nil
		}
		if errors.Is(err, os.ErrClosed) {
			slog.Info("dispatcher is stopped; job is left paused", "job", uid)
			return nil
		}
		return err
	}
	if cerr != nil {
		slog.Error("job type has no processor", "job", uid, "type", j.Type)
		return cerr
	}
	return nil
}

func (d *Dispatcher) releaseKey(uid string, j *jobdef.Job) {
	if key := j.DedupKey(); key != "" {
		d.keyMap.CompareAndDelete(key, uid)
	}
}

// supervise returns the job function that runs processors for the job till
// one of them completes, fails or the run is stopped.
func (d *Dispatcher) supervise(uid string, j *jobdef.Job, ctor Constructor) job.Func {
	return func(ctx context.Context) error {
		for {
			again, err := d.runOnce(ctx, uid, j, ctor)
			if err != nil && ctx.Err() != nil && errors.Is(err, context.Cause(ctx)) {
				slog.Info("job has stopped", "job", uid, "cause", err)
				return err
			}
			if err != nil {
				slog.Error("job has failed", "job", uid, "description", j, "err", err)
				d.notifier.Send(fmt.Sprintf("incident: job %s (%s) has failed: %v", uid, j, err))
				d.releaseKey(uid, j)
				return err
			}
			if !again {
				d.releaseKey(uid, j)
				return nil
			}
			if ctx.Err() == nil {
				slog.Info("job requested continuation", "job", uid, "delay", d.opts.RescheduleDelay)
				ctxutil.Sleep(ctx, d.opts.RescheduleDelay)
			}
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
		}
	}
}

func (d *Dispatcher) runOnce(ctx context.Context, uid string, j *jobdef.Job, ctor Constructor) (again bool, status error) {
	p, err := ctor(uid, j)
	if err != nil {
		return false, fmt.Errorf("could not create processor: %w", err)
	}

	ctl := job.NewControl(ctx)
	defer ctl.Release()

	err = protect(func() (err error) {
		again, err = p.Start(ctx, ctl)
		return err
	})
	if err != nil {
		again = false
	}
	// Processors may report their result through the control before they
	// return; the return value is used otherwise.
	if !ctl.Finished() {
		ctl.Finish(again)
	}

	if serr := protect(func() error { p.Stop(ctl); return nil }); serr != nil && err == nil {
		err = serr
	}
	if err != nil {
		return false, err
	}
	return ctl.ContinueRequested(), nil
}

// protect converts a panic into an error.
func protect(f func() error) (status error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("processor has panicked", "panic", r, "stack", string(debug.Stack()))
			status = fmt.Errorf("processor panic: %v", r)
		}
	}()
	return f()
}

// Cancel stops a job permanently. Returns the final state of the job.
func (d *Dispatcher) Cancel(ctx context.Context, uid string) (gobs.State, error) {
	j, err := kvutil.GetDB[jobdef.Job](ctx, d.db, defKey(uid))
	if err != nil {
		return "", fmt.Errorf("could not load job %q: %w", uid, err)
	}
	state, err := d.runner.Cancel(ctx, uid)
	if err != nil {
		return "", err
	}
	d.releaseKey(uid, j)
	return state, nil
}

// Wait blocks till the job is not running or the context is canceled.
func (d *Dispatcher) Wait(ctx context.Context, uid string) error {
	return d.runner.Wait(ctx, uid)
}

// Get returns the state and the description of a job.
func (d *Dispatcher) Get(ctx context.Context, uid string) (jd *gobs.JobData, j *jobdef.Job, err error) {
	load := func(ctx context.Context, r kv.Reader) error {
		if jd, err = d.runner.Get(ctx, r, uid); err != nil {
			return err
		}
		if j, err = kvutil.Get[jobdef.Job](ctx, r, defKey(uid)); err != nil {
			return fmt.Errorf("could not load job description: %w", err)
		}
		return nil
	}
	if err := kv.WithReader(ctx, d.db, load); err != nil {
		return nil, nil, err
	}
	return jd, j, nil
}

// List returns all jobs ordered by their creation time.
func (d *Dispatcher) List(ctx context.Context) ([]*gobs.JobData, error) {
	var jds []*gobs.JobData
	collect := func(ctx context.Context, r kv.Reader, jd *gobs.JobData) error {
		jds = append(jds, jd)
		return nil
	}
	if err := d.runner.Scan(ctx, nil, collect); err != nil {
		return nil, err
	}
	slices.SortStableFunc(jds, func(a, b *gobs.JobData) int {
		return a.CreateTime.Compare(b.CreateTime)
	})
	return jds, nil
}
