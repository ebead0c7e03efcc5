// Copyright (c) 2023 BVK Chaitanya

package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/bvk/oco/gobs"
	"github.com/bvk/oco/kvutil"
	"github.com/bvkgo/kv"
)

const Keyspace = "/jobs/"

// Runner manages the job runs and their persistent metadata. At most one run
// is active for a job id at any time.
type Runner struct {
	db kv.Database

	wg sync.WaitGroup

	mu sync.Mutex

	// jobMap holds all running jobs.
	jobMap map[string]*Job

	// closed is set by PauseAll. No new runs are started afterwards.
	closed bool
}

func NewRunner(db kv.Database) *Runner {
	return &Runner{
		db:     db,
		jobMap: make(map[string]*Job),
	}
}

func jobKey(uid string) string {
	return path.Join(Keyspace, uid)
}

// withReader runs the function with the input reader or a new snapshot when
// the reader is nil.
func (r *Runner) withReader(ctx context.Context, reader kv.Reader, fn func(context.Context, kv.Reader) error) error {
	if reader != nil {
		return fn(ctx, reader)
	}
	return kv.WithReader(ctx, r.db, fn)
}

func (r *Runner) withReadWriter(ctx context.Context, rw kv.ReadWriter, fn func(context.Context, kv.ReadWriter) error) error {
	if rw != nil {
		return fn(ctx, rw)
	}
	return kv.WithReadWriter(ctx, r.db, fn)
}

// Add creates a new job in the database. Jobs are created in PAUSED state and
// must be resumed to begin execution. A nil ReadWriter adds the job in a new
// transaction.
func (r *Runner) Add(ctx context.Context, rw kv.ReadWriter, uid, typename string) error {
	if len(uid) == 0 || strings.Contains(uid, "/") {
		return fmt.Errorf("invalid job id %q: %w", uid, os.ErrInvalid)
	}
	return r.withReadWriter(ctx, rw, func(ctx context.Context, rw kv.ReadWriter) error {
		if _, err := kvutil.Get[gobs.JobData](ctx, rw, jobKey(uid)); err == nil || !errors.Is(err, os.ErrNotExist) {
			if err == nil {
				return fmt.Errorf("job with uid %q already exists: %w", uid, os.ErrExist)
			}
			return fmt.Errorf("could not check if uid already exists: %w", err)
		}
		jd := &gobs.JobData{
			ID:         uid,
			Typename:   typename,
			State:      gobs.PAUSED,
			CreateTime: time.Now(),
		}
		if err := kvutil.Set(ctx, rw, jobKey(uid), jd); err != nil {
			return fmt.Errorf("could not save new job entry: %w", err)
		}
		return nil
	})
}

// Get returns a job's information. A nil Reader reads from a new snapshot.
func (r *Runner) Get(ctx context.Context, reader kv.Reader, uid string) (jd *gobs.JobData, err error) {
	err = r.withReader(ctx, reader, func(ctx context.Context, reader kv.Reader) error {
		jd, err = kvutil.Get[gobs.JobData](ctx, reader, jobKey(uid))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not load job data: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobMap[uid]; ok {
		jd.State = gobs.RUNNING
	}
	return jd, nil
}

// Scan invokes the callback function with all jobs defined in the database.
func (r *Runner) Scan(ctx context.Context, reader kv.Reader, fn func(context.Context, kv.Reader, *gobs.JobData) error) error {
	begin, end := kvutil.PathRange(Keyspace)
	cb := func(ctx context.Context, reader kv.Reader, key string, jd *gobs.JobData) error {
		r.mu.Lock()
		if _, ok := r.jobMap[jd.ID]; ok {
			jd.State = gobs.RUNNING
		}
		r.mu.Unlock()

		return fn(ctx, reader, jd)
	}
	return r.withReader(ctx, reader, func(ctx context.Context, reader kv.Reader) error {
		return kvutil.Ascend(ctx, reader, begin, end, cb)
	})
}

// Resume runs a job. Returns os.ErrExist if the job is already running,
// os.ErrInvalid if the job has reached a final state and os.ErrClosed after
// PauseAll is called. Job stays PAUSED in the database when it is not run.
func (r *Runner) Resume(ctx context.Context, uid string, fn Func, fctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("could not run job %q after the runner is paused: %w", uid, os.ErrClosed)
	}
	if _, ok := r.jobMap[uid]; ok {
		return fmt.Errorf("job %q is already running: %w", uid, os.ErrExist)
	}

	jd, err := kvutil.GetDB[gobs.JobData](ctx, r.db, jobKey(uid))
	if err != nil {
		return fmt.Errorf("could not load job data for %q: %w", uid, err)
	}
	if IsDone(jd.State) {
		return fmt.Errorf("job %q is already %s: %w", uid, jd.State, os.ErrInvalid)
	}

	jd.State, jd.Error = gobs.RUNNING, ""
	if err := kvutil.SetDB(ctx, r.db, jobKey(uid), jd); err != nil {
		return fmt.Errorf("could not update job state: %w", err)
	}

	job := Run(fn, fctx)
	r.jobMap[uid] = job

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		<-job.Done()
		r.finish(uid, job)
	}()
	return nil
}

// finish saves the final state of a job run. It is safe to call multiple
// times; only the first call after the run has returned saves the state.
func (r *Runner) finish(uid string, job *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.jobMap[uid]; !ok || v != job {
		return
	}
	delete(r.jobMap, uid)

	state, err := job.state(), job.Err()
	slog.Info("job run has returned", "job", uid, "state", state, "err", err)

	ctx := context.Background()
	jd, err := kvutil.GetDB[gobs.JobData](ctx, r.db, jobKey(uid))
	if err != nil {
		slog.Error("could not load job data to save the final state (ignored)", "job", uid, "err", err)
		return
	}
	jd.State, jd.Error = state, ""
	if state == gobs.FAILED && job.Err() != nil {
		jd.Error = job.Err().Error()
	}
	if err := kvutil.SetDB(ctx, r.db, jobKey(uid), jd); err != nil {
		slog.Error("could not save final job state (ignored)", "job", uid, "state", state, "err", err)
	}
}

func (r *Runner) stop(uid string, cancel bool) bool {
	r.mu.Lock()
	job, ok := r.jobMap[uid]
	r.mu.Unlock()

	if !ok {
		return false
	}
	if cancel {
		job.Cancel()
	} else {
		job.Pause()
	}
	<-job.Done()
	r.finish(uid, job)
	return true
}

// Pause stops a running job. Job can be resumed later.
func (r *Runner) Pause(ctx context.Context, uid string) error {
	if r.stop(uid, false) {
		return nil
	}
	jd, err := r.Get(ctx, nil, uid)
	if err != nil {
		return err
	}
	if jd.State != gobs.PAUSED {
		return fmt.Errorf("job %q is in %s state: %w", uid, jd.State, os.ErrInvalid)
	}
	return nil
}

// Cancel stops the job if it is running and marks it as canceled. Job cannot
// be resumed after it is canceled. Returns the final state of the job, which
// could be different from CANCELED if the job had already finished.
func (r *Runner) Cancel(ctx context.Context, uid string) (gobs.State, error) {
	r.stop(uid, true)

	var state gobs.State
	err := kv.WithReadWriter(ctx, r.db, func(ctx context.Context, rw kv.ReadWriter) error {
		jd, err := kvutil.Get[gobs.JobData](ctx, rw, jobKey(uid))
		if err != nil {
			return fmt.Errorf("could not load job data: %w", err)
		}
		if !IsDone(jd.State) {
			jd.State = gobs.CANCELED
			if err := kvutil.Set(ctx, rw, jobKey(uid), jd); err != nil {
				return fmt.Errorf("could not mark job %q as canceled: %w", uid, err)
			}
		}
		state = jd.State
		return nil
	})
	if err != nil {
		return "", err
	}
	return state, nil
}

// Wait blocks till the job is not running or the context is canceled.
func (r *Runner) Wait(ctx context.Context, uid string) error {
	r.mu.Lock()
	job, ok := r.jobMap[uid]
	r.mu.Unlock()

	if !ok {
		return nil
	}
	if err := job.Wait(ctx); err != nil {
		return err
	}
	r.finish(uid, job)
	return nil
}

// PauseAll pauses all running jobs and waits for them to save their state.
// Runner does not start new runs after PauseAll is called.
func (r *Runner) PauseAll(ctx context.Context) {
	r.mu.Lock()
	r.closed = true
	jobs := make(map[string]*Job, len(r.jobMap))
	for uid, job := range r.jobMap {
		jobs[uid] = job
	}
	r.mu.Unlock()

	for _, job := range jobs {
		job.Pause()
	}
	for uid, job := range jobs {
		<-job.Done()
		r.finish(uid, job)
	}
	r.wg.Wait()
}

// IsRunning returns true if the job has an active run.
func (r *Runner) IsRunning(uid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.jobMap[uid]
	return ok
}
