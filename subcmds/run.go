// Copyright (c) 2023 BVK Chaitanya

package subcmds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/bvk/oco/cli"
	"github.com/bvk/oco/ctxutil"
	"github.com/bvk/oco/daemonize"
	"github.com/bvk/oco/httputil"
	"github.com/bvk/oco/server"
	"github.com/bvk/oco/sglog"
	"github.com/bvk/oco/subcmds/cmdutil"
	"github.com/bvk/oco/subcmds/defaults"
	"github.com/bvkgo/kv/kvhttp"
	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"
	"github.com/nightlyone/lockfile"
)

type Run struct {
	cmdutil.ServerFlags

	background bool

	restart         bool
	shutdownTimeout time.Duration

	noPprof  bool
	noResume bool
	debugLog bool

	secretsPath string
	dataDir     string
	logDir      string
}

func (c *Run) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("run", flag.ContinueOnError)
	c.ServerFlags.SetFlags(fset)
	fset.BoolVar(&c.background, "background", false, "runs the daemon in background")
	fset.BoolVar(&c.restart, "restart", false, "when true, kills any old instance")
	fset.DurationVar(&c.shutdownTimeout, "shutdown-timeout", 30*time.Second, "max timeout for in-flight requests and for the previous instance to shutdown")
	fset.BoolVar(&c.noPprof, "no-pprof", false, "when true net/http/pprof handler is not registered")
	fset.BoolVar(&c.noResume, "no-resume", false, "when true old jobs aren't resumed automatically")
	fset.BoolVar(&c.debugLog, "debug-log", false, "when true debug messages are also logged")
	fset.StringVar(&c.secretsPath, "secrets-file", "", "path to credentials file (default: secrets.json in the data directory)")
	fset.StringVar(&c.dataDir, "data-dir", defaults.DataDir(), "path to the data directory")
	fset.StringVar(&c.logDir, "log-dir", defaults.LogDir(), "path to the log directory")
	return fset, cli.CmdFunc(c.run)
}

func (c *Run) Synopsis() string {
	return "Runs the oco service in foreground or background"
}

func (c *Run) CommandHelp() string {
	return `

Command "run" starts the oco service. Service scans the database for
unfinished jobs and resumes them automatically, unless -no-resume is given.

SECRETS FILE

Notification channels and paper exchanges are configured with a secrets file
in JSON format. A example secrets file is given below:

    {
        "telegram": {
            "token": "1111111111:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
            "owner": "someuser"
        },
        "paper": [
            {
                "name": "paperex",
                "products": ["BTC-USDT"],
                "prices": {"BTC-USDT": "60000"}
            }
        ]
    }

Use "oco setup telegram", "oco setup pushover" and "oco setup paper" commands
to update the secrets file.

`
}

func (c *Run) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(c.dataDir, 0700); err != nil {
		return fmt.Errorf("could not create data directory %q: %w", c.dataDir, err)
	}
	dataDir, err := filepath.Abs(c.dataDir)
	if err != nil {
		return fmt.Errorf("could not determine data-dir %q absolute path: %w", c.dataDir, err)
	}

	if len(c.secretsPath) == 0 {
		c.secretsPath = filepath.Join(dataDir, "secrets.json")
	}
	secrets, err := server.SecretsFromFile(c.secretsPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		slog.Warn("secrets file does not exist; notifications are only logged", "secrets-file", c.secretsPath)
		secrets = new(server.Secrets)
	}

	addr, err := c.ServerFlags.TCPAddr()
	if err != nil {
		return err
	}

	if c.background {
		// Health checker for the background process initialization. We need to
		// verify that responding http server is really our child and not an
		// older instance, so the pid must be different from ours.
		check := func(ctx context.Context) error {
			pid, err := getServerPid(ctx, addr.String())
			if err != nil {
				return err
			}
			if pid == os.Getpid() {
				return fmt.Errorf("unexpected pid %d", pid)
			}
			return nil
		}
		if err := daemonize.Daemonize(ctx, check); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(c.logDir, 0700); err != nil {
		return fmt.Errorf("could not create log directory %q: %w", c.logDir, err)
	}
	logOpts := &sglog.Options{
		LogDirs:           []string{c.logDir},
		ReuseFileDuration: time.Hour,
	}
	if !daemonize.IsBackground() {
		logOpts.Stderr = os.Stderr
	}
	backend := sglog.NewBackend(logOpts)
	defer backend.Close()
	if c.debugLog {
		backend.EnableDebugLog()
	}
	slog.SetDefault(slog.New(backend.Handler()))

	slog.Info("starting oco service", "pid", os.Getpid(), "data-dir", dataDir, "secrets-file", c.secretsPath)

	lockPath := filepath.Join(dataDir, "oco.lock")
	flock, err := lockfile.New(lockPath)
	if err != nil {
		return fmt.Errorf("could not create lock file %q: %w", lockPath, err)
	}
	if err := flock.TryLock(); err != nil {
		if !c.restart {
			return fmt.Errorf("could not get lock on file %q: %w", lockPath, err)
		}
		owner, err := flock.GetOwner()
		if err != nil {
			return fmt.Errorf("could not get current owner of the lock file: %w", err)
		}
		if err := owner.Signal(os.Interrupt); err == nil {
			slog.Info("waiting for the previous instance to shutdown", "pid", owner.Pid)
			if err := ctxutil.RetryTimeout(ctx, time.Second, c.shutdownTimeout, flock.TryLock); err != nil {
				if err := owner.Signal(os.Kill); err != nil {
					return fmt.Errorf("could not kill current owner of the lock file: %w", err)
				}
				ctxutil.Sleep(ctx, time.Millisecond)
			}
		}
		if err := flock.TryLock(); err != nil {
			return fmt.Errorf("could not get lock on file %q after killing previous instance: %w", lockPath, err)
		}
	}
	defer flock.Unlock()

	// Start HTTP server.
	s, err := httputil.New(&httputil.Options{
		ShutdownTimeout: c.shutdownTimeout,
		LogRequests:     c.debugLog,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	tcpServer, err := s.StartTCP(ctx, addr)
	if err != nil {
		return fmt.Errorf("could not start http server on %s: %w", addr, err)
	}
	defer s.Stop(tcpServer)

	if !c.noPprof {
		s.AddHandler("/debug/pprof/heap", pprof.Handler("heap"))
		s.AddHandler("/debug/pprof/goroutine", pprof.Handler("goroutine"))
		s.AddHandler("/debug/pprof/allocs", pprof.Handler("allocs"))
		s.AddHandler("/debug/pprof/block", pprof.Handler("block"))
		s.AddHandler("/debug/pprof/mutex", pprof.Handler("mutex"))
	}

	// Open the database.
	bopts := badger.DefaultOptions(filepath.Join(dataDir, "db"))
	bopts.Logger = nil
	bdb, err := badger.Open(bopts)
	if err != nil {
		return fmt.Errorf("could not open the database: %w", err)
	}
	defer bdb.Close()
	db := kvbadger.New(bdb, cmdutil.IsGoodKey)

	s.AddHandler("/db/", http.StripPrefix("/db", kvhttp.Handler(db)))

	opts := &server.Options{
		NoResume: c.noResume,
	}
	srv, err := server.New(ctx, secrets, db, opts)
	if err != nil {
		return err
	}
	defer srv.Close()

	apis := srv.HandlerMap()
	for k, v := range apis {
		s.AddHandler(k, v)
	}
	defer func() {
		for k := range apis {
			s.RemoveHandler(k)
		}
	}()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := srv.Stop(context.Background()); err != nil {
			slog.Error("could not stop all jobs (ignored)", "err", err)
		}
	}()

	s.AddHandler("/pid", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, strconv.Itoa(os.Getpid()))
	}))
	slog.Info("started oco service", "addr", addr)

	<-ctx.Done()
	slog.Info("oco service is shutting down", "cause", context.Cause(ctx))
	return nil
}

func getServerPid(ctx context.Context, addr string) (int, error) {
	client := http.Client{Timeout: time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://%s/pid", addr), nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("http status: %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, errors.Join(os.ErrInvalid, err)
	}
	return pid, nil
}
