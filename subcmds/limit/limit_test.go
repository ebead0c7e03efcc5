// Copyright (c) 2023 BVK Chaitanya

package limit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bvk/oco/api"
	"github.com/bvk/oco/cli"
	"github.com/bvk/oco/dispatch"
	"github.com/bvk/oco/server"
	"github.com/bvk/oco/subcmds/cmdutil"
	"github.com/bvkgo/kv/kvmemdb"
)

func newTestServer(t *testing.T) *httptest.Server {
	ctx := context.Background()

	secrets := &server.Secrets{
		Paper: []*server.PaperExchange{
			{Name: "paperex", Products: []string{"BTC-USDT"}, RequestsPerSecond: 1000},
		},
	}
	opts := &server.Options{
		Dispatch: dispatch.Options{RescheduleDelay: 10 * time.Millisecond},
	}
	s, err := server.New(ctx, secrets, kvmemdb.New(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	for k, v := range s.HandlerMap() {
		mux.Handle(k, v)
	}
	hs := httptest.NewServer(mux)
	t.Cleanup(func() {
		hs.Close()
		s.Stop(context.Background())
		s.Close()
	})
	return hs
}

func connectArgs(t *testing.T, hs *httptest.Server) []string {
	u, err := url.Parse(hs.URL)
	if err != nil {
		t.Fatal(err)
	}
	return []string{"-connect-host", u.Hostname(), "-connect-port", u.Port()}
}

func runCmd(t *testing.T, cmd cli.Command, args ...string) error {
	t.Helper()
	fset, run := cmd.Command()
	if err := fset.Parse(args); err != nil {
		t.Fatal(err)
	}
	return run(context.Background(), fset.Args())
}

func TestBuySell(t *testing.T) {
	hs := newTestServer(t)
	conn := connectArgs(t, hs)

	if err := runCmd(t, new(Buy), append(conn, "-amount", "1", "-price", "100", "paperex:BTC/USDT")...); err != nil {
		t.Fatal(err)
	}
	if err := runCmd(t, new(Sell), append(conn, "-amount", "1", "-price", "200", "-no-track", "paperex:BTC/USDT")...); err != nil {
		t.Fatal(err)
	}

	client := new(Buy)
	fset, _ := client.Command()
	if err := fset.Parse(conn); err != nil {
		t.Fatal(err)
	}
	cf := &client.ClientFlags

	// Buy job also submits a watcher job for its order.
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := cmdutil.Post[api.JobListResponse](context.Background(), cf, api.JobListPath, &api.JobListRequest{All: true})
		if err != nil {
			t.Fatal(err)
		}
		if len(resp.Jobs) == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("wanted 3 jobs, got %d", len(resp.Jobs))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestInvalidArgs(t *testing.T) {
	hs := newTestServer(t)
	conn := connectArgs(t, hs)

	if err := runCmd(t, new(Buy), append(conn, "-amount", "1", "-price", "100")...); err == nil {
		t.Fatalf("wanted an error for missing ticker")
	}
	if err := runCmd(t, new(Buy), append(conn, "-amount", "x", "-price", "100", "paperex:BTC/USDT")...); err == nil {
		t.Fatalf("wanted an error for bad amount")
	}
	if err := runCmd(t, new(Sell), append(conn, "-amount", "1", "-price", "100", "BTC/USDT")...); err == nil {
		t.Fatalf("wanted an error for ticker without exchange")
	}
	err := runCmd(t, new(Sell), append(conn, "-amount", "1", "-price", "100", "nosuchex:BTC/USDT")...)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("wanted http status 404 error for unknown exchange, got %v", err)
	}
}
