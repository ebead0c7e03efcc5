// Copyright (c) 2023 BVK Chaitanya

package cmdutil

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/bvk/oco/gobs"
	"github.com/bvk/oco/kvutil"
	"github.com/bvkgo/kv/kvmemdb"
)

func TestDBFlagsFromBackup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	src := kvmemdb.New()
	if err := kvutil.SetDB(ctx, src, "/jobs/j1", &gobs.JobData{ID: "j1", State: gobs.COMPLETED}); err != nil {
		t.Fatal(err)
	}
	input := filepath.Join(dir, "input.backup")
	if err := kvutil.BackupDB(ctx, src, input); err != nil {
		t.Fatal(err)
	}

	var f DBFlags
	fset := flag.NewFlagSet("test", flag.ContinueOnError)
	f.SetFlags(fset)
	output := filepath.Join(dir, "output.backup")
	if err := fset.Parse([]string{"-from-backup", input, "-backup-after", output}); err != nil {
		t.Fatal(err)
	}
	if f.IsRemoteDatabase() {
		t.Fatalf("wanted a local database for -from-backup")
	}

	db, closer, err := f.GetDatabase(ctx)
	if err != nil {
		t.Fatal(err)
	}
	jd, err := kvutil.GetDB[gobs.JobData](ctx, db, "/jobs/j1")
	if err != nil {
		t.Fatal(err)
	}
	if jd.State != gobs.COMPLETED {
		t.Fatalf("wanted COMPLETED, got %v", jd.State)
	}
	closer()

	if _, err := os.Stat(output); err != nil {
		t.Fatalf("wanted a backup after the command: %v", err)
	}
}

func TestIsGoodKey(t *testing.T) {
	for key, want := range map[string]bool{
		"/jobs/j1":  true,
		"/":         true,
		"jobs/j1":   false,
		"/jobs//j1": false,
		"/jobs/j1/": false,
		"/jobs/../": false,
	} {
		if got := IsGoodKey(key); got != want {
			t.Fatalf("%q: wanted %v, got %v", key, want, got)
		}
	}
}
