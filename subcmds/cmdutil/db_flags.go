// Copyright (c) 2023 BVK Chaitanya

package cmdutil

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/bvk/oco/kvutil"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvhttp"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"
)

// DBFlags selects the database used by the db commands. Database is one of a
// backup file loaded into memory, a local badger directory or the remote
// database exposed by the server, in that order of preference.
type DBFlags struct {
	ClientFlags

	dbURLPath string

	dataDir string

	fromBackup string

	backupBefore string
	backupAfter  string
}

func (f *DBFlags) SetFlags(fset *flag.FlagSet) {
	fset.StringVar(&f.dataDir, "data-dir", "", "Path to the database directory")

	fset.StringVar(&f.fromBackup, "from-backup", "", "Path to a database backup file")

	f.ClientFlags.SetFlags(fset)
	fset.StringVar(&f.dbURLPath, "db-url-path", "/db", "path to db api handler")

	fset.StringVar(&f.backupBefore, "backup-before", "", "Path to a file to receive db backup before cmd is run")
	fset.StringVar(&f.backupAfter, "backup-after", "", "Path to a file to receive db backup after cmd is run")
}

// IsRemoteDatabase returns true if target database is a remote database over
// http.
func (f *DBFlags) IsRemoteDatabase() bool {
	return f.fromBackup == "" && f.dataDir == ""
}

// GetDatabase opens the selected database and takes the -backup-before
// backup. Caller must invoke the returned closer, which takes the
// -backup-after backup before closing the database.
func (f *DBFlags) GetDatabase(ctx context.Context) (kv.Database, func(), error) {
	db, closeDB, err := f.open(ctx)
	if err != nil {
		return nil, nil, err
	}
	if f.backupBefore != "" {
		if err := kvutil.BackupDB(ctx, db, f.backupBefore); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("could not take a db backup before it is used: %w", err)
		}
	}
	closer := func() {
		defer closeDB()
		if f.backupAfter == "" {
			return
		}
		if err := kvutil.BackupDB(context.Background(), db, f.backupAfter); err != nil {
			slog.Warn("could not take db backup after it is used (ignored)", "file", f.backupAfter, "err", err)
		}
	}
	return db, closer, nil
}

func (f *DBFlags) open(ctx context.Context) (kv.Database, func(), error) {
	nop := func() {}
	switch {
	case f.fromBackup != "":
		fp, err := os.Open(f.fromBackup)
		if err != nil {
			return nil, nil, err
		}
		defer fp.Close()

		mdb := kvmemdb.New()
		if err := kvutil.ImportDB(ctx, mdb, bufio.NewReader(fp), 1000); err != nil {
			return nil, nil, fmt.Errorf("could not load backup %q into memory: %w", f.fromBackup, err)
		}
		return mdb, nop, nil

	case f.dataDir != "":
		bopts := badger.DefaultOptions(f.dataDir)
		bopts.Logger = nil
		bdb, err := badger.Open(bopts)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open the database at %q: %w", f.dataDir, err)
		}
		return kvbadger.New(bdb, IsGoodKey), func() { bdb.Close() }, nil
	}

	u := f.ClientFlags.AddressURL()
	u.Path = path.Join(u.Path, f.dbURLPath)
	return kvhttp.New(u, f.ClientFlags.HttpClient()), nop, nil
}

// IsGoodKey reports if a key is acceptable for the database. Keys are clean
// absolute paths.
func IsGoodKey(k string) bool {
	return path.IsAbs(k) && k == path.Clean(k)
}
