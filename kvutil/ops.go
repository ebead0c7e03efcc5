// Copyright (c) 2023 BVK Chaitanya

package kvutil

import (
	"bufio"
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bvk/oco/gobs"
	"github.com/bvkgo/kv"
)

// Export writes every key and raw value from the reader as a stream of
// gob encoded gobs.KeyValue items.
func Export(ctx context.Context, r kv.Reader, w io.Writer) error {
	enc := gob.NewEncoder(w)
	return Walk(ctx, r, func(key string, value io.Reader) error {
		data, err := io.ReadAll(value)
		if err != nil {
			return fmt.Errorf("could not read value at key %q: %w", key, err)
		}
		if err := enc.Encode(&gobs.KeyValue{Key: key, Value: data}); err != nil {
			return fmt.Errorf("could not encode item at key %q: %w", key, err)
		}
		return nil
	})
}

// Walk visits every key and its raw value in the ascending key order.
func Walk(ctx context.Context, r kv.Reader, fn func(key string, value io.Reader) error) error {
	it, err := r.Scan(ctx)
	if err != nil {
		return fmt.Errorf("could not create scanning iterator: %w", err)
	}
	defer kv.Close(it)

	return forEach(ctx, it, fn)
}

// importBatch copies up to limit items from the decoder into the read-writer.
// Limit zero copies all items. It returns true at the end of the stream.
func importBatch(ctx context.Context, dec *gob.Decoder, rw kv.ReadWriter, limit int) (bool, error) {
	for n := 0; limit == 0 || n < limit; n++ {
		var item gobs.KeyValue
		if err := dec.Decode(&item); err != nil {
			if errors.Is(err, io.EOF) {
				return true, nil
			}
			return false, fmt.Errorf("could not decode item from backup: %w", err)
		}
		if err := rw.Set(ctx, item.Key, bytes.NewReader(item.Value)); err != nil {
			return false, fmt.Errorf("could not restore key %q: %w", item.Key, err)
		}
	}
	return false, nil
}

// Import writes all items from an Export stream into the read-writer.
func Import(ctx context.Context, r io.Reader, rw kv.ReadWriter) error {
	_, err := importBatch(ctx, gob.NewDecoder(r), rw, 0)
	return err
}

// ImportDB writes all items from an Export stream into the database using a
// new transaction for every batchSize items.
func ImportDB(ctx context.Context, db kv.Database, r io.Reader, batchSize int) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch size must be positive: %w", os.ErrInvalid)
	}
	dec := gob.NewDecoder(r)
	for done := false; !done; {
		err := kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) (err error) {
			done, err = importBatch(ctx, dec, rw, batchSize)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ClearDB deletes all keys in the database, at most batchSize keys per
// transaction.
func ClearDB(ctx context.Context, db kv.Database, batchSize int) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch size must be positive: %w", os.ErrInvalid)
	}
	errBatchFull := errors.New("batch is full")
	for {
		var keys []string
		collect := func(key string, _ io.Reader) error {
			if keys = append(keys, key); len(keys) == batchSize {
				return errBatchFull
			}
			return nil
		}
		deleteBatch := func(ctx context.Context, rw kv.ReadWriter) error {
			keys = keys[:0]
			if err := Walk(ctx, rw, collect); err != nil && !errors.Is(err, errBatchFull) {
				return err
			}
			for _, k := range keys {
				if err := rw.Delete(ctx, k); err != nil {
					return fmt.Errorf("could not delete key %q: %w", k, err)
				}
			}
			return nil
		}
		if err := kv.WithReadWriter(ctx, db, deleteBatch); err != nil {
			return err
		}
		if len(keys) < batchSize {
			return nil
		}
	}
}

// BackupDB exports a consistent snapshot of the database into the file. File
// is replaced atomically, so a failed backup leaves the old file intact.
func BackupDB(ctx context.Context, db kv.Database, file string) (status error) {
	abspath, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("could not determine absolute path for %q: %w", file, err)
	}
	fp, err := os.CreateTemp(filepath.Dir(abspath), ".backup*")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	defer func() {
		fp.Close()
		if status != nil {
			os.Remove(fp.Name())
		}
	}()

	bw := bufio.NewWriter(fp)
	if err := kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		return Export(ctx, r, bw)
	}); err != nil {
		return fmt.Errorf("could not export the database: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := fp.Sync(); err != nil {
		return err
	}
	if err := os.Rename(fp.Name(), abspath); err != nil {
		return fmt.Errorf("could not rename backup file to %q: %w", abspath, err)
	}
	return nil
}
