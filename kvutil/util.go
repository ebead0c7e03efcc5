// Copyright (c) 2023 BVK Chaitanya

// Package kvutil stores gob encoded Go values in a bvkgo/kv database.
package kvutil

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/bvkgo/kv"
)

func decode[T any](key string, r io.Reader) (*T, error) {
	v := new(T)
	if err := gob.NewDecoder(r).Decode(v); err != nil {
		return nil, fmt.Errorf("could not gob-decode value at key %q: %w", key, err)
	}
	return v, nil
}

// Get reads and decodes the value at the key. Missing keys are reported with
// an error wrapping os.ErrNotExist.
func Get[T any](ctx context.Context, g kv.Getter, key string) (*T, error) {
	r, err := g.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("could not read key %q: %w", key, err)
	}
	return decode[T](key, r)
}

func Set[T any](ctx context.Context, s kv.Setter, key string, value *T) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return fmt.Errorf("could not gob-encode value for key %q: %w", key, err)
	}
	return s.Set(ctx, key, &buf)
}

// GetDB is Get in a new read-only transaction.
func GetDB[T any](ctx context.Context, db kv.Database, key string) (value *T, err error) {
	err = kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		value, err = Get[T](ctx, r, key)
		return err
	})
	return value, err
}

// SetDB is Set in a new read-write transaction.
func SetDB[T any](ctx context.Context, db kv.Database, key string, value *T) error {
	return kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		return Set(ctx, rw, key, value)
	})
}

type fetcher interface {
	Fetch(ctx context.Context, next bool) (string, io.Reader, error)
}

// forEach calls fn for every item of the iterator in order and stops at the
// first error.
func forEach(ctx context.Context, it fetcher, fn func(key string, value io.Reader) error) error {
	for k, v, err := it.Fetch(ctx, false); ; k, v, err = it.Fetch(ctx, true) {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not fetch from the iterator: %w", err)
		}
		if err := fn(k, v); err != nil {
			return err
		}
	}
}

type IterFunc[T any] func(context.Context, kv.Reader, string, *T) error

// Ascend decodes and visits the values in the [begin, end) key range.
func Ascend[T any](ctx context.Context, r kv.Reader, begin, end string, fn IterFunc[T]) error {
	it, err := r.Ascend(ctx, begin, end)
	if err != nil {
		return fmt.Errorf("could not create ascending iterator: %w", err)
	}
	defer kv.Close(it)

	return forEach(ctx, it, func(key string, value io.Reader) error {
		v, err := decode[T](key, value)
		if err != nil {
			return err
		}
		return fn(ctx, r, key, v)
	})
}

// AscendDB is Ascend in a new read-only transaction.
func AscendDB[T any](ctx context.Context, db kv.Database, begin, end string, fn IterFunc[T]) error {
	return kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		return Ascend(ctx, r, begin, end, fn)
	})
}

// PathRange returns the key range that covers all keys under the directory.
// Root directory covers the whole database.
func PathRange(dir string) (begin string, end string) {
	if dir = path.Clean(dir); dir == "/" {
		return "", ""
	}
	// '0' is the byte after '/', so no other key falls between the bounds.
	return dir + "/", dir + "0"
}
