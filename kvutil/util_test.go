// Copyright (c) 2023 BVK Chaitanya

package kvutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/shopspring/decimal"
)

type testValue struct {
	Name   string
	Amount decimal.Decimal
	Price  decimal.Decimal
}

func TestDecimalsAreExact(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	amount := decimal.RequireFromString("1000.000000000000000001")
	price := decimal.RequireFromString("0.1")
	if err := SetDB(ctx, db, "/values/a", &testValue{Name: "a", Amount: amount, Price: price}); err != nil {
		t.Fatal(err)
	}

	v, err := GetDB[testValue](ctx, db, "/values/a")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Amount.Equal(amount) {
		t.Fatalf("wanted %s, got %s", amount, v.Amount)
	}
	if !v.Price.Equal(price) {
		t.Fatalf("wanted %s, got %s", price, v.Price)
	}

	if _, err := GetDB[testValue](ctx, db, "/values/missing"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("wanted ErrNotExist, got %v", err)
	}
}

func TestAscendPathRange(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	for _, k := range []string{"/values/a", "/values/b", "/valuesx/c", "/other/d"} {
		if err := SetDB(ctx, db, k, &testValue{Name: k}); err != nil {
			t.Fatal(err)
		}
	}

	var names []string
	begin, end := PathRange("/values")
	collect := func(ctx context.Context, _ kv.Reader, key string, v *testValue) error {
		names = append(names, v.Name)
		return nil
	}
	if err := AscendDB(ctx, db, begin, end, collect); err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "/values/a" || names[1] != "/values/b" {
		t.Fatalf("wanted [/values/a /values/b], got %v", names)
	}
}

func TestBackupImport(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	if err := SetDB(ctx, db, "/values/a", &testValue{Name: "a", Price: decimal.NewFromInt(95)}); err != nil {
		t.Fatal(err)
	}

	file := filepath.Join(t.TempDir(), "backup.gob")
	if err := BackupDB(ctx, db, file); err != nil {
		t.Fatal(err)
	}

	fp, err := os.Open(file)
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()

	restored := kvmemdb.New()
	if err := kv.WithReadWriter(ctx, restored, func(ctx context.Context, rw kv.ReadWriter) error {
		return Import(ctx, fp, rw)
	}); err != nil {
		t.Fatal(err)
	}

	v, err := GetDB[testValue](ctx, restored, "/values/a")
	if err != nil {
		t.Fatal(err)
	}
	if v.Name != "a" || !v.Price.Equal(decimal.NewFromInt(95)) {
		t.Fatalf("wanted a@95, got %s@%s", v.Name, v.Price)
	}
}

func TestClearImportDB(t *testing.T) {
	ctx := context.Background()

	src := kvmemdb.New()
	for i := 0; i < 7; i++ {
		if err := SetDB(ctx, src, fmt.Sprintf("/values/%d", i), &testValue{Name: fmt.Sprint(i)}); err != nil {
			t.Fatal(err)
		}
	}
	var backup bytes.Buffer
	if err := kv.WithReader(ctx, src, func(ctx context.Context, r kv.Reader) error {
		return Export(ctx, r, &backup)
	}); err != nil {
		t.Fatal(err)
	}

	dst := kvmemdb.New()
	for i := 0; i < 5; i++ {
		if err := SetDB(ctx, dst, fmt.Sprintf("/stale/%d", i), &testValue{}); err != nil {
			t.Fatal(err)
		}
	}
	if err := ClearDB(ctx, dst, 2); err != nil {
		t.Fatal(err)
	}
	if err := ImportDB(ctx, dst, &backup, 3); err != nil {
		t.Fatal(err)
	}

	var keys []string
	if err := kv.WithReader(ctx, dst, func(ctx context.Context, r kv.Reader) error {
		return Walk(ctx, r, func(key string, _ io.Reader) error {
			keys = append(keys, key)
			return nil
		})
	}); err != nil {
		t.Fatal(err)
	}
	if len(keys) != 7 || keys[0] != "/values/0" || keys[6] != "/values/6" {
		t.Fatalf("wanted only the seven imported keys, got %v", keys)
	}

	if err := ClearDB(ctx, dst, 0); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("wanted ErrInvalid for zero batch size, got %v", err)
	}
}
