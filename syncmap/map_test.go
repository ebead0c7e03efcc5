// Copyright (c) 2023 BVK Chaitanya

package syncmap

import (
	"sync"
	"testing"
)

func TestLoadOrStore(t *testing.T) {
	var m Map[string, string]

	var wg sync.WaitGroup
	winners := make(chan string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(v string) {
			defer wg.Done()
			if _, loaded := m.LoadOrStore("fooex/1", v); !loaded {
				winners <- v
			}
		}(string(rune('a' + i)))
	}
	wg.Wait()
	close(winners)

	var ws []string
	for w := range winners {
		ws = append(ws, w)
	}
	if len(ws) != 1 {
		t.Fatalf("wanted exactly one winner, got %v", ws)
	}
	if v, ok := m.Load("fooex/1"); !ok || v != ws[0] {
		t.Fatalf("wanted %q, got %q", ws[0], v)
	}

	if m.CompareAndDelete("fooex/1", "not-the-winner") {
		t.Fatalf("wanted compare-and-delete to fail for a different value")
	}
	if !m.CompareAndDelete("fooex/1", ws[0]) {
		t.Fatalf("wanted compare-and-delete to succeed")
	}
	if m.Len() != 0 {
		t.Fatalf("wanted empty map, got %d entries", m.Len())
	}
}

func TestRange(t *testing.T) {
	var m Map[string, int]
	m.Store("a", 1)
	m.Store("b", 2)
	m.Store("c", 3)

	sum := 0
	for _, v := range m.Range {
		sum += v
	}
	if sum != 6 {
		t.Fatalf("wanted 6, got %d", sum)
	}
}
