package cmap

import (
	"fmt"
	"sync"
	"testing"
)

func TestSetGet(t *testing.T) {
	m := New[string, int]()

	m.Set("a", 1)
	m.Set("b", 2)

	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) should report absence")
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d; want 2", m.Count())
	}
}

func TestSetIfAbsent(t *testing.T) {
	m := New[string, string]()

	if !m.SetIfAbsent("k", "first") {
		t.Error("first SetIfAbsent should succeed")
	}
	if m.SetIfAbsent("k", "second") {
		t.Error("second SetIfAbsent should fail")
	}
	if v, _ := m.Get("k"); v != "first" {
		t.Errorf("value = %q; want %q", v, "first")
	}
}

func TestPop(t *testing.T) {
	m := New[string, int]()
	m.Set("k", 42)

	v, ok := m.Pop("k")
	if !ok || v != 42 {
		t.Errorf("Pop = %d, %v; want 42, true", v, ok)
	}
	if _, ok := m.Pop("k"); ok {
		t.Error("second Pop should report absence")
	}
}

func TestInvalidShardCountFallsBack(t *testing.T) {
	for _, n := range []int{-1, 0, 3, 17} {
		m := NewWithShards[string, int](n)
		if len(m.shards) != DefaultShardCount {
			t.Errorf("NewWithShards(%d): %d shards; want %d", n, len(m.shards), DefaultShardCount)
		}
	}
}

func TestRangeStopsEarly(t *testing.T) {
	m := New[int, int]()
	for i := 0; i < 100; i++ {
		m.Set(i, i)
	}

	seen := 0
	m.Range(func(_, _ int) bool {
		seen++
		return seen < 10
	})
	if seen != 10 {
		t.Errorf("visited %d items; want 10", seen)
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New[string, int]()
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("g%d-k%d", g, i)
				m.Set(key, i)
				if v, ok := m.Get(key); !ok || v != i {
					t.Errorf("Get(%s) = %d, %v; want %d, true", key, v, ok, i)
				}
			}
		}(g)
	}
	wg.Wait()

	if m.Count() != 800 {
		t.Errorf("Count() = %d; want 800", m.Count())
	}
}
