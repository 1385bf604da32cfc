// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestLRU_BasicOperations(t *testing.T) {
	c := NewLRU[string, int](3, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		if got, ok := c.Get(key); !ok || got != want {
			t.Errorf("Get(%q) = %d, %v", key, got, ok)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}

	c.Add("a", 10)
	if got, _ := c.Get("a"); got != 10 {
		t.Errorf("Get(a) after update = %d", got)
	}
	if !c.Remove("a") || c.Remove("a") {
		t.Error("Remove() should report presence exactly once")
	}
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[string, int](3, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	// Touch a so b becomes least recently used.
	c.Get("a")
	c.Add("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("expected %q to be present", key)
		}
	}
}

func TestLRU_TTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRU[string, string](10, time.Minute)
	c.SetTimeFunc(func() time.Time { return now })

	c.Add("k1", "v1")
	c.Add("k2", "v2")

	now = now.Add(30 * time.Second)
	if _, ok := c.Get("k1"); !ok {
		t.Fatal("k1 expired early")
	}

	now = now.Add(31 * time.Second)
	if _, ok := c.Get("k1"); ok {
		t.Error("k1 should have expired")
	}
	if n := c.CleanupExpired(); n != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", n)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after cleanup", c.Len())
	}

	hits, misses, _ := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() hits=%d misses=%d", hits, misses)
	}
}

func TestLRU_Defaults(t *testing.T) {
	c := NewLRU[int, int](0, 0)
	if c.capacity != defaultCapacity || c.ttl != defaultTTL {
		t.Errorf("defaults = %d, %v", c.capacity, c.ttl)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[string, int](100, time.Minute)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				key := strconv.Itoa(g*1000 + i%150)
				c.Add(key, i)
				c.Get(key)
			}
		}()
	}
	wg.Wait()
	if c.Len() > 100 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}

func TestDedup(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := NewDedup(2, time.Minute)
	d.SetTimeFunc(func() time.Time { return now })

	if d.Seen("e1") {
		t.Fatal("e1 seen before Record")
	}
	d.Record("e1")
	if !d.Seen("e1") {
		t.Error("e1 not seen after Record")
	}

	d.Forget("e1")
	if d.Seen("e1") {
		t.Error("e1 seen after Forget")
	}

	d.Record("e2")
	d.Record("e3")
	d.Record("e4")
	if d.Len() != 2 || d.Seen("e2") {
		t.Errorf("capacity not enforced: len=%d", d.Len())
	}

	now = now.Add(2 * time.Minute)
	if d.Seen("e4") {
		t.Error("e4 should have expired")
	}
}
