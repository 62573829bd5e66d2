package dns

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := newResolveCache(4)
	now := time.Now()

	c.set("alice", ResolvedAgent{Name: "alice"}, now.Add(time.Minute))
	got, ok := c.get("alice", now)
	if !ok || got.Name != "alice" {
		t.Fatalf("get = %+v, %v", got, ok)
	}
	if _, ok := c.get("bob", now); ok {
		t.Fatal("unexpected hit for missing entry")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := newResolveCache(4)
	now := time.Now()

	c.set("alice", ResolvedAgent{Name: "alice"}, now.Add(time.Second))
	if _, ok := c.get("alice", now.Add(2*time.Second)); ok {
		t.Fatal("expired entry should miss")
	}
	if c.len() != 0 {
		t.Fatalf("expired entry should be evicted, len = %d", c.len())
	}
}

func TestCacheOverwrite(t *testing.T) {
	c := newResolveCache(4)
	now := time.Now()

	c.set("alice", ResolvedAgent{Name: "alice", Endpoint: "old"}, now.Add(time.Minute))
	c.set("alice", ResolvedAgent{Name: "alice", Endpoint: "new"}, now.Add(time.Hour))

	got, ok := c.get("alice", now)
	if !ok || got.Endpoint != "new" {
		t.Fatalf("get = %+v, %v", got, ok)
	}
	if c.len() != 1 {
		t.Fatalf("overwrite should keep one entry, len = %d", c.len())
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	c := newResolveCache(2)
	now := time.Now()
	exp := now.Add(time.Minute)

	c.set("a1", ResolvedAgent{Name: "a1"}, exp)
	c.set("a2", ResolvedAgent{Name: "a2"}, exp)
	c.set("a3", ResolvedAgent{Name: "a3"}, exp)

	if _, ok := c.get("a1", now); ok {
		t.Fatal("oldest entry should have been evicted")
	}
	if _, ok := c.get("a3", now); !ok {
		t.Fatal("newest entry should remain")
	}
	if c.len() != 2 {
		t.Fatalf("len = %d, want 2", c.len())
	}
}

func TestCacheClear(t *testing.T) {
	c := newResolveCache(4)
	exp := time.Now().Add(time.Minute)
	c.set("a1", ResolvedAgent{Name: "a1"}, exp)
	c.set("a2", ResolvedAgent{Name: "a2"}, exp)

	c.clear()
	if c.len() != 0 {
		t.Fatalf("len after clear = %d", c.len())
	}
}
