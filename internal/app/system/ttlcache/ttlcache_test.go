package ttlcache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New[int](10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("hit on empty cache")
	}
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
}

func TestExpiry(t *testing.T) {
	c := New[string](10, 10*time.Millisecond)
	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry still served")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after expired read, want 0", c.Len())
	}
}

func TestInvalidate(t *testing.T) {
	c := New[int](10, time.Minute)
	c.Set("k", 7)
	c.Invalidate("k")
	if _, ok := c.Get("k"); ok {
		t.Error("invalidated entry still served")
	}
}

func TestCapacityEviction(t *testing.T) {
	c := New[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	// "a" was closest to expiry and should be the evicted one.
	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry survived eviction")
	}
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Error("newest entry missing after eviction")
	}
}

func TestOverwriteDoesNotEvict(t *testing.T) {
	c := New[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10)

	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("overwrite lost: a = %d", v)
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("sibling evicted on overwrite")
	}
}
