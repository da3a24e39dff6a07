package cache

import (
	"errors"
	"testing"
	"time"
)

func TestCache_Expires(t *testing.T) {
	c := New[int](time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", 7)
	if v, ok := c.Get("k"); !ok || v != 7 {
		t.Fatalf("expected hit 7, got %v %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestCache_GetOrLoad(t *testing.T) {
	c := New[[]string](time.Minute)
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"a"}, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := c.GetOrLoad("cats", load); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 load, got %d", calls)
	}

	c.Delete("cats")
	failing := func() ([]string, error) { return nil, errors.New("down") }
	if _, err := c.GetOrLoad("cats", failing); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := c.Get("cats"); ok {
		t.Fatal("errors must not be cached")
	}
}
