package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowConsumesCapacity(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("k", 3, 0) {
			t.Fatalf("allow %d: expected token", i)
		}
	}
	if l.Allow("k", 3, 0) {
		t.Fatalf("bucket should be empty")
	}
}

func TestAllowKeysIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatalf("expected token for a")
	}
	if l.Allow("a", 1, 0) {
		t.Fatalf("a should be exhausted")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatalf("b has its own bucket")
	}
}

func TestAllowRefills(t *testing.T) {
	l := New()
	if !l.Allow("k", 1, 1000) {
		t.Fatalf("expected initial token")
	}
	if l.Allow("k", 1, 1000) {
		t.Fatalf("expected empty bucket")
	}
	time.Sleep(5 * time.Millisecond)
	if !l.Allow("k", 1, 1000) {
		t.Fatalf("expected refill after sleep")
	}
}

func TestWaitReturnsOnceRefilled(t *testing.T) {
	l := New()
	if !l.Allow("k", 1, 20) {
		t.Fatalf("expected initial token")
	}
	start := time.Now()
	if err := l.Wait(context.Background(), "k", 1, 20); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("wait took too long")
	}
}

func TestWaitHonorsContext(t *testing.T) {
	l := New()
	if !l.Allow("k", 1, 0) {
		t.Fatalf("expected initial token")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "k", 1, 0); err == nil {
		t.Fatalf("expected context error with no refill")
	}
}
