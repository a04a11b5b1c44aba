package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

// newTestStore connects to REDIS_ADDR and skips the test when it is unset
func newTestStore(t *testing.T) *CooldownStore {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := NewClient(addr, os.Getenv("REDIS_PASSWORD"), 0)
	t.Cleanup(func() { client.Close() })

	store := NewCooldownStore(client)
	store.prefix = fmt.Sprintf("test:%d:%s", time.Now().UnixNano(), KeyPrefix)
	if err := store.Ping(context.Background()); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Reset(context.Background()) })
	return store
}

func TestCooldownStore_Acquire(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	t0 := time.Now()
	window := 24 * time.Hour

	steps := []struct {
		at   time.Time
		want bool
	}{
		{at: t0, want: true},
		{at: t0.Add(time.Hour), want: false},
		{at: t0.Add(25 * time.Hour), want: true},
	}

	for i, step := range steps {
		got, err := store.Acquire(ctx, "user:1:units", step.at, window)
		if err != nil {
			t.Fatalf("step %d: Acquire() error = %v", i, err)
		}
		if got != step.want {
			t.Errorf("step %d: Acquire() = %v, want %v", i, got, step.want)
		}
	}
}

func TestCooldownStore_RecordAndReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.Record(ctx, "user:2:amount", now); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	ok, err := store.Acquire(ctx, "user:2:amount", now.Add(time.Minute), time.Hour)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if ok {
		t.Error("Acquire() after Record = true, want false")
	}

	if err := store.Reset(ctx, "user:2:amount"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	ok, err = store.Acquire(ctx, "user:2:amount", now.Add(time.Minute), time.Hour)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !ok {
		t.Error("Acquire() after Reset = false, want true")
	}
}
