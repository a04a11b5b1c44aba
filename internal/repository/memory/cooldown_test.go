package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCooldownStore_Acquire(t *testing.T) {
	store := NewCooldownStore()
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	tests := []struct {
		name string
		key  string
		at   time.Time
		want bool
	}{
		{name: "empty store admits", key: "a", at: t0, want: true},
		{name: "inside window refuses", key: "a", at: t0.Add(23 * time.Hour), want: false},
		{name: "other key admits", key: "b", at: t0.Add(time.Hour), want: true},
		{name: "window elapsed admits", key: "a", at: t0.Add(window), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Acquire(ctx, tt.key, tt.at, window)
			if err != nil {
				t.Fatalf("Acquire() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Acquire(%s, %v) = %v, want %v", tt.key, tt.at, got, tt.want)
			}
		})
	}
}

func TestCooldownStore_AcquireIsAtomic(t *testing.T) {
	store := NewCooldownStore()
	ctx := context.Background()
	now := time.Now()

	var admitted int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := store.Acquire(ctx, "user:1:units", now, time.Hour)
			if ok {
				atomic.AddInt32(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	if admitted != 1 {
		t.Errorf("concurrent Acquire admitted %d callers, want 1", admitted)
	}
}

func TestCooldownStore_RecordAndReset(t *testing.T) {
	store := NewCooldownStore()
	ctx := context.Background()
	now := time.Now()

	_ = store.Record(ctx, "a", now)
	_ = store.Record(ctx, "b", now)

	if last, ok := store.LastSent("a"); !ok || !last.Equal(now) {
		t.Errorf("LastSent(a) = %v, %v", last, ok)
	}

	_ = store.Reset(ctx, "a")
	if _, ok := store.LastSent("a"); ok {
		t.Error("a still recorded after Reset(a)")
	}
	if _, ok := store.LastSent("b"); !ok {
		t.Error("b dropped by Reset(a)")
	}

	_ = store.Reset(ctx)
	if _, ok := store.LastSent("b"); ok {
		t.Error("b still recorded after Reset()")
	}
}
