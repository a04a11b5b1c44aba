package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
	"github.com/ThimethZ03/utility-billing-system2/internal/repository/memory"
)

type failingCooldownStore struct{}

func (failingCooldownStore) Acquire(ctx context.Context, key string, now time.Time, window time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}

func (failingCooldownStore) Record(ctx context.Context, key string, at time.Time) error {
	return errors.New("connection refused")
}

func (failingCooldownStore) Reset(ctx context.Context, keys ...string) error {
	return errors.New("connection refused")
}

func newTestDeduplicator(store alert.CooldownStore) *AlertDeduplicator {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	return NewAlertDeduplicator(store, 24*time.Hour, log)
}

func TestAlertDeduplicator_Admit(t *testing.T) {
	dedup := newTestDeduplicator(memory.NewCooldownStore())
	scope := usage.Scope{UserID: 1}
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	steps := []struct {
		name string
		kind alert.Kind
		at   time.Time
		want bool
	}{
		{name: "first send", kind: alert.KindUnits, at: t0, want: true},
		{name: "inside cooldown", kind: alert.KindUnits, at: t0.Add(time.Hour), want: false},
		{name: "other kind is independent", kind: alert.KindAmount, at: t0.Add(time.Hour), want: true},
		{name: "exactly at the window", kind: alert.KindUnits, at: t0.Add(24 * time.Hour), want: true},
		{name: "inside the renewed window", kind: alert.KindUnits, at: t0.Add(25 * time.Hour), want: false},
	}

	for _, step := range steps {
		if got := dedup.Admit(ctx, scope, step.kind, step.at); got != step.want {
			t.Errorf("%s: Admit(%s, %v) = %v, want %v", step.name, step.kind, step.at, got, step.want)
		}
	}
}

func TestAlertDeduplicator_AdmitSequence(t *testing.T) {
	dedup := newTestDeduplicator(memory.NewCooldownStore())
	scope := usage.Scope{UserID: 1}
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if !dedup.Admit(ctx, scope, alert.KindUnits, t0) {
		t.Error("Admit(t) = false, want true")
	}
	if dedup.Admit(ctx, scope, alert.KindUnits, t0.Add(time.Hour)) {
		t.Error("Admit(t+1h) = true, want false")
	}
	if !dedup.Admit(ctx, scope, alert.KindUnits, t0.Add(25*time.Hour)) {
		t.Error("Admit(t+25h) = false, want true")
	}
}

func TestAlertDeduplicator_ScopesAreIndependent(t *testing.T) {
	dedup := newTestDeduplicator(memory.NewCooldownStore())
	ctx := context.Background()
	now := time.Now()

	if !dedup.Admit(ctx, usage.Scope{UserID: 1}, alert.KindUnits, now) {
		t.Error("user 1 should be admitted")
	}
	if !dedup.Admit(ctx, usage.Scope{UserID: 2}, alert.KindUnits, now) {
		t.Error("user 2 should be admitted")
	}
	if !dedup.Admit(ctx, usage.Scope{UserID: 1, BranchID: "kandy"}, alert.KindUnits, now) {
		t.Error("branch scope should be admitted")
	}
}

func TestAlertDeduplicator_MarkSentAndReset(t *testing.T) {
	store := memory.NewCooldownStore()
	dedup := newTestDeduplicator(store)
	scope := usage.Scope{UserID: 7}
	ctx := context.Background()
	now := time.Now()

	if err := dedup.MarkSent(ctx, scope, alert.KindAmount, now); err != nil {
		t.Fatalf("MarkSent() error = %v", err)
	}
	if dedup.Admit(ctx, scope, alert.KindAmount, now.Add(time.Minute)) {
		t.Error("Admit() after MarkSent = true, want false")
	}

	if err := dedup.Reset(ctx, scope); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if _, ok := store.LastSent(CooldownKey(scope, alert.KindAmount)); ok {
		t.Error("cooldown still recorded after Reset()")
	}
	if !dedup.Admit(ctx, scope, alert.KindAmount, now.Add(time.Minute)) {
		t.Error("Admit() after Reset = false, want true")
	}
}

func TestAlertDeduplicator_StoreFailureSuppresses(t *testing.T) {
	dedup := newTestDeduplicator(failingCooldownStore{})

	if dedup.Admit(context.Background(), usage.Scope{UserID: 1}, alert.KindUnits, time.Now()) {
		t.Error("Admit() with failing store = true, want false")
	}
}

func TestNewAlertDeduplicator_DefaultCooldown(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	dedup := NewAlertDeduplicator(memory.NewCooldownStore(), 0, log)
	if dedup.Cooldown() != DefaultCooldown {
		t.Errorf("Cooldown() = %v, want %v", dedup.Cooldown(), DefaultCooldown)
	}
}
