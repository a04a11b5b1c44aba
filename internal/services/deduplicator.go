package services

import (
	"context"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/metrics"
)

// DefaultCooldown is the minimum time between two emails of the same kind
const DefaultCooldown = 24 * time.Hour

// AlertDeduplicator implements alert.Deduplicator on top of a CooldownStore
type AlertDeduplicator struct {
	store    alert.CooldownStore
	cooldown time.Duration
	logger   *logger.Logger
}

// NewAlertDeduplicator creates a deduplicator. A non-positive cooldown uses DefaultCooldown.
func NewAlertDeduplicator(store alert.CooldownStore, cooldown time.Duration, log *logger.Logger) *AlertDeduplicator {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &AlertDeduplicator{store: store, cooldown: cooldown, logger: log}
}

// CooldownKey is the store key for a scope and kind
func CooldownKey(scope usage.Scope, kind alert.Kind) string {
	return scope.Key() + ":" + string(kind)
}

// Admit reports whether an email may go out now and records the send.
// Store failures refuse admission.
func (d *AlertDeduplicator) Admit(ctx context.Context, scope usage.Scope, kind alert.Kind, now time.Time) bool {
	ok, err := d.store.Acquire(ctx, CooldownKey(scope, kind), now, d.cooldown)
	if err != nil {
		d.logger.WithFields(map[string]interface{}{
			"scope": scope.Key(),
			"kind":  kind,
		}).ErrorWithErr(err, "Cooldown store unavailable, suppressing email")
		metrics.RecordCooldownDecision(string(kind), "error")
		return false
	}

	if ok {
		metrics.RecordCooldownDecision(string(kind), "admitted")
	} else {
		metrics.RecordCooldownDecision(string(kind), "suppressed")
	}
	return ok
}

// MarkSent records a send at now regardless of the window
func (d *AlertDeduplicator) MarkSent(ctx context.Context, scope usage.Scope, kind alert.Kind, now time.Time) error {
	return d.store.Record(ctx, CooldownKey(scope, kind), now)
}

// Reset clears the cooldown of the given kinds, or all kinds
func (d *AlertDeduplicator) Reset(ctx context.Context, scope usage.Scope, kinds ...alert.Kind) error {
	if len(kinds) == 0 {
		kinds = alert.Kinds
	}
	keys := make([]string, len(kinds))
	for i, k := range kinds {
		keys[i] = CooldownKey(scope, k)
	}

	if err := d.store.Reset(ctx, keys...); err != nil {
		return err
	}

	d.logger.WithFields(map[string]interface{}{
		"scope": scope.Key(),
		"kinds": kinds,
	}).Info("Alert cooldowns reset")
	return nil
}

// Cooldown returns the configured window
func (d *AlertDeduplicator) Cooldown() time.Duration {
	return d.cooldown
}
