package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/notification"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/metrics"
)

// DispatcherConfig bounds the email fan-out
type DispatcherConfig struct {
	// SendTimeout bounds each recipient's send
	SendTimeout time.Duration
	// DispatchTimeout bounds the whole fan-out; pending recipients are then reported failed
	DispatchTimeout time.Duration
	// MaxConcurrency caps parallel sends
	MaxConcurrency int
}

// DefaultDispatcherConfig returns the default bounds
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		SendTimeout:     10 * time.Second,
		DispatchTimeout: 15 * time.Second,
		MaxConcurrency:  8,
	}
}

// NotificationDispatcher implements notification.Dispatcher
type NotificationDispatcher struct {
	sender   notification.EmailSender
	composer notification.Composer
	dedup    alert.Deduplicator
	feed     alert.FeedRepository
	logs     notification.LogRepository
	config   DispatcherConfig
	now      func() time.Time
	logger   *logger.Logger
}

// DispatcherOption configures the dispatcher
type DispatcherOption func(*NotificationDispatcher)

// WithDeliveryLog records every delivery attempt in repo
func WithDeliveryLog(repo notification.LogRepository) DispatcherOption {
	return func(d *NotificationDispatcher) {
		d.logs = repo
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *NotificationDispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// NewNotificationDispatcher creates a dispatcher. feed may be nil when no
// dashboard store is wired.
func NewNotificationDispatcher(
	sender notification.EmailSender,
	composer notification.Composer,
	dedup alert.Deduplicator,
	feed alert.FeedRepository,
	config DispatcherConfig,
	log *logger.Logger,
	opts ...DispatcherOption,
) *NotificationDispatcher {
	defaults := DefaultDispatcherConfig()
	if config.SendTimeout <= 0 {
		config.SendTimeout = defaults.SendTimeout
	}
	if config.DispatchTimeout <= 0 {
		config.DispatchTimeout = defaults.DispatchTimeout
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}

	d := &NotificationDispatcher{
		sender:   sender,
		composer: composer,
		dedup:    dedup,
		feed:     feed,
		config:   config,
		now:      time.Now,
		logger:   log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch publishes event to the dashboard and, past the cooldown gate, emails
// every recipient. Channel failures only show up in the result.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, scope usage.Scope, event alert.Event, limits alert.Limits) notification.DispatchResult {
	now := d.now()
	result := notification.DispatchResult{PerRecipientErrors: []notification.RecipientError{}}

	if limits.DashboardAlertsEnabled {
		result.DashboardPublished = d.publish(ctx, scope, event, now)
	}

	// Projected alerts stay on the dashboard.
	if event.Projected {
		return result
	}

	recipients := limits.Recipients()
	if !limits.EmailAlertsEnabled || len(recipients) == 0 {
		return result
	}

	if !d.dedup.Admit(ctx, scope, event.Kind, now) {
		result.Suppressed = true
		d.logger.WithFields(map[string]interface{}{
			"scope": scope.Key(),
			"kind":  event.Kind,
		}).Debug("Email suppressed by cooldown")
		return result
	}

	d.fanOut(ctx, scope, event, recipients, now, &result)

	d.logger.WithFields(map[string]interface{}{
		"scope":     scope.Key(),
		"kind":      event.Kind,
		"attempted": result.Attempted,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	}).Info("Alert emails dispatched")

	return result
}

// SendTest sends the configuration test email to one address
func (d *NotificationDispatcher) SendTest(ctx context.Context, to string) error {
	msg, err := d.composer.ComposeTest(to, d.now())
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.config.SendTimeout)
	defer cancel()

	if err := d.sender.Send(sendCtx, msg); err != nil {
		metrics.RecordNotification(string(notification.ChannelEmail), string(notification.StatusFailed))
		return err
	}
	metrics.RecordNotification(string(notification.ChannelEmail), string(notification.StatusSent))
	return nil
}

func (d *NotificationDispatcher) publish(ctx context.Context, scope usage.Scope, event alert.Event, now time.Time) bool {
	if d.feed == nil {
		return false
	}

	period := event.Period
	if period == "" {
		period = now.Format("2006-01")
	}
	item := &alert.FeedItem{
		UserID:     scope.UserID,
		BranchID:   scope.BranchID,
		Kind:       event.Kind,
		Severity:   event.Severity,
		Current:    event.Current,
		Limit:      event.Limit,
		Percentage: event.PercentageOfLimit,
		Message:    event.Message,
		Projected:  event.Projected,
		Period:     period,
		Status:     alert.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := d.feed.Upsert(ctx, item); err != nil {
		d.logger.WithFields(map[string]interface{}{
			"scope": scope.Key(),
			"kind":  event.Kind,
		}).ErrorWithErr(err, "Failed to publish dashboard alert")
		metrics.RecordNotification(string(notification.ChannelDashboard), string(notification.StatusFailed))
		return false
	}
	metrics.RecordNotification(string(notification.ChannelDashboard), string(notification.StatusSent))
	return true
}

// fanOut sends to every recipient concurrently and waits for all of them or
// DispatchTimeout, whichever comes first. Sends are detached from ctx
// cancellation so an abandoned caller does not cut a batch short.
func (d *NotificationDispatcher) fanOut(ctx context.Context, scope usage.Scope, event alert.Event, recipients []string, now time.Time, result *notification.DispatchResult) {
	start := time.Now()
	sendCtx := context.WithoutCancel(ctx)

	var mu sync.Mutex
	outcomes := make([]error, len(recipients))
	completed := make([]bool, len(recipients))

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		g := new(errgroup.Group)
		g.SetLimit(d.config.MaxConcurrency)
		for i, to := range recipients {
			g.Go(func() error {
				err := d.sendOne(sendCtx, event, to, now)
				mu.Lock()
				outcomes[i] = err
				completed[i] = true
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}()

	timer := time.NewTimer(d.config.DispatchTimeout)
	defer timer.Stop()
	select {
	case <-finished:
	case <-timer.C:
		d.logger.WithFields(map[string]interface{}{
			"scope":   scope.Key(),
			"kind":    event.Kind,
			"timeout": d.config.DispatchTimeout.String(),
		}).Warn("Dispatch timed out, reporting pending recipients as failed")
	}

	mu.Lock()
	logs := make([]*notification.Log, 0, len(recipients))
	for i, to := range recipients {
		err := outcomes[i]
		if !completed[i] {
			err = notification.ErrDispatchTimeout
		}

		result.Attempted++
		entry := &notification.Log{
			ID:        uuid.New().String(),
			UserID:    scope.UserID,
			BranchID:  scope.BranchID,
			Channel:   notification.ChannelEmail,
			Recipient: to,
			AlertKind: string(event.Kind),
			Status:    notification.StatusSent,
			CreatedAt: now,
		}
		if err != nil {
			result.Failed++
			result.PerRecipientErrors = append(result.PerRecipientErrors, notification.RecipientError{
				Recipient: to,
				Error:     err.Error(),
			})
			entry.Status = notification.StatusFailed
			entry.Error = err.Error()
		} else {
			result.Succeeded++
		}
		metrics.RecordNotification(string(notification.ChannelEmail), string(entry.Status))
		logs = append(logs, entry)
	}
	mu.Unlock()

	metrics.RecordDispatchDuration(time.Since(start))
	d.recordLogs(sendCtx, logs)
}

func (d *NotificationDispatcher) sendOne(ctx context.Context, event alert.Event, to string, now time.Time) error {
	msg, err := d.composer.Compose(event, to, now)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.SendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg); err != nil {
		if errors.Is(err, notification.ErrTransportNotConfigured) {
			return err
		}
		d.logger.WithFields(map[string]interface{}{
			"recipient": to,
			"kind":      event.Kind,
		}).ErrorWithErr(err, "Failed to send alert email")
		return err
	}
	return nil
}

func (d *NotificationDispatcher) recordLogs(ctx context.Context, logs []*notification.Log) {
	if d.logs == nil {
		return
	}
	for _, l := range logs {
		if err := d.logs.Create(ctx, l); err != nil {
			d.logger.ErrorWithErr(err, "Failed to record delivery log")
		}
	}
}
