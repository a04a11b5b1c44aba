package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Checker runs a threshold check for every account
type Checker interface {
	CheckAll(ctx context.Context) error
}

// ThresholdChecker runs periodic threshold checks on a cron schedule.
// A run that is still going when the next one is due causes that one to be skipped.
type ThresholdChecker struct {
	checker  Checker
	schedule cron.Schedule
	spec     string
	timeout  time.Duration
	logger   *logger.Logger
}

// NewThresholdChecker validates spec and creates a checker. timeout bounds a
// single run; zero means no bound.
func NewThresholdChecker(checker Checker, spec string, timeout time.Duration, log *logger.Logger) (*ThresholdChecker, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule: %w", err)
	}
	return &ThresholdChecker{
		checker:  checker,
		schedule: schedule,
		spec:     spec,
		timeout:  timeout,
		logger:   log,
	}, nil
}

// NextRun returns when the schedule fires after t
func (c *ThresholdChecker) NextRun(t time.Time) time.Time {
	return c.schedule.Next(t)
}

// Start runs the schedule until ctx is cancelled, then waits for a running
// check to finish
func (c *ThresholdChecker) Start(ctx context.Context) {
	cl := cronLogger{c.logger}
	scheduler := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	scheduler.Schedule(c.schedule, cron.FuncJob(func() { c.RunOnce(ctx) }))

	c.logger.WithFields(map[string]interface{}{
		"schedule": c.spec,
		"next_run": c.NextRun(time.Now()).Format(time.RFC3339),
	}).Info("Starting threshold checker")
	scheduler.Start()

	<-ctx.Done()
	<-scheduler.Stop().Done()
	c.logger.Info("Threshold checker stopped")
}

// RunOnce checks every account once
func (c *ThresholdChecker) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := c.checker.CheckAll(ctx); err != nil {
		c.logger.ErrorWithErr(err, "Scheduled threshold check failed")
		return
	}
	c.logger.WithFields(map[string]interface{}{
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Scheduled threshold check completed")
}

// cronLogger adapts the application logger to cron.Logger
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(pairs(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithFields(pairs(keysAndValues)).ErrorWithErr(err, "cron: "+msg)
}

func pairs(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
