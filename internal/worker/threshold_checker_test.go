package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
)

type countingChecker struct {
	calls    atomic.Int32
	err      error
	deadline atomic.Bool
}

func (c *countingChecker) CheckAll(ctx context.Context) error {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); ok {
		c.deadline.Store(true)
	}
	return c.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func TestNewThresholdChecker(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{"descriptor", "@every 5m", false},
		{"standard", "*/10 * * * *", false},
		{"hourly", "@hourly", false},
		{"garbage", "every now and then", true},
		{"seconds field", "0 */5 * * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewThresholdChecker(&countingChecker{}, tt.spec, 0, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("NewThresholdChecker(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
		})
	}
}

func TestThresholdChecker_NextRun(t *testing.T) {
	c, err := NewThresholdChecker(&countingChecker{}, "0 * * * *", 0, testLogger())
	if err != nil {
		t.Fatalf("NewThresholdChecker() error = %v", err)
	}
	from := time.Date(2026, 3, 20, 10, 15, 0, 0, time.UTC)
	if got := c.NextRun(from); !got.Equal(time.Date(2026, 3, 20, 11, 0, 0, 0, time.UTC)) {
		t.Errorf("NextRun() = %v", got)
	}
}

func TestThresholdChecker_RunOnce(t *testing.T) {
	checker := &countingChecker{err: errors.New("list users: connection reset")}
	c, err := NewThresholdChecker(checker, "@every 5m", time.Minute, testLogger())
	if err != nil {
		t.Fatalf("NewThresholdChecker() error = %v", err)
	}

	c.RunOnce(context.Background())
	if checker.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", checker.calls.Load())
	}
	if !checker.deadline.Load() {
		t.Error("run should be bounded by the timeout")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.RunOnce(ctx)
	if checker.calls.Load() != 1 {
		t.Errorf("cancelled run should not call CheckAll, calls = %d", checker.calls.Load())
	}
}

func TestThresholdChecker_Start(t *testing.T) {
	checker := &countingChecker{}
	c, err := NewThresholdChecker(checker, "@every 1s", 0, testLogger())
	if err != nil {
		t.Fatalf("NewThresholdChecker() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	for checker.calls.Load() == 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatal("scheduled check never ran")
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
