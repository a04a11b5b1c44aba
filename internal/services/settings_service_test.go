package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
	"github.com/ThimethZ03/utility-billing-system2/internal/testutil"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool       { return &v }

func TestSettingsService_GetCreatesDefaults(t *testing.T) {
	repo := testutil.NewMockSettingsRepository()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	service := NewSettingsService(repo, log)
	ctx := context.Background()

	got, err := service.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Limits.MaxMonthlyAmount != alert.DefaultMaxMonthlyAmount || got.Limits.MaxMonthlyUnits != alert.DefaultMaxMonthlyUnits {
		t.Errorf("limits = %+v, want defaults", got.Limits)
	}
	if got.Limits.EmailAlertsEnabled || !got.Limits.DashboardAlertsEnabled {
		t.Errorf("channel defaults = %+v", got.Limits)
	}
	if _, ok := repo.Settings[1]; !ok {
		t.Error("defaults were not stored")
	}
}

func TestSettingsService_Limits(t *testing.T) {
	repo := testutil.NewMockSettingsRepository()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	service := NewSettingsService(repo, log)

	limits, err := service.Limits(context.Background(), 5)
	if err != nil {
		t.Fatalf("Limits() error = %v", err)
	}
	if limits.MaxMonthlyUnits != alert.DefaultMaxMonthlyUnits {
		t.Errorf("Limits() = %+v, want defaults", limits)
	}
	if len(repo.Settings) != 0 {
		t.Error("Limits() should not store anything")
	}

	repo.GetError = errors.New("db down")
	limits, err = service.Limits(context.Background(), 5)
	if err == nil {
		t.Error("Limits() error = nil, want failure")
	}
	if limits.MaxMonthlyAmount != alert.DefaultMaxMonthlyAmount {
		t.Errorf("Limits() on error = %+v, want defaults", limits)
	}
}

func TestSettingsService_Update(t *testing.T) {
	tests := []struct {
		name    string
		update  alert.LimitsUpdate
		check   func(t *testing.T, l alert.Limits)
		wantErr bool
	}{
		{
			name:   "partial update keeps other fields",
			update: alert.LimitsUpdate{MaxMonthlyUnits: floatPtr(900)},
			check: func(t *testing.T, l alert.Limits) {
				if l.MaxMonthlyUnits != 900 || l.MaxMonthlyAmount != alert.DefaultMaxMonthlyAmount {
					t.Errorf("limits = %+v", l)
				}
			},
		},
		{
			name: "recipients are trimmed and deduplicated",
			update: alert.LimitsUpdate{
				EmailRecipients:    []string{" ops@example.com", "OPS@example.com", "", "cfo@example.com"},
				EmailAlertsEnabled: boolPtr(true),
			},
			check: func(t *testing.T, l alert.Limits) {
				if len(l.EmailRecipients) != 2 || l.EmailRecipients[0] != "ops@example.com" {
					t.Errorf("EmailRecipients = %v", l.EmailRecipients)
				}
				if !l.EmailAlertsEnabled {
					t.Error("EmailAlertsEnabled = false")
				}
			},
		},
		{
			name:   "zero limit is allowed",
			update: alert.LimitsUpdate{MaxMonthlyAmount: floatPtr(0)},
			check: func(t *testing.T, l alert.Limits) {
				if l.MaxMonthlyAmount != 0 {
					t.Errorf("MaxMonthlyAmount = %v, want 0", l.MaxMonthlyAmount)
				}
			},
		},
		{
			name:    "negative limit is rejected",
			update:  alert.LimitsUpdate{MaxMonthlyUnits: floatPtr(-1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockSettingsRepository()
			log := logger.New(logger.Config{Level: "error", Format: "json"})
			service := NewSettingsService(repo, log)

			got, err := service.Update(context.Background(), 1, tt.update)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Update() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			tt.check(t, got.Limits)

			stored, _ := repo.Get(context.Background(), 1)
			tt.check(t, stored.Limits)
		})
	}
}
