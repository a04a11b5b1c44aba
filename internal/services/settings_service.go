package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/errors"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
)

// SettingsService implements alert.SettingsService
type SettingsService struct {
	repo   alert.SettingsRepository
	logger *logger.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(repo alert.SettingsRepository, log *logger.Logger) *SettingsService {
	return &SettingsService{repo: repo, logger: log}
}

// Get returns the user's settings, storing the defaults on first access
func (s *SettingsService) Get(ctx context.Context, userID int64) (*alert.Settings, error) {
	existing, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	settings := &alert.Settings{
		UserID:    userID,
		Limits:    alert.DefaultLimits(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Upsert(ctx, settings); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create default alert settings")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
	}).Info("Default alert settings created")

	return settings, nil
}

// Update applies the non-nil fields of update
func (s *SettingsService) Update(ctx context.Context, userID int64, update alert.LimitsUpdate) (*alert.Settings, error) {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	limits := update.Apply(settings.Limits)
	if err := validateLimits(limits); err != nil {
		return nil, err
	}
	limits.EmailRecipients = limits.Recipients()

	settings.Limits = limits
	settings.UpdatedAt = time.Now().UTC()
	if err := s.repo.Upsert(ctx, settings); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update alert settings")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":      userID,
		"email_alerts": limits.EmailAlertsEnabled,
		"recipients":   len(limits.EmailRecipients),
		"dashboard":    limits.DashboardAlertsEnabled,
		"max_units":    limits.MaxMonthlyUnits,
		"max_amount":   limits.MaxMonthlyAmount,
	}).Info("Alert settings updated")

	return settings, nil
}

// Limits returns the saved limits or the defaults, without storing anything
func (s *SettingsService) Limits(ctx context.Context, userID int64) (alert.Limits, error) {
	existing, err := s.repo.Get(ctx, userID)
	if err != nil {
		return alert.DefaultLimits(), err
	}
	if existing == nil {
		return alert.DefaultLimits(), nil
	}
	return existing.Limits, nil
}

// UserIDs lists users with saved settings
func (s *SettingsService) UserIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListUserIDs(ctx)
}

func validateLimits(l alert.Limits) error {
	if l.MaxMonthlyAmount < 0 {
		return errors.BadRequest(fmt.Sprintf("maxMonthlyAmount must not be negative, got %v", l.MaxMonthlyAmount))
	}
	if l.MaxMonthlyUnits < 0 {
		return errors.BadRequest(fmt.Sprintf("maxMonthlyUnits must not be negative, got %v", l.MaxMonthlyUnits))
	}
	return nil
}
