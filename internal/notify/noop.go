package notify

import (
	"context"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/notification"
)

// NoopSender is used when no transport is configured. Every send fails
// with ErrTransportNotConfigured so dispatch results show the gap.
type NoopSender struct{}

// NewNoopSender creates a no-op sender
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send always returns notification.ErrTransportNotConfigured
func (s *NoopSender) Send(ctx context.Context, msg notification.EmailMessage) error {
	return notification.ErrTransportNotConfigured
}
