package notification

import (
	"context"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
)

// EmailSender delivers one message to one recipient
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// Composer renders the email for an alert event
type Composer interface {
	Compose(event alert.Event, to string, at time.Time) (EmailMessage, error)

	// ComposeTest renders the configuration test email
	ComposeTest(to string, at time.Time) (EmailMessage, error)
}

// Dispatcher fans an alert out to the dashboard and email channels
type Dispatcher interface {
	// Dispatch never fails; channel problems are reported in the result
	Dispatch(ctx context.Context, scope usage.Scope, event alert.Event, limits alert.Limits) DispatchResult

	// SendTest sends a test email to one address
	SendTest(ctx context.Context, to string) error
}
