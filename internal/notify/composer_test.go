package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
)

func TestAlertComposer_Compose(t *testing.T) {
	composer, err := NewAlertComposer("", time.UTC)
	if err != nil {
		t.Fatalf("NewAlertComposer() error = %v", err)
	}
	at := time.Date(2026, 3, 20, 14, 5, 9, 0, time.UTC)

	tests := []struct {
		name        string
		event       alert.Event
		wantSubject string
		wantMessage string
		wantCurrent string
	}{
		{
			name: "units",
			event: alert.Event{
				Kind: alert.KindUnits, Severity: alert.SeverityWarning,
				Current: 1600, Limit: 1500, PercentageOfLimit: 107,
			},
			wantSubject: "⚠️ Monthly Units Exceeded - Smart Utilities",
			wantMessage: "Your utility consumption (1,600 units) has exceeded the limit of 1,500 units (107%).",
			wantCurrent: "1,600",
		},
		{
			name: "amount",
			event: alert.Event{
				Kind: alert.KindAmount, Severity: alert.SeverityDanger,
				Current: 90000, Limit: 80000, PercentageOfLimit: 113,
			},
			wantSubject: "⚠️ Monthly Budget Exceeded - Smart Utilities",
			wantMessage: "Your monthly spending (Rs. 90,000) has exceeded the budget of Rs. 80,000 (113%).",
			wantCurrent: "90,000",
		},
		{
			name: "projected",
			event: alert.Event{
				Kind: alert.KindAmount, Severity: alert.SeverityDanger, Projected: true,
				Current: 84000.5, Limit: 80000, PercentageOfLimit: 105,
			},
			wantSubject: "⚠️ Projected Monthly Budget Exceeded - Smart Utilities",
			wantMessage: "Your monthly spending (Rs. 84,000.50) has exceeded the budget of Rs. 80,000 (105%).",
			wantCurrent: "84,000.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := composer.Compose(tt.event, "ops@example.com", at)
			if err != nil {
				t.Fatalf("Compose() error = %v", err)
			}

			if msg.To != "ops@example.com" {
				t.Errorf("To = %q", msg.To)
			}
			if msg.Subject != tt.wantSubject {
				t.Errorf("Subject = %q, want %q", msg.Subject, tt.wantSubject)
			}
			if msg.Fields["message"] != tt.wantMessage {
				t.Errorf("message = %q, want %q", msg.Fields["message"], tt.wantMessage)
			}
			if msg.Fields["current_value"] != tt.wantCurrent {
				t.Errorf("current_value = %q, want %q", msg.Fields["current_value"], tt.wantCurrent)
			}
			if msg.Fields["alert_type"] != string(tt.event.Kind) {
				t.Errorf("alert_type = %q", msg.Fields["alert_type"])
			}
			if msg.Fields["alert_date"] != "20/03/2026, 14:05:09" {
				t.Errorf("alert_date = %q", msg.Fields["alert_date"])
			}
			if !strings.Contains(msg.HTMLBody, tt.wantCurrent) {
				t.Error("HTML body does not show the current value")
			}
			if !strings.Contains(msg.TextBody, tt.wantMessage) {
				t.Error("text body does not carry the message")
			}
		})
	}
}

func TestAlertComposer_ProgressBarIsCapped(t *testing.T) {
	composer, _ := NewAlertComposer("Acme", nil)
	msg, err := composer.Compose(alert.Event{
		Kind: alert.KindUnits, Current: 3000, Limit: 1000, PercentageOfLimit: 300,
	}, "a@example.com", time.Now())
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if !strings.Contains(msg.HTMLBody, "width: 100%") {
		t.Error("progress bar should be capped at 100%")
	}
	if !strings.Contains(msg.HTMLBody, "300%") {
		t.Error("percentage should still show 300%")
	}
	if !strings.HasSuffix(msg.Subject, "- Acme") {
		t.Errorf("Subject = %q, want custom app name", msg.Subject)
	}
}

func TestAlertComposer_ComposeTest(t *testing.T) {
	composer, _ := NewAlertComposer("", time.UTC)
	msg, err := composer.ComposeTest("ops@example.com", time.Now())
	if err != nil {
		t.Fatalf("ComposeTest() error = %v", err)
	}

	if msg.Title != "Test Alert" || msg.Fields["alert_type"] != "test" {
		t.Errorf("title = %q, alert_type = %q", msg.Title, msg.Fields["alert_type"])
	}
	if msg.Fields["current_value"] != "1,500" || msg.Fields["limit_value"] != "1,000" || msg.Fields["percentage"] != "150%" {
		t.Errorf("fields = %+v", msg.Fields)
	}
}
