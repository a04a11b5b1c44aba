// Package notify renders alert emails and delivers them over SMTP or an HTTP form API.
package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/notification"
)

// DefaultAppName appears in subjects and footers
const DefaultAppName = "Smart Utilities"

const alertEmailTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; margin: 0; padding: 0; }
    .container { max-width: 600px; margin: 0 auto; }
    .header { background: #4f46e5; color: white; padding: 30px; text-align: center; }
    .content { background: #ffffff; padding: 30px; }
    .alert-box { border-left: 4px solid {{.Accent}}; background: {{.Background}}; padding: 20px; margin: 20px 0; border-radius: 4px; }
    .stat { display: inline-block; width: 30%; text-align: center; padding: 15px 0; background: #f8fafc; border-radius: 8px; }
    .stat-value { font-size: 24px; font-weight: bold; color: #ef4444; }
    .stat-label { font-size: 12px; color: #64748b; margin-top: 5px; }
    .progress { background: #e2e8f0; height: 12px; border-radius: 6px; overflow: hidden; margin: 15px 0; }
    .progress-bar { background: #ef4444; height: 100%; width: {{.Bar}}%; }
    .footer { text-align: center; color: #64748b; font-size: 12px; margin-top: 30px; padding-top: 20px; border-top: 1px solid #e2e8f0; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>&#9888;&#65039; {{.Title}}</h1>
      <p>{{.AppName}}</p>
    </div>
    <div class="content">
      <div class="alert-box">
        <h2>{{.Title}}</h2>
        <p>{{.Message}}</p>
        <div>
          <div class="stat"><div class="stat-value">{{.Current}}</div><div class="stat-label">Current {{.Quantity}}</div></div>
          <div class="stat"><div class="stat-value">{{.Limit}}</div><div class="stat-label">Set Limit</div></div>
          <div class="stat"><div class="stat-value">{{.Percentage}}%</div><div class="stat-label">Usage</div></div>
        </div>
        <div class="progress"><div class="progress-bar"></div></div>
        <p><strong>Date:</strong> {{.Date}}</p>
      </div>
      <p>This is an automated alert from {{.AppName}}.</p>
    </div>
    <div class="footer">
      <p>&copy; {{.Year}} {{.AppName}}. All rights reserved.</p>
    </div>
  </div>
</body>
</html>`

type alertEmailData struct {
	AppName    string
	Title      string
	Message    string
	Quantity   string
	Current    string
	Limit      string
	Percentage int
	Bar        int
	Date       string
	Year       int
	Accent     string
	Background string
}

// AlertComposer implements notification.Composer
type AlertComposer struct {
	appName  string
	location *time.Location
	tmpl     *template.Template
	printer  *message.Printer
}

// NewAlertComposer parses the alert template. Dates are shown in loc; nil means UTC.
func NewAlertComposer(appName string, loc *time.Location) (*AlertComposer, error) {
	if appName == "" {
		appName = DefaultAppName
	}
	if loc == nil {
		loc = time.UTC
	}
	tmpl, err := template.New("alert").Parse(alertEmailTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse alert template: %w", err)
	}
	return &AlertComposer{
		appName:  appName,
		location: loc,
		tmpl:     tmpl,
		printer:  message.NewPrinter(language.English),
	}, nil
}

// Subject returns the subject line for a title
func (c *AlertComposer) Subject(title string) string {
	return fmt.Sprintf("⚠️ %s - %s", title, c.appName)
}

// Compose builds the email for event addressed to to
func (c *AlertComposer) Compose(event alert.Event, to string, at time.Time) (notification.EmailMessage, error) {
	title := event.Kind.Title()
	if event.Projected {
		title = "Projected " + title
	}
	return c.render(event, title, c.describe(event), string(event.Kind), to, at)
}

// ComposeTest builds the configuration test email
func (c *AlertComposer) ComposeTest(to string, at time.Time) (notification.EmailMessage, error) {
	sample := alert.Event{
		Kind:              alert.KindUnits,
		Severity:          alert.SeverityWarning,
		Current:           1500,
		Limit:             1000,
		PercentageOfLimit: 150,
	}
	return c.render(sample, "Test Alert", "This is a test email to verify your email configuration.", "test", to, at)
}

func (c *AlertComposer) render(event alert.Event, title, body, alertType, to string, at time.Time) (notification.EmailMessage, error) {
	local := at.In(c.location)
	date := local.Format("02/01/2006, 15:04:05")

	data := alertEmailData{
		AppName:    c.appName,
		Title:      title,
		Message:    body,
		Quantity:   "Amount",
		Current:    c.group(event.Current),
		Limit:      c.group(event.Limit),
		Percentage: event.PercentageOfLimit,
		Bar:        min(event.PercentageOfLimit, 100),
		Date:       date,
		Year:       local.Year(),
		Accent:     "#ef4444",
		Background: "#fef2f2",
	}
	if event.Kind == alert.KindUnits {
		data.Quantity = "Units"
		data.Accent = "#f59e0b"
		data.Background = "#fffbeb"
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return notification.EmailMessage{}, fmt.Errorf("execute alert template: %w", err)
	}

	text := fmt.Sprintf("%s\n\n%s\n\nCurrent: %s\nLimit: %s\nUsage: %d%%\nDate: %s\n",
		title, body, data.Current, data.Limit, data.Percentage, date)

	return notification.EmailMessage{
		To:       to,
		Subject:  c.Subject(title),
		Title:    title,
		HTMLBody: buf.String(),
		TextBody: text,
		Fields: map[string]string{
			"alert_type":    alertType,
			"alert_title":   title,
			"current_value": data.Current,
			"limit_value":   data.Limit,
			"percentage":    strconv.Itoa(data.Percentage) + "%",
			"alert_date":    date,
			"message":       body,
		},
	}, nil
}

// describe is the sentence shown in the email body
func (c *AlertComposer) describe(event alert.Event) string {
	switch event.Kind {
	case alert.KindUnits:
		return fmt.Sprintf("Your utility consumption (%s units) has exceeded the limit of %s units (%d%%).",
			c.group(event.Current), c.group(event.Limit), event.PercentageOfLimit)
	case alert.KindAmount:
		return fmt.Sprintf("Your monthly spending (Rs. %s) has exceeded the budget of Rs. %s (%d%%).",
			c.group(event.Current), c.group(event.Limit), event.PercentageOfLimit)
	default:
		return event.Message
	}
}

func (c *AlertComposer) group(v float64) string {
	if v == math.Trunc(v) {
		return c.printer.Sprintf("%d", int64(v))
	}
	return c.printer.Sprintf("%.2f", v)
}
