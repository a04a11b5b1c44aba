package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// AlertService handles alert API calls
type AlertService struct {
	client *Client
}

// FeedListOptions contains options for listing dashboard alerts
type FeedListOptions struct {
	ListOptions
	Branch string
	Type   string // units, amount
	Status string // active, acknowledged
}

// NotificationListOptions contains options for listing deliveries
type NotificationListOptions struct {
	ListOptions
	Channel string // email, dashboard
	Status  string // sent, failed, suppressed
}

// Check runs a threshold check for one branch, or the account when branch is empty
func (s *AlertService) Check(ctx context.Context, branch string) (*CheckResult, error) {
	path := "/api/v1/alerts/check"
	if branch != "" {
		path += "?" + url.Values{"branch": {branch}}.Encode()
	}

	var result CheckResult
	if err := s.client.doRequest(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetSettings returns the caller's alert settings
func (s *AlertService) GetSettings(ctx context.Context) (*AlertSettings, error) {
	var settings AlertSettings
	if err := s.client.doRequest(ctx, "GET", "/api/v1/alerts/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings applies a partial settings update
func (s *AlertService) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*AlertSettings, error) {
	var settings AlertSettings
	if err := s.client.doRequest(ctx, "PUT", "/api/v1/alerts/settings", req, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Feed lists dashboard alerts
func (s *AlertService) Feed(ctx context.Context, opts *FeedListOptions) (*FeedPage, error) {
	query := url.Values{}
	if opts != nil {
		opts.ListOptions.apply(query)
		setIf(query, "branch", opts.Branch)
		setIf(query, "type", opts.Type)
		setIf(query, "status", opts.Status)
	}

	var page FeedPage
	if err := s.client.doRequest(ctx, "GET", withQuery("/api/v1/alerts/feed", query), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Acknowledge marks a dashboard alert as seen
func (s *AlertService) Acknowledge(ctx context.Context, id int64) error {
	return s.client.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/alerts/feed/%d/ack", id), nil, nil)
}

// SendTestEmail sends a test alert to email
func (s *AlertService) SendTestEmail(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return s.client.doRequest(ctx, "POST", "/api/v1/alerts/test-email", body, nil)
}

// ResetCooldowns clears email cooldowns. Empty branch means the account
// scope; empty alertType means every type.
func (s *AlertService) ResetCooldowns(ctx context.Context, branch, alertType string) error {
	query := url.Values{}
	setIf(query, "branch", branch)
	setIf(query, "type", alertType)
	return s.client.doRequest(ctx, "DELETE", withQuery("/api/v1/alerts/cooldowns", query), nil, nil)
}

// Notifications lists delivery attempts
func (s *AlertService) Notifications(ctx context.Context, opts *NotificationListOptions) (*NotificationPage, error) {
	query := url.Values{}
	if opts != nil {
		opts.ListOptions.apply(query)
		setIf(query, "channel", opts.Channel)
		setIf(query, "status", opts.Status)
	}

	var page NotificationPage
	if err := s.client.doRequest(ctx, "GET", withQuery("/api/v1/alerts/notifications", query), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (o ListOptions) apply(q url.Values) {
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(o.PageSize))
	}
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
