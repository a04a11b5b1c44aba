package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/notification"
)

// DefaultFormAPIEndpoint is the Web3Forms submit URL
const DefaultFormAPIEndpoint = "https://api.web3forms.com/submit"

// FormAPISender posts one form submission per recipient to a hosted
// form-to-email service such as Web3Forms
type FormAPISender struct {
	endpoint  string
	accessKey string
	fromName  string
	client    *http.Client
}

// FormAPIOption configures the sender
type FormAPIOption func(*FormAPISender)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(client *http.Client) FormAPIOption {
	return func(s *FormAPISender) {
		if client != nil {
			s.client = client
		}
	}
}

// WithEndpoint overrides the submit URL
func WithEndpoint(endpoint string) FormAPIOption {
	return func(s *FormAPISender) {
		if endpoint != "" {
			s.endpoint = endpoint
		}
	}
}

// WithFromName sets the sender display name
func WithFromName(name string) FormAPIOption {
	return func(s *FormAPISender) {
		if name != "" {
			s.fromName = name
		}
	}
}

// NewFormAPISender creates a sender for the given access key
func NewFormAPISender(accessKey string, opts ...FormAPIOption) (*FormAPISender, error) {
	if accessKey == "" {
		return nil, errors.New("form api: empty access key")
	}
	s := &FormAPISender{
		endpoint:  DefaultFormAPIEndpoint,
		accessKey: accessKey,
		fromName:  DefaultAppName + " Alert System",
		client:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type formAPIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Send submits msg as a url-encoded form
func (s *FormAPISender) Send(ctx context.Context, msg notification.EmailMessage) error {
	form := url.Values{}
	form.Set("access_key", s.accessKey)
	form.Set("subject", msg.Subject)
	form.Set("from_name", s.fromName)
	form.Set("to_email", msg.To)
	for k, v := range msg.Fields {
		form.Set(k, v)
	}
	if _, ok := msg.Fields["message"]; !ok {
		form.Set("message", msg.TextBody)
	}
	if msg.HTMLBody != "" {
		form.Set("html", msg.HTMLBody)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("form api: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("form api: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("form api: non-2xx response %d", resp.StatusCode)
	}

	var result formAPIResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("form api: decode response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("form api: rejected: %s", result.Message)
	}
	return nil
}
