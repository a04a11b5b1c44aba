package client

import "context"

// Health calls the liveness probe
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doRequest(ctx, "GET", "/healthz", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Ready calls the readiness probe. A 503 comes back as an *APIError with
// IsServerError() true.
func (c *Client) Ready(ctx context.Context) (*ReadyResponse, error) {
	var ready ReadyResponse
	if err := c.doRequest(ctx, "GET", "/readyz", nil, &ready); err != nil {
		return nil, err
	}
	return &ready, nil
}
