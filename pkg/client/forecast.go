package client

import (
	"context"
	"net/url"
)

// ForecastService handles forecast API calls
type ForecastService struct {
	client *Client
}

type seriesRequest struct {
	Data []SeriesPoint `json:"data"`
}

type batchRequest struct {
	Branches map[string][]SeriesPoint `json:"branches"`
}

// Predict forecasts the month after the given series. A series shorter than
// two months returns an *APIError with IsInsufficientData() true.
func (s *ForecastService) Predict(ctx context.Context, series []SeriesPoint) (*Forecast, error) {
	var f Forecast
	if err := s.client.doRequest(ctx, "POST", "/api/v1/forecast", seriesRequest{Data: series}, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// PredictBatch forecasts one series per branch
func (s *ForecastService) PredictBatch(ctx context.Context, branches map[string][]SeriesPoint) (*BatchForecast, error) {
	var result BatchForecast
	if err := s.client.doRequest(ctx, "POST", "/api/v1/forecast/batch", batchRequest{Branches: branches}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Analyze summarises a series
func (s *ForecastService) Analyze(ctx context.Context, series []SeriesPoint) (*Analysis, error) {
	var a Analysis
	if err := s.client.doRequest(ctx, "POST", "/api/v1/forecast/analyze", seriesRequest{Data: series}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Stored forecasts from the caller's stored bills, for one branch or the
// whole account when branch is empty
func (s *ForecastService) Stored(ctx context.Context, branch string) (*StoredForecast, error) {
	path := "/api/v1/forecast"
	if branch != "" {
		path += "?" + url.Values{"branch": {branch}}.Encode()
	}

	var result StoredForecast
	if err := s.client.doRequest(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Branches forecasts every branch from stored bills
func (s *ForecastService) Branches(ctx context.Context) (*BatchForecast, error) {
	var result BatchForecast
	if err := s.client.doRequest(ctx, "GET", "/api/v1/forecast/branches", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
