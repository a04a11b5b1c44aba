package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/forecast"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
)

// MonthLayout is the layout of a series point month
const MonthLayout = "2006-01"

// MonthLabel is a YYYY-MM month. Bare period numbers are accepted and
// dropped, leaving the point ordered by position only.
type MonthLabel string

// UnmarshalJSON accepts a string or a number
func (m *MonthLabel) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = MonthLabel(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*m = ""
	return nil
}

// SeriesPointDTO is one monthly point of a submitted series
type SeriesPointDTO struct {
	Month  MonthLabel `json:"month,omitempty" validate:"omitempty,datetime=2006-01"`
	Units  float64    `json:"units" validate:"min=0"`
	Amount float64    `json:"amount" validate:"min=0"`
}

// ForecastRequest carries a series in ascending month order
type ForecastRequest struct {
	Data []SeriesPointDTO `json:"data" validate:"required,dive"`
}

// BatchForecastRequest carries one series per branch
type BatchForecastRequest struct {
	Branches map[string][]SeriesPointDTO `json:"branches" validate:"required,min=1,dive,dive"`
}

// ForecastResponse wraps a forecast with its status
type ForecastResponse struct {
	Status   string             `json:"status"`
	Message  string             `json:"message,omitempty"`
	Branch   string             `json:"branch,omitempty"`
	Forecast *forecast.Forecast `json:"forecast,omitempty"`
	Series   []SeriesPointDTO   `json:"series,omitempty"`
}

// ToSeries converts submitted points into a Series, keeping their order
func ToSeries(points []SeriesPointDTO) usage.Series {
	series := make(usage.Series, 0, len(points))
	for i, p := range points {
		pt := usage.Point{PeriodIndex: i + 1, Units: p.Units, Amount: p.Amount}
		if t, err := time.Parse(MonthLayout, string(p.Month)); err == nil {
			pt.Year, pt.Month = t.Year(), t.Month()
		}
		series = append(series, pt)
	}
	return series
}

// FromSeries converts a Series into response points
func FromSeries(series usage.Series) []SeriesPointDTO {
	out := make([]SeriesPointDTO, 0, len(series))
	for _, p := range series {
		dto := SeriesPointDTO{Units: p.Units, Amount: p.Amount}
		if p.Year != 0 {
			dto.Month = MonthLabel(p.Label())
		}
		out = append(out, dto)
	}
	return out
}
