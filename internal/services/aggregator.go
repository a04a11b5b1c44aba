package services

import (
	"sort"
	"strings"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
)

// dateLayouts are tried in order when reading bill dates
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
}

// TimeSeriesAggregator implements usage.Aggregator
type TimeSeriesAggregator struct {
	window   int
	location *time.Location
	logger   *logger.Logger
}

// NewTimeSeriesAggregator creates an aggregator keeping the last window months.
// Months are taken in loc; nil means UTC.
func NewTimeSeriesAggregator(window int, loc *time.Location, log *logger.Logger) *TimeSeriesAggregator {
	if window <= 0 {
		window = usage.DefaultWindow
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TimeSeriesAggregator{window: window, location: loc, logger: log}
}

type monthKey struct {
	year  int
	month time.Month
}

func (k monthKey) before(o monthKey) bool {
	if k.year != o.year {
		return k.year < o.year
	}
	return k.month < o.month
}

// Aggregate buckets records by calendar month
func (a *TimeSeriesAggregator) Aggregate(records []*usage.BillRecord) usage.Series {
	buckets := make(map[monthKey]*usage.Point)
	for _, r := range records {
		if r == nil {
			continue
		}
		t, ok := a.recordDate(r)
		if !ok {
			continue
		}
		key := monthKey{year: t.Year(), month: t.Month()}
		p, exists := buckets[key]
		if !exists {
			p = &usage.Point{Year: key.year, Month: key.month}
			buckets[key] = p
		}
		p.Units += r.Units
		p.Amount += r.Amount
	}

	keys := make([]monthKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].before(keys[j]) })

	if len(keys) > a.window {
		keys = keys[len(keys)-a.window:]
	}

	series := make(usage.Series, 0, len(keys))
	for i, k := range keys {
		p := *buckets[k]
		p.PeriodIndex = i + 1
		series = append(series, p)
	}
	return series
}

// AggregateByBranch returns one series per branch. Records without a branch
// are grouped under the empty key.
func (a *TimeSeriesAggregator) AggregateByBranch(records []*usage.BillRecord) map[string]usage.Series {
	grouped := make(map[string][]*usage.BillRecord)
	for _, r := range records {
		if r == nil {
			continue
		}
		grouped[r.BranchID] = append(grouped[r.BranchID], r)
	}

	out := make(map[string]usage.Series, len(grouped))
	for branch, recs := range grouped {
		out[branch] = a.Aggregate(recs)
	}
	return out
}

// TotalsFor sums the records dated in the given month
func (a *TimeSeriesAggregator) TotalsFor(records []*usage.BillRecord, year int, month time.Month) usage.Totals {
	totals := usage.Totals{Year: year, Month: month}
	for _, r := range records {
		if r == nil {
			continue
		}
		t, ok := a.recordDate(r)
		if !ok || t.Year() != year || t.Month() != month {
			continue
		}
		totals.Units += r.Units
		totals.Amount += r.Amount
		totals.Bills++
	}
	return totals
}

// recordDate picks the first non-empty of PeriodStart, CreatedAt and DueDate.
// A malformed value drops the record; later fields are not consulted.
func (a *TimeSeriesAggregator) recordDate(r *usage.BillRecord) (time.Time, bool) {
	raw := firstNonEmpty(r.PeriodStart, r.CreatedAt, r.DueDate)
	if raw == "" {
		a.logger.WithFields(map[string]interface{}{
			"bill_id": r.ID,
		}).Debug("Bill has no date, skipping")
		return time.Time{}, false
	}

	t, err := parseDate(raw, a.location)
	if err != nil {
		a.logger.WithFields(map[string]interface{}{
			"bill_id": r.ID,
			"date":    raw,
		}).Debug("Bill date is not parseable, skipping")
		return time.Time{}, false
	}
	return t.In(a.location), true
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
