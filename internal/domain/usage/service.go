package usage

import "time"

// Aggregator turns raw bill records into monthly series
type Aggregator interface {
	// Aggregate buckets records by calendar month and keeps the most recent window
	Aggregate(records []*BillRecord) Series

	// AggregateByBranch returns one series per branch ID
	AggregateByBranch(records []*BillRecord) map[string]Series

	// TotalsFor sums the records falling in the given month
	TotalsFor(records []*BillRecord, year int, month time.Month) Totals
}
