package usage

import (
	"fmt"
	"time"
)

// DefaultWindow is the number of most recent monthly buckets kept in a Series
const DefaultWindow = 6

// BillRecord is a bill as supplied by the bill store.
// Dates are ISO-8601 strings; any of them may be empty or malformed.
type BillRecord struct {
	ID          string  `json:"id"`
	UserID      int64   `json:"user_id"`
	BranchID    string  `json:"branch_id,omitempty"`
	Type        string  `json:"type,omitempty"`
	Units       float64 `json:"units"`
	Amount      float64 `json:"amount"`
	PeriodStart string  `json:"period_start,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
	DueDate     string  `json:"due_date,omitempty"`
}

// Point is one monthly bucket of aggregated usage
type Point struct {
	PeriodIndex int        `json:"periodIndex"`
	Year        int        `json:"year,omitempty"`
	Month       time.Month `json:"month,omitempty"`
	Units       float64    `json:"units"`
	Amount      float64    `json:"amount"`
}

// Label returns the YYYY-MM label of the bucket, or the period index when
// the point was not produced from dated records.
func (p Point) Label() string {
	if p.Year == 0 {
		return fmt.Sprintf("P%d", p.PeriodIndex)
	}
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Series is an ascending, gap-free sequence of points (PeriodIndex 1..n)
type Series []Point

// Units returns the units column of the series
func (s Series) Units() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Units
	}
	return out
}

// Totals holds summed usage for one calendar month
type Totals struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Units  float64    `json:"units"`
	Amount float64    `json:"amount"`
	Bills  int        `json:"bills"`
}

// Period returns the YYYY-MM label of the totals
func (t Totals) Period() string {
	return fmt.Sprintf("%04d-%02d", t.Year, int(t.Month))
}

// Scope identifies what a series or alert applies to.
// An empty BranchID means the whole account.
type Scope struct {
	UserID   int64  `json:"user_id"`
	BranchID string `json:"branch_id,omitempty"`
}

// Key returns a stable string form of the scope
func (s Scope) Key() string {
	if s.BranchID == "" {
		return fmt.Sprintf("user:%d", s.UserID)
	}
	return fmt.Sprintf("user:%d:branch:%s", s.UserID, s.BranchID)
}

// Filter narrows the bills fetched for a scope
type Filter struct {
	BranchID string
	Type     string
}
