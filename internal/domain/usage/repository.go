package usage

import "context"

// BillRepository is the read side of the bill store
type BillRepository interface {
	// ListByUser returns the bills of a user matching the filter
	ListByUser(ctx context.Context, userID int64, filter Filter) ([]*BillRecord, error)

	// ListBranches returns the distinct branch IDs a user has bills for
	ListBranches(ctx context.Context, userID int64) ([]string, error)
}
