package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/errors"
)

type BillRepository struct {
	db *DB
}

func NewBillRepository(db *DB) *BillRepository {
	return &BillRepository{db: db}
}

// Insert stores a bill; existing IDs are replaced
func (r *BillRepository) Insert(ctx context.Context, b *usage.BillRecord) error {
	query := `
		INSERT INTO bills (id, user_id, branch_id, type, units, amount, period_start, created_at, due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id, branch_id = excluded.branch_id, type = excluded.type,
			units = excluded.units, amount = excluded.amount, period_start = excluded.period_start,
			created_at = excluded.created_at, due_date = excluded.due_date
	`

	_, err := r.db.exec(ctx, "insert", "bills", query,
		b.ID, b.UserID, b.BranchID, b.Type, b.Units, b.Amount, b.PeriodStart, b.CreatedAt, b.DueDate,
	)
	if err != nil {
		return errors.DatabaseError("Failed to store bill", err)
	}
	return nil
}

func (r *BillRepository) ListByUser(ctx context.Context, userID int64, filter usage.Filter) ([]*usage.BillRecord, error) {
	where := []string{"user_id = ?"}
	args := []interface{}{userID}

	if filter.BranchID != "" {
		where = append(where, "branch_id = ?")
		args = append(args, filter.BranchID)
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, branch_id, type, units, amount, period_start, created_at, due_date
		FROM bills WHERE %s ORDER BY id
	`, strings.Join(where, " AND "))

	rows, err := r.db.query(ctx, "select", "bills", query, args...)
	if err != nil {
		return nil, errors.BillStoreError(err)
	}
	defer rows.Close()

	bills := make([]*usage.BillRecord, 0, 32)
	for rows.Next() {
		var b usage.BillRecord
		if err := rows.Scan(&b.ID, &b.UserID, &b.BranchID, &b.Type, &b.Units, &b.Amount,
			&b.PeriodStart, &b.CreatedAt, &b.DueDate); err != nil {
			return nil, errors.BillStoreError(err)
		}
		bills = append(bills, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.BillStoreError(err)
	}

	return bills, nil
}

func (r *BillRepository) ListBranches(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.query(ctx, "select", "bills",
		"SELECT DISTINCT branch_id FROM bills WHERE user_id = ? AND branch_id <> '' ORDER BY branch_id", userID)
	if err != nil {
		return nil, errors.BillStoreError(err)
	}
	defer rows.Close()

	var branches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.BillStoreError(err)
		}
		branches = append(branches, id)
	}
	return branches, rows.Err()
}
