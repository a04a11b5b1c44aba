package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/notification"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/errors"
)

// MockBillRepository is a mock implementation of usage.BillRepository
type MockBillRepository struct {
	Bills     []*usage.BillRecord
	ListError error
	// Delay blocks ListByUser until it elapses or the context ends
	Delay time.Duration
}

func NewMockBillRepository(bills ...*usage.BillRecord) *MockBillRepository {
	return &MockBillRepository{Bills: bills}
}

func (m *MockBillRepository) ListByUser(ctx context.Context, userID int64, filter usage.Filter) ([]*usage.BillRecord, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.ListError != nil {
		return nil, m.ListError
	}
	var result []*usage.BillRecord
	for _, b := range m.Bills {
		if b.UserID != userID {
			continue
		}
		if filter.BranchID != "" && b.BranchID != filter.BranchID {
			continue
		}
		if filter.Type != "" && b.Type != filter.Type {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (m *MockBillRepository) ListBranches(ctx context.Context, userID int64) ([]string, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	seen := map[string]bool{}
	var branches []string
	for _, b := range m.Bills {
		if b.UserID == userID && b.BranchID != "" && !seen[b.BranchID] {
			seen[b.BranchID] = true
			branches = append(branches, b.BranchID)
		}
	}
	sort.Strings(branches)
	return branches, nil
}

// MockSettingsRepository is a mock implementation of alert.SettingsRepository
type MockSettingsRepository struct {
	mu          sync.Mutex
	Settings    map[int64]*alert.Settings
	GetError    error
	UpsertError error
}

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{Settings: make(map[int64]*alert.Settings)}
}

func (m *MockSettingsRepository) Get(ctx context.Context, userID int64) (*alert.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	s, ok := m.Settings[userID]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, s *alert.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertError != nil {
		return m.UpsertError
	}
	c := *s
	m.Settings[s.UserID] = &c
	return nil
}

func (m *MockSettingsRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	ids := make([]int64, 0, len(m.Settings))
	for id := range m.Settings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// MockFeedRepository is a mock implementation of alert.FeedRepository
type MockFeedRepository struct {
	mu          sync.Mutex
	Items       map[int64]*alert.FeedItem
	NextID      int64
	UpsertError error
}

func NewMockFeedRepository() *MockFeedRepository {
	return &MockFeedRepository{Items: make(map[int64]*alert.FeedItem), NextID: 1}
}

func (m *MockFeedRepository) Upsert(ctx context.Context, item *alert.FeedItem) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertError != nil {
		return 0, m.UpsertError
	}
	for id, existing := range m.Items {
		if existing.UserID == item.UserID && existing.BranchID == item.BranchID &&
			existing.Kind == item.Kind && existing.Period == item.Period &&
			existing.Projected == item.Projected {
			c := *item
			c.ID = id
			c.CreatedAt = existing.CreatedAt
			m.Items[id] = &c
			return id, nil
		}
	}
	c := *item
	c.ID = m.NextID
	m.NextID++
	m.Items[c.ID] = &c
	return c.ID, nil
}

func (m *MockFeedRepository) List(ctx context.Context, userID int64, filter alert.FeedFilter, limit, offset int) ([]*alert.FeedItem, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*alert.FeedItem
	for _, item := range m.Items {
		if item.UserID != userID {
			continue
		}
		if filter.BranchID != "" && item.BranchID != filter.BranchID {
			continue
		}
		if filter.Kind != "" && string(item.Kind) != filter.Kind {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	total := int64(len(result))
	if offset >= len(result) {
		return []*alert.FeedItem{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *MockFeedRepository) Acknowledge(ctx context.Context, userID int64, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.Items[id]
	if !ok || item.UserID != userID {
		return errors.NotFound("Alert")
	}
	item.Status = alert.StatusAcknowledged
	return nil
}

// Count returns the number of stored items
func (m *MockFeedRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Items)
}

// MockLogRepository is a mock implementation of notification.LogRepository
type MockLogRepository struct {
	mu   sync.Mutex
	Logs []*notification.Log
}

func NewMockLogRepository() *MockLogRepository {
	return &MockLogRepository{}
}

func (m *MockLogRepository) Create(ctx context.Context, l *notification.Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, l)
	return nil
}

func (m *MockLogRepository) List(ctx context.Context, userID int64, filter notification.LogFilter, limit, offset int) ([]*notification.Log, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*notification.Log
	for _, l := range m.Logs {
		if l.UserID != userID {
			continue
		}
		if filter.Channel != "" && l.Channel != filter.Channel {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		result = append(result, l)
	}
	return result, int64(len(result)), nil
}

// MockEmailSender is a mock implementation of notification.EmailSender.
// Recipients listed in Fail are rejected; recipients in Hang block until
// the context ends.
type MockEmailSender struct {
	mu   sync.Mutex
	Sent []notification.EmailMessage
	Fail map[string]error
	Hang map[string]bool
}

func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{
		Fail: make(map[string]error),
		Hang: make(map[string]bool),
	}
}

func (m *MockEmailSender) Send(ctx context.Context, msg notification.EmailMessage) error {
	if m.Hang[msg.To] {
		<-ctx.Done()
		return ctx.Err()
	}
	if err, ok := m.Fail[msg.To]; ok {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}

// SentTo returns the sorted recipients of delivered messages
func (m *MockEmailSender) SentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Sent))
	for _, msg := range m.Sent {
		out = append(out, msg.To)
	}
	sort.Strings(out)
	return out
}

// MockComposer is a mock implementation of notification.Composer
type MockComposer struct{}

func (MockComposer) Compose(event alert.Event, to string, at time.Time) (notification.EmailMessage, error) {
	return notification.EmailMessage{
		To:       to,
		Subject:  event.Kind.Title(),
		Title:    event.Kind.Title(),
		TextBody: event.Message,
	}, nil
}

func (MockComposer) ComposeTest(to string, at time.Time) (notification.EmailMessage, error) {
	return notification.EmailMessage{To: to, Subject: "Test Alert", Title: "Test Alert"}, nil
}

// MonthlyBills builds one bill per month starting at year/month, one per
// entry of units, with amount = units * rate.
func MonthlyBills(userID int64, year int, month time.Month, rate float64, units ...float64) []*usage.BillRecord {
	bills := make([]*usage.BillRecord, 0, len(units))
	for i, u := range units {
		d := time.Date(year, month+time.Month(i), 5, 0, 0, 0, 0, time.UTC)
		bills = append(bills, &usage.BillRecord{
			ID:          fmt.Sprintf("bill-%d-%d", userID, i+1),
			UserID:      userID,
			Type:        "electricity",
			Units:       u,
			Amount:      u * rate,
			PeriodStart: d.Format("2006-01-02"),
		})
	}
	return bills
}
