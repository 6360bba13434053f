package timecard

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
)

// memoryStore implements every repository contract of the timecard domain in memory.
type memoryStore struct {
	mu        sync.Mutex
	seq       int
	entries   map[string]timecard.TimeEntry
	history   []timecard.ApprovalHistory
	schedules []timecard.WorkSchedule
	settings  map[string]timecard.ApprovalSettings
	groups    map[string][]string

	pendingCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		entries:  make(map[string]timecard.TimeEntry),
		settings: make(map[string]timecard.ApprovalSettings),
		groups:   make(map[string][]string),
	}
}

func (m *memoryStore) put(e timecard.TimeEntry) timecard.TimeEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		m.seq++
		e.ID = fmt.Sprintf("entry-%d", m.seq)
	}
	m.entries[e.ID] = e
	return e
}

func (m *memoryStore) get(id string) timecard.TimeEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[id]
}

func (m *memoryStore) historyFor(id string) []timecard.ApprovalHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []timecard.ApprovalHistory
	for _, h := range m.history {
		if h.TimecardEntryID == id {
			out = append(out, h)
		}
	}
	return out
}

func (m *memoryStore) Create(ctx context.Context, entry timecard.TimeEntry) (timecard.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.IsOpen() {
		for _, e := range m.entries {
			if e.IsOpen() && e.UserID == entry.UserID && e.TenantID == entry.TenantID {
				return timecard.TimeEntry{}, timecard.ErrDuplicateOpenEntry
			}
		}
	}
	m.seq++
	entry.ID = fmt.Sprintf("entry-%d", m.seq)
	m.entries[entry.ID] = entry
	return entry, nil
}

func (m *memoryStore) GetByID(ctx context.Context, id string, tenantID string) (timecard.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.TenantID != tenantID {
		return timecard.TimeEntry{}, timecard.ErrEntryNotFound
	}
	return e, nil
}

func (m *memoryStore) FindOpenEntries(ctx context.Context, userID string, tenantID string) ([]timecard.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []timecard.TimeEntry
	for _, e := range m.entries {
		if e.IsOpen() && e.UserID == userID && e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStore) FindEntriesInRange(ctx context.Context, userID string, tenantID string, start, end time.Time) ([]timecard.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []timecard.TimeEntry
	for _, e := range m.entries {
		ref := e.ReferenceTime()
		if e.UserID == userID && e.TenantID == tenantID && !ref.Before(start) && ref.Before(end) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStore) Close(ctx context.Context, entry timecard.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.entries[entry.ID]
	if !ok || stored.TenantID != entry.TenantID || stored.CheckOut != nil {
		return timecard.ErrConcurrentUpdate
	}
	m.entries[entry.ID] = entry
	return nil
}

func (m *memoryStore) UpdateStatus(ctx context.Context, entry timecard.TimeEntry, expected timecard.EntryStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.entries[entry.ID]
	if !ok || stored.TenantID != entry.TenantID || stored.Status != expected {
		return timecard.ErrConcurrentUpdate
	}
	stored.Status = entry.Status
	stored.ApprovedBy = entry.ApprovedBy
	stored.ApprovedAt = entry.ApprovedAt
	stored.UpdatedAt = entry.UpdatedAt
	m.entries[entry.ID] = stored
	return nil
}

func (m *memoryStore) ListPending(ctx context.Context, tenantID string, createdBefore time.Time, after *timecard.PendingCursor, limit int) ([]timecard.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingCalls++
	var out []timecard.TimeEntry
	for _, e := range m.entries {
		if e.TenantID != tenantID || e.Status != timecard.EntryStatusPending || e.CheckOut == nil || !e.CreatedAt.Before(createdBefore) {
			continue
		}
		if after != nil && !pendingAfter(e, *after) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return pendingAfter(out[j], timecard.PendingCursor{CreatedAt: out[i].CreatedAt, ID: out[i].ID})
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func pendingAfter(e timecard.TimeEntry, c timecard.PendingCursor) bool {
	if !e.CreatedAt.Equal(c.CreatedAt) {
		return e.CreatedAt.After(c.CreatedAt)
	}
	return e.ID > c.ID
}

func (m *memoryStore) List(ctx context.Context, filter timecard.EntryFilter, tenantID string) ([]timecard.TimeEntry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []timecard.TimeEntry
	for _, e := range m.entries {
		if e.TenantID != tenantID {
			continue
		}
		if filter.UserID != nil && e.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && string(e.Status) != *filter.Status {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *memoryStore) Append(ctx context.Context, record timecard.ApprovalHistory) (timecard.ApprovalHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record.ID = fmt.Sprintf("history-%d", len(m.history)+1)
	m.history = append(m.history, record)
	return record, nil
}

func (m *memoryStore) ListByEntry(ctx context.Context, entryID string, tenantID string) ([]timecard.ApprovalHistory, error) {
	var out []timecard.ApprovalHistory
	for _, h := range m.historyFor(entryID) {
		if h.TenantID == tenantID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memoryStore) GetActiveSchedule(ctx context.Context, userID string, tenantID string, onDate time.Time) (*timecard.WorkSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var own []timecard.WorkSchedule
	for _, s := range m.schedules {
		if s.UserID == userID && s.TenantID == tenantID {
			own = append(own, s)
		}
	}
	return timecard.SelectActiveSchedule(own, onDate), nil
}

func (m *memoryStore) ListForRange(ctx context.Context, userID string, tenantID string, start, end time.Time) ([]timecard.WorkSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []timecard.WorkSchedule
	for _, s := range m.schedules {
		if s.UserID == userID && s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryStore) GetByTenant(ctx context.Context, tenantID string) (*timecard.ApprovalSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[tenantID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memoryStore) ListAutoApprovalTenants(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for id, s := range m.settings {
		if s.AutoApprovalEnabled() {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (m *memoryStore) GetGroupMembers(ctx context.Context, groupID string, tenantID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.groups[tenantID+"/"+groupID], nil
}

func (m *memoryStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestService(store *memoryStore, clock *fixedClock) *TimecardServiceImpl {
	svc := NewTimecardService(store, store, store, store, store, store, DefaultRules(), WithClock(clock.Now))
	return svc.(*TimecardServiceImpl)
}
