package notify

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory notification ledger for demo/development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryStore creates a new in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Record(_ context.Context, r *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *r)
	return nil
}

func (m *MemoryStore) SentSince(_ context.Context, tenantID string, kind Kind, daysBefore int, cutoff time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if r.TenantID == tenantID && r.Kind == kind && r.DaysBefore == daysBefore &&
			!r.SentAt.Before(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

// All returns a copy of every ledger entry (tests only).
func (m *MemoryStore) All() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Record(nil), m.records...)
}

var _ Store = (*MemoryStore)(nil)
