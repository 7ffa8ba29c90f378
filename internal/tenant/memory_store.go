package tenant

import (
	"context"
	"sync"
	"time"

	"github.com/zapdesk/zapdesk/internal/plan"
)

// MemoryStore is an in-memory tenant store for demo/development and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	tenants   map[string]*Tenant // by ID
	slugs     map[string]string  // slug → ID
	usage     map[string]Usage
	instances map[string][]Instance
}

// NewMemoryStore creates a new in-memory tenant store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tenants:   make(map[string]*Tenant),
		slugs:     make(map[string]string),
		usage:     make(map[string]Usage),
		instances: make(map[string][]Instance),
	}
}

func (m *MemoryStore) Create(_ context.Context, t *Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.slugs[t.Slug]; exists && t.Slug != "" {
		return ErrSlugTaken
	}

	cp := *t
	m.tenants[t.ID] = &cp
	if t.Slug != "" {
		m.slugs[t.Slug] = t.ID
	}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tenants[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryStore) Update(_ context.Context, t *Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tenants[t.ID]; !ok {
		return ErrTenantNotFound
	}
	cp := *t
	m.tenants[t.ID] = &cp
	return nil
}

func (m *MemoryStore) ListTrialExpired(_ context.Context, now time.Time) ([]*Tenant, error) {
	return m.filter(func(t *Tenant) bool {
		return t.Status == StatusTrial && !t.TrialEndsAt.After(now) && t.BlockedAt == nil
	}), nil
}

func (m *MemoryStore) ListDueWithin(_ context.Context, now time.Time, window time.Duration) ([]*Tenant, error) {
	limit := now.Add(window)
	return m.filter(func(t *Tenant) bool {
		return t.Status == StatusActive && t.NextDueDate.After(now) && !t.NextDueDate.After(limit)
	}), nil
}

func (m *MemoryStore) ListOverdue(_ context.Context, now time.Time) ([]*Tenant, error) {
	return m.filter(func(t *Tenant) bool {
		return t.Status == StatusActive && t.NextDueDate.Before(now)
	}), nil
}

func (m *MemoryStore) ListPendingDowngrades(_ context.Context, now time.Time) ([]*Tenant, error) {
	return m.filter(func(t *Tenant) bool {
		return t.PlanChangeScheduledID != nil && !t.NextDueDate.After(now)
	}), nil
}

func (m *MemoryStore) ListDeletionPending(_ context.Context, now time.Time, horizon time.Duration) ([]*Tenant, error) {
	limit := now.Add(horizon)
	return m.filter(func(t *Tenant) bool {
		return t.Status == StatusBlocked && t.WillBeDeletedAt != nil &&
			!t.WillBeDeletedAt.Before(now) && !t.WillBeDeletedAt.After(limit)
	}), nil
}

func (m *MemoryStore) ListPurgeable(_ context.Context, now time.Time) ([]*Tenant, error) {
	return m.filter(func(t *Tenant) bool {
		return t.Status == StatusBlocked && t.WillBeDeletedAt != nil && !t.WillBeDeletedAt.After(now)
	}), nil
}

func (m *MemoryStore) Block(_ context.Context, id string, blockedAt, deleteAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tenants[id]
	if !ok {
		return ErrTenantNotFound
	}
	t.Status = StatusBlocked
	t.BlockedAt = &blockedAt
	t.WillBeDeletedAt = &deleteAt
	t.UpdatedAt = blockedAt
	return nil
}

func (m *MemoryStore) ApplyDowngrade(_ context.Context, id, planID string, nextDue time.Time, limits plan.Limits) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tenants[id]
	if !ok {
		return ErrTenantNotFound
	}
	t.PlanID = planID
	t.PlanChangeScheduledID = nil
	t.NextDueDate = nextDue
	t.Limits = limits
	t.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) ClearScheduledDowngrade(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tenants[id]
	if !ok {
		return ErrTenantNotFound
	}
	t.PlanChangeScheduledID = nil
	t.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) Usage(_ context.Context, id string) (Usage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.tenants[id]; !ok {
		return Usage{}, ErrTenantNotFound
	}
	return m.usage[id], nil
}

func (m *MemoryStore) ListInstances(_ context.Context, id string) ([]Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Instance(nil), m.instances[id]...), nil
}

func (m *MemoryStore) Purge(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tenants[id]
	if !ok {
		return ErrTenantNotFound
	}
	delete(m.slugs, t.Slug)
	delete(m.tenants, id)
	delete(m.usage, id)
	delete(m.instances, id)
	return nil
}

// SetUsage sets the derived usage counters for a tenant (tests and demo mode).
func (m *MemoryStore) SetUsage(id string, u Usage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage[id] = u
}

// AddInstance attaches a WhatsApp instance to a tenant (tests and demo mode).
func (m *MemoryStore) AddInstance(id string, inst Instance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances[id] = append(m.instances[id], inst)
}

func (m *MemoryStore) filter(keep func(*Tenant) bool) []*Tenant {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Tenant
	for _, t := range m.tenants {
		if keep(t) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
