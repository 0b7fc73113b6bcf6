package tenant

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store implementation for tests and local
// development. Safe for concurrent use; Save is atomic per tenant which
// mirrors the per-row upsert guarantee of the Postgres store.
type MemoryStore struct {
	mu      sync.RWMutex
	tenants map[uuid.UUID]Tenant
}

// NewMemoryStore creates an empty in-memory tenant store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tenants: make(map[uuid.UUID]Tenant)}
}

// GetByID implements Store.
func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	copied := t
	return &copied, nil
}

// GetBySubscriptionID implements Store.
func (s *MemoryStore) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*Tenant, error) {
	if subscriptionID == "" {
		return nil, ErrTenantNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tenants {
		if t.ProviderSubscriptionID == subscriptionID {
			copied := t
			return &copied, nil
		}
	}
	return nil, ErrTenantNotFound
}

// GetByCustomerID implements Store.
func (s *MemoryStore) GetByCustomerID(ctx context.Context, customerID string) (*Tenant, error) {
	if customerID == "" {
		return nil, ErrTenantNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tenants {
		if t.ProviderCustomerID == customerID {
			copied := t
			return &copied, nil
		}
	}
	return nil, ErrTenantNotFound
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, t *Tenant) error {
	if t == nil {
		return ErrNilTenant
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *t
	now := time.Now().UTC()
	if existing, ok := s.tenants[t.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.tenants[t.ID] = stored
	return nil
}
