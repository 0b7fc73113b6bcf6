package domaindir

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryDirectory is an in-memory Directory for tests and local development.
type MemoryDirectory struct {
	mu       sync.RWMutex
	bindings map[string]Binding
}

// NewMemoryDirectory creates an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{bindings: make(map[string]Binding)}
}

// Resolve implements Directory.
func (d *MemoryDirectory) Resolve(ctx context.Context, domain string) (*Binding, error) {
	domain = NormalizeDomain(domain)
	if domain == "" {
		return nil, ErrEmptyDomain
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	b, ok := d.bindings[domain]
	if !ok {
		return nil, ErrDomainNotBound
	}
	copied := b
	return &copied, nil
}

// Bind implements Directory.
func (d *MemoryDirectory) Bind(ctx context.Context, b Binding) error {
	b.Domain = NormalizeDomain(b.Domain)
	if b.Domain == "" {
		return ErrEmptyDomain
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.bindings[b.Domain]; ok && existing.TenantID != b.TenantID {
		return ErrDomainTaken
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	d.bindings[b.Domain] = b
	return nil
}

// Unbind implements Directory.
func (d *MemoryDirectory) Unbind(ctx context.Context, domain string) error {
	domain = NormalizeDomain(domain)
	if domain == "" {
		return ErrEmptyDomain
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.bindings, domain)
	return nil
}

// CountForTenant implements Directory.
func (d *MemoryDirectory) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var n int64
	for _, b := range d.bindings {
		if b.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}
