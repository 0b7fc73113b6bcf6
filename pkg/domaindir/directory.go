package domaindir

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Binding associates a custom domain with a tenant's published page.
// Domains are unique across the whole platform.
type Binding struct {
	Domain       string
	TenantID     uuid.UUID
	TenantPageID string
	Note         string
	CreatedAt    time.Time
}

// Directory is the persistent domain-to-page mapping consulted on every
// data-plane request for a custom domain.
type Directory interface {
	// Resolve returns the binding for a domain.
	// Returns ErrDomainNotBound when no binding exists.
	Resolve(ctx context.Context, domain string) (*Binding, error)

	// Bind registers a domain for a tenant page. The caller is responsible
	// for running the quota check first. Returns ErrDomainTaken when the
	// domain is already bound to a different tenant.
	Bind(ctx context.Context, b Binding) error

	// Unbind removes a domain binding. Removing an unbound domain is a no-op.
	Unbind(ctx context.Context, domain string) error

	// CountForTenant returns how many domains the tenant has bound.
	// Used by the quota enforcer.
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// NormalizeDomain lowercases a domain and strips an optional port so lookups
// behave the same regardless of how the Host header was written.
func NormalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	if i := strings.Index(domain, ":"); i != -1 {
		domain = domain[:i]
	}
	return strings.ToLower(domain)
}
