package tenant

import (
	"context"

	"github.com/google/uuid"
)

// Store persists tenant records. Webhook handlers look tenants up by the
// provider's subscription or customer ID because those are the only stable
// identifiers a redelivered or reordered event carries.
//
// Save must be a single-row atomic upsert keyed by Tenant.ID. Every caller
// writes a complete, self-consistent field set, so per-row atomicity is
// sufficient for concurrent webhook deliveries.
type Store interface {
	// GetByID retrieves a tenant by its primary key.
	// Returns ErrTenantNotFound if no tenant exists.
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// GetBySubscriptionID retrieves the tenant owning the given provider
	// subscription ID. Returns ErrTenantNotFound if none matches.
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*Tenant, error)

	// GetByCustomerID retrieves the tenant owning the given provider
	// customer ID. Returns ErrTenantNotFound if none matches.
	GetByCustomerID(ctx context.Context, customerID string) (*Tenant, error)

	// Save creates or updates a tenant as a single-row upsert.
	Save(ctx context.Context, t *Tenant) error
}
