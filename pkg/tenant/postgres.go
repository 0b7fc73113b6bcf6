package tenant

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/landingkit/pkg/plans"
)

// PostgresStore persists tenants in a single `tenants` row per account.
// All writes go through an upsert so concurrent webhook deliveries for the
// same tenant serialize on the row lock.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a tenant store backed by the given pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	if db == nil {
		panic("tenant: pgx pool is required")
	}
	return &PostgresStore{db: db}
}

const tenantColumns = `id, plan, billing_interval,
	provider_customer_id, provider_subscription_id, provider_subscription_item_id, current_price_id,
	cancel_at_period_end, current_period_end, payment_failed_at,
	created_at, updated_at`

// GetByID implements Store.
func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return s.get(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
}

// GetBySubscriptionID implements Store.
func (s *PostgresStore) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*Tenant, error) {
	if subscriptionID == "" {
		return nil, ErrTenantNotFound
	}
	return s.get(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE provider_subscription_id = $1`, subscriptionID)
}

// GetByCustomerID implements Store.
func (s *PostgresStore) GetByCustomerID(ctx context.Context, customerID string) (*Tenant, error) {
	if customerID == "" {
		return nil, ErrTenantNotFound
	}
	return s.get(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE provider_customer_id = $1`, customerID)
}

func (s *PostgresStore) get(ctx context.Context, query string, arg any) (*Tenant, error) {
	var (
		t        Tenant
		plan     string
		interval string
	)
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&t.ID, &plan, &interval,
		&t.ProviderCustomerID, &t.ProviderSubscriptionID, &t.ProviderSubscriptionItemID, &t.CurrentPriceID,
		&t.CancelAtPeriodEnd, &t.CurrentPeriodEnd, &t.PaymentFailedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	t.Plan = plans.Plan(plan)
	t.BillingInterval = plans.Interval(interval)
	return &t, nil
}

// Save implements Store via a single-row upsert keyed by the tenant ID.
func (s *PostgresStore) Save(ctx context.Context, t *Tenant) error {
	if t == nil {
		return ErrNilTenant
	}

	now := time.Now().UTC()
	_, err := s.db.Exec(ctx, `
		INSERT INTO tenants (`+tenantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (id) DO UPDATE SET
			plan = EXCLUDED.plan,
			billing_interval = EXCLUDED.billing_interval,
			provider_customer_id = EXCLUDED.provider_customer_id,
			provider_subscription_id = EXCLUDED.provider_subscription_id,
			provider_subscription_item_id = EXCLUDED.provider_subscription_item_id,
			current_price_id = EXCLUDED.current_price_id,
			cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			current_period_end = EXCLUDED.current_period_end,
			payment_failed_at = EXCLUDED.payment_failed_at,
			updated_at = EXCLUDED.updated_at`,
		t.ID, string(t.Plan), string(t.BillingInterval),
		t.ProviderCustomerID, t.ProviderSubscriptionID, t.ProviderSubscriptionItemID, t.CurrentPriceID,
		t.CancelAtPeriodEnd, t.CurrentPeriodEnd, t.PaymentFailedAt,
		now,
	)
	return err
}
