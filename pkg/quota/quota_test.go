package quota_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/landingkit/pkg/billing"
	"github.com/dmitrymomot/landingkit/pkg/plans"
	"github.com/dmitrymomot/landingkit/pkg/quota"
	"github.com/dmitrymomot/landingkit/pkg/tenant"
)

func fixedCounter(v int64) quota.UsageCounterFunc {
	return func(ctx context.Context, tenantID uuid.UUID) (int64, error) {
		return v, nil
	}
}

func failingCounter(err error) quota.UsageCounterFunc {
	return func(ctx context.Context, tenantID uuid.UUID) (int64, error) {
		return 0, err
	}
}

func defaultCatalog(t *testing.T) *plans.Catalog {
	t.Helper()
	catalog, err := plans.NewCatalog(plans.DefaultLimits(), plans.DefaultPrices())
	require.NoError(t, err)
	return catalog
}

func TestCheckCanCreatePage(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("under the limit", func(t *testing.T) {
		counters := quota.NewRegistry()
		counters.Register(quota.ResourcePages, fixedCounter(2))
		enforcer := quota.NewEnforcer(defaultCatalog(t), counters)

		decision := enforcer.CheckCanCreatePage(ctx, tenantID, plans.PlanFree)
		assert.True(t, decision.Allowed)
		assert.Equal(t, int64(2), decision.CurrentCount)
		assert.Equal(t, int64(3), decision.MaxPages)
		assert.Equal(t, plans.PlanFree, decision.Plan)
		assert.Empty(t, decision.Reason)
	})

	t.Run("at the limit", func(t *testing.T) {
		limits := plans.DefaultLimits()
		limits[plans.PlanPersonal] = plans.Limits{
			MaxPages:         5,
			MaxStorageBytes:  1 << 30,
			MaxCustomDomains: 3, AllowCustomDomain: true,
		}
		catalog, err := plans.NewCatalog(limits, plans.DefaultPrices())
		require.NoError(t, err)

		counters := quota.NewRegistry()
		counters.Register(quota.ResourcePages, fixedCounter(5))
		enforcer := quota.NewEnforcer(catalog, counters)

		decision := enforcer.CheckCanCreatePage(ctx, tenantID, plans.PlanPersonal)
		assert.False(t, decision.Allowed)
		assert.Equal(t, int64(5), decision.CurrentCount)
		assert.Equal(t, int64(5), decision.MaxPages)
		assert.Equal(t, quota.ReasonLimitReached, decision.Reason)
	})

	t.Run("unlimited plan skips the counter", func(t *testing.T) {
		counters := quota.NewRegistry()
		counters.Register(quota.ResourcePages, failingCounter(errors.New("db down")))
		enforcer := quota.NewEnforcer(defaultCatalog(t), counters)

		decision := enforcer.CheckCanCreatePage(ctx, tenantID, plans.PlanBusiness)
		assert.True(t, decision.Allowed)
		assert.Equal(t, plans.Unlimited, decision.MaxPages)
	})

	t.Run("usage lookup failure denies", func(t *testing.T) {
		counters := quota.NewRegistry()
		counters.Register(quota.ResourcePages, failingCounter(errors.New("db down")))
		enforcer := quota.NewEnforcer(defaultCatalog(t), counters)

		decision := enforcer.CheckCanCreatePage(ctx, tenantID, plans.PlanFree)
		assert.False(t, decision.Allowed)
		assert.Equal(t, quota.ReasonUsageUnknown, decision.Reason)
	})

	t.Run("missing counter denies", func(t *testing.T) {
		enforcer := quota.NewEnforcer(defaultCatalog(t), quota.NewRegistry())

		decision := enforcer.CheckCanCreatePage(ctx, tenantID, plans.PlanFree)
		assert.False(t, decision.Allowed)
		assert.Equal(t, quota.ReasonUsageUnknown, decision.Reason)
	})
}

func TestCheckCanUseCustomDomain(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("free plan forbids domains", func(t *testing.T) {
		enforcer := quota.NewEnforcer(defaultCatalog(t), quota.NewRegistry())

		decision := enforcer.CheckCanUseCustomDomain(ctx, tenantID, plans.PlanFree)
		assert.False(t, decision.Allowed)
		assert.Equal(t, plans.PlanFree, decision.Plan)
		assert.Equal(t, int64(0), decision.MaxDomains)
		assert.Equal(t, quota.ReasonPlanForbidsDomains, decision.Reason)
	})

	t.Run("personal plan under the limit", func(t *testing.T) {
		counters := quota.NewRegistry()
		counters.Register(quota.ResourceDomains, fixedCounter(1))
		enforcer := quota.NewEnforcer(defaultCatalog(t), counters)

		decision := enforcer.CheckCanUseCustomDomain(ctx, tenantID, plans.PlanPersonal)
		assert.True(t, decision.Allowed)
		assert.Equal(t, int64(1), decision.CurrentCount)
		assert.Equal(t, int64(3), decision.MaxDomains)
	})

	t.Run("personal plan at the limit", func(t *testing.T) {
		counters := quota.NewRegistry()
		counters.Register(quota.ResourceDomains, fixedCounter(3))
		enforcer := quota.NewEnforcer(defaultCatalog(t), counters)

		decision := enforcer.CheckCanUseCustomDomain(ctx, tenantID, plans.PlanPersonal)
		assert.False(t, decision.Allowed)
		assert.Equal(t, quota.ReasonLimitReached, decision.Reason)
	})

	t.Run("usage lookup failure denies", func(t *testing.T) {
		counters := quota.NewRegistry()
		counters.Register(quota.ResourceDomains, failingCounter(errors.New("redis down")))
		enforcer := quota.NewEnforcer(defaultCatalog(t), counters)

		decision := enforcer.CheckCanUseCustomDomain(ctx, tenantID, plans.PlanPersonal)
		assert.False(t, decision.Allowed)
		assert.Equal(t, quota.ReasonUsageUnknown, decision.Reason)
	})
}

func TestCheckCanUpload(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("fits within limit", func(t *testing.T) {
		counters := quota.NewRegistry()
		counters.Register(quota.ResourceStorageBytes, fixedCounter(40<<20))
		enforcer := quota.NewEnforcer(defaultCatalog(t), counters)

		decision := enforcer.CheckCanUpload(ctx, tenantID, plans.PlanFree, 10<<20)
		assert.True(t, decision.Allowed)
		assert.Equal(t, int64(40<<20), decision.UsedBytes)
		assert.Equal(t, int64(10<<20), decision.IncomingBytes)
		assert.Equal(t, int64(50<<20), decision.MaxBytes)
	})

	t.Run("would exceed limit", func(t *testing.T) {
		counters := quota.NewRegistry()
		counters.Register(quota.ResourceStorageBytes, fixedCounter(45<<20))
		enforcer := quota.NewEnforcer(defaultCatalog(t), counters)

		decision := enforcer.CheckCanUpload(ctx, tenantID, plans.PlanFree, 10<<20)
		assert.False(t, decision.Allowed)
		assert.Equal(t, quota.ReasonLimitReached, decision.Reason)
	})

	t.Run("usage lookup failure denies", func(t *testing.T) {
		counters := quota.NewRegistry()
		counters.Register(quota.ResourceStorageBytes, failingCounter(errors.New("db down")))
		enforcer := quota.NewEnforcer(defaultCatalog(t), counters)

		decision := enforcer.CheckCanUpload(ctx, tenantID, plans.PlanFree, 1)
		assert.False(t, decision.Allowed)
		assert.Equal(t, quota.ReasonUsageUnknown, decision.Reason)
	})
}

// Exercises the full upgrade path: a free tenant denied a custom domain
// gains the ability after a checkout completes for a personal-plan price.
func TestUpgradeUnlocksCustomDomain(t *testing.T) {
	ctx := context.Background()
	catalog := defaultCatalog(t)

	store := tenant.NewMemoryStore()
	tenantID := uuid.New()
	require.NoError(t, store.Save(ctx, &tenant.Tenant{ID: tenantID, Plan: plans.PlanFree}))

	counters := quota.NewRegistry()
	counters.Register(quota.ResourceDomains, fixedCounter(0))
	enforcer := quota.NewEnforcer(catalog, counters)

	current, err := store.GetByID(ctx, tenantID)
	require.NoError(t, err)
	decision := enforcer.CheckCanUseCustomDomain(ctx, current.ID, current.Plan)
	assert.False(t, decision.Allowed)
	assert.Equal(t, plans.PlanFree, decision.Plan)

	provider := &stubProvider{subscription: &billing.Subscription{
		ID:         "sub_1",
		CustomerID: "cus_1",
		PriceID:    "price_personal_month",
		Status:     billing.StatusActive,
	}}
	machine := billing.NewStateMachine(store, catalog, provider)
	require.NoError(t, machine.Apply(ctx, &billing.Event{
		Kind:           billing.EventCheckoutCompleted,
		TenantID:       tenantID,
		SubscriptionID: "sub_1",
	}))

	current, err = store.GetByID(ctx, tenantID)
	require.NoError(t, err)
	require.Equal(t, plans.PlanPersonal, current.Plan)

	decision = enforcer.CheckCanUseCustomDomain(ctx, current.ID, current.Plan)
	assert.True(t, decision.Allowed)
	assert.Equal(t, plans.PlanPersonal, decision.Plan)
}

// stubProvider satisfies billing.Provider with canned responses.
type stubProvider struct {
	subscription *billing.Subscription
}

func (s *stubProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*billing.Event, error) {
	return nil, billing.ErrMalformedPayload
}

func (s *stubProvider) SignatureHeader() string { return "Paddle-Signature" }

func (s *stubProvider) FetchSubscription(ctx context.Context, subscriptionID string) (*billing.Subscription, error) {
	return s.subscription, nil
}

func (s *stubProvider) CreateCheckoutLink(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutLink, error) {
	return nil, billing.ErrNoCheckoutURL
}

func (s *stubProvider) GetCustomerPortalLink(ctx context.Context, customerID, subscriptionID string) (*billing.PortalLink, error) {
	return nil, billing.ErrNoPortalURL
}
