package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/landingkit/pkg/plans"
	"github.com/dmitrymomot/landingkit/pkg/tenant"
)

// StateMachine applies normalized webhook events to tenant records. Every
// handler computes a complete next state from (event, current tenant,
// refetched subscription) and overwrites the same fields, so redelivery of
// any event converges to the same record without a dedup ledger.
//
// Ordering: handlers match tenants by provider subscription or customer ID.
// A deletion clears the subscription ID, so a late out-of-order update for
// that subscription no longer matches any tenant; deletion always wins.
type StateMachine struct {
	store    tenant.Store
	catalog  *plans.Catalog
	provider Provider
	log      *slog.Logger
	now      func() time.Time
}

// StateMachineOption configures optional state machine settings.
type StateMachineOption func(*StateMachine)

// WithLogger sets the logger used for observability of no-op and fallback
// paths.
func WithLogger(log *slog.Logger) StateMachineOption {
	return func(m *StateMachine) {
		if log != nil {
			m.log = log
		}
	}
}

// WithClock overrides the time source; tests pin it.
func WithClock(now func() time.Time) StateMachineOption {
	return func(m *StateMachine) {
		if now != nil {
			m.now = now
		}
	}
}

// NewStateMachine creates a state machine. Panics if a required dependency
// is nil to fail fast during initialization.
func NewStateMachine(store tenant.Store, catalog *plans.Catalog, provider Provider, opts ...StateMachineOption) *StateMachine {
	if store == nil {
		panic("billing: tenant store is required")
	}
	if catalog == nil {
		panic("billing: plan catalog is required")
	}
	if provider == nil {
		panic("billing: provider is required")
	}

	m := &StateMachine{
		store:    store,
		catalog:  catalog,
		provider: provider,
		log:      slog.New(slog.DiscardHandler),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply dispatches an event to its handler. Unrecognized kinds are logged
// no-ops; delivery-level concerns (acknowledgement, retries) belong to the
// webhook handler, not here.
func (m *StateMachine) Apply(ctx context.Context, ev *Event) error {
	if ev == nil {
		return ErrIncompleteEvent
	}

	switch ev.Kind {
	case EventCheckoutCompleted:
		return m.applyCheckoutCompleted(ctx, ev)
	case EventSubscriptionUpdated:
		return m.applySubscriptionUpdated(ctx, ev)
	case EventSubscriptionDeleted:
		return m.applySubscriptionDeleted(ctx, ev)
	case EventPaymentFailed:
		return m.applyPaymentFailed(ctx, ev)
	default:
		m.log.InfoContext(ctx, "ignoring unrecognized billing event",
			slog.String("provider_event", ev.ProviderEvent))
		return nil
	}
}

// applyCheckoutCompleted activates a tenant's subscription from the
// provider's authoritative subscription object. Redelivery re-derives and
// re-writes identical fields.
func (m *StateMachine) applyCheckoutCompleted(ctx context.Context, ev *Event) error {
	if ev.TenantID == uuid.Nil || ev.SubscriptionID == "" {
		return errors.Join(ErrIncompleteEvent,
			fmt.Errorf("checkout event needs tenant and subscription identifiers, got tenant=%s subscription=%q",
				ev.TenantID, ev.SubscriptionID))
	}

	sub, err := m.provider.FetchSubscription(ctx, ev.SubscriptionID)
	if err != nil {
		return fmt.Errorf("fetch subscription %s: %w", ev.SubscriptionID, err)
	}

	current, err := m.store.GetByID(ctx, ev.TenantID)
	if err != nil {
		if !errors.Is(err, tenant.ErrTenantNotFound) {
			return fmt.Errorf("load tenant %s: %w", ev.TenantID, err)
		}
		// Checkout can land before the tenant row exists in this store;
		// start from a blank record so convergence does not depend on
		// creation order.
		current = &tenant.Tenant{ID: ev.TenantID}
	}

	point := m.mapPrice(ctx, sub.PriceID)
	next := nextAfterCheckout(*current, sub, point)
	if err := m.store.Save(ctx, &next); err != nil {
		return fmt.Errorf("save tenant %s: %w", next.ID, err)
	}
	return nil
}

// applySubscriptionUpdated applies a plan/interval change only for active or
// trialing subscriptions. Matching by provider subscription ID means a
// replayed or reordered event targets the correct tenant regardless of
// delivery order.
func (m *StateMachine) applySubscriptionUpdated(ctx context.Context, ev *Event) error {
	if !statusAllowsUpdate(ev.Status) {
		m.log.DebugContext(ctx, "skipping subscription update in transitional status",
			slog.String("subscription_id", ev.SubscriptionID),
			slog.String("status", ev.Status))
		return nil
	}

	current, err := m.store.GetBySubscriptionID(ctx, ev.SubscriptionID)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			// Either the update outran the checkout webhook or the
			// subscription was already deleted; both converge on a later
			// event for this subscription.
			m.log.WarnContext(ctx, "subscription update matches no tenant",
				slog.String("subscription_id", ev.SubscriptionID))
			return nil
		}
		return fmt.Errorf("load tenant by subscription %s: %w", ev.SubscriptionID, err)
	}

	point := m.mapPrice(ctx, ev.PriceID)
	next := nextAfterUpdate(*current, ev, point)
	if err := m.store.Save(ctx, &next); err != nil {
		return fmt.Errorf("save tenant %s: %w", next.ID, err)
	}
	return nil
}

// applySubscriptionDeleted unconditionally reverts the tenant to the free
// tier. A terminal overwrite, not a conditional merge: this is what makes
// deletion win over any late update.
func (m *StateMachine) applySubscriptionDeleted(ctx context.Context, ev *Event) error {
	current, err := m.store.GetBySubscriptionID(ctx, ev.SubscriptionID)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			// Already free or never activated; reapplying is a no-op.
			return nil
		}
		return fmt.Errorf("load tenant by subscription %s: %w", ev.SubscriptionID, err)
	}

	next := nextAfterDeletion(*current)
	if err := m.store.Save(ctx, &next); err != nil {
		return fmt.Errorf("save tenant %s: %w", next.ID, err)
	}
	return nil
}

// applyPaymentFailed records the failure timestamp without touching the
// plan. The event is customer-scoped, so it matches by provider customer ID.
func (m *StateMachine) applyPaymentFailed(ctx context.Context, ev *Event) error {
	current, err := m.store.GetByCustomerID(ctx, ev.CustomerID)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			m.log.WarnContext(ctx, "payment failure matches no tenant",
				slog.String("customer_id", ev.CustomerID))
			return nil
		}
		return fmt.Errorf("load tenant by customer %s: %w", ev.CustomerID, err)
	}

	failedAt := m.now()
	next := *current
	next.PaymentFailedAt = &failedAt
	if err := m.store.Save(ctx, &next); err != nil {
		return fmt.Errorf("save tenant %s: %w", next.ID, err)
	}
	return nil
}

// mapPrice resolves a price ID, logging the miss when the free fallback was
// taken so operators can spot catalog gaps.
func (m *StateMachine) mapPrice(ctx context.Context, priceID string) plans.PricePoint {
	point, known := m.catalog.MapPrice(priceID)
	if !known {
		m.log.WarnContext(ctx, "price not in catalog, falling back to free tier",
			slog.String("price_id", priceID))
	}
	return point
}

// The next-state constructors are pure: they never read clocks or stores,
// which is what yields the idempotence property.

func nextAfterCheckout(cur tenant.Tenant, sub *Subscription, point plans.PricePoint) tenant.Tenant {
	next := cur
	next.Plan = point.Plan
	next.BillingInterval = point.Interval
	next.ProviderCustomerID = sub.CustomerID
	next.ProviderSubscriptionID = sub.ID
	next.ProviderSubscriptionItemID = sub.ItemID
	next.CurrentPriceID = sub.PriceID
	next.CancelAtPeriodEnd = false
	next.PaymentFailedAt = nil
	if sub.CurrentPeriodEnd != nil {
		end := *sub.CurrentPeriodEnd
		next.CurrentPeriodEnd = &end
	}
	return next
}

func nextAfterUpdate(cur tenant.Tenant, ev *Event, point plans.PricePoint) tenant.Tenant {
	next := cur
	next.Plan = point.Plan
	next.BillingInterval = point.Interval
	next.CurrentPriceID = ev.PriceID
	next.CancelAtPeriodEnd = ev.CancelAtPeriodEnd
	// A status-active update implies payment recovered.
	next.PaymentFailedAt = nil
	if ev.CurrentPeriodEnd != nil {
		end := *ev.CurrentPeriodEnd
		next.CurrentPeriodEnd = &end
	}
	return next
}

func nextAfterDeletion(cur tenant.Tenant) tenant.Tenant {
	next := cur
	next.Plan = plans.PlanFree
	next.BillingInterval = plans.IntervalMonthly
	next.ProviderSubscriptionID = ""
	next.ProviderSubscriptionItemID = ""
	next.CurrentPriceID = ""
	next.CancelAtPeriodEnd = false
	next.CurrentPeriodEnd = nil
	return next
}
