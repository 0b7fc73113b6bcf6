package billing

import (
	"time"

	"github.com/google/uuid"
)

// EventKind is the normalized webhook event type. Provider implementations
// map their specific event names to these kinds at the parsing boundary so
// the state machine operates on strongly-typed structures.
type EventKind string

const (
	// EventCheckoutCompleted signals a finished checkout for a tenant.
	EventCheckoutCompleted EventKind = "checkout_completed"

	// EventSubscriptionUpdated signals a change to an existing subscription
	// (plan change, renewal, scheduled cancellation).
	EventSubscriptionUpdated EventKind = "subscription_updated"

	// EventSubscriptionDeleted signals the provider has terminated the
	// subscription; the tenant reverts to the free tier.
	EventSubscriptionDeleted EventKind = "subscription_deleted"

	// EventPaymentFailed signals a failed invoice payment. A warning, not a
	// downgrade; downgrades arrive as EventSubscriptionDeleted once the
	// provider's dunning process exhausts.
	EventPaymentFailed EventKind = "payment_failed"

	// EventUnknown is any event type the provider mapping does not handle.
	// Applied as a logged no-op, never an error.
	EventUnknown EventKind = "unknown"
)

// Subscription statuses a provider reports. Only active and trialing
// subscriptions may change a tenant's plan.
const (
	StatusActive   = "active"
	StatusTrialing = "trialing"
)

// Event is a normalized, transient webhook event. Consumed once and
// discarded; idempotent handlers make a dedup ledger unnecessary.
type Event struct {
	Kind          EventKind
	ProviderEvent string

	// TenantID is recovered from the checkout's client reference; zero for
	// every other kind, which match tenants by provider identifiers instead.
	TenantID uuid.UUID

	SubscriptionID string
	CustomerID     string
	PriceID        string
	Status         string

	CancelAtPeriodEnd bool
	CurrentPeriodEnd  *time.Time

	OccurredAt time.Time
}

// statusAllowsUpdate reports whether a subscription status may mutate the
// tenant's plan. Transitional statuses (incomplete, past_due mid-retry) must
// not upgrade or downgrade prematurely.
func statusAllowsUpdate(status string) bool {
	return status == StatusActive || status == StatusTrialing
}
