package tenant

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/landingkit/pkg/plans"
)

// Tenant is one account of the landing-page builder. Billing-related fields
// are mutated exclusively by the billing state machine; everything else reads
// them to gate features.
type Tenant struct {
	ID              uuid.UUID
	Plan            plans.Plan
	BillingInterval plans.Interval

	// Billing provider identifiers. Empty until the first completed checkout
	// webhook is applied; plan != free with an empty subscription ID is only
	// valid during that brief window.
	ProviderCustomerID         string
	ProviderSubscriptionID     string
	ProviderSubscriptionItemID string
	CurrentPriceID             string

	CancelAtPeriodEnd bool
	CurrentPeriodEnd  *time.Time
	PaymentFailedAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// State is a view derived from the tenant's billing fields. It is never
// stored; recompute it whenever the fields change.
type State string

const (
	StateFree                State = "free"
	StateActive              State = "active"
	StatePendingCancellation State = "pending_cancellation"
	StatePaymentFailed       State = "payment_failed"
)

// State derives the subscription state from the billing fields.
func (t *Tenant) State() State {
	if t.Plan == plans.PlanFree || t.Plan == "" {
		return StateFree
	}
	if t.PaymentFailedAt != nil {
		return StatePaymentFailed
	}
	if t.CancelAtPeriodEnd {
		return StatePendingCancellation
	}
	return StateActive
}

// IsPendingCancellation reports whether the subscription remains active but
// will not renew at the end of the current period.
func (t *Tenant) IsPendingCancellation() bool {
	return t.State() == StatePendingCancellation
}

// HasPaymentFailure reports whether the provider signalled a failed payment
// that has not been recovered yet.
func (t *Tenant) HasPaymentFailure() bool {
	return t.PaymentFailedAt != nil
}

// OnPaidPlan reports whether the tenant is on any paid tier.
func (t *Tenant) OnPaidPlan() bool {
	return t.Plan != plans.PlanFree && t.Plan != ""
}
