package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Provider abstracts the payment provider. Implementations use the official
// provider SDK and normalize its payloads at the boundary.
type Provider interface {
	// ParseWebhook verifies the payload signature and returns the normalized
	// event. Must fail before any state is touched when the signature does
	// not verify, wrapping ErrSignatureVerification.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error)

	// SignatureHeader returns the HTTP header the provider carries its
	// webhook signature in.
	SignatureHeader() string

	// FetchSubscription retrieves the authoritative subscription object.
	// Checkout handling re-derives tenant state from it rather than trusting
	// the event payload.
	FetchSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)

	// CreateCheckoutLink creates a hosted checkout session carrying the
	// tenant ID as client reference so the completion webhook can recover it.
	CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)

	// GetCustomerPortalLink returns a pre-authenticated customer portal URL.
	GetCustomerPortalLink(ctx context.Context, customerID, subscriptionID string) (*PortalLink, error)
}

// Subscription is the provider's authoritative subscription state, normalized.
type Subscription struct {
	ID                string
	CustomerID        string
	ItemID            string
	PriceID           string
	Status            string
	CancelAtPeriodEnd bool
	CurrentPeriodEnd  *time.Time
}

// CheckoutRequest contains data needed to create a checkout session.
type CheckoutRequest struct {
	PriceID    string
	TenantID   uuid.UUID
	Email      string
	SuccessURL string
	CancelURL  string
}

// CheckoutLink represents a hosted checkout session.
type CheckoutLink struct {
	URL       string
	SessionID string
	ExpiresAt time.Time
}

// PortalLink represents a customer portal session.
type PortalLink struct {
	URL       string
	ExpiresAt time.Time
}
