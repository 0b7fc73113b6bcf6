package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
	"github.com/google/uuid"
)

// PaddleConfig holds configuration for the Paddle billing provider.
// Missing credentials fail provider construction but must not block
// unrelated request routing; callers decide how fatal that is.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY,required"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddleProvider implements Provider for Paddle.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
}

// NewPaddleProvider creates a Paddle billing provider.
func NewPaddleProvider(cfg PaddleConfig) (*PaddleProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	var (
		client *paddle.SDK
		err    error
	)
	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(cfg.APIKey)
	case "production", "":
		client, err = paddle.New(cfg.APIKey)
	default:
		return nil, errors.Join(ErrInvalidEnvironment, fmt.Errorf("environment %q", cfg.Environment))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return &PaddleProvider{
		client:   client,
		verifier: paddle.NewWebhookVerifier(cfg.WebhookSecret),
	}, nil
}

// SignatureHeader implements Provider.
func (p *PaddleProvider) SignatureHeader() string { return "Paddle-Signature" }

// ParseWebhook implements Provider. Verifies the signature, then normalizes
// the loosely-typed payload into a typed Event.
func (p *PaddleProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error) {
	// The SDK verifier consumes an http.Request; rebuild one around the
	// already-read payload.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for verification: %w", err)
	}
	req.Header.Set(p.SignatureHeader(), signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return nil, errors.Join(ErrSignatureVerification, err)
	}
	if !valid {
		return nil, ErrSignatureVerification
	}

	var raw struct {
		EventID    string          `json:"event_id"`
		EventType  string          `json:"event_type"`
		OccurredAt string          `json:"occurred_at"`
		Data       json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}

	ev := &Event{
		Kind:          mapPaddleEventType(raw.EventType),
		ProviderEvent: raw.EventType,
		OccurredAt:    parsePaddleTime(raw.OccurredAt),
	}

	switch {
	case strings.HasPrefix(raw.EventType, "subscription."):
		sub, err := parseSubscriptionPayload(raw.Data)
		if err != nil {
			return nil, errors.Join(ErrMalformedPayload, err)
		}
		ev.SubscriptionID = sub.ID
		ev.CustomerID = sub.CustomerID
		ev.PriceID = sub.PriceID
		ev.Status = sub.Status
		ev.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
		ev.CurrentPeriodEnd = sub.CurrentPeriodEnd

	case strings.HasPrefix(raw.EventType, "transaction."):
		var txn struct {
			SubscriptionID string `json:"subscription_id"`
			CustomerID     string `json:"customer_id"`
			Status         string `json:"status"`
			CustomData     struct {
				TenantID string `json:"tenant_id"`
			} `json:"custom_data"`
			Items []struct {
				Price struct {
					ID string `json:"id"`
				} `json:"price"`
				PriceID string `json:"price_id"`
			} `json:"items"`
		}
		if err := json.Unmarshal(raw.Data, &txn); err != nil {
			return nil, errors.Join(ErrMalformedPayload, err)
		}
		ev.SubscriptionID = txn.SubscriptionID
		ev.CustomerID = txn.CustomerID
		ev.Status = txn.Status
		if txn.CustomData.TenantID != "" {
			if id, err := uuid.Parse(txn.CustomData.TenantID); err == nil {
				ev.TenantID = id
			}
		}
		if len(txn.Items) > 0 {
			ev.PriceID = txn.Items[0].Price.ID
			if ev.PriceID == "" {
				ev.PriceID = txn.Items[0].PriceID
			}
		}
	}

	return ev, nil
}

// FetchSubscription implements Provider. The SDK response is normalized
// through the same JSON path as webhook payloads so there is exactly one
// parser for Paddle subscription shapes.
func (p *PaddleProvider) FetchSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	res, err := p.client.SubscriptionsClient.GetSubscription(ctx, &paddle.GetSubscriptionRequest{
		SubscriptionID: subscriptionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch paddle subscription %s: %w", subscriptionID, err)
	}

	raw, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize paddle subscription: %w", err)
	}
	return parseSubscriptionPayload(raw)
}

// CreateCheckoutLink implements Provider via a catalog transaction with a
// hosted checkout.
func (p *PaddleProvider) CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	if req.PriceID == "" {
		return nil, errors.New("price ID is required")
	}
	if req.TenantID == uuid.Nil {
		return nil, errors.New("tenant ID is required")
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  req.PriceID,
		Quantity: 1,
	})

	// The tenant ID rides in custom data; the completion webhook recovers
	// it as the client reference.
	txnReq := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			"tenant_id": req.TenantID.String(),
		},
	}
	if req.Email != "" {
		txnReq.CustomData["email"] = req.Email
	}
	if req.SuccessURL != "" {
		txnReq.Checkout = &paddle.TransactionCheckout{
			URL: paddle.PtrTo(req.SuccessURL),
		}
	}

	txn, err := p.client.TransactionsClient.CreateTransaction(ctx, txnReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle transaction: %w", err)
	}

	if txn.Checkout == nil || txn.Checkout.URL == nil || *txn.Checkout.URL == "" {
		return nil, ErrNoCheckoutURL
	}

	return &CheckoutLink{
		URL:       *txn.Checkout.URL,
		SessionID: txn.ID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

// GetCustomerPortalLink implements Provider.
func (p *PaddleProvider) GetCustomerPortalLink(ctx context.Context, customerID, subscriptionID string) (*PortalLink, error) {
	if customerID == "" {
		return nil, errors.New("customer ID is required")
	}

	req := &paddle.CreateCustomerPortalSessionRequest{
		CustomerID: customerID,
	}
	if subscriptionID != "" {
		req.SubscriptionIDs = []string{subscriptionID}
	}

	session, err := p.client.CustomerPortalSessionsClient.CreateCustomerPortalSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle customer portal session: %w", err)
	}

	if session.URLs.General.Overview == "" {
		return nil, ErrNoPortalURL
	}
	return &PortalLink{
		URL:       session.URLs.General.Overview,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

// subscriptionPayload is the subset of Paddle's subscription shape the state
// machine needs, shared between webhook payloads and API refetches.
func parseSubscriptionPayload(data []byte) (*Subscription, error) {
	var raw struct {
		ID                   string `json:"id"`
		Status               string `json:"status"`
		CustomerID           string `json:"customer_id"`
		CurrentBillingPeriod *struct {
			EndsAt string `json:"ends_at"`
		} `json:"current_billing_period"`
		ScheduledChange *struct {
			Action string `json:"action"`
		} `json:"scheduled_change"`
		Items []struct {
			ID    string `json:"id"`
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse subscription payload: %w", err)
	}

	sub := &Subscription{
		ID:                raw.ID,
		Status:            raw.Status,
		CustomerID:        raw.CustomerID,
		CancelAtPeriodEnd: raw.ScheduledChange != nil && raw.ScheduledChange.Action == "cancel",
	}
	if raw.CurrentBillingPeriod != nil {
		if end := parsePaddleTime(raw.CurrentBillingPeriod.EndsAt); !end.IsZero() {
			sub.CurrentPeriodEnd = &end
		}
	}
	if len(raw.Items) > 0 {
		sub.ItemID = raw.Items[0].ID
		sub.PriceID = raw.Items[0].Price.ID
	}
	return sub, nil
}

func mapPaddleEventType(eventType string) EventKind {
	switch eventType {
	case "transaction.completed":
		return EventCheckoutCompleted
	case "subscription.updated", "subscription.resumed":
		return EventSubscriptionUpdated
	case "subscription.canceled":
		return EventSubscriptionDeleted
	case "transaction.payment_failed":
		return EventPaymentFailed
	default:
		return EventUnknown
	}
}

func parsePaddleTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
