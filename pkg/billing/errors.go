package billing

import "errors"

var (
	ErrMissingAPIKey         = errors.New("billing provider API key is required")
	ErrMissingWebhookSecret  = errors.New("billing provider webhook secret is required")
	ErrInvalidEnvironment    = errors.New("invalid billing provider environment")
	ErrSignatureVerification = errors.New("webhook signature verification failed")
	ErrMalformedPayload      = errors.New("malformed webhook payload")
	ErrIncompleteEvent       = errors.New("webhook event is missing required identifiers")
	ErrNoCheckoutURL         = errors.New("no checkout URL returned from provider")
	ErrNoPortalURL           = errors.New("no portal URL returned from provider")
)
