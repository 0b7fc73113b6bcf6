package billing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Mountable is anything that exposes its routes as an http.Handler.
type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures which pieces to mount in the billing module.
// Each piece is optional and only mounted if provided.
type RouterOptions struct {
	// WebhookHandler receives provider webhook deliveries. Mounted without
	// session auth; the payload signature is the authentication.
	WebhookHandler http.HandlerFunc
	// Billing is the tenant-facing service (checkout, portal, subscription).
	Billing Mountable
	// RequireTenant wraps the tenant-facing routes with whatever loads the
	// authenticated tenant into the request context.
	RequireTenant func(http.Handler) http.Handler
}

// Router creates the billing module router.
//
// Example:
//
//	svc := billing.NewService(cfg, provider, catalog)
//
//	r := chi.NewRouter()
//	r.Mount("/", billing.Router(billing.RouterOptions{
//	    WebhookHandler: corebilling.WebhookHandler(provider, machine, log),
//	    Billing:        svc,
//	    RequireTenant:  sessions.LoadTenant,
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	if opts.WebhookHandler != nil {
		r.Post("/webhooks/billing", opts.WebhookHandler)
	}

	if opts.Billing != nil {
		handler := opts.Billing.Handle()
		if opts.RequireTenant != nil {
			handler = opts.RequireTenant(handler)
		}
		r.Mount("/billing", handler)
	}

	return r
}
