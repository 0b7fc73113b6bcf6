package billing

import (
	"io"
	"log/slog"
	"net/http"
)

// maxWebhookBody bounds webhook payload reads. Provider events are a few KB;
// 1 MiB leaves generous headroom.
const maxWebhookBody = 1 << 20

// WebhookHandler serves the provider webhook endpoint.
//
// Response contract: 4xx only on signature failure or a malformed payload,
// so the provider stops retrying forged or garbage requests. Once an event
// has been dispatched, the handler acknowledges with 2xx even when applying
// it failed internally; redelivery storms are worse than a tenant staying
// stale until the next event for its subscription.
func WebhookHandler(provider Provider, machine *StateMachine, log *slog.Logger) http.HandlerFunc {
	if provider == nil {
		panic("billing: provider is required")
	}
	if machine == nil {
		panic("billing: state machine is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			http.Error(w, "failed to read payload", http.StatusBadRequest)
			return
		}

		ev, err := provider.ParseWebhook(r.Context(), payload, r.Header.Get(provider.SignatureHeader()))
		if err != nil {
			log.WarnContext(r.Context(), "rejected billing webhook",
				slog.Any("error", err))
			http.Error(w, "invalid webhook", http.StatusBadRequest)
			return
		}

		if err := machine.Apply(r.Context(), ev); err != nil {
			// Acknowledged regardless; logged with full event context for
			// operator follow-up.
			log.ErrorContext(r.Context(), "failed to apply billing event",
				slog.String("event_kind", string(ev.Kind)),
				slog.String("provider_event", ev.ProviderEvent),
				slog.String("subscription_id", ev.SubscriptionID),
				slog.String("customer_id", ev.CustomerID),
				slog.Any("error", err))
		}

		w.WriteHeader(http.StatusOK)
	}
}
