// Package billing converges tenant plan state to the payment provider's
// ground truth under at-least-once, possibly-reordered webhook delivery.
//
// The provider's loosely-typed webhook JSON is normalized into a typed Event
// at the parsing boundary (Provider.ParseWebhook). The StateMachine applies
// each event as a full next-state overwrite of the tenant's billing fields:
//
//   - checkout completed: refetches the authoritative subscription, maps its
//     price to a plan, activates the tenant
//   - subscription updated: applied only in active/trialing status, matched
//     by provider subscription ID
//   - subscription deleted: unconditional reset to the free tier; always
//     wins over a late out-of-order update
//   - payment failed: records the failure timestamp, never downgrades
//
// Because every handler overwrites the same field set, redelivering any
// event converges to the same tenant record; no dedup ledger is needed.
//
// WebhookHandler wires the machine to HTTP with the acknowledgement contract
// providers expect: 4xx for signature failures and malformed payloads, 2xx
// for everything dispatched, even when applying failed internally.
//
// PaddleProvider implements Provider on the official Paddle SDK.
package billing
