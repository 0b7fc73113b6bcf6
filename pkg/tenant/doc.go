// Package tenant defines the tenant record of the landing-page builder and
// its persistence contract.
//
// The billing fields (plan, provider IDs, cancellation flag, period end,
// payment failure timestamp) are owned by the billing state machine; no other
// component may write them. Readers derive the subscription state on demand
// via Tenant.State rather than storing it.
//
// Two Store implementations ship with the package: MemoryStore for tests and
// local development, and PostgresStore with single-row upserts for
// production.
package tenant
