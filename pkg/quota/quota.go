package quota

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/landingkit/pkg/plans"
)

// Resource represents a countable tenant resource type.
type Resource string

// Resources metered against plan limits.
const (
	ResourcePages        Resource = "pages"
	ResourceStorageBytes Resource = "storage_bytes"
	ResourceDomains      Resource = "custom_domains"
)

// UsageCounterFunc returns the current usage for a tenant resource.
// Should be fast: cache or aggregate at repository level.
type UsageCounterFunc func(ctx context.Context, tenantID uuid.UUID) (int64, error)

// CounterRegistry maps a Resource to its UsageCounterFunc.
// Not thread-safe: register all counters at startup only.
type CounterRegistry map[Resource]UsageCounterFunc

// NewRegistry returns a new, empty CounterRegistry.
func NewRegistry() CounterRegistry {
	return make(CounterRegistry)
}

// Register sets or replaces the UsageCounterFunc for the given resource.
// Panics if fn is nil.
func (r CounterRegistry) Register(res Resource, fn UsageCounterFunc) {
	if fn == nil {
		panic(fmt.Sprintf("quota: UsageCounterFunc for resource %q cannot be nil", res))
	}
	r[res] = fn
}

// Reason explains a denial. Empty on allowed decisions.
type Reason string

const (
	// ReasonLimitReached means the action would push usage past the plan limit.
	ReasonLimitReached Reason = "limit_reached"
	// ReasonPlanForbidsDomains means the plan does not include custom domains at all.
	ReasonPlanForbidsDomains Reason = "plan_forbids_custom_domains"
	// ReasonUsageUnknown means current usage could not be determined.
	// Checks fail closed rather than allow on unknown usage.
	ReasonUsageUnknown Reason = "usage_unknown"
)

// PageDecision is the outcome of a create-page check. The counts are suitable
// for direct display to the tenant.
type PageDecision struct {
	Allowed      bool       `json:"allowed"`
	CurrentCount int64      `json:"current_count"`
	MaxPages     int64      `json:"max_pages"`
	Plan         plans.Plan `json:"plan"`
	Reason       Reason     `json:"reason,omitempty"`
}

// DomainDecision is the outcome of an add-custom-domain check.
type DomainDecision struct {
	Allowed      bool       `json:"allowed"`
	CurrentCount int64      `json:"current_count"`
	MaxDomains   int64      `json:"max_domains"`
	Plan         plans.Plan `json:"plan"`
	Reason       Reason     `json:"reason,omitempty"`
}

// UploadDecision is the outcome of an asset-upload check.
type UploadDecision struct {
	Allowed       bool       `json:"allowed"`
	UsedBytes     int64      `json:"used_bytes"`
	IncomingBytes int64      `json:"incoming_bytes"`
	MaxBytes      int64      `json:"max_bytes"`
	Plan          plans.Plan `json:"plan"`
	Reason        Reason     `json:"reason,omitempty"`
}

// Enforcer answers allow/deny for tenant actions against plan limits.
//
// All checks are read-only and side-effect-free. Check-then-act is not
// atomic: two concurrent requests may both pass and jointly overshoot a
// limit by a small margin. Soft-limit semantics, not a reservation system.
type Enforcer struct {
	catalog  *plans.Catalog
	counters CounterRegistry
	log      *slog.Logger
}

// EnforcerOption configures an Enforcer.
type EnforcerOption func(*Enforcer)

// WithLogger sets the logger used for usage-lookup warnings.
func WithLogger(log *slog.Logger) EnforcerOption {
	return func(e *Enforcer) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEnforcer creates an Enforcer over the given plan catalog and usage
// counters. Panics on nil required dependencies.
func NewEnforcer(catalog *plans.Catalog, counters CounterRegistry, opts ...EnforcerOption) *Enforcer {
	if catalog == nil {
		panic("quota: plan catalog is required")
	}
	if counters == nil {
		counters = NewRegistry()
	}

	e := &Enforcer{
		catalog:  catalog,
		counters: counters,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CheckCanCreatePage reports whether the tenant may create one more page.
func (e *Enforcer) CheckCanCreatePage(ctx context.Context, tenantID uuid.UUID, plan plans.Plan) PageDecision {
	limits := e.catalog.Limits(plan)

	if limits.MaxPages == plans.Unlimited {
		return PageDecision{Allowed: true, MaxPages: plans.Unlimited, Plan: plan}
	}

	current, ok := e.count(ctx, ResourcePages, tenantID)
	if !ok {
		return PageDecision{MaxPages: limits.MaxPages, Plan: plan, Reason: ReasonUsageUnknown}
	}

	if current >= limits.MaxPages {
		return PageDecision{
			CurrentCount: current,
			MaxPages:     limits.MaxPages,
			Plan:         plan,
			Reason:       ReasonLimitReached,
		}
	}

	return PageDecision{Allowed: true, CurrentCount: current, MaxPages: limits.MaxPages, Plan: plan}
}

// CheckCanUseCustomDomain reports whether the tenant may bind one more
// custom domain.
func (e *Enforcer) CheckCanUseCustomDomain(ctx context.Context, tenantID uuid.UUID, plan plans.Plan) DomainDecision {
	limits := e.catalog.Limits(plan)

	if !limits.AllowCustomDomain || limits.MaxCustomDomains == 0 {
		return DomainDecision{
			MaxDomains: limits.MaxCustomDomains,
			Plan:       plan,
			Reason:     ReasonPlanForbidsDomains,
		}
	}

	if limits.MaxCustomDomains == plans.Unlimited {
		return DomainDecision{Allowed: true, MaxDomains: plans.Unlimited, Plan: plan}
	}

	current, ok := e.count(ctx, ResourceDomains, tenantID)
	if !ok {
		return DomainDecision{MaxDomains: limits.MaxCustomDomains, Plan: plan, Reason: ReasonUsageUnknown}
	}

	if current >= limits.MaxCustomDomains {
		return DomainDecision{
			CurrentCount: current,
			MaxDomains:   limits.MaxCustomDomains,
			Plan:         plan,
			Reason:       ReasonLimitReached,
		}
	}

	return DomainDecision{Allowed: true, CurrentCount: current, MaxDomains: limits.MaxCustomDomains, Plan: plan}
}

// CheckCanUpload reports whether the tenant may store incomingBytes more
// bytes of assets.
func (e *Enforcer) CheckCanUpload(ctx context.Context, tenantID uuid.UUID, plan plans.Plan, incomingBytes int64) UploadDecision {
	limits := e.catalog.Limits(plan)

	if limits.MaxStorageBytes == plans.Unlimited {
		return UploadDecision{Allowed: true, IncomingBytes: incomingBytes, MaxBytes: plans.Unlimited, Plan: plan}
	}

	used, ok := e.count(ctx, ResourceStorageBytes, tenantID)
	if !ok {
		return UploadDecision{
			IncomingBytes: incomingBytes,
			MaxBytes:      limits.MaxStorageBytes,
			Plan:          plan,
			Reason:        ReasonUsageUnknown,
		}
	}

	if used+incomingBytes > limits.MaxStorageBytes {
		return UploadDecision{
			UsedBytes:     used,
			IncomingBytes: incomingBytes,
			MaxBytes:      limits.MaxStorageBytes,
			Plan:          plan,
			Reason:        ReasonLimitReached,
		}
	}

	return UploadDecision{
		Allowed:       true,
		UsedBytes:     used,
		IncomingBytes: incomingBytes,
		MaxBytes:      limits.MaxStorageBytes,
		Plan:          plan,
	}
}

// count resolves current usage, failing closed when the counter is missing
// or errors.
func (e *Enforcer) count(ctx context.Context, res Resource, tenantID uuid.UUID) (int64, bool) {
	counter, exists := e.counters[res]
	if !exists {
		e.log.WarnContext(ctx, "no usage counter registered, denying quota check",
			slog.String("resource", string(res)),
			slog.String("tenant_id", tenantID.String()))
		return 0, false
	}

	current, err := counter(ctx, tenantID)
	if err != nil {
		e.log.WarnContext(ctx, "usage lookup failed, denying quota check",
			slog.String("resource", string(res)),
			slog.String("tenant_id", tenantID.String()),
			slog.Any("error", err))
		return 0, false
	}

	return current, true
}
