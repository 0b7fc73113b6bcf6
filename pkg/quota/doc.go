// Package quota answers allow/deny for tenant actions against plan limits.
//
// The enforcer compares observed usage (page count, storage bytes, bound
// domain count) against the limits of the tenant's current plan. Usage is
// resolved through registered UsageCounterFunc collaborators so the package
// stays decoupled from any particular store.
//
// # Architecture
//
//   - Enforcer: stateless decision maker over a plans.Catalog and a
//     CounterRegistry.
//   - CounterRegistry: resource → counter mapping, populated at startup.
//   - Postgres/directory counters: ready-made counters for the pages and
//     assets tables and the domain directory.
//
// Decisions carry the limiting numbers so callers can render them directly
// ("3 of 3 pages used on the free plan"). A denial is a normal result, not
// an error. When usage cannot be determined the check denies with
// ReasonUsageUnknown rather than allowing — quota fails closed.
//
// Checks are reads with no locking. Two concurrent requests from the same
// tenant may both pass and overshoot a limit slightly; limits here are soft.
//
// # Usage
//
//	counters := quota.NewRegistry()
//	counters.Register(quota.ResourcePages, quota.NewPageCounter(pool))
//	counters.Register(quota.ResourceStorageBytes, quota.NewStorageCounter(pool))
//	counters.Register(quota.ResourceDomains, quota.NewDomainCounter(directory))
//
//	enforcer := quota.NewEnforcer(catalog, counters)
//
//	decision := enforcer.CheckCanCreatePage(ctx, t.ID, t.Plan)
//	if !decision.Allowed {
//	    // surface decision.Reason and the counts to the tenant
//	}
package quota
