// Package plans defines the subscription tiers of the landing-page builder
// and their usage limits, plus the mapping between billing provider price IDs
// and tiers.
//
// The catalog is loaded once at process start and is immutable afterwards,
// which makes it safe to share across request handlers without locking.
//
// # Usage
//
//	catalog, err := plans.NewCatalog(plans.DefaultLimits(), plans.DefaultPrices())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	limits := catalog.Limits(plans.PlanPersonal)
//	point, known := catalog.MapPrice("price_personal_month")
//
// MapPrice never fails: unknown price IDs fall back to two legacy personal
// price IDs and finally to the free tier, so a webhook carrying an unmapped
// price downgrades access rather than failing the whole event.
package plans
