package plans

import (
	"errors"
	"fmt"
)

// Catalog resolves plan limits and maps provider price IDs to plan tiers.
// It is built once at startup and safe for unbounded concurrent reads.
type Catalog struct {
	limits map[Plan]Limits
	prices map[string]PricePoint
}

// Legacy price IDs that predate the configurable price table. Subscriptions
// created before the table existed still reference them.
var legacyPersonalPrices = map[string]Interval{
	"price_legacy_personal_month": IntervalMonthly,
	"price_legacy_personal_year":  IntervalYearly,
}

// NewCatalog validates the given limit and price tables and returns an
// immutable catalog. Every known plan tier must have limits, and every price
// must reference a tier present in the limits table.
func NewCatalog(limits map[Plan]Limits, prices map[string]PricePoint) (*Catalog, error) {
	if len(limits) == 0 {
		return nil, ErrEmptyCatalog
	}

	for _, p := range []Plan{PlanFree, PlanPersonal, PlanBusiness} {
		if _, ok := limits[p]; !ok {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("missing limits for plan %q", p))
		}
	}

	for priceID, point := range prices {
		if priceID == "" {
			return nil, errors.Join(ErrInvalidCatalog, errors.New("empty price ID in price table"))
		}
		if _, ok := limits[point.Plan]; !ok {
			return nil, errors.Join(ErrInvalidCatalog,
				fmt.Errorf("price %q references unknown plan %q", priceID, point.Plan))
		}
		if point.Interval != IntervalMonthly && point.Interval != IntervalYearly {
			return nil, errors.Join(ErrInvalidCatalog,
				fmt.Errorf("price %q has invalid interval %q", priceID, point.Interval))
		}
	}

	c := &Catalog{
		limits: make(map[Plan]Limits, len(limits)),
		prices: make(map[string]PricePoint, len(prices)),
	}
	for plan, l := range limits {
		c.limits[plan] = l
	}
	for priceID, point := range prices {
		c.prices[priceID] = point
	}
	return c, nil
}

// Limits returns the limits for a plan tier. Unknown tiers resolve to the
// free tier so a corrupted tenant record degrades to the most restrictive
// limits instead of failing.
func (c *Catalog) Limits(p Plan) Limits {
	if l, ok := c.limits[p]; ok {
		return l
	}
	return c.limits[PlanFree]
}

// MapPrice resolves a provider price ID to a plan tier and billing interval.
// Falls back to the legacy personal price IDs, then to the free tier. The
// second return value is false only when the free-tier fallback was taken,
// so callers can log the mapping miss.
func (c *Catalog) MapPrice(priceID string) (PricePoint, bool) {
	if point, ok := c.prices[priceID]; ok {
		return point, true
	}
	if interval, ok := legacyPersonalPrices[priceID]; ok {
		return PricePoint{Plan: PlanPersonal, Interval: interval}, true
	}
	return PricePoint{Plan: PlanFree, Interval: IntervalMonthly}, false
}

// PriceFor returns the provider price ID for a plan tier and interval.
// Used when creating checkout sessions. Returns ErrPriceNotFound for the
// free tier or any combination absent from the price table.
func (c *Catalog) PriceFor(p Plan, interval Interval) (string, error) {
	for priceID, point := range c.prices {
		if point.Plan == p && point.Interval == interval {
			return priceID, nil
		}
	}
	return "", ErrPriceNotFound
}

// DefaultLimits returns the limit table shipped with the product. Override
// via NewCatalog when the deployment needs different numbers.
func DefaultLimits() map[Plan]Limits {
	return map[Plan]Limits{
		PlanFree: {
			MaxPages:          3,
			MaxStorageBytes:   50 << 20, // 50 MiB
			MaxCustomDomains:  0,
			AllowCustomDomain: false,
		},
		PlanPersonal: {
			MaxPages:          25,
			MaxStorageBytes:   1 << 30, // 1 GiB
			MaxCustomDomains:  3,
			AllowCustomDomain: true,
		},
		PlanBusiness: {
			MaxPages:          Unlimited,
			MaxStorageBytes:   10 << 30, // 10 GiB
			MaxCustomDomains:  20,
			AllowCustomDomain: true,
		},
	}
}

// DefaultPrices returns the built-in price table.
func DefaultPrices() map[string]PricePoint {
	return map[string]PricePoint{
		"price_personal_month": {Plan: PlanPersonal, Interval: IntervalMonthly},
		"price_personal_year":  {Plan: PlanPersonal, Interval: IntervalYearly},
		"price_business_month": {Plan: PlanBusiness, Interval: IntervalMonthly},
		"price_business_year":  {Plan: PlanBusiness, Interval: IntervalYearly},
	}
}
