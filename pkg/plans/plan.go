package plans

// Plan identifies a subscription tier.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanPersonal Plan = "personal"
	PlanBusiness Plan = "business"
)

// Valid reports whether p is one of the known tiers.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPersonal, PlanBusiness:
		return true
	}
	return false
}

// Interval represents the billing frequency of a paid plan.
type Interval string

const (
	IntervalMonthly Interval = "monthly"
	IntervalYearly  Interval = "yearly"
)

// Unlimited indicates no limit for a resource (-1 chosen for SQL compatibility).
const Unlimited int64 = -1

// Limits holds the numeric usage limits of a plan tier.
// Instances are created once at process start and never mutated.
type Limits struct {
	MaxPages          int64
	MaxStorageBytes   int64
	MaxCustomDomains  int64
	AllowCustomDomain bool
}

// PricePoint maps a billing provider price ID to a plan tier and interval.
type PricePoint struct {
	Plan     Plan
	Interval Interval
}
