package plans_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/landingkit/pkg/plans"
)

func newTestCatalog(t *testing.T) *plans.Catalog {
	t.Helper()
	catalog, err := plans.NewCatalog(plans.DefaultLimits(), plans.DefaultPrices())
	require.NoError(t, err)
	return catalog
}

func TestNewCatalog(t *testing.T) {
	t.Run("valid default catalog", func(t *testing.T) {
		catalog, err := plans.NewCatalog(plans.DefaultLimits(), plans.DefaultPrices())
		require.NoError(t, err)
		require.NotNil(t, catalog)
	})

	t.Run("missing plan limits", func(t *testing.T) {
		limits := plans.DefaultLimits()
		delete(limits, plans.PlanBusiness)

		_, err := plans.NewCatalog(limits, plans.DefaultPrices())
		assert.ErrorIs(t, err, plans.ErrInvalidCatalog)
	})

	t.Run("empty limits table", func(t *testing.T) {
		_, err := plans.NewCatalog(nil, nil)
		assert.ErrorIs(t, err, plans.ErrEmptyCatalog)
	})

	t.Run("price references unknown plan", func(t *testing.T) {
		prices := map[string]plans.PricePoint{
			"price_x": {Plan: "enterprise", Interval: plans.IntervalMonthly},
		}
		_, err := plans.NewCatalog(plans.DefaultLimits(), prices)
		assert.ErrorIs(t, err, plans.ErrInvalidCatalog)
	})

	t.Run("price with invalid interval", func(t *testing.T) {
		prices := map[string]plans.PricePoint{
			"price_x": {Plan: plans.PlanPersonal, Interval: "weekly"},
		}
		_, err := plans.NewCatalog(plans.DefaultLimits(), prices)
		assert.ErrorIs(t, err, plans.ErrInvalidCatalog)
	})
}

func TestCatalogLimits(t *testing.T) {
	catalog := newTestCatalog(t)

	t.Run("known plan", func(t *testing.T) {
		limits := catalog.Limits(plans.PlanPersonal)
		assert.Equal(t, int64(25), limits.MaxPages)
		assert.True(t, limits.AllowCustomDomain)
	})

	t.Run("unknown plan falls back to free", func(t *testing.T) {
		limits := catalog.Limits("enterprise")
		assert.Equal(t, catalog.Limits(plans.PlanFree), limits)
		assert.False(t, limits.AllowCustomDomain)
	})

	t.Run("business pages are unlimited", func(t *testing.T) {
		limits := catalog.Limits(plans.PlanBusiness)
		assert.Equal(t, plans.Unlimited, limits.MaxPages)
	})
}

func TestCatalogMapPrice(t *testing.T) {
	catalog := newTestCatalog(t)

	t.Run("configured price", func(t *testing.T) {
		point, ok := catalog.MapPrice("price_personal_month")
		assert.True(t, ok)
		assert.Equal(t, plans.PlanPersonal, point.Plan)
		assert.Equal(t, plans.IntervalMonthly, point.Interval)
	})

	t.Run("legacy personal price", func(t *testing.T) {
		point, ok := catalog.MapPrice("price_legacy_personal_year")
		assert.True(t, ok)
		assert.Equal(t, plans.PlanPersonal, point.Plan)
		assert.Equal(t, plans.IntervalYearly, point.Interval)
	})

	t.Run("unknown price falls back to free", func(t *testing.T) {
		point, ok := catalog.MapPrice("price_totally_unknown")
		assert.False(t, ok)
		assert.Equal(t, plans.PlanFree, point.Plan)
	})
}

func TestCatalogPriceFor(t *testing.T) {
	catalog := newTestCatalog(t)

	t.Run("paid plan", func(t *testing.T) {
		priceID, err := catalog.PriceFor(plans.PlanBusiness, plans.IntervalYearly)
		require.NoError(t, err)
		assert.Equal(t, "price_business_year", priceID)
	})

	t.Run("free plan has no price", func(t *testing.T) {
		_, err := catalog.PriceFor(plans.PlanFree, plans.IntervalMonthly)
		assert.ErrorIs(t, err, plans.ErrPriceNotFound)
	})
}

func TestPlanValid(t *testing.T) {
	assert.True(t, plans.PlanFree.Valid())
	assert.True(t, plans.PlanPersonal.Valid())
	assert.True(t, plans.PlanBusiness.Valid())
	assert.False(t, plans.Plan("enterprise").Valid())
	assert.False(t, plans.Plan("").Valid())
}
