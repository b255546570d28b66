package sickness_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/sickness"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func intPtr(n int) *int { return &n }

// nhsStyleRules is a typical service-banded scheme: entitlement grows with
// completed service, bands in months, upper bound exclusive.
func nhsStyleRules() []sickness.EligibilityRule {
	return []sickness.EligibilityRule{
		{ID: "band-1", SchemeID: "default", ServiceFrom: 0, ServiceTo: intPtr(12),
			ServiceUnit: sickness.UnitMonths,
			FullPayAmount: 1, FullPayUnit: sickness.UnitMonths,
			HalfPayAmount: 2, HalfPayUnit: sickness.UnitMonths},
		{ID: "band-2", SchemeID: "default", ServiceFrom: 12, ServiceTo: intPtr(24),
			ServiceUnit: sickness.UnitMonths,
			FullPayAmount: 2, FullPayUnit: sickness.UnitMonths,
			HalfPayAmount: 2, HalfPayUnit: sickness.UnitMonths},
		{ID: "band-3", SchemeID: "default", ServiceFrom: 24, ServiceTo: nil,
			ServiceUnit: sickness.UnitMonths,
			FullPayAmount: 4, FullPayUnit: sickness.UnitMonths,
			HalfPayAmount: 4, HalfPayUnit: sickness.UnitMonths},
	}
}

// =============================================================================
// RESOLUTION TESTS
// =============================================================================

func TestResolveRule_PicksContainingBand(t *testing.T) {
	rules := nhsStyleRules()

	cases := []struct {
		serviceMonths int
		wantRule      string
	}{
		{0, "band-1"},
		{6, "band-1"},
		{11, "band-1"},
		{12, "band-2"},
		{23, "band-2"},
		{24, "band-3"},
		{300, "band-3"},
	}
	for _, tc := range cases {
		res, err := sickness.ResolveRule(tc.serviceMonths, rules)
		require.NoError(t, err, "service %d", tc.serviceMonths)
		assert.Equal(t, tc.wantRule, res.Rule.ID, "service %d months", tc.serviceMonths)
		assert.False(t, res.FellBack, "service %d should match a band", tc.serviceMonths)
	}
}

func TestResolveRule_UpperBoundIsExclusive(t *testing.T) {
	// Exactly 12 months sits in band-2, not band-1: [from, to) bands.
	res, err := sickness.ResolveRule(12, nhsStyleRules())
	require.NoError(t, err)
	assert.Equal(t, "band-2", res.Rule.ID)
}

func TestResolveRule_OrderIndependent(t *testing.T) {
	rules := nhsStyleRules()
	reversed := []sickness.EligibilityRule{rules[2], rules[0], rules[1]}

	res, err := sickness.ResolveRule(18, reversed)
	require.NoError(t, err)
	assert.Equal(t, "band-2", res.Rule.ID)
}

func TestResolveRule_GapFallsBackToFirstRule(t *testing.T) {
	// GIVEN: A misconfigured scheme with a hole between 12 and 24 months
	// WHEN: Service length lands in the hole
	// THEN: The lowest band applies AND the resolution is flagged, so the
	//       caller can surface the misconfiguration.

	gappy := []sickness.EligibilityRule{
		{ID: "low", ServiceFrom: 0, ServiceTo: intPtr(12), ServiceUnit: sickness.UnitMonths,
			FullPayAmount: 10, FullPayUnit: sickness.UnitDays},
		{ID: "high", ServiceFrom: 24, ServiceTo: nil, ServiceUnit: sickness.UnitMonths,
			FullPayAmount: 40, FullPayUnit: sickness.UnitDays},
	}

	res, err := sickness.ResolveRule(18, gappy)
	require.NoError(t, err)
	assert.Equal(t, "low", res.Rule.ID)
	assert.True(t, res.FellBack, "gap resolution must be flagged")
}

func TestResolveRule_MixedUnitsCompareInDays(t *testing.T) {
	// A band declared in weeks must order correctly against one in months:
	// 26 weeks (182 days) sorts before 12 months (365.25 days).
	rules := []sickness.EligibilityRule{
		{ID: "months", ServiceFrom: 12, ServiceTo: nil, ServiceUnit: sickness.UnitMonths,
			FullPayAmount: 20, FullPayUnit: sickness.UnitDays},
		{ID: "weeks", ServiceFrom: 26, ServiceTo: intPtr(52), ServiceUnit: sickness.UnitWeeks,
			FullPayAmount: 10, FullPayUnit: sickness.UnitDays},
	}

	// 8 months of service = 243.5 days: inside [182, 364) days.
	res, err := sickness.ResolveRule(8, rules)
	require.NoError(t, err)
	assert.Equal(t, "weeks", res.Rule.ID)
}

func TestResolveRule_EmptyRuleSetRejected(t *testing.T) {
	_, err := sickness.ResolveRule(6, nil)
	assert.ErrorIs(t, err, sickness.ErrNoRules)
}
