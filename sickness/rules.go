/*
rules.go - Eligibility rule resolution

PURPOSE:
  Selects the applicable service-length band from a scheme's rule set.
  Each rule declares its band as [ServiceFrom, ServiceTo) in its own unit;
  everything is converted to days for comparison.

FALLBACK POLICY:
  When no band contains the service length, the resolver deliberately
  falls back to the FIRST (lowest) rule instead of failing. A well-formed
  rule set has no gaps, so the fallback only fires on misconfigured
  schemes; the result flags it so callers can surface the misconfiguration
  rather than silently trusting the lowest tier.
*/
package sickness

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Days per service unit for band comparison. Months use the mean Gregorian
// month (365.25 / 12).
var (
	daysPerWeek  = decimal.NewFromInt(7)
	daysPerMonth = decimal.RequireFromString("30.4375")
)

func serviceToDays(amount int, unit ServiceUnit) decimal.Decimal {
	v := decimal.NewFromInt(int64(amount))
	switch unit {
	case UnitWeeks:
		return v.Mul(daysPerWeek)
	case UnitMonths:
		return v.Mul(daysPerMonth)
	default: // days, or unset treated as days
		return v
	}
}

// Resolution is the outcome of a rule lookup.
type Resolution struct {
	Rule *EligibilityRule

	// FellBack is set when no band contained the service length and the
	// first rule was applied as the documented fallback.
	FellBack bool
}

// ResolveRule selects the rule whose band contains the given service
// length. Rules are sorted ascending by ServiceFrom (in days) first, so
// resolution order does not depend on input order.
func ResolveRule(serviceMonths int, rules []EligibilityRule) (Resolution, error) {
	if len(rules) == 0 {
		return Resolution{}, ErrNoRules
	}

	sorted := make([]EligibilityRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return serviceToDays(sorted[i].ServiceFrom, sorted[i].ServiceUnit).
			LessThan(serviceToDays(sorted[j].ServiceFrom, sorted[j].ServiceUnit))
	})

	serviceDays := serviceToDays(serviceMonths, UnitMonths)
	for i := range sorted {
		rule := &sorted[i]
		from := serviceToDays(rule.ServiceFrom, rule.ServiceUnit)
		if serviceDays.LessThan(from) {
			continue
		}
		if rule.ServiceTo == nil {
			return Resolution{Rule: rule}, nil
		}
		to := serviceToDays(*rule.ServiceTo, rule.ServiceUnit)
		if serviceDays.LessThan(to) { // half-open: [from, to)
			return Resolution{Rule: rule}, nil
		}
	}

	// No band matched: documented fallback to the lowest rule.
	return Resolution{Rule: &sorted[0], FellBack: true}, nil
}
