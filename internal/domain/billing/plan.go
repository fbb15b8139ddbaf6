package billing

import (
	"strings"

	"github.com/bizhub/backend/internal/domain/shared"
)

// PlanTier is a subscription level
type PlanTier string

const (
	PlanFree    PlanTier = "free"
	PlanWeekly  PlanTier = "weekly"
	PlanMonthly PlanTier = "monthly"
	PlanYearly  PlanTier = "yearly"
)

// DefaultPlan is assigned at registration when none is given
const DefaultPlan = PlanWeekly

// Unlimited marks a ceiling that never trips
const Unlimited int64 = -1

// AllPlans returns every plan tier ordered from cheapest to most generous
func AllPlans() []PlanTier {
	return []PlanTier{PlanFree, PlanWeekly, PlanMonthly, PlanYearly}
}

// IsValid returns true if the plan tier is known
func (p PlanTier) IsValid() bool {
	switch p {
	case PlanFree, PlanWeekly, PlanMonthly, PlanYearly:
		return true
	}
	return false
}

func (p PlanTier) String() string { return string(p) }

// ParsePlanTier parses a plan name case-insensitively
func ParsePlanTier(s string) (PlanTier, error) {
	p := PlanTier(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", shared.NewDomainError("INVALID_PLAN", "Unknown subscription plan: "+s)
	}
	return p, nil
}

// PlanLimits maps each counted resource to its ceiling
type PlanLimits map[ResourceType]int64

// Limit returns the ceiling for a resource. Resources without an entry are unlimited.
func (l PlanLimits) Limit(resource ResourceType) int64 {
	if limit, ok := l[resource]; ok {
		return limit
	}
	return Unlimited
}

var planLimits = map[PlanTier]PlanLimits{
	PlanFree: {
		ResourceInvoices: 10,
		ResourceExpenses: 20,
		ResourceProducts: 20,
		ResourceSales:    50,
	},
	PlanWeekly: {
		ResourceInvoices: 50,
		ResourceExpenses: 100,
		ResourceProducts: 100,
		ResourceSales:    250,
	},
	PlanMonthly: {
		ResourceInvoices: 500,
		ResourceExpenses: 1000,
		ResourceProducts: 500,
		ResourceSales:    2500,
	},
	PlanYearly: {
		ResourceInvoices: Unlimited,
		ResourceExpenses: Unlimited,
		ResourceProducts: Unlimited,
		ResourceSales:    Unlimited,
	},
}

// LimitsFor returns a copy of the ceilings for a plan. Unknown plans get the free tier.
func LimitsFor(plan PlanTier) PlanLimits {
	src, ok := planLimits[plan]
	if !ok {
		src = planLimits[PlanFree]
	}
	out := make(PlanLimits, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
