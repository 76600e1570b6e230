package subscription

import "time"

// Plan is a subscription tier. Declaration order is upgrade order.
type Plan string

const (
	PlanFree     Plan = "FREE"
	PlanMonthly  Plan = "MONTHLY"
	PlanAnnual   Plan = "ANNUAL"
	PlanLifetime Plan = "LIFETIME"
)

// PlanConfig describes the commercial terms of a plan.
type PlanConfig struct {
	Plan         Plan     `json:"plan"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	Currency     string   `json:"currency"`
	DurationDays int      `json:"duration_days"` // 0 means unlimited
	Features     []string `json:"features"`
}

var planOrder = []Plan{PlanFree, PlanMonthly, PlanAnnual, PlanLifetime}

var plans = map[Plan]PlanConfig{
	PlanFree: {
		Plan:     PlanFree,
		Name:     "Free",
		Price:    0,
		Currency: "USD",
		Features: []string{
			"Access to free articles",
			"Preview lessons of every course",
			"Newsletter",
		},
	},
	PlanMonthly: {
		Plan:         PlanMonthly,
		Name:         "Premium Monthly",
		Price:        9.99,
		Currency:     "USD",
		DurationDays: 30,
		Features: []string{
			"Every premium article",
			"Exclusive premium content",
			"Downloadable resources",
			"Ad-free reading",
		},
	},
	PlanAnnual: {
		Plan:         PlanAnnual,
		Name:         "Premium Annual",
		Price:        89.99,
		Currency:     "USD",
		DurationDays: 365,
		Features: []string{
			"Everything in Monthly",
			"Two months free",
			"Early access to new content",
		},
	},
	PlanLifetime: {
		Plan:     PlanLifetime,
		Name:     "Lifetime",
		Price:    299.99,
		Currency: "USD",
		Features: []string{
			"Everything in Annual",
			"Permanent access",
			"Every future update",
		},
	},
}

// Plans returns the catalogue in upgrade order.
func Plans() []PlanConfig {
	out := make([]PlanConfig, 0, len(planOrder))
	for _, p := range planOrder {
		out = append(out, plans[p])
	}
	return out
}

// Config returns the terms of p. Unknown plans report ok=false.
func (p Plan) Config() (PlanConfig, bool) {
	cfg, ok := plans[p]
	return cfg, ok
}

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	_, ok := plans[p]
	return ok
}

// Rank is the position of p in upgrade order, or -1 for unknown plans.
func (p Plan) Rank() int {
	for i, candidate := range planOrder {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Price is the list price of p.
func (p Plan) Price() float64 {
	return plans[p].Price
}

// Duration is the billing period of p. Zero means the plan never expires.
func (p Plan) Duration() time.Duration {
	return time.Duration(plans[p].DurationDays) * 24 * time.Hour
}

// IsPaid reports whether the plan costs money.
func (p Plan) IsPaid() bool {
	return p != PlanFree && p.Valid()
}

func (p Plan) DisplayName() string {
	if cfg, ok := plans[p]; ok {
		return cfg.Name
	}
	return string(p)
}
