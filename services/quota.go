package services

import "github.com/aditisaurus/pixxel/models"

// UnlimitedProjects marks a plan with no live-project cap.
const UnlimitedProjects = -1

const defaultFreePlanLimit = 3

// Quota decides whether an account may own one more project.
type Quota struct {
	limits map[models.Plan]int
}

// NewQuota builds the plan limit table. freeLimit <= 0 makes the free plan
// unlimited, which is only useful in development.
func NewQuota(freeLimit int) *Quota {
	if freeLimit == 0 {
		freeLimit = defaultFreePlanLimit
	}
	if freeLimit < 0 {
		freeLimit = UnlimitedProjects
	}
	return &Quota{
		limits: map[models.Plan]int{
			models.PlanFree: freeLimit,
			models.PlanPro:  UnlimitedProjects,
		},
	}
}

// LimitFor returns the live-project cap for a plan. Unknown plans fall back to
// the free limit rather than granting unlimited projects.
func (q *Quota) LimitFor(plan models.Plan) int {
	if limit, ok := q.limits[plan]; ok {
		return limit
	}
	return q.limits[models.PlanFree]
}

// Allows reports whether an account on the given plan with used live projects
// may create another one.
func (q *Quota) Allows(plan models.Plan, used int) bool {
	limit := q.LimitFor(plan)
	return limit == UnlimitedProjects || used < limit
}

// Exceeded builds the user-facing rejection for a plan at its limit.
func (q *Quota) Exceeded(plan models.Plan) *QuotaExceededError {
	return &QuotaExceededError{Plan: plan, Limit: q.LimitFor(plan)}
}
