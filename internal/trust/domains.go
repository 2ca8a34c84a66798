// Package trust implements the Mayer-model trust perception of one entity
// about another: per-life-domain competence, benevolence, and integrity
// rebuilt from a bounded antecedent history, plus the perceived risk of
// being vulnerable.
package trust

import "github.com/MikeSquared-Agency/dyad/internal/decay"

// LifeDomain is a life area in which competence is tracked independently.
type LifeDomain string

const (
	DomainWork         LifeDomain = "work"
	DomainAcademic     LifeDomain = "academic"
	DomainSocial       LifeDomain = "social"
	DomainAthletic     LifeDomain = "athletic"
	DomainCreative     LifeDomain = "creative"
	DomainFinancial    LifeDomain = "financial"
	DomainHealth       LifeDomain = "health"
	DomainRelationship LifeDomain = "relationship"
)

// AllLifeDomains returns every tracked life domain in stable order.
func AllLifeDomains() []LifeDomain {
	return []LifeDomain{
		DomainWork,
		DomainAcademic,
		DomainSocial,
		DomainAthletic,
		DomainCreative,
		DomainFinancial,
		DomainHealth,
		DomainRelationship,
	}
}

// ParseLifeDomain maps a wire string to a life domain.
func ParseLifeDomain(s string) (LifeDomain, bool) {
	d := LifeDomain(s)
	switch d {
	case DomainWork, DomainAcademic, DomainSocial, DomainAthletic,
		DomainCreative, DomainFinancial, DomainHealth, DomainRelationship:
		return d, true
	}
	return "", false
}

// Stakes is how much is at risk in a trust-requiring action.
type Stakes string

const (
	StakesLow      Stakes = "low"
	StakesMedium   Stakes = "medium"
	StakesHigh     Stakes = "high"
	StakesCritical Stakes = "critical"
)

// Contribution returns the additive risk term for this stakes level.
// Unknown values contribute nothing, same as low.
func (s Stakes) Contribution() float64 {
	switch s {
	case StakesMedium:
		return 0.2
	case StakesHigh:
		return 0.4
	case StakesCritical:
		return 0.6
	default:
		return 0
	}
}

// ParseStakes maps a wire string to a stakes level.
func ParseStakes(s string) (Stakes, bool) {
	st := Stakes(s)
	switch st {
	case StakesLow, StakesMedium, StakesHigh, StakesCritical:
		return st, true
	}
	return "", false
}

// StakesForRisk buckets a continuous risk level into a stakes level.
func StakesForRisk(level float64) Stakes {
	level = decay.Clamp01(level)
	switch {
	case level < 0.25:
		return StakesLow
	case level < 0.5:
		return StakesMedium
	case level < 0.75:
		return StakesHigh
	default:
		return StakesCritical
	}
}
