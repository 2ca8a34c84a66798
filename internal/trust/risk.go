package trust

import (
	"time"

	"github.com/MikeSquared-Agency/dyad/internal/decay"
)

// Risk constants. Perceived risk is the fastest-moving trust quantity; a
// betrayal permanently raises it.
const (
	RiskHalfLife    = 7 * day
	DefaultRiskBase = 0.3
	betrayalBonus   = 0.3
)

// PerceivedRisk is one direction's felt risk of being vulnerable to the
// other entity. BetrayalHistory is a one-way latch: MarkBetrayal sets it and
// nothing in normal operation clears it.
type PerceivedRisk struct {
	Level           *decay.Value `json:"level"`
	BetrayalHistory bool         `json:"betrayal_history"`
}

// NewPerceivedRisk returns risk at the default base with no betrayal
// history.
func NewPerceivedRisk() *PerceivedRisk {
	return &PerceivedRisk{
		Level: decay.NewUnit(DefaultRiskBase, RiskHalfLife),
	}
}

// MarkBetrayal latches the betrayal flag.
func (r *PerceivedRisk) MarkBetrayal() {
	r.BetrayalHistory = true
}

// ApplyDecay decays the transient risk level.
func (r *PerceivedRisk) ApplyDecay(elapsed time.Duration) {
	r.Level.ApplyDecay(elapsed)
}

// ForStakes returns the risk of an action at the given stakes level.
func (r *PerceivedRisk) ForStakes(s Stakes) float64 {
	return decay.Clamp01(r.raw(s))
}

// WithStageModifier adds the relationship-stage term to the stakes risk.
func (r *PerceivedRisk) WithStageModifier(s Stakes, modifier float64) float64 {
	return decay.Clamp01(r.raw(s) + modifier)
}

// ForTrustor adds the trustor's risk-sensitivity term. Sensitivity is
// clamped to [0, 1]; 0.5 is neutral.
func (r *PerceivedRisk) ForTrustor(s Stakes, sensitivity float64) float64 {
	return decay.Clamp01(r.raw(s) + sensitivityTerm(sensitivity))
}

// Subjective combines the stage modifier and the trustor sensitivity term.
func (r *PerceivedRisk) Subjective(s Stakes, modifier, sensitivity float64) float64 {
	return decay.Clamp01(r.raw(s) + modifier + sensitivityTerm(sensitivity))
}

func (r *PerceivedRisk) raw(s Stakes) float64 {
	risk := r.Level.Effective() + s.Contribution()
	if r.BetrayalHistory {
		risk += betrayalBonus
	}
	return risk
}

func sensitivityTerm(sensitivity float64) float64 {
	return (decay.Clamp01(sensitivity) - 0.5) * 0.4
}
