package relationship

import (
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/dyad/internal/decay"
	"github.com/MikeSquared-Agency/dyad/internal/trust"
)

// Prediction thresholds. Risk raises the bar twice: once through the stakes
// bucket inside the decision, once through the threshold slope.
const (
	confideBase = 0.6
	helpBase    = 0.4
	riskSlope   = 0.3
)

// Prediction bundles the boolean behavioral calls with the decision that
// produced them.
type Prediction struct {
	Stakes       trust.Stakes  `json:"stakes"`
	WouldConfide bool          `json:"would_confide"`
	WouldHelp    bool          `json:"would_help"`
	Decision     TrustDecision `json:"decision"`
}

// Predict evaluates both behavioral predictions for the trustor at a
// continuous risk level in [0, 1].
func (r *Relationship) Predict(trustor uuid.UUID, propensity, riskLevel float64) (Prediction, bool) {
	riskLevel = decay.Clamp01(riskLevel)
	stakes := trust.StakesForRisk(riskLevel)

	d, ok := r.Decide(trustor, propensity, stakes)
	if !ok {
		return Prediction{}, false
	}

	return Prediction{
		Stakes:       stakes,
		WouldConfide: d.DisclosureWillingness > confideBase+riskSlope*riskLevel,
		WouldHelp:    d.SupportWillingness > helpBase+riskSlope*riskLevel,
		Decision:     d,
	}, true
}

// WouldConfide predicts whether the trustor would share something private at
// the given risk level.
func (r *Relationship) WouldConfide(trustor uuid.UUID, propensity, riskLevel float64) (bool, bool) {
	p, ok := r.Predict(trustor, propensity, riskLevel)
	if !ok {
		return false, false
	}
	return p.WouldConfide, true
}

// WouldHelp predicts whether the trustor would ask the other entity for help
// at the given risk level.
func (r *Relationship) WouldHelp(trustor uuid.UUID, propensity, riskLevel float64) (bool, bool) {
	p, ok := r.Predict(trustor, propensity, riskLevel)
	if !ok {
		return false, false
	}
	return p.WouldHelp, true
}
