package relationship

import (
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/dyad/internal/decay"
	"github.com/MikeSquared-Agency/dyad/internal/trust"
)

// TrustDecision is a trustor's willingness to be vulnerable to the other
// entity, split by what is being risked: a task (competence), emotional
// support (benevolence), or a disclosure (integrity). Certainty measures
// confidence in this willingness judgment; confidence measures belief in the
// trustee's underlying attributes. All fields sit in [0, 1].
type TrustDecision struct {
	TaskWillingness       float64 `json:"task_willingness"`
	SupportWillingness    float64 `json:"support_willingness"`
	DisclosureWillingness float64 `json:"disclosure_willingness"`
	DecisionCertainty     float64 `json:"decision_certainty"`
	TrusteeConfidence     float64 `json:"trustee_confidence"`
}

// Decide computes the trustor's decision at the given stakes with a neutral
// context multiplier.
func (r *Relationship) Decide(trustor uuid.UUID, propensity float64, stakes trust.Stakes) (TrustDecision, bool) {
	return r.DecideWithContext(trustor, propensity, stakes, 1)
}

// DecideWithContext computes the trustor's decision with a context
// multiplier in [0, 2]; values outside the range are clamped, as are
// propensities outside [0, 1].
func (r *Relationship) DecideWithContext(trustor uuid.UUID, propensity float64, stakes trust.Stakes, contextMult float64) (TrustDecision, bool) {
	p, ok := r.Perspective(trustor)
	if !ok {
		return TrustDecision{}, false
	}

	propensity = decay.Clamp01(propensity)
	contextMult = decay.Clamp(contextMult, 0, 2)

	w := r.Stage.Weights()
	risk := p.Risk.WithStageModifier(stakes, w.RiskModifier)

	willingness := func(trustworthiness float64) float64 {
		return decay.Clamp01((w.Propensity*propensity+w.Trustworthiness*trustworthiness)*contextMult - 0.5*risk)
	}

	history := r.Shared.History.Effective()

	return TrustDecision{
		TaskWillingness:       willingness(p.Factors.CompetenceAverage()),
		SupportWillingness:    willingness(p.Factors.Benevolence.Effective()),
		DisclosureWillingness: willingness(p.Factors.Integrity.Effective()),
		DecisionCertainty:     decay.Clamp01(history*0.3 + certaintyConstant(r.Stage)*0.7),
		TrusteeConfidence:     decay.Clamp01(history*0.4 + confidenceConstant(r.Stage)*0.6),
	}, true
}

// certaintyConstant is the per-stage prior for decision certainty. Estranged
// sits in the middle: the relationship is well-known but the judgment is
// conflicted.
func certaintyConstant(s Stage) float64 {
	switch s {
	case StageAcquaintance:
		return 0.3
	case StageEstablished:
		return 0.6
	case StageIntimate:
		return 0.9
	case StageEstranged:
		return 0.5
	default:
		return 0.1
	}
}

// confidenceConstant is the per-stage prior for trustee confidence.
// Estranged stays high: the trustee's attributes are well mapped even though
// the bond soured.
func confidenceConstant(s Stage) float64 {
	switch s {
	case StageAcquaintance:
		return 0.4
	case StageEstablished:
		return 0.7
	case StageIntimate:
		return 0.9
	case StageEstranged:
		return 0.8
	default:
		return 0.1
	}
}
