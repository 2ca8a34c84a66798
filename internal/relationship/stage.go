package relationship

import "fmt"

// Stage is how developed a relationship is. Estranged represents
// deterioration, not termination, and is reachable from any stage.
type Stage string

const (
	StageStranger     Stage = "stranger"
	StageAcquaintance Stage = "acquaintance"
	StageEstablished  Stage = "established"
	StageIntimate     Stage = "intimate"
	StageEstranged    Stage = "estranged"
)

// AllStages returns every stage in development order, Estranged last.
func AllStages() []Stage {
	return []Stage{StageStranger, StageAcquaintance, StageEstablished, StageIntimate, StageEstranged}
}

// ParseStage maps a wire string to a stage.
func ParseStage(s string) (Stage, bool) {
	st := Stage(s)
	switch st {
	case StageStranger, StageAcquaintance, StageEstablished, StageIntimate, StageEstranged:
		return st, true
	}
	return "", false
}

// StageWeights are the decision constants one stage carries. Propensity and
// Trustworthiness always sum to 1: early stages lean on disposition, mature
// stages on accumulated perception.
type StageWeights struct {
	Propensity      float64
	Trustworthiness float64
	RiskModifier    float64
}

// Weights returns the decision constants for this stage. Unknown stages get
// stranger weights.
func (s Stage) Weights() StageWeights {
	switch s {
	case StageAcquaintance:
		return StageWeights{Propensity: 0.4, Trustworthiness: 0.6, RiskModifier: 0.2}
	case StageEstablished:
		return StageWeights{Propensity: 0.2, Trustworthiness: 0.8, RiskModifier: 0.0}
	case StageIntimate:
		return StageWeights{Propensity: 0.1, Trustworthiness: 0.9, RiskModifier: -0.1}
	case StageEstranged:
		return StageWeights{Propensity: 0.3, Trustworthiness: 0.7, RiskModifier: 0.4}
	default:
		return StageWeights{Propensity: 0.6, Trustworthiness: 0.4, RiskModifier: 0.3}
	}
}

// TransitionError reports a rejected stage transition. No transition is
// rejected today; the type exists so future versions can restrict movement
// without changing the SetStage signature.
type TransitionError struct {
	From Stage
	To   Stage
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("stage transition %s -> %s not permitted", e.From, e.To)
}

// SetStage moves the relationship to the given stage. Every transition is
// currently permitted, including self-transitions.
func (r *Relationship) SetStage(next Stage) error {
	r.Stage = next
	return nil
}
