package relationship

import (
	"math"
	"time"

	"github.com/MikeSquared-Agency/dyad/internal/decay"
)

const day = 24 * time.Hour

// SharedDimensions are symmetric: both entities see the same affinity,
// respect, tension, intimacy, and accumulated history. History never decays
// and never decreases.
type SharedDimensions struct {
	Affinity *decay.Value `json:"affinity"`
	Respect  *decay.Value `json:"respect"`
	Tension  *decay.Value `json:"tension"`
	Intimacy *decay.Value `json:"intimacy"`
	History  *decay.Value `json:"history"`
}

// NewSharedDimensions returns shared dimensions at their defaults.
func NewSharedDimensions() *SharedDimensions {
	return &SharedDimensions{
		Affinity: decay.NewUnit(0.1, 14*day),
		Respect:  decay.NewUnit(0.2, 21*day),
		Tension:  decay.NewUnit(0, 7*day),
		Intimacy: decay.NewUnit(0, 30*day),
		History:  decay.NewUnit(0, 0),
	}
}

// AddHistoryDelta grows the shared history. Negative deltas are a no-op;
// history only accumulates.
func (s *SharedDimensions) AddHistoryDelta(d float64) {
	if d <= 0 {
		return
	}
	s.History.AddDelta(d)
}

// ApplyDecay decays every shared dimension. History has no half-life and is
// untouched.
func (s *SharedDimensions) ApplyDecay(elapsed time.Duration) {
	s.Affinity.ApplyDecay(elapsed)
	s.Respect.ApplyDecay(elapsed)
	s.Tension.ApplyDecay(elapsed)
	s.Intimacy.ApplyDecay(elapsed)
	s.History.ApplyDecay(elapsed)
}

// DirectionalDimensions are what one entity feels toward the other. Each
// direction has its own instance.
type DirectionalDimensions struct {
	Warmth     *decay.Value `json:"warmth"`
	Resentment *decay.Value `json:"resentment"`
	Dependence *decay.Value `json:"dependence"`
	Attraction *decay.Value `json:"attraction"`
	Attachment *decay.Value `json:"attachment"`
	Jealousy   *decay.Value `json:"jealousy"`
	Fear       *decay.Value `json:"fear"`
	Obligation *decay.Value `json:"obligation"`
}

// NewDirectionalDimensions returns directional dimensions at their defaults.
func NewDirectionalDimensions() *DirectionalDimensions {
	return &DirectionalDimensions{
		Warmth:     decay.NewUnit(0.2, 14*day),
		Resentment: decay.NewUnit(0, 14*day),
		Dependence: decay.NewUnit(0, 14*day),
		Attraction: decay.NewUnit(0, 14*day),
		Attachment: decay.NewUnit(0, 30*day),
		Jealousy:   decay.NewUnit(0, 7*day),
		Fear:       decay.NewUnit(0, 7*day),
		Obligation: decay.NewUnit(0, 30*day),
	}
}

// ApplyDecay decays every directional dimension.
func (d *DirectionalDimensions) ApplyDecay(elapsed time.Duration) {
	d.Warmth.ApplyDecay(elapsed)
	d.Resentment.ApplyDecay(elapsed)
	d.Dependence.ApplyDecay(elapsed)
	d.Attraction.ApplyDecay(elapsed)
	d.Attachment.ApplyDecay(elapsed)
	d.Jealousy.ApplyDecay(elapsed)
	d.Fear.ApplyDecay(elapsed)
	d.Obligation.ApplyDecay(elapsed)
}

// InteractionPattern tracks how often and how regularly the pair interacts.
// Consistency feeds antecedent magnitude scaling: erratic contact halves the
// weight of new evidence, steady contact leaves it whole.
type InteractionPattern struct {
	Frequency       float64   `json:"frequency"`
	Consistency     float64   `json:"consistency"`
	LastInteraction time.Time `json:"last_interaction"`
}

// NewInteractionPattern starts at neutral consistency with no recorded
// interactions.
func NewInteractionPattern() *InteractionPattern {
	return &InteractionPattern{Consistency: 0.5}
}

// RecordInteraction folds one interaction at ts into the pattern. Frequency
// is a decaying counter (14-day half-life); consistency drifts toward 1 for
// tight gaps and toward 0 for long silences (7-day scale).
func (p *InteractionPattern) RecordInteraction(ts time.Time) {
	gapDays := 0.0
	if !p.LastInteraction.IsZero() && ts.After(p.LastInteraction) {
		gapDays = ts.Sub(p.LastInteraction).Hours() / 24
	}

	p.Consistency = decay.Clamp01(0.8*p.Consistency + 0.2*math.Exp(-gapDays/7))
	p.Frequency = p.Frequency*math.Pow(0.5, gapDays/14) + 1

	if ts.After(p.LastInteraction) {
		p.LastInteraction = ts
	}
}
