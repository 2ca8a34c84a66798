package relationship

import (
	"math"
	"testing"

	"github.com/MikeSquared-Agency/dyad/internal/trust"
)

func TestDecideFreshStranger(t *testing.T) {
	// Stranger weights 0.6/0.4, neutral factors at 0.5, base risk 0.3 plus
	// the stranger modifier 0.3: (0.6*0.9 + 0.4*0.5) - 0.5*0.6 = 0.44.
	r := testPair(t)

	d, ok := r.Decide(entA, 0.9, trust.StakesLow)
	if !ok {
		t.Fatal("Decide rejected a pair member")
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"task willingness", d.TaskWillingness, 0.44},
		{"support willingness", d.SupportWillingness, 0.44},
		{"disclosure willingness", d.DisclosureWillingness, 0.44},
		{"decision certainty", d.DecisionCertainty, 0.07},
		{"trustee confidence", d.TrusteeConfidence, 0.06},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 0.001 {
				t.Errorf("%s = %f, want %f", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestDecideStakesMonotonic(t *testing.T) {
	// Raising stakes raises perceived risk, so willingness never increases.
	r := testPair(t)

	prev := math.Inf(1)
	for _, s := range []trust.Stakes{trust.StakesLow, trust.StakesMedium, trust.StakesHigh, trust.StakesCritical} {
		d, ok := r.Decide(entA, 0.9, s)
		if !ok {
			t.Fatalf("Decide(%s) rejected a pair member", s)
		}
		if d.TaskWillingness > prev+0.001 {
			t.Errorf("willingness rose with stakes: %s gave %f after %f", s, d.TaskWillingness, prev)
		}
		prev = d.TaskWillingness
	}
}

func TestDecideStagePriors(t *testing.T) {
	// With no shared history the certainty and confidence terms reduce to
	// the stage priors. Estranged splits them: the judgment is conflicted
	// but the trustee is well mapped.
	tests := []struct {
		stage      Stage
		certainty  float64
		confidence float64
	}{
		{StageStranger, 0.07, 0.06},
		{StageAcquaintance, 0.21, 0.24},
		{StageEstablished, 0.42, 0.42},
		{StageIntimate, 0.63, 0.54},
		{StageEstranged, 0.35, 0.48},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			r := testPair(t)
			if err := r.SetStage(tt.stage); err != nil {
				t.Fatalf("SetStage: %v", err)
			}
			d, ok := r.Decide(entA, 0.5, trust.StakesLow)
			if !ok {
				t.Fatal("Decide rejected a pair member")
			}
			if math.Abs(d.DecisionCertainty-tt.certainty) > 0.001 {
				t.Errorf("certainty = %f, want %f", d.DecisionCertainty, tt.certainty)
			}
			if math.Abs(d.TrusteeConfidence-tt.confidence) > 0.001 {
				t.Errorf("confidence = %f, want %f", d.TrusteeConfidence, tt.confidence)
			}
		})
	}
}

func TestDecideEstrangedSplit(t *testing.T) {
	r := testPair(t)
	if err := r.SetStage(StageEstranged); err != nil {
		t.Fatalf("SetStage: %v", err)
	}

	d, _ := r.Decide(entA, 0.5, trust.StakesLow)
	if d.DecisionCertainty >= d.TrusteeConfidence {
		t.Errorf("estranged certainty %f should sit below confidence %f", d.DecisionCertainty, d.TrusteeConfidence)
	}
}

func TestDecideSharedHistoryRaisesBoth(t *testing.T) {
	r := testPair(t)
	r.Shared.History.SetDelta(1)

	d, _ := r.Decide(entA, 0.5, trust.StakesLow)
	if math.Abs(d.DecisionCertainty-0.37) > 0.001 {
		t.Errorf("certainty with full history = %f, want 0.37", d.DecisionCertainty)
	}
	if math.Abs(d.TrusteeConfidence-0.46) > 0.001 {
		t.Errorf("confidence with full history = %f, want 0.46", d.TrusteeConfidence)
	}
}

func TestDecideWithContext(t *testing.T) {
	r := testPair(t)

	tests := []struct {
		name string
		mult float64
		want float64
	}{
		{"zeroed context floors willingness", 0, 0},
		{"neutral context", 1, 0.44},
		{"doubled context clamps at one", 2, 1},
		{"multiplier clamped to two", 5, 1},
		{"negative multiplier clamped to zero", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := r.DecideWithContext(entA, 0.9, trust.StakesLow, tt.mult)
			if !ok {
				t.Fatal("DecideWithContext rejected a pair member")
			}
			if math.Abs(d.TaskWillingness-tt.want) > 0.001 {
				t.Errorf("task willingness at mult %f = %f, want %f", tt.mult, d.TaskWillingness, tt.want)
			}
		})
	}
}

func TestDecidePropensityClamped(t *testing.T) {
	r := testPair(t)

	high, _ := r.Decide(entA, 1.5, trust.StakesLow)
	one, _ := r.Decide(entA, 1, trust.StakesLow)
	if math.Abs(high.TaskWillingness-one.TaskWillingness) > 0.001 {
		t.Errorf("propensity 1.5 gave %f, propensity 1 gave %f", high.TaskWillingness, one.TaskWillingness)
	}

	low, _ := r.Decide(entA, -0.5, trust.StakesLow)
	zero, _ := r.Decide(entA, 0, trust.StakesLow)
	if math.Abs(low.TaskWillingness-zero.TaskWillingness) > 0.001 {
		t.Errorf("propensity -0.5 gave %f, propensity 0 gave %f", low.TaskWillingness, zero.TaskWillingness)
	}
}

func TestDecideRoutesFactorsByChannel(t *testing.T) {
	// Task willingness follows competence, support follows benevolence,
	// disclosure follows integrity.
	r := testPair(t)
	p, _ := r.Perspective(entA)
	p.Factors.Benevolence.SetDelta(0.4)

	d, _ := r.Decide(entA, 0.5, trust.StakesLow)
	if d.SupportWillingness <= d.TaskWillingness {
		t.Errorf("benevolence bump did not move support: support %f, task %f", d.SupportWillingness, d.TaskWillingness)
	}
	if math.Abs(d.TaskWillingness-d.DisclosureWillingness) > 0.001 {
		t.Errorf("untouched channels diverged: task %f, disclosure %f", d.TaskWillingness, d.DisclosureWillingness)
	}
}

func TestDecideForeignTrustor(t *testing.T) {
	r := testPair(t)

	d, ok := r.Decide(entC, 0.9, trust.StakesLow)
	if ok {
		t.Fatal("Decide accepted an entity outside the pair")
	}
	if d != (TrustDecision{}) {
		t.Errorf("rejected decision carries values: %+v", d)
	}
}
