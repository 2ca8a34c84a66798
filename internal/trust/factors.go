package trust

import (
	"math"
	"sort"
	"time"

	"github.com/MikeSquared-Agency/dyad/internal/decay"
)

const day = 24 * time.Hour

// Half-lives for the three trustworthiness factors. Competence impressions
// fade faster than integrity ones.
const (
	CompetenceHalfLife  = 30 * day
	BenevolenceHalfLife = 14 * day
	IntegrityHalfLife   = 60 * day
)

// DefaultFactorBase is the neutral prior for every factor before any
// evidence arrives.
const DefaultFactorBase = 0.5

// Replay constants. Antecedent influence halves every 180 days; negative
// observations weigh 2.5x; positive observations inside the 180-day
// rebuilding window after a negative are discounted to 0.7x; the EMA alpha
// makes later observations dominate.
const (
	replayHalfLifeDays = 180.0
	rebuildingWindow   = 180 * day
	negativeWeight     = 2.5
	rebuildingPenalty  = 0.7
	emaAlpha           = 0.4
)

// Factors is one direction's perception of the other entity's
// trustworthiness: competence per life domain, benevolence, and integrity.
// The competence map always contains every life domain.
type Factors struct {
	Competence  map[LifeDomain]*decay.Value `json:"competence"`
	Benevolence *decay.Value                `json:"benevolence"`
	Integrity   *decay.Value                `json:"integrity"`
}

// NewFactors returns factors at the neutral prior, with every life domain
// populated.
func NewFactors() *Factors {
	competence := make(map[LifeDomain]*decay.Value, len(AllLifeDomains()))
	for _, d := range AllLifeDomains() {
		competence[d] = decay.NewUnit(DefaultFactorBase, CompetenceHalfLife)
	}
	return &Factors{
		Competence:  competence,
		Benevolence: decay.NewUnit(DefaultFactorBase, BenevolenceHalfLife),
		Integrity:   decay.NewUnit(DefaultFactorBase, IntegrityHalfLife),
	}
}

// CompetenceIn returns the effective competence for one life domain.
func (f *Factors) CompetenceIn(d LifeDomain) float64 {
	v, ok := f.Competence[d]
	if !ok {
		return DefaultFactorBase
	}
	return v.Effective()
}

// CompetenceAverage returns the mean effective competence across all life
// domains. Derived, never stored.
func (f *Factors) CompetenceAverage() float64 {
	if len(f.Competence) == 0 {
		return DefaultFactorBase
	}
	var sum float64
	for _, v := range f.Competence {
		sum += v.Effective()
	}
	return sum / float64(len(f.Competence))
}

// Overall returns the mean of the three trustworthiness factors. Derived,
// never stored.
func (f *Factors) Overall() float64 {
	return (f.CompetenceAverage() + f.Benevolence.Effective() + f.Integrity.Effective()) / 3
}

// ApplyDecay decays every factor by the elapsed duration.
func (f *Factors) ApplyDecay(elapsed time.Duration) {
	for _, v := range f.Competence {
		v.ApplyDecay(elapsed)
	}
	f.Benevolence.ApplyDecay(elapsed)
	f.Integrity.ApplyDecay(elapsed)
}

// ema is a running exponential moving average with a touched flag so
// factors that received no evidence stay untouched.
type ema struct {
	value   float64
	touched bool
}

func (e *ema) observe(signed float64) {
	e.value = (1-emaAlpha)*e.value + emaAlpha*signed
	e.touched = true
}

// RecomputeFromAntecedents rebuilds every affected factor's delta from the
// full history. The replay is from scratch each time: temporal decay depends
// on the newest entry's timestamp relative to every older entry, so deltas
// cannot be maintained incrementally.
//
// An empty history zeroes all deltas. Factors that received no evidence in a
// non-empty history keep their current delta.
func (f *Factors) RecomputeFromAntecedents(h *History) {
	if h == nil || len(h.Entries) == 0 {
		for _, v := range f.Competence {
			v.SetDelta(0)
		}
		f.Benevolence.SetDelta(0)
		f.Integrity.SetDelta(0)
		return
	}

	sorted := make([]Antecedent, len(h.Entries))
	copy(sorted, h.Entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	reference := sorted[len(sorted)-1].Timestamp

	var (
		benevolence   ema
		integrity     ema
		sharedAbility ema
		domainAbility = make(map[LifeDomain]*ema)
		lastNegative  time.Time
		haveNegative  bool
	)

	for _, a := range sorted {
		ageDays := reference.Sub(a.Timestamp).Hours() / 24
		temporal := math.Exp(-ageDays * math.Ln2 / replayHalfLifeDays)

		weight := 1.0
		if a.Direction == Negative {
			weight = negativeWeight
		} else if haveNegative && !a.Timestamp.After(lastNegative.Add(rebuildingWindow)) {
			weight = rebuildingPenalty
		}

		signed := a.Magnitude * weight * temporal
		if a.Direction == Negative {
			signed = -signed
		}

		switch a.Type {
		case AntecedentBenevolence:
			benevolence.observe(signed)
		case AntecedentIntegrity:
			integrity.observe(signed)
		case AntecedentAbility:
			if a.LifeDomain == nil {
				sharedAbility.observe(signed)
				break
			}
			if _, tracked := f.Competence[*a.LifeDomain]; !tracked {
				break // untracked domain, silently ignored
			}
			e := domainAbility[*a.LifeDomain]
			if e == nil {
				e = &ema{}
				domainAbility[*a.LifeDomain] = e
			}
			e.observe(signed)
		}

		if a.Direction == Negative {
			lastNegative = a.Timestamp
			haveNegative = true
		}
	}

	// Domain-less ability evidence re-anchors every domain; domains with
	// their own evidence take the more specific result.
	if sharedAbility.touched {
		for _, v := range f.Competence {
			reanchor(v, sharedAbility.value)
		}
	}
	for d, e := range domainAbility {
		reanchor(f.Competence[d], e.value)
	}
	if benevolence.touched {
		reanchor(f.Benevolence, benevolence.value)
	}
	if integrity.touched {
		reanchor(f.Integrity, integrity.value)
	}
}

// reanchor stores the delta that moves the effective value to
// clamp01(base+ema), keeping the base untouched.
func reanchor(v *decay.Value, emaValue float64) {
	v.SetDelta(decay.Clamp01(v.Base+emaValue) - v.Base)
}
