package events

import "github.com/MikeSquared-Agency/dyad/internal/trust"

// DefaultMapping covers the swarm's life-event vocabulary. Integrity events
// carry the largest magnitudes (promises and secrets), task events defer to
// the event's life domain, and betrayed_confidence is the only type that
// latches betrayal.
func DefaultMapping() Mapping {
	return Mapping{
		"kept_promise": {{
			Antecedent: trust.AntecedentIntegrity, Direction: trust.Positive, Magnitude: 0.4,
			Shared: map[string]float64{"history": 0.02},
		}},
		"broke_promise": {{
			Antecedent: trust.AntecedentIntegrity, Direction: trust.Negative, Magnitude: 0.5,
			Shared: map[string]float64{"tension": 0.1},
			Toward: map[string]float64{"resentment": 0.1},
		}},
		"lied": {{
			Antecedent: trust.AntecedentIntegrity, Direction: trust.Negative, Magnitude: 0.6,
			Shared: map[string]float64{"tension": 0.15},
			Toward: map[string]float64{"resentment": 0.15},
		}},
		"kept_secret": {{
			Antecedent: trust.AntecedentIntegrity, Direction: trust.Positive, Magnitude: 0.5,
			Shared: map[string]float64{"intimacy": 0.05, "history": 0.02},
		}},
		"betrayed_confidence": {{
			Antecedent: trust.AntecedentIntegrity, Direction: trust.Negative, Magnitude: 0.8,
			Betrayal: true,
			Shared:   map[string]float64{"tension": 0.2},
			Toward:   map[string]float64{"resentment": 0.25, "fear": 0.1},
		}},
		"defended_publicly": {{
			Antecedent: trust.AntecedentBenevolence, Direction: trust.Positive, Magnitude: 0.6,
			Shared: map[string]float64{"respect": 0.05, "history": 0.03},
			Toward: map[string]float64{"warmth": 0.1},
		}},
		"offered_support": {{
			Antecedent: trust.AntecedentBenevolence, Direction: trust.Positive, Magnitude: 0.4,
			Shared: map[string]float64{"history": 0.02},
			Toward: map[string]float64{"warmth": 0.08},
		}},
		"ignored_crisis": {{
			Antecedent: trust.AntecedentBenevolence, Direction: trust.Negative, Magnitude: 0.7,
			Shared: map[string]float64{"tension": 0.1},
			Toward: map[string]float64{"resentment": 0.2, "warmth": -0.1},
		}},
		"helped_task": {{
			Antecedent: trust.AntecedentAbility, Direction: trust.Positive, Magnitude: 0.4,
			UseDomain: true,
			Shared:    map[string]float64{"history": 0.02},
			Toward:    map[string]float64{"warmth": 0.05},
		}},
		"botched_task": {{
			Antecedent: trust.AntecedentAbility, Direction: trust.Negative, Magnitude: 0.4,
			UseDomain: true,
			Shared:    map[string]float64{"tension": 0.05},
		}},
		"delivered_expertly": {{
			Antecedent: trust.AntecedentAbility, Direction: trust.Positive, Magnitude: 0.7,
			UseDomain: true,
			Shared:    map[string]float64{"respect": 0.1, "history": 0.02},
		}},
		"missed_deadline": {{
			Antecedent: trust.AntecedentAbility, Direction: trust.Negative, Magnitude: 0.3,
			UseDomain: true, Domain: trust.DomainWork,
			Shared: map[string]float64{"tension": 0.05},
		}},
		"repaid_loan": {
			{
				Antecedent: trust.AntecedentIntegrity, Direction: trust.Positive, Magnitude: 0.5,
				Shared: map[string]float64{"history": 0.02},
			},
			{
				Antecedent: trust.AntecedentAbility, Direction: trust.Positive, Magnitude: 0.3,
				Domain: trust.DomainFinancial,
			},
		},
		"gossiped_about": {
			{
				Antecedent: trust.AntecedentBenevolence, Direction: trust.Negative, Magnitude: 0.5,
				Shared: map[string]float64{"tension": 0.1},
				Toward: map[string]float64{"resentment": 0.15},
			},
			{
				Antecedent: trust.AntecedentIntegrity, Direction: trust.Negative, Magnitude: 0.3,
			},
		},
		"apologized_sincerely": {
			{
				Antecedent: trust.AntecedentBenevolence, Direction: trust.Positive, Magnitude: 0.35,
				Shared: map[string]float64{"tension": -0.1},
				Toward: map[string]float64{"warmth": 0.05},
			},
			{
				Antecedent: trust.AntecedentIntegrity, Direction: trust.Positive, Magnitude: 0.25,
			},
		},
		"shared_vulnerability": {{
			Antecedent: trust.AntecedentBenevolence, Direction: trust.Positive, Magnitude: 0.3,
			Shared: map[string]float64{"intimacy": 0.1, "history": 0.03},
			Toward: map[string]float64{"attachment": 0.08},
		}},
	}
}
