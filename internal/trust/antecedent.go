package trust

import (
	"time"

	"github.com/MikeSquared-Agency/dyad/internal/decay"
)

// HistoryCap is the maximum number of antecedents kept per direction.
const HistoryCap = 100

// AntecedentType classifies which trustworthiness signal an observation
// carries, per Mayer's model.
type AntecedentType string

const (
	AntecedentAbility     AntecedentType = "ability"
	AntecedentBenevolence AntecedentType = "benevolence"
	AntecedentIntegrity   AntecedentType = "integrity"
)

// TrustDomain is the trustworthiness factor an antecedent type feeds.
type TrustDomain string

const (
	TrustCompetence  TrustDomain = "competence"
	TrustBenevolence TrustDomain = "benevolence"
	TrustIntegrity   TrustDomain = "integrity"
)

// Domain returns the trustworthiness factor this antecedent type feeds.
func (t AntecedentType) Domain() TrustDomain {
	switch t {
	case AntecedentBenevolence:
		return TrustBenevolence
	case AntecedentIntegrity:
		return TrustIntegrity
	default:
		return TrustCompetence
	}
}

// ParseAntecedentType maps a wire string to an antecedent type.
func ParseAntecedentType(s string) (AntecedentType, bool) {
	t := AntecedentType(s)
	switch t {
	case AntecedentAbility, AntecedentBenevolence, AntecedentIntegrity:
		return t, true
	}
	return "", false
}

// Direction is the sign of an observation.
type Direction string

const (
	Positive Direction = "positive"
	Negative Direction = "negative"
)

// Antecedent is one discrete, signed trust-relevant observation. It is
// immutable once appended to a history.
type Antecedent struct {
	Timestamp  time.Time      `json:"timestamp"`
	Type       AntecedentType `json:"type"`
	Direction  Direction      `json:"direction"`
	Magnitude  float64        `json:"magnitude"`
	Context    string         `json:"context"`
	LifeDomain *LifeDomain    `json:"life_domain,omitempty"`
}

// NewAntecedent builds an antecedent with the magnitude clamped to [0, 1].
// The life domain is left unset; use InDomain for domain-specific ability
// observations.
func NewAntecedent(ts time.Time, typ AntecedentType, dir Direction, magnitude float64, context string) Antecedent {
	return Antecedent{
		Timestamp: ts,
		Type:      typ,
		Direction: dir,
		Magnitude: decay.Clamp01(magnitude),
		Context:   context,
	}
}

// InDomain returns a copy scoped to one competence domain. Only meaningful
// for ability antecedents; an absent domain means "all domains".
func (a Antecedent) InDomain(d LifeDomain) Antecedent {
	a.LifeDomain = &d
	return a
}

// History is one direction's append-only antecedent log, capped at
// HistoryCap entries with the oldest-by-timestamp evicted first.
type History struct {
	Entries      []Antecedent `json:"entries"`
	LastNegative *time.Time   `json:"last_negative,omitempty"`
}

// Append records an antecedent, tracks the most recent negative timestamp,
// and prunes the log back to HistoryCap entries.
func (h *History) Append(a Antecedent) {
	a.Magnitude = decay.Clamp01(a.Magnitude)
	h.Entries = append(h.Entries, a)

	if a.Direction == Negative {
		if h.LastNegative == nil || a.Timestamp.After(*h.LastNegative) {
			ts := a.Timestamp
			h.LastNegative = &ts
		}
	}

	for len(h.Entries) > HistoryCap {
		h.evictOldest()
	}
}

// Len returns the number of entries currently held.
func (h *History) Len() int {
	return len(h.Entries)
}

func (h *History) evictOldest() {
	if len(h.Entries) == 0 {
		return
	}
	oldest := 0
	for i, a := range h.Entries {
		if a.Timestamp.Before(h.Entries[oldest].Timestamp) {
			oldest = i
		}
	}
	h.Entries = append(h.Entries[:oldest], h.Entries[oldest+1:]...)
}
