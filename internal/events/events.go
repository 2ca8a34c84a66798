// Package events maps swarm life events onto relationship state: which
// antecedents an event type produces, which feeling dimensions it nudges,
// and how event magnitude scales with severity and interaction consistency.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/dyad/internal/decay"
	"github.com/MikeSquared-Agency/dyad/internal/relationship"
	"github.com/MikeSquared-Agency/dyad/internal/trust"
)

// LifeEvent is the wire form of one life event on the swarm bus.
type LifeEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	EventType  string    `json:"event_type"`
	Source     uuid.UUID `json:"source"`
	Target     uuid.UUID `json:"target"`
	Severity   float64   `json:"severity"`
	OccurredAt time.Time `json:"occurred_at"`
	Detail     string    `json:"detail"`
	LifeDomain string    `json:"life_domain,omitempty"`
}

// Parse decodes the wire form of a life event.
func Parse(data []byte) (LifeEvent, error) {
	var evt LifeEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return LifeEvent{}, fmt.Errorf("decode life event: %w", err)
	}
	return evt, nil
}

// Template is one antecedent an event type produces, plus the dimension
// nudges that ride along with it.
type Template struct {
	Antecedent trust.AntecedentType
	Direction  trust.Direction
	Magnitude  float64
	Domain     trust.LifeDomain // pinned competence domain; empty means none
	UseDomain  bool             // prefer the event's life_domain when present
	Betrayal   bool
	Shared     map[string]float64 // shared dimension nudges by name
	Toward     map[string]float64 // target's directional nudges by name
}

// domainFor picks the competence domain for this template: the event's own
// domain when the template defers to it, else the pinned one, else none.
func (t Template) domainFor(evt LifeEvent) (trust.LifeDomain, bool) {
	if t.UseDomain && evt.LifeDomain != "" {
		if d, ok := trust.ParseLifeDomain(evt.LifeDomain); ok {
			return d, true
		}
	}
	if t.Domain != "" {
		return t.Domain, true
	}
	return "", false
}

// Mapping routes event types to the templates they produce. Unmapped types
// produce no effect.
type Mapping map[string][]Template

// Outcome reports what one event did to a relationship.
type Outcome struct {
	Applied     bool
	Trustor     uuid.UUID
	Antecedents []trust.Antecedent
	Betrayal    bool
}

// Apply lands one event on a relationship. Antecedent magnitudes scale by
// event severity and by 0.5 + 0.5*consistency, read before the interaction
// pattern absorbs this event. Antecedents go to the target-as-trustor
// direction: the target observed the source's behavior. Events whose
// entities do not match the pair, or whose type is unmapped, change nothing.
func (m Mapping) Apply(rel *relationship.Relationship, evt LifeEvent) Outcome {
	templates := m[evt.EventType]
	if len(templates) == 0 {
		return Outcome{}
	}
	if evt.Source == evt.Target || !rel.Involves(evt.Source) || !rel.Involves(evt.Target) {
		return Outcome{}
	}

	trustor := evt.Target
	scale := decay.Clamp01(evt.Severity) * (0.5 + 0.5*rel.Pattern.Consistency)

	out := Outcome{Applied: true, Trustor: trustor}
	for _, t := range templates {
		a := trust.NewAntecedent(evt.OccurredAt, t.Antecedent, t.Direction, t.Magnitude*scale, evt.Detail)
		if d, ok := t.domainFor(evt); ok {
			a = a.InDomain(d)
		}
		rel.AppendAntecedent(trustor, a)
		out.Antecedents = append(out.Antecedents, a)
		if t.Betrayal {
			out.Betrayal = true
		}
	}
	rel.RecomputeTrust(trustor)

	if out.Betrayal {
		rel.MarkBetrayal(trustor)
	}

	for _, t := range templates {
		for dim, delta := range t.Shared {
			nudge(rel, "shared/"+dim, delta)
		}
		for dim, delta := range t.Toward {
			nudge(rel, "directional/"+trustor.String()+"/"+dim, delta)
		}
	}

	rel.Pattern.RecordInteraction(evt.OccurredAt)
	return out
}

// nudge shifts one dimension through the path layer. Dimensions that do not
// resolve are dropped; the default table is covered by tests.
func nudge(rel *relationship.Relationship, path string, delta float64) {
	_, _ = rel.PathApply(path, relationship.OpAddDelta, delta)
}
