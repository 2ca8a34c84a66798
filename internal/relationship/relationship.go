// Package relationship models the full pairwise bond between two simulated
// entities: two directional trust perceptions, shared and directional
// feeling dimensions, an interaction pattern, and a development stage, with
// trust decisions and behavioral predictions computed on top.
package relationship

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/dyad/internal/trust"
)

// Schema tags persisted snapshots of this layout.
const Schema = "dyad.relationship.v1"

// ErrSelfRelationship is returned when both entity identifiers are the same.
var ErrSelfRelationship = errors.New("relationship requires two distinct entities")

// PairKey returns the canonical identity of an unordered entity pair.
func PairKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if bs < as {
		as, bs = bs, as
	}
	return as + ":" + bs
}

// Perspective is everything one entity (the trustor) holds about the other:
// the antecedent history, the trustworthiness factors rebuilt from it, the
// perceived risk, and the directional feeling dimensions.
type Perspective struct {
	Trustor    uuid.UUID              `json:"trustor"`
	History    *trust.History         `json:"history"`
	Factors    *trust.Factors         `json:"factors"`
	Risk       *trust.PerceivedRisk   `json:"risk"`
	Dimensions *DirectionalDimensions `json:"dimensions"`
}

func newPerspective(trustor uuid.UUID) *Perspective {
	return &Perspective{
		Trustor:    trustor,
		History:    &trust.History{},
		Factors:    trust.NewFactors(),
		Risk:       trust.NewPerceivedRisk(),
		Dimensions: NewDirectionalDimensions(),
	}
}

// Relationship is the mutable pairwise state between two entities. It is
// created once per pair and lives for the simulation's duration; sub-values
// are mutated in place by event processing and decayed by a periodic tick.
//
// A relationship performs no locking of its own. Distinct relationships may
// be worked concurrently, but all mutation and inspection of a single
// relationship must be serialized by the caller (the registry does this for
// the service).
type Relationship struct {
	Schema       string              `json:"schema"`
	EntityA      uuid.UUID           `json:"entity_a"`
	EntityB      uuid.UUID           `json:"entity_b"`
	Perspectives [2]*Perspective     `json:"perspectives"`
	Shared       *SharedDimensions   `json:"shared"`
	Pattern      *InteractionPattern `json:"pattern"`
	Stage        Stage               `json:"stage"`
	BondTags     []string            `json:"bond_tags,omitempty"`
}

// New creates a stranger-stage relationship between two distinct entities.
// Entity order is normalized so the same pair always produces the same
// layout regardless of argument order.
func New(a, b uuid.UUID) (*Relationship, error) {
	if a == b {
		return nil, ErrSelfRelationship
	}
	if b.String() < a.String() {
		a, b = b, a
	}
	return &Relationship{
		Schema:       Schema,
		EntityA:      a,
		EntityB:      b,
		Perspectives: [2]*Perspective{newPerspective(a), newPerspective(b)},
		Shared:       NewSharedDimensions(),
		Pattern:      NewInteractionPattern(),
		Stage:        StageStranger,
	}, nil
}

// Key returns the relationship's canonical pair key.
func (r *Relationship) Key() string {
	return PairKey(r.EntityA, r.EntityB)
}

// Involves reports whether id is one of the two entities.
func (r *Relationship) Involves(id uuid.UUID) bool {
	return id == r.EntityA || id == r.EntityB
}

// Counterpart returns the other entity of the pair.
func (r *Relationship) Counterpart(id uuid.UUID) (uuid.UUID, bool) {
	switch id {
	case r.EntityA:
		return r.EntityB, true
	case r.EntityB:
		return r.EntityA, true
	}
	return uuid.Nil, false
}

// Perspective returns the directional state owned by the given trustor, or
// false if the entity is not part of this pair.
func (r *Relationship) Perspective(trustor uuid.UUID) (*Perspective, bool) {
	for _, p := range r.Perspectives {
		if p.Trustor == trustor {
			return p, true
		}
	}
	return nil, false
}

// AppendAntecedent appends one observation to the trustor's history. It does
// not replay; callers batch appends and then call RecomputeTrust once.
// Returns false when the trustor is not part of this pair.
func (r *Relationship) AppendAntecedent(trustor uuid.UUID, a trust.Antecedent) bool {
	p, ok := r.Perspective(trustor)
	if !ok {
		return false
	}
	p.History.Append(a)
	return true
}

// RecomputeTrust replays the trustor's antecedent history into fresh
// trustworthiness deltas.
func (r *Relationship) RecomputeTrust(trustor uuid.UUID) bool {
	p, ok := r.Perspective(trustor)
	if !ok {
		return false
	}
	p.Factors.RecomputeFromAntecedents(p.History)
	return true
}

// MarkBetrayal latches the trustor's betrayal flag and tags the bond.
func (r *Relationship) MarkBetrayal(trustor uuid.UUID) bool {
	p, ok := r.Perspective(trustor)
	if !ok {
		return false
	}
	p.Risk.MarkBetrayal()
	r.AddBondTag("betrayal")
	return true
}

// AddBondTag appends a tag if not already present.
func (r *Relationship) AddBondTag(tag string) {
	if tag == "" {
		return
	}
	for _, t := range r.BondTags {
		if t == tag {
			return
		}
	}
	r.BondTags = append(r.BondTags, tag)
}

// ApplyDecay decays every decaying value in the relationship by elapsed.
// Callers must apply decay in monotonically increasing time order; separate
// calls do not commute with interleaved mutations.
func (r *Relationship) ApplyDecay(elapsed time.Duration) {
	if elapsed <= 0 {
		return
	}
	for _, p := range r.Perspectives {
		p.Factors.ApplyDecay(elapsed)
		p.Risk.ApplyDecay(elapsed)
		p.Dimensions.ApplyDecay(elapsed)
	}
	r.Shared.ApplyDecay(elapsed)
}

// Snapshot serializes the relationship for persistence.
func (r *Relationship) Snapshot() ([]byte, error) {
	return json.Marshal(r)
}

// FromSnapshot restores a relationship persisted by Snapshot.
func FromSnapshot(data []byte) (*Relationship, error) {
	var r Relationship
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode relationship snapshot: %w", err)
	}
	if r.EntityA == r.EntityB {
		return nil, ErrSelfRelationship
	}
	for _, p := range r.Perspectives {
		if p == nil || !r.Involves(p.Trustor) {
			return nil, fmt.Errorf("snapshot perspective does not match pair %s", r.Key())
		}
	}
	if r.Schema == "" {
		r.Schema = Schema
	}
	return &r, nil
}
