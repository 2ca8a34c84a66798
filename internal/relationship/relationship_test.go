package relationship

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/dyad/internal/trust"
)

var (
	entA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	entB = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	entC = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func testPair(t *testing.T) *Relationship {
	t.Helper()
	r, err := New(entA, entB)
	if err != nil {
		t.Fatalf("New(%s, %s) = %v", entA, entB, err)
	}
	return r
}

func TestNewRejectsSelfPair(t *testing.T) {
	if _, err := New(entA, entA); !errors.Is(err, ErrSelfRelationship) {
		t.Fatalf("New(a, a) error = %v, want ErrSelfRelationship", err)
	}
}

func TestNewNormalizesEntityOrder(t *testing.T) {
	r1, err := New(entA, entB)
	if err != nil {
		t.Fatalf("New(a, b) = %v", err)
	}
	r2, err := New(entB, entA)
	if err != nil {
		t.Fatalf("New(b, a) = %v", err)
	}

	if r1.EntityA != r2.EntityA || r1.EntityB != r2.EntityB {
		t.Errorf("argument order changed the pair layout: (%s, %s) vs (%s, %s)",
			r1.EntityA, r1.EntityB, r2.EntityA, r2.EntityB)
	}
	if r1.Key() != r2.Key() {
		t.Errorf("keys differ across argument order: %s vs %s", r1.Key(), r2.Key())
	}
	if r1.EntityA.String() > r1.EntityB.String() {
		t.Errorf("entities not in canonical order: %s > %s", r1.EntityA, r1.EntityB)
	}
	if r1.Perspectives[0].Trustor != r1.EntityA || r1.Perspectives[1].Trustor != r1.EntityB {
		t.Error("perspectives do not line up with the normalized entities")
	}
}

func TestPairKeySymmetric(t *testing.T) {
	if PairKey(entA, entB) != PairKey(entB, entA) {
		t.Errorf("PairKey not symmetric: %s vs %s", PairKey(entA, entB), PairKey(entB, entA))
	}
}

func TestNewStartsAtStranger(t *testing.T) {
	r := testPair(t)
	if r.Stage != StageStranger {
		t.Errorf("new relationship stage = %s, want %s", r.Stage, StageStranger)
	}
	if r.Schema != Schema {
		t.Errorf("new relationship schema = %q, want %q", r.Schema, Schema)
	}
	if r.Pattern.Consistency != 0.5 {
		t.Errorf("new pattern consistency = %f, want 0.5", r.Pattern.Consistency)
	}
}

func TestPerspectiveLookup(t *testing.T) {
	r := testPair(t)

	for _, id := range []uuid.UUID{entA, entB} {
		p, ok := r.Perspective(id)
		if !ok {
			t.Fatalf("Perspective(%s) not found for a pair member", id)
		}
		if p.Trustor != id {
			t.Errorf("Perspective(%s).Trustor = %s", id, p.Trustor)
		}
	}

	if _, ok := r.Perspective(entC); ok {
		t.Error("Perspective returned state for an entity outside the pair")
	}
}

func TestCounterpart(t *testing.T) {
	r := testPair(t)

	if got, ok := r.Counterpart(entA); !ok || got != entB {
		t.Errorf("Counterpart(%s) = %s, %v, want %s", entA, got, ok, entB)
	}
	if got, ok := r.Counterpart(entB); !ok || got != entA {
		t.Errorf("Counterpart(%s) = %s, %v, want %s", entB, got, ok, entA)
	}
	if _, ok := r.Counterpart(entC); ok {
		t.Error("Counterpart resolved an entity outside the pair")
	}
}

func TestInvolves(t *testing.T) {
	r := testPair(t)
	if !r.Involves(entA) || !r.Involves(entB) {
		t.Error("Involves rejected a pair member")
	}
	if r.Involves(entC) {
		t.Error("Involves accepted an entity outside the pair")
	}
}

func TestAppendAndRecompute(t *testing.T) {
	r := testPair(t)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := trust.NewAntecedent(ts, trust.AntecedentIntegrity, trust.Positive, 0.5, "kept a promise")

	if !r.AppendAntecedent(entA, a) {
		t.Fatal("AppendAntecedent rejected a pair member")
	}
	p, _ := r.Perspective(entA)
	if p.History.Len() != 1 {
		t.Fatalf("history length = %d, want 1", p.History.Len())
	}
	// Appending alone does not move trust.
	if got := p.Factors.Integrity.Effective(); got != 0.5 {
		t.Errorf("integrity moved before recompute: %f", got)
	}

	if !r.RecomputeTrust(entA) {
		t.Fatal("RecomputeTrust rejected a pair member")
	}
	if got := p.Factors.Integrity.Effective(); math.Abs(got-0.7) > 0.001 {
		t.Errorf("integrity after recompute = %f, want 0.7", got)
	}

	// The other direction is untouched.
	q, _ := r.Perspective(entB)
	if q.History.Len() != 0 || q.Factors.Integrity.Effective() != 0.5 {
		t.Error("appending for one trustor leaked into the other perspective")
	}

	if r.AppendAntecedent(entC, a) || r.RecomputeTrust(entC) {
		t.Error("antecedent operations accepted an entity outside the pair")
	}
}

func TestMarkBetrayal(t *testing.T) {
	r := testPair(t)

	if !r.MarkBetrayal(entA) {
		t.Fatal("MarkBetrayal rejected a pair member")
	}
	p, _ := r.Perspective(entA)
	if !p.Risk.BetrayalHistory {
		t.Error("betrayal flag not latched")
	}
	q, _ := r.Perspective(entB)
	if q.Risk.BetrayalHistory {
		t.Error("betrayal flag leaked into the other perspective")
	}

	found := false
	for _, tag := range r.BondTags {
		if tag == "betrayal" {
			found = true
		}
	}
	if !found {
		t.Errorf("bond tags = %v, want betrayal present", r.BondTags)
	}

	if r.MarkBetrayal(entC) {
		t.Error("MarkBetrayal accepted an entity outside the pair")
	}
}

func TestAddBondTag(t *testing.T) {
	r := testPair(t)

	r.AddBondTag("rivals")
	r.AddBondTag("rivals")
	r.AddBondTag("")
	r.AddBondTag("coworkers")

	want := []string{"rivals", "coworkers"}
	if len(r.BondTags) != len(want) {
		t.Fatalf("bond tags = %v, want %v", r.BondTags, want)
	}
	for i, tag := range want {
		if r.BondTags[i] != tag {
			t.Errorf("bond tags = %v, want %v", r.BondTags, want)
		}
	}
}

func TestApplyDecay(t *testing.T) {
	r := testPair(t)
	p, _ := r.Perspective(entA)

	p.Factors.Integrity.SetDelta(0.2)
	p.Risk.Level.SetDelta(0.2)
	p.Dimensions.Warmth.SetDelta(0.4)
	r.Shared.Affinity.SetDelta(0.3)
	r.Shared.History.SetDelta(0.4)
	r.Pattern.Frequency = 3

	r.ApplyDecay(14 * day)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"integrity delta (60d half-life)", p.Factors.Integrity.Delta, 0.1701},
		{"risk delta (7d half-life)", p.Risk.Level.Delta, 0.05},
		{"warmth delta (14d half-life)", p.Dimensions.Warmth.Delta, 0.2},
		{"affinity delta (14d half-life)", r.Shared.Affinity.Delta, 0.15},
		{"history delta (never decays)", r.Shared.History.Delta, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 0.001 {
				t.Errorf("after 14d: %f, want %f", tt.got, tt.want)
			}
		})
	}

	if r.Pattern.Frequency != 3 {
		t.Errorf("decay touched the interaction pattern: frequency = %f", r.Pattern.Frequency)
	}
}

func TestApplyDecayNonPositiveElapsed(t *testing.T) {
	r := testPair(t)
	r.Shared.Affinity.SetDelta(0.3)

	r.ApplyDecay(0)
	r.ApplyDecay(-time.Hour)

	if r.Shared.Affinity.Delta != 0.3 {
		t.Errorf("non-positive elapsed changed delta: %f", r.Shared.Affinity.Delta)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	r := testPair(t)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	r.AppendAntecedent(entA, trust.NewAntecedent(ts, trust.AntecedentIntegrity, trust.Positive, 0.5, "kept a promise"))
	r.RecomputeTrust(entA)
	r.MarkBetrayal(entB)
	r.AddBondTag("rivals")
	r.Shared.AddHistoryDelta(0.25)
	r.Pattern.RecordInteraction(ts)
	if err := r.SetStage(StageEstablished); err != nil {
		t.Fatalf("SetStage: %v", err)
	}

	data, err := r.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	got, err := FromSnapshot(data)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}

	if got.Key() != r.Key() {
		t.Errorf("key = %s, want %s", got.Key(), r.Key())
	}
	if got.Stage != StageEstablished {
		t.Errorf("stage = %s, want %s", got.Stage, StageEstablished)
	}
	if got.Schema != Schema {
		t.Errorf("schema = %q, want %q", got.Schema, Schema)
	}

	p, ok := got.Perspective(entA)
	if !ok {
		t.Fatal("restored relationship lost perspective A")
	}
	if p.History.Len() != 1 {
		t.Errorf("restored history length = %d, want 1", p.History.Len())
	}
	if math.Abs(p.Factors.Integrity.Effective()-0.7) > 0.001 {
		t.Errorf("restored integrity = %f, want 0.7", p.Factors.Integrity.Effective())
	}

	q, _ := got.Perspective(entB)
	if !q.Risk.BetrayalHistory {
		t.Error("restored relationship lost the betrayal latch")
	}

	if math.Abs(got.Shared.History.Effective()-0.25) > 0.001 {
		t.Errorf("restored shared history = %f, want 0.25", got.Shared.History.Effective())
	}
	if math.Abs(got.Pattern.Frequency-1) > 0.001 || !got.Pattern.LastInteraction.Equal(ts) {
		t.Errorf("restored pattern = %+v", got.Pattern)
	}

	tags := map[string]bool{}
	for _, tag := range got.BondTags {
		tags[tag] = true
	}
	if !tags["betrayal"] || !tags["rivals"] {
		t.Errorf("restored bond tags = %v", got.BondTags)
	}
}

func TestFromSnapshotRejectsBadData(t *testing.T) {
	if _, err := FromSnapshot([]byte("{not json")); err == nil {
		t.Error("malformed JSON accepted")
	}

	r := testPair(t)
	r.EntityB = r.EntityA
	data, _ := r.Snapshot()
	if _, err := FromSnapshot(data); !errors.Is(err, ErrSelfRelationship) {
		t.Errorf("self-pair snapshot error = %v, want ErrSelfRelationship", err)
	}

	r = testPair(t)
	r.Perspectives[0].Trustor = entC
	data, _ = r.Snapshot()
	if _, err := FromSnapshot(data); err == nil {
		t.Error("snapshot with a foreign perspective accepted")
	}
}

func TestFromSnapshotDefaultsSchema(t *testing.T) {
	r := testPair(t)
	r.Schema = ""
	data, _ := r.Snapshot()

	got, err := FromSnapshot(data)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	if got.Schema != Schema {
		t.Errorf("schema = %q, want %q", got.Schema, Schema)
	}
}
