package relationship

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestPathGet(t *testing.T) {
	r := testPair(t)

	tests := []struct {
		path string
		want float64
	}{
		{"shared/affinity", 0.1},
		{"shared/respect", 0.2},
		{"shared/tension", 0},
		{"shared/intimacy", 0},
		{"shared/history", 0},
		{"directional/" + entA.String() + "/warmth", 0.2},
		{"directional/" + entB.String() + "/fear", 0},
		{"trust/" + entA.String() + "/competence/work", 0.5},
		{"trust/" + entA.String() + "/benevolence", 0.5},
		{"trust/" + entB.String() + "/integrity", 0.5},
		{"risk/" + entA.String(), 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			v, err := r.PathGet(tt.path)
			if err != nil {
				t.Fatalf("PathGet(%q) = %v", tt.path, err)
			}
			if math.Abs(v.Effective-tt.want) > 0.001 {
				t.Errorf("PathGet(%q).Effective = %f, want %f", tt.path, v.Effective, tt.want)
			}
			if v.Path != tt.path {
				t.Errorf("PathGet(%q).Path = %q", tt.path, v.Path)
			}
		})
	}
}

func TestPathGetUnknown(t *testing.T) {
	r := testPair(t)

	paths := []string{
		"",
		"shared",
		"shared/bogus",
		"shared/affinity/extra",
		"bogus/affinity",
		"directional/" + entA.String(),
		"directional/" + entA.String() + "/happiness",
		"directional/not-a-uuid/warmth",
		"trust/" + entA.String(),
		"trust/" + entA.String() + "/charisma",
		"trust/" + entA.String() + "/competence/orbital",
		"trust/" + entC.String() + "/integrity",
		"risk",
		"risk/" + entC.String(),
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			if _, err := r.PathGet(path); !errors.Is(err, ErrUnknownPath) {
				t.Errorf("PathGet(%q) error = %v, want ErrUnknownPath", path, err)
			}
		})
	}
}

func TestPathApply(t *testing.T) {
	r := testPair(t)

	v, err := r.PathApply("risk/"+entA.String(), OpSetBase, 0.8)
	if err != nil {
		t.Fatalf("set_base: %v", err)
	}
	if math.Abs(v.Base-0.8) > 0.001 || math.Abs(v.Effective-0.8) > 0.001 {
		t.Errorf("after set_base: %+v", v)
	}
	p, _ := r.Perspective(entA)
	if math.Abs(p.Risk.Level.Base-0.8) > 0.001 {
		t.Errorf("set_base did not reach the owning value: base %f", p.Risk.Level.Base)
	}

	v, err = r.PathApply("directional/"+entA.String()+"/warmth", OpAddDelta, 0.3)
	if err != nil {
		t.Fatalf("add_delta: %v", err)
	}
	if math.Abs(v.Effective-0.5) > 0.001 {
		t.Errorf("warmth after add_delta = %f, want 0.5", v.Effective)
	}

	v, err = r.PathApply("trust/"+entA.String()+"/integrity", OpSetDelta, 0.5)
	if err != nil {
		t.Fatalf("set_delta: %v", err)
	}
	if math.Abs(v.Effective-1) > 0.001 {
		t.Errorf("integrity after set_delta = %f, want 1 (clamped)", v.Effective)
	}
}

func TestPathApplyRejectsUnknown(t *testing.T) {
	r := testPair(t)

	if _, err := r.PathApply("shared/bogus", OpAddDelta, 0.1); !errors.Is(err, ErrUnknownPath) {
		t.Errorf("unknown path error = %v, want ErrUnknownPath", err)
	}

	_, err := r.PathApply("shared/affinity", PathOp("wipe"), 0.1)
	if err == nil || !strings.Contains(err.Error(), "unknown path op") {
		t.Errorf("unknown op error = %v", err)
	}
}

func TestPathApplyHistoryGuard(t *testing.T) {
	r := testPair(t)

	if _, err := r.PathApply("shared/history", OpAddDelta, 0.6); err != nil {
		t.Fatalf("add_delta: %v", err)
	}

	// Negative additions are silently ignored.
	v, err := r.PathApply("shared/history", OpAddDelta, -0.3)
	if err != nil {
		t.Fatalf("negative add_delta: %v", err)
	}
	if math.Abs(v.Effective-0.6) > 0.001 {
		t.Errorf("negative add_delta moved history: %f", v.Effective)
	}

	// Set ops that would lower the effective value are rejected.
	if _, err := r.PathApply("shared/history", OpSetDelta, 0.2); !errors.Is(err, ErrHistoryDecrease) {
		t.Errorf("lowering set_delta error = %v, want ErrHistoryDecrease", err)
	}
	if _, err := r.PathApply("shared/history", OpSetBase, -0.5); !errors.Is(err, ErrHistoryDecrease) {
		t.Errorf("lowering set_base error = %v, want ErrHistoryDecrease", err)
	}

	// Raising set ops pass.
	v, err = r.PathApply("shared/history", OpSetBase, 0.2)
	if err != nil {
		t.Fatalf("raising set_base: %v", err)
	}
	if math.Abs(v.Effective-0.8) > 0.001 {
		t.Errorf("history after raising set_base = %f, want 0.8", v.Effective)
	}
	v, err = r.PathApply("shared/history", OpSetDelta, 0.7)
	if err != nil {
		t.Fatalf("raising set_delta: %v", err)
	}
	if math.Abs(v.Effective-0.9) > 0.001 {
		t.Errorf("history after raising set_delta = %f, want 0.9", v.Effective)
	}
}

func TestParsePathOp(t *testing.T) {
	for _, s := range []string{"set_base", "set_delta", "add_delta"} {
		op, ok := ParsePathOp(s)
		if !ok || string(op) != s {
			t.Errorf("ParsePathOp(%q) = %q, %v", s, op, ok)
		}
	}
	for _, bad := range []string{"", "set", "ADD_DELTA", "delete"} {
		if _, ok := ParsePathOp(bad); ok {
			t.Errorf("ParsePathOp(%q) accepted", bad)
		}
	}
}
