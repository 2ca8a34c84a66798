package relationship

import (
	"math"
	"testing"
	"time"
)

func TestNewSharedDimensionsDefaults(t *testing.T) {
	s := NewSharedDimensions()

	tests := []struct {
		name     string
		base     float64
		halfLife time.Duration
		got      float64
		gotHL    time.Duration
	}{
		{"affinity", 0.1, 14 * day, s.Affinity.Base, s.Affinity.HalfLife},
		{"respect", 0.2, 21 * day, s.Respect.Base, s.Respect.HalfLife},
		{"tension", 0, 7 * day, s.Tension.Base, s.Tension.HalfLife},
		{"intimacy", 0, 30 * day, s.Intimacy.Base, s.Intimacy.HalfLife},
		{"history", 0, 0, s.History.Base, s.History.HalfLife},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.base {
				t.Errorf("base = %f, want %f", tt.got, tt.base)
			}
			if tt.gotHL != tt.halfLife {
				t.Errorf("half-life = %s, want %s", tt.gotHL, tt.halfLife)
			}
		})
	}
}

func TestNewDirectionalDimensionsDefaults(t *testing.T) {
	d := NewDirectionalDimensions()

	tests := []struct {
		name     string
		base     float64
		halfLife time.Duration
		got      float64
		gotHL    time.Duration
	}{
		{"warmth", 0.2, 14 * day, d.Warmth.Base, d.Warmth.HalfLife},
		{"resentment", 0, 14 * day, d.Resentment.Base, d.Resentment.HalfLife},
		{"dependence", 0, 14 * day, d.Dependence.Base, d.Dependence.HalfLife},
		{"attraction", 0, 14 * day, d.Attraction.Base, d.Attraction.HalfLife},
		{"attachment", 0, 30 * day, d.Attachment.Base, d.Attachment.HalfLife},
		{"jealousy", 0, 7 * day, d.Jealousy.Base, d.Jealousy.HalfLife},
		{"fear", 0, 7 * day, d.Fear.Base, d.Fear.HalfLife},
		{"obligation", 0, 30 * day, d.Obligation.Base, d.Obligation.HalfLife},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.base {
				t.Errorf("base = %f, want %f", tt.got, tt.base)
			}
			if tt.gotHL != tt.halfLife {
				t.Errorf("half-life = %s, want %s", tt.gotHL, tt.halfLife)
			}
		})
	}
}

func TestAddHistoryDelta(t *testing.T) {
	s := NewSharedDimensions()

	s.AddHistoryDelta(0.3)
	if got := s.History.Effective(); math.Abs(got-0.3) > 0.001 {
		t.Fatalf("history after +0.3 = %f", got)
	}

	s.AddHistoryDelta(-0.2)
	s.AddHistoryDelta(0)
	if got := s.History.Effective(); math.Abs(got-0.3) > 0.001 {
		t.Errorf("non-positive deltas moved history: %f", got)
	}

	s.AddHistoryDelta(0.1)
	if got := s.History.Effective(); math.Abs(got-0.4) > 0.001 {
		t.Errorf("history after +0.1 = %f, want 0.4", got)
	}
}

func TestSharedDecaySparesHistory(t *testing.T) {
	s := NewSharedDimensions()
	s.AddHistoryDelta(0.4)
	s.Affinity.SetDelta(0.4)

	s.ApplyDecay(365 * day)

	if got := s.History.Effective(); math.Abs(got-0.4) > 0.001 {
		t.Errorf("history decayed: %f, want 0.4", got)
	}
	if got := s.Affinity.Delta; got > 0.001 {
		t.Errorf("affinity delta survived a year: %f", got)
	}
}

func TestDirectionalDecay(t *testing.T) {
	d := NewDirectionalDimensions()
	d.Jealousy.SetDelta(0.4)
	d.Attachment.SetDelta(0.4)

	d.ApplyDecay(7 * day)

	if got := d.Jealousy.Delta; math.Abs(got-0.2) > 0.001 {
		t.Errorf("jealousy delta after one half-life = %f, want 0.2", got)
	}
	// 0.4 * 0.5^(7/30)
	if got := d.Attachment.Delta; math.Abs(got-0.3403) > 0.001 {
		t.Errorf("attachment delta after 7d = %f, want 0.3403", got)
	}
}

func TestRecordInteractionFirst(t *testing.T) {
	p := NewInteractionPattern()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	p.RecordInteraction(ts)

	if math.Abs(p.Consistency-0.6) > 0.001 {
		t.Errorf("consistency after first interaction = %f, want 0.6", p.Consistency)
	}
	if math.Abs(p.Frequency-1) > 0.001 {
		t.Errorf("frequency after first interaction = %f, want 1", p.Frequency)
	}
	if !p.LastInteraction.Equal(ts) {
		t.Errorf("last interaction = %s, want %s", p.LastInteraction, ts)
	}
}

func TestRecordInteractionAfterGap(t *testing.T) {
	p := NewInteractionPattern()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	p.RecordInteraction(t0)
	p.RecordInteraction(t0.Add(7 * day))

	// 0.8*0.6 + 0.2*e^-1 and 1*0.5^0.5 + 1.
	if math.Abs(p.Consistency-0.5536) > 0.001 {
		t.Errorf("consistency after 7d gap = %f, want 0.5536", p.Consistency)
	}
	if math.Abs(p.Frequency-1.7071) > 0.001 {
		t.Errorf("frequency after 7d gap = %f, want 1.7071", p.Frequency)
	}
}

func TestRecordInteractionOutOfOrder(t *testing.T) {
	p := NewInteractionPattern()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	p.RecordInteraction(t0)
	p.RecordInteraction(t0.Add(-3 * day))

	// A backdated interaction counts but opens no gap and never moves the
	// clock backward.
	if !p.LastInteraction.Equal(t0) {
		t.Errorf("last interaction moved backward to %s", p.LastInteraction)
	}
	if math.Abs(p.Frequency-2) > 0.001 {
		t.Errorf("frequency = %f, want 2", p.Frequency)
	}
	if math.Abs(p.Consistency-0.68) > 0.001 {
		t.Errorf("consistency = %f, want 0.68", p.Consistency)
	}
}

func TestRecordInteractionDailyRhythm(t *testing.T) {
	// A steady daily rhythm drives consistency up and accumulates
	// frequency faster than it decays.
	p := NewInteractionPattern()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 11; i++ {
		p.RecordInteraction(ts.Add(time.Duration(i) * day))
	}

	if p.Consistency < 0.8 {
		t.Errorf("consistency after 11 daily interactions = %f, want > 0.8", p.Consistency)
	}
	if p.Frequency < 8 || p.Frequency > 9 {
		t.Errorf("frequency after 11 daily interactions = %f, want in (8, 9)", p.Frequency)
	}
}
