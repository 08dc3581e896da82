package neurochem

import (
	"math"
	"testing"
)

func approx(t *testing.T, got, want float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", msg, got, want)
	}
}

func TestBaselineLevels(t *testing.T) {
	s := NewSystem()
	l := s.Levels()
	approx(t, l.Dopamine, 0.5, "dopamine")
	approx(t, l.Serotonin, 0.5, "serotonin")
	approx(t, l.Norepinephrine, 0.5, "norepinephrine")
	approx(t, l.Oxytocin, 0.5, "oxytocin")
	approx(t, l.Cortisol, 0.3, "cortisol")
}

func TestApplyEmotionScalesByIntensity(t *testing.T) {
	s := NewSystem()
	s.ApplyEmotion("joy", 0.5)
	l := s.Levels()
	approx(t, l.Dopamine, 0.5+0.3*0.5, "dopamine after joy")
	approx(t, l.Serotonin, 0.5+0.2*0.5, "serotonin after joy")
	approx(t, l.Oxytocin, 0.5+0.1*0.5, "oxytocin after joy")
	approx(t, l.Cortisol, 0.3, "cortisol unchanged by joy")
}

func TestAngerDepressesDopamine(t *testing.T) {
	s := NewSystem()
	s.ApplyEmotion("anger", 1.0)
	l := s.Levels()
	approx(t, l.Dopamine, 0.35, "dopamine after anger")
	approx(t, l.Norepinephrine, 0.9, "norepinephrine after anger")
	approx(t, l.Cortisol, 0.6, "cortisol after anger")
	approx(t, l.Serotonin, 0.3, "serotonin after anger")
}

func TestLevelsClampToUnitInterval(t *testing.T) {
	s := NewSystem()
	for i := 0; i < 10; i++ {
		s.ApplyEmotion("fear", 1.0)
	}
	l := s.Levels()
	if l.Cortisol > 1.0 {
		t.Errorf("cortisol escaped upper bound: %v", l.Cortisol)
	}
	for i := 0; i < 10; i++ {
		s.ApplyEmotion("sadness", 1.0)
	}
	if got := s.Levels().Serotonin; got < 0 {
		t.Errorf("serotonin escaped lower bound: %v", got)
	}
}

func TestUnknownAndNeutralEmotionsAreNoOps(t *testing.T) {
	s := NewSystem()
	before := s.Levels()
	s.ApplyEmotion("melancholy-nostalgia", 1.0)
	s.ApplyEmotion("neutral", 1.0)
	if s.Levels() != before {
		t.Error("levels moved for a no-op emotion")
	}
}

func TestHomeostaticDecayApproachesBaseline(t *testing.T) {
	s := NewSystem()
	s.ApplyEmotion("fear", 1.0)
	elevated := s.Levels().Cortisol

	s.Decay()
	after := s.Levels().Cortisol
	if after >= elevated {
		t.Fatalf("cortisol did not decay: %v -> %v", elevated, after)
	}
	approx(t, after, elevated+(0.3-elevated)*0.05, "cortisol one-step decay")

	for i := 0; i < 500; i++ {
		s.Decay()
	}
	if got := s.Levels().Cortisol; math.Abs(got-0.3) > 0.01 {
		t.Errorf("cortisol settled at %v, want near baseline 0.3", got)
	}
}

func TestModulationWeights(t *testing.T) {
	s := NewSystem()
	m := s.Modulation()
	approx(t, m.Creativity, 0.5*0.7+0.7*0.3, "creativity at baseline")
	approx(t, m.Positivity, 0.5, "positivity at baseline")
	approx(t, m.Empathy, 0.5, "empathy at baseline")
	approx(t, m.Urgency, 0.5*0.6+0.3*0.4, "urgency at baseline")
	approx(t, m.Sociability, 0.5, "sociability at baseline")
}

func TestEmotionalStateSummaries(t *testing.T) {
	cases := []struct {
		name    string
		emotion string
		reps    int
		want    string
	}{
		{"baseline", "", 0, "balanced and neutral"},
		{"joyful", "joy", 2, "content and motivated"},
		{"affectionate", "affection", 2, "warm and connected"},
		{"fearful", "fear", 2, "stressed and alert"},
		{"sad", "sadness", 3, "subdued and reflective"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSystem()
			for i := 0; i < tc.reps; i++ {
				s.ApplyEmotion(tc.emotion, 1.0)
			}
			if got := s.EmotionalState(); got != tc.want {
				t.Errorf("state = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReset(t *testing.T) {
	s := NewSystem()
	s.ApplyEmotion("anger", 1.0)
	s.Reset()
	if s.Levels() != Baseline() {
		t.Errorf("levels after reset = %+v", s.Levels())
	}
}
