// Package neurochem models five simulated brain chemicals that bias
// response generation. Levels move with detected emotions and relax
// toward baseline each cycle.
package neurochem

import (
	"fmt"
	"strings"
	"sync"
)

// Levels holds the five chemical concentrations on a 0..1 scale.
type Levels struct {
	Dopamine       float64 `json:"dopamine"`
	Serotonin      float64 `json:"serotonin"`
	Norepinephrine float64 `json:"norepinephrine"`
	Oxytocin       float64 `json:"oxytocin"`
	Cortisol       float64 `json:"cortisol"`
}

// Baseline is the homeostatic resting point. Cortisol rests below the
// midpoint; a relaxed system carries little stress.
func Baseline() Levels {
	return Levels{
		Dopamine:       0.5,
		Serotonin:      0.5,
		Norepinephrine: 0.5,
		Oxytocin:       0.5,
		Cortisol:       0.3,
	}
}

func (l *Levels) clamp() {
	l.Dopamine = clamp01(l.Dopamine)
	l.Serotonin = clamp01(l.Serotonin)
	l.Norepinephrine = clamp01(l.Norepinephrine)
	l.Oxytocin = clamp01(l.Oxytocin)
	l.Cortisol = clamp01(l.Cortisol)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Modulation translates the chemical balance into response-generation
// parameters, each on a 0..1 scale.
type Modulation struct {
	Creativity  float64 `json:"creativity"`
	Positivity  float64 `json:"positivity"`
	Empathy     float64 `json:"empathy"`
	Urgency     float64 `json:"urgency"`
	Caution     float64 `json:"caution"`
	Sociability float64 `json:"sociability"`
}

// delta is a per-emotion set of chemical shifts, scaled by intensity
// before application.
type delta struct {
	dopamine       float64
	serotonin      float64
	norepinephrine float64
	oxytocin       float64
	cortisol       float64
}

// emotionDeltas maps detected emotions to chemical shifts. Anger drops
// dopamine as well as serotonin; frustration is demotivating.
var emotionDeltas = map[string]delta{
	"joy":        {dopamine: 0.3, serotonin: 0.2, oxytocin: 0.1},
	"happiness":  {dopamine: 0.3, serotonin: 0.2, oxytocin: 0.1},
	"sadness":    {serotonin: -0.3, dopamine: -0.2, cortisol: 0.2},
	"anger":      {norepinephrine: 0.4, cortisol: 0.3, serotonin: -0.2, dopamine: -0.15},
	"fear":       {cortisol: 0.4, norepinephrine: 0.3, serotonin: -0.1},
	"anxiety":    {cortisol: 0.35, norepinephrine: 0.2, serotonin: -0.15},
	"surprise":   {norepinephrine: 0.2, dopamine: 0.15},
	"love":       {oxytocin: 0.4, dopamine: 0.2, serotonin: 0.1},
	"affection":  {oxytocin: 0.3, serotonin: 0.1},
	"trust":      {oxytocin: 0.25, serotonin: 0.1},
	"excitement": {dopamine: 0.3, norepinephrine: 0.2},
	"disgust":    {serotonin: -0.2, cortisol: 0.15},
	"neutral":    {},
}

// homeostaticRate pulls levels 5% of the way to baseline per cycle.
const homeostaticRate = 0.05

// System tracks chemical levels for one session. Safe for concurrent
// use; HTTP handlers read while the turn pipeline writes.
type System struct {
	mu       sync.RWMutex
	levels   Levels
	baseline Levels
}

// NewSystem starts at baseline.
func NewSystem() *System {
	b := Baseline()
	return &System{levels: b, baseline: b}
}

// ApplyEmotion shifts levels for the detected emotion, scaled by its
// intensity. Unknown emotions leave levels unchanged.
func (s *System) ApplyEmotion(emotion string, intensity float64) {
	d, ok := emotionDeltas[strings.ToLower(emotion)]
	if !ok {
		return
	}
	intensity = clamp01(intensity)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels.Dopamine += d.dopamine * intensity
	s.levels.Serotonin += d.serotonin * intensity
	s.levels.Norepinephrine += d.norepinephrine * intensity
	s.levels.Oxytocin += d.oxytocin * intensity
	s.levels.Cortisol += d.cortisol * intensity
	s.levels.clamp()
}

// Decay relaxes each chemical toward its baseline. Called once per
// interaction cycle.
func (s *System) Decay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels.Dopamine += (s.baseline.Dopamine - s.levels.Dopamine) * homeostaticRate
	s.levels.Serotonin += (s.baseline.Serotonin - s.levels.Serotonin) * homeostaticRate
	s.levels.Norepinephrine += (s.baseline.Norepinephrine - s.levels.Norepinephrine) * homeostaticRate
	s.levels.Oxytocin += (s.baseline.Oxytocin - s.levels.Oxytocin) * homeostaticRate
	s.levels.Cortisol += (s.baseline.Cortisol - s.levels.Cortisol) * homeostaticRate
	s.levels.clamp()
}

// Levels returns a snapshot of the current concentrations.
func (s *System) Levels() Levels {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.levels
}

// Modulation derives the behavioral parameters from current levels.
func (s *System) Modulation() Modulation {
	s.mu.RLock()
	l := s.levels
	s.mu.RUnlock()
	return Modulation{
		Creativity:  l.Dopamine*0.7 + (1-l.Cortisol)*0.3,
		Positivity:  l.Serotonin*0.6 + l.Dopamine*0.4,
		Empathy:     l.Oxytocin*0.7 + l.Serotonin*0.3,
		Urgency:     l.Norepinephrine*0.6 + l.Cortisol*0.4,
		Caution:     l.Cortisol*0.7 + (1-l.Dopamine)*0.3,
		Sociability: l.Oxytocin*0.5 + l.Serotonin*0.3 + l.Dopamine*0.2,
	}
}

// EmotionalState summarizes the chemical balance as a short phrase.
// Checks run in priority order; the first match wins.
func (s *System) EmotionalState() string {
	s.mu.RLock()
	l := s.levels
	s.mu.RUnlock()

	switch {
	case l.Dopamine > 0.6 && l.Serotonin > 0.6:
		return "content and motivated"
	case l.Oxytocin > 0.6:
		return "warm and connected"
	case l.Cortisol > 0.6 && l.Norepinephrine > 0.6:
		return "stressed and alert"
	case l.Serotonin < 0.3:
		return "subdued and reflective"
	case l.Norepinephrine > 0.6:
		return "alert and focused"
	default:
		return "balanced and neutral"
	}
}

// Reset returns all chemicals to baseline.
func (s *System) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = s.baseline
}

// StatusReport renders a human-readable bar chart of current levels,
// used by the /chemistry chat command.
func (s *System) StatusReport() string {
	l := s.Levels()
	state := s.EmotionalState()

	var b strings.Builder
	b.WriteString("Neurochemical status:\n")
	writeBar(&b, "dopamine", l.Dopamine, "motivation")
	writeBar(&b, "serotonin", l.Serotonin, "mood")
	writeBar(&b, "norepinephrine", l.Norepinephrine, "alertness")
	writeBar(&b, "oxytocin", l.Oxytocin, "empathy")
	writeBar(&b, "cortisol", l.Cortisol, "stress")
	fmt.Fprintf(&b, "emotional state: %s\n", state)
	return b.String()
}

func writeBar(b *strings.Builder, name string, level float64, role string) {
	filled := int(level * 10)
	fmt.Fprintf(b, "  %-15s %s%s %.2f (%s)\n",
		name, strings.Repeat("#", filled), strings.Repeat(".", 10-filled), level, role)
}
