// Package metrics derives per-turn consciousness scores from the
// workspace, the reflection engine, and the chemistry. The component
// scores are cheap structural proxies, not validated psychometrics;
// what matters downstream is that they are deterministic, bounded to
// 0..1, and move in the intuitive direction.
package metrics

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// Score is one consciousness measurement.
type Score struct {
	Phi                float64   `json:"phi"`
	GlobalAvailability float64   `json:"global_availability"`
	MetaCognitiveDepth float64   `json:"meta_cognitive_depth"`
	TemporalBinding    float64   `json:"temporal_binding"`
	Reportability      float64   `json:"reportability"`
	Overall            float64   `json:"overall_consciousness"`
	Timestamp          time.Time `json:"timestamp"`
}

// Inputs carries one turn's observations into ComputeAll.
type Inputs struct {
	// Workspace occupancy and broadcast shape.
	ActiveCount    int
	Capacity       int
	ActiveSources  []string
	ProcessorCount int
	BroadcastReach int

	// Reflection engine state.
	ReflectionCount int
	MaxDepth        int
	WorkingMemUsed  int
	WorkingMemCap   int

	// Current attention focus, used for turn-to-turn binding.
	FocusSource string

	// Stress disrupts temporal binding.
	Cortisol float64
}

// Tracker computes scores and keeps an append-only history.
type Tracker struct {
	mu        sync.Mutex
	history   []Score
	lastFocus string
	now       func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Overall weighting. Integration and meta-depth dominate, matching the
// emphasis of the rest of the pipeline.
const (
	wPhi     = 0.25
	wAvail   = 0.20
	wDepth   = 0.25
	wBinding = 0.15
	wReport  = 0.15
)

// ComputeAll derives a score from one turn's observations and appends
// it to the history.
func (t *Tracker) ComputeAll(in Inputs) Score {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Score{
		Phi:                phi(in),
		GlobalAvailability: availability(in),
		MetaCognitiveDepth: metaDepth(in),
		Reportability:      reportability(in),
		Timestamp:          t.now(),
	}
	s.TemporalBinding = t.binding(in)
	s.Overall = clamp01(wPhi*s.Phi + wAvail*s.GlobalAvailability +
		wDepth*s.MetaCognitiveDepth + wBinding*s.TemporalBinding +
		wReport*s.Reportability)

	t.lastFocus = in.FocusSource
	t.history = append(t.history, s)
	return s
}

// phi approximates integration as source diversity among the active
// contents: a workspace fed by many processors is more integrated than
// one dominated by a single source.
func phi(in Inputs) float64 {
	if in.ActiveCount == 0 || in.ProcessorCount == 0 {
		return 0
	}
	unique := map[string]bool{}
	for _, s := range in.ActiveSources {
		unique[s] = true
	}
	diversity := float64(len(unique)) / float64(in.ProcessorCount)
	occupancy := float64(in.ActiveCount) / float64(max(in.Capacity, 1))
	return clamp01(math.Sqrt(diversity * occupancy))
}

// availability blends workspace occupancy with how widely the last
// broadcast was received.
func availability(in Inputs) float64 {
	if in.Capacity == 0 {
		return 0
	}
	occupancy := float64(in.ActiveCount) / float64(in.Capacity)
	reach := 1.0
	if in.ProcessorCount > 0 {
		reach = float64(in.BroadcastReach) / float64(in.ProcessorCount)
	}
	return clamp01(0.6*occupancy + 0.4*reach)
}

// metaDepth is achieved recursion relative to the configured ceiling.
func metaDepth(in Inputs) float64 {
	if in.MaxDepth == 0 || in.ReflectionCount == 0 {
		return 0
	}
	achieved := in.ReflectionCount - 1
	return clamp01(float64(achieved) / float64(in.MaxDepth))
}

// reportability combines reflection completeness with working memory
// fill: internal states are reportable when they were actually
// recorded and remain accessible.
func reportability(in Inputs) float64 {
	var completeness, fill float64
	if in.MaxDepth > 0 {
		completeness = clamp01(float64(in.ReflectionCount) / float64(in.MaxDepth+1))
	}
	if in.WorkingMemCap > 0 {
		fill = clamp01(float64(in.WorkingMemUsed) / float64(in.WorkingMemCap))
	}
	return clamp01(0.6*completeness + 0.4*fill)
}

// binding rewards a stable attention focus across turns and lets
// accumulated history consolidate it. Cortisol degrades it.
func (t *Tracker) binding(in Inputs) float64 {
	b := 0.5
	if in.FocusSource != "" && in.FocusSource == t.lastFocus {
		b += 0.3
	}
	b += 0.2 * math.Min(1, float64(len(t.history))/10)
	b *= 1 - 0.3*clamp01(in.Cortisol)
	return clamp01(b)
}

// Recent returns up to n most recent scores, oldest first.
func (t *Tracker) Recent(n int) []Score {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n <= 0 || n > len(t.history) {
		n = len(t.history)
	}
	out := make([]Score, n)
	copy(out, t.history[len(t.history)-n:])
	return out
}

// Len reports how many scores have been recorded.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.history)
}

// Last returns the most recent score, or false when none exists. The
// session layer feeds it back into the next turn's prompt.
func (t *Tracker) Last() (Score, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.history) == 0 {
		return Score{}, false
	}
	return t.history[len(t.history)-1], true
}

// Summary renders recent averages for the /metrics chat command.
func (t *Tracker) Summary(recentN int) string {
	scores := t.Recent(recentN)
	if len(scores) == 0 {
		return "No consciousness measurements yet."
	}

	var sum Score
	for _, s := range scores {
		sum.Phi += s.Phi
		sum.GlobalAvailability += s.GlobalAvailability
		sum.MetaCognitiveDepth += s.MetaCognitiveDepth
		sum.TemporalBinding += s.TemporalBinding
		sum.Reportability += s.Reportability
		sum.Overall += s.Overall
	}
	n := float64(len(scores))

	var b strings.Builder
	fmt.Fprintf(&b, "Consciousness metrics (last %d measurements):\n", len(scores))
	fmt.Fprintf(&b, "  phi (integration)     %.3f\n", sum.Phi/n)
	fmt.Fprintf(&b, "  global availability   %.3f\n", sum.GlobalAvailability/n)
	fmt.Fprintf(&b, "  meta-cognitive depth  %.3f\n", sum.MetaCognitiveDepth/n)
	fmt.Fprintf(&b, "  temporal binding      %.3f\n", sum.TemporalBinding/n)
	fmt.Fprintf(&b, "  reportability         %.3f\n", sum.Reportability/n)
	fmt.Fprintf(&b, "  overall               %.3f\n", sum.Overall/n)
	return b.String()
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
