package session

import (
	"github.com/whisperengine-ai/ai-research/internal/metacog"
	"github.com/whisperengine-ai/ai-research/internal/metrics"
	"github.com/whisperengine-ai/ai-research/internal/neurochem"
	"github.com/whisperengine-ai/ai-research/internal/workspace"
)

// The workspace and the reflection engine are single-owner structures
// with no locking of their own. Every read or write from outside
// ProcessTurn goes through the methods below, which hold the session
// lock and hand back copies.

// WorkspaceView is a point-in-time snapshot of the global workspace.
type WorkspaceView struct {
	Capacity  int                       `json:"capacity"`
	Occupancy int                       `json:"occupancy"`
	Pooled    int                       `json:"pooled"`
	Contents  []workspace.ActiveSummary `json:"contents"`
	Conscious []string                  `json:"conscious"`
	Focus     *FocusView                `json:"focus"`
}

// FocusView describes the most activated unit, if any.
type FocusView struct {
	Source     string  `json:"source"`
	Content    string  `json:"content"`
	Activation float64 `json:"activation"`
}

// WorkspaceView snapshots the active set, pool and attention focus.
func (s *Session) WorkspaceView() WorkspaceView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := WorkspaceView{
		Capacity:  s.ws.Capacity(),
		Occupancy: s.ws.Occupancy(),
		Pooled:    s.ws.PoolSize(),
		Contents:  s.ws.Contents(),
		Conscious: s.ws.ConsciousContent(),
	}
	if focus := s.ws.AttentionFocus(); focus != nil {
		v.Focus = &FocusView{
			Source:     focus.Source,
			Content:    focus.Content,
			Activation: focus.Activation,
		}
	}
	return v
}

// StreamView is a snapshot of the consciousness stream.
type StreamView struct {
	Total    int               `json:"total"`
	Retained int               `json:"retained"`
	Thoughts []metacog.Thought `json:"thoughts"`
}

// StreamView returns up to n recent thoughts, oldest first.
func (s *Session) StreamView(n int) StreamView {
	s.mu.Lock()
	defer s.mu.Unlock()
	stream := s.engine.Stream()
	return StreamView{
		Total:    stream.Total(),
		Retained: stream.Len(),
		Thoughts: stream.Recent(n),
	}
}

// MetricsView is a snapshot of the consciousness score history.
type MetricsView struct {
	Measurements int             `json:"measurements"`
	Recent       []metrics.Score `json:"recent"`
	Last         *metrics.Score  `json:"last,omitempty"`
}

// MetricsView returns up to n recent scores, oldest first.
func (s *Session) MetricsView(n int) MetricsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := MetricsView{
		Measurements: s.tracker.Len(),
		Recent:       s.tracker.Recent(n),
	}
	if last, ok := s.tracker.Last(); ok {
		v.Last = &last
	}
	return v
}

// MetricsSummary renders recent score averages for the /metrics
// command.
func (s *Session) MetricsSummary(n int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Summary(n)
}

// ChemistryView is a snapshot of the neurochemical state.
type ChemistryView struct {
	Levels     neurochem.Levels     `json:"levels"`
	Modulation neurochem.Modulation `json:"modulation"`
	Mood       string               `json:"mood"`
}

// ChemistryView returns current levels, modulation and mood.
func (s *Session) ChemistryView() ChemistryView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ChemistryView{
		Levels:     s.chem.Levels(),
		Modulation: s.chem.Modulation(),
		Mood:       s.chem.EmotionalState(),
	}
}

// ChemistryReport renders the level bar chart for the /chemistry
// command.
func (s *Session) ChemistryReport() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chem.StatusReport() + "Mood: " + s.chem.EmotionalState() + "\n"
}

// WorkingMemoryStats reports working-memory usage.
func (s *Session) WorkingMemoryStats() (used, capacity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wm := s.engine.WorkingMemory()
	return wm.Len(), wm.Capacity()
}

// DecayTick applies one activation decay step to the workspace. The
// maintenance sweeper calls this instead of touching the workspace, so
// decay serializes with in-flight turns.
func (s *Session) DecayTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws.Decay()
}
