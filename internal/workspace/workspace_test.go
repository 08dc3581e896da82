package workspace

import (
	"math"
	"testing"
	"time"

	"go.uber.org/zap"
)

// newTestWorkspace builds a workspace with a frozen clock so recency
// stays at 1.0 and priorities are exactly 0.4*salience + 0.4*relevance + 0.2.
func newTestWorkspace(t *testing.T, cfg Config) (*Workspace, time.Time) {
	t.Helper()
	w, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	frozen := time.Now()
	w.now = func() time.Time { return frozen }
	return w, frozen
}

// unitWithPriority crafts a unit whose priority under a frozen clock is
// exactly p: salience = relevance = (p - 0.2) / 0.8.
func unitWithPriority(ts time.Time, source string, p float64) *Unit {
	s := (p - 0.2) / 0.8
	u := NewUnit(source, source+" content", s, s)
	u.Timestamp = ts
	return u
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero capacity", Config{Capacity: 0, DecayRate: 0.1, Threshold: 0.5, DecayFloor: 0.2}},
		{"negative decay", Config{Capacity: 3, DecayRate: -0.1, Threshold: 0.5, DecayFloor: 0.2}},
		{"decay of one", Config{Capacity: 3, DecayRate: 1.0, Threshold: 0.5, DecayFloor: 0.2}},
		{"threshold above one", Config{Capacity: 3, DecayRate: 0.1, Threshold: 1.5, DecayFloor: 0.2}},
		{"negative pool rounds", Config{Capacity: 3, DecayRate: 0.1, Threshold: 0.5, DecayFloor: 0.2, MaxPoolRounds: -1}},
	}
	for _, tc := range cases {
		if _, err := New(tc.cfg, zap.NewNop()); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
	if _, err := New(DefaultConfig(), zap.NewNop()); err != nil {
		t.Errorf("default config rejected: %v", err)
	}
}

func TestCapacityInvariant(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 2
	cfg.Threshold = 0.1
	w, ts := newTestWorkspace(t, cfg)

	for i := 0; i < 10; i++ {
		w.Submit(unitWithPriority(ts, "emotion", 0.9))
		w.Submit(unitWithPriority(ts, "language", 0.8))
		w.Submit(unitWithPriority(ts, "memory", 0.7))
		w.ProcessCycle()
		if w.Occupancy() > cfg.Capacity {
			t.Fatalf("cycle %d: occupancy %d exceeds capacity %d", i, w.Occupancy(), cfg.Capacity)
		}
	}
}

func TestAdmissionThreshold(t *testing.T) {
	w, ts := newTestWorkspace(t, DefaultConfig())

	w.Submit(unitWithPriority(ts, "weak", 0.3))
	w.CompetitionCycle()

	for _, c := range w.ConsciousContent() {
		if c == "weak content" {
			t.Fatal("below-threshold unit was admitted")
		}
	}
	if w.PoolSize() != 1 {
		t.Errorf("losing unit should stay pooled, pool size = %d", w.PoolSize())
	}
}

func TestDecayMonotonicityAndEviction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DecayRate = 0.15
	w, ts := newTestWorkspace(t, cfg)

	w.Submit(unitWithPriority(ts, "emotion", 0.9))
	w.CompetitionCycle()
	if w.Occupancy() != 1 {
		t.Fatalf("expected 1 active unit, got %d", w.Occupancy())
	}

	u := w.AttentionFocus()
	prev := u.Activation
	for i := 0; w.Occupancy() > 0; i++ {
		w.Decay()
		if w.Occupancy() == 0 {
			if prev*(1-cfg.DecayRate) > cfg.DecayFloor {
				t.Fatalf("evicted while activation %v still above floor", prev*(1-cfg.DecayRate))
			}
			break
		}
		if u.Activation >= prev {
			t.Fatalf("decay did not strictly decrease activation: %v -> %v", prev, u.Activation)
		}
		prev = u.Activation
		if i > 100 {
			t.Fatal("unit never evicted")
		}
	}
}

func TestEndToEndCompetitionScenario(t *testing.T) {
	// Reference scenario: capacity=2, decay=0.5, threshold=0.4.
	// Priorities [0.9, 0.6, 0.3]: two admitted, one stays pooled.
	// First decay: [0.45, 0.3] both survive. Second decay: [0.225,
	// 0.15] evicts the weaker.
	cfg := Config{Capacity: 2, DecayRate: 0.5, Threshold: 0.4, DecayFloor: 0.2}
	w, ts := newTestWorkspace(t, cfg)

	w.Submit(unitWithPriority(ts, "a", 0.9))
	w.Submit(unitWithPriority(ts, "b", 0.6))
	w.Submit(unitWithPriority(ts, "c", 0.3))

	broadcasts := w.CompetitionCycle()
	if len(broadcasts) != 2 {
		t.Fatalf("expected 2 winners, got %d", len(broadcasts))
	}
	if broadcasts[0].Source != "a" || broadcasts[1].Source != "b" {
		t.Errorf("winners out of priority order: %s, %s", broadcasts[0].Source, broadcasts[1].Source)
	}
	if w.PoolSize() != 1 {
		t.Errorf("expected unit c pooled, pool size = %d", w.PoolSize())
	}
	if !approx(broadcasts[0].Priority, 0.9) || !approx(broadcasts[1].Priority, 0.6) {
		t.Errorf("unexpected priorities: %v, %v", broadcasts[0].Priority, broadcasts[1].Priority)
	}

	w.Decay()
	if w.Occupancy() != 2 {
		t.Fatalf("after first decay both units should survive, occupancy = %d", w.Occupancy())
	}

	w.Decay()
	if w.Occupancy() != 1 {
		t.Fatalf("after second decay one unit should remain, occupancy = %d", w.Occupancy())
	}
	focus := w.AttentionFocus()
	if focus.Source != "a" {
		t.Errorf("surviving unit should be a, got %s", focus.Source)
	}
	if !approx(focus.Activation, 0.225) {
		t.Errorf("expected activation 0.225, got %v", focus.Activation)
	}
}

func TestEmptyCycleIsIdempotent(t *testing.T) {
	w, _ := newTestWorkspace(t, DefaultConfig())

	res := w.ProcessCycle()
	if res.Submissions != 0 {
		t.Errorf("expected 0 submissions, got %d", res.Submissions)
	}
	if len(res.Broadcasts) != 0 {
		t.Errorf("expected no broadcasts, got %d", len(res.Broadcasts))
	}
	if res.Competition.Occupancy != 0 || res.Competition.Winners != 0 {
		t.Errorf("unexpected competition summary: %+v", res.Competition)
	}
}

func TestBroadcastReachesAllProcessorsInOrder(t *testing.T) {
	cfg := DefaultConfig()
	w, ts := newTestWorkspace(t, cfg)

	first := NewEmotionProcessor()
	second := NewLanguageProcessor()
	third := NewMemoryProcessor()
	w.Register(first)
	w.Register(second)
	w.Register(third)

	w.Submit(unitWithPriority(ts, "emotion", 0.9))
	broadcasts := w.CompetitionCycle()
	if len(broadcasts) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(broadcasts))
	}

	b := broadcasts[0]
	want := []string{"emotion", "language", "memory"}
	if len(b.Reached) != len(want) {
		t.Fatalf("reached %d processors, want %d", len(b.Reached), len(want))
	}
	for i, name := range want {
		if b.Reached[i] != name {
			t.Errorf("reached[%d] = %s, want %s", i, b.Reached[i], name)
		}
	}
	for _, p := range []Processor{first, second, third} {
		base := p.(interface{ Inbox() []*Broadcast })
		if len(base.Inbox()) != 1 {
			t.Errorf("processor %s mailbox has %d broadcasts, want 1", p.Name(), len(base.Inbox()))
		}
	}
}

func TestDuplicateRegistrationReplaces(t *testing.T) {
	w, _ := newTestWorkspace(t, DefaultConfig())

	w.Register(NewEmotionProcessor())
	w.Register(NewLanguageProcessor())
	replacement := NewEmotionProcessor()
	w.Register(replacement)

	procs := w.Processors()
	if len(procs) != 2 {
		t.Fatalf("expected 2 processors after duplicate registration, got %d", len(procs))
	}
	if procs[0] != Processor(replacement) {
		t.Error("duplicate registration did not replace in place")
	}
}

func TestStableTieBreakPreservesInsertionOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 1
	w, ts := newTestWorkspace(t, cfg)

	w.Submit(unitWithPriority(ts, "first", 0.7))
	w.Submit(unitWithPriority(ts, "second", 0.7))

	broadcasts := w.CompetitionCycle()
	if len(broadcasts) != 1 {
		t.Fatalf("expected 1 winner, got %d", len(broadcasts))
	}
	if broadcasts[0].Source != "first" {
		t.Errorf("tie should admit insertion order first, got %s", broadcasts[0].Source)
	}
}

func TestPoolRetryForeverByDefault(t *testing.T) {
	w, ts := newTestWorkspace(t, DefaultConfig())

	w.Submit(unitWithPriority(ts, "weak", 0.3))
	for i := 0; i < 5; i++ {
		w.CompetitionCycle()
	}
	if w.PoolSize() != 1 {
		t.Errorf("losing candidate should be retried forever, pool size = %d", w.PoolSize())
	}
}

func TestPoolAgingDropsStarvedCandidates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPoolRounds = 3
	w, ts := newTestWorkspace(t, cfg)

	w.Submit(unitWithPriority(ts, "weak", 0.3))
	for i := 0; i < 2; i++ {
		w.CompetitionCycle()
		if w.PoolSize() != 1 {
			t.Fatalf("round %d: candidate dropped too early", i+1)
		}
	}
	w.CompetitionCycle()
	if w.PoolSize() != 0 {
		t.Errorf("candidate should be dropped after %d losing rounds", cfg.MaxPoolRounds)
	}
}

func TestAttentionFocusAndClear(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold = 0.3
	w, ts := newTestWorkspace(t, cfg)

	if w.AttentionFocus() != nil {
		t.Error("empty workspace should have no attention focus")
	}

	w.Submit(unitWithPriority(ts, "low", 0.5))
	w.Submit(unitWithPriority(ts, "high", 0.9))
	w.CompetitionCycle()

	focus := w.AttentionFocus()
	if focus == nil || focus.Source != "high" {
		t.Fatalf("focus should be the most activated unit, got %+v", focus)
	}

	w.Clear()
	if w.Occupancy() != 0 || w.PoolSize() != 0 {
		t.Error("clear should empty active set and pool")
	}
	if w.AttentionFocus() != nil {
		t.Error("cleared workspace should have no focus")
	}
}

func TestProcessCycleDrainsProcessors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold = 0.3
	w, _ := newTestWorkspace(t, cfg)

	ep := NewEmotionProcessor()
	lp := NewLanguageProcessor()
	w.Register(ep)
	w.Register(lp)

	ep.ProcessEmotion("joy", 0.9, "user expressed delight")
	lp.ProcessInput("how are you?", TextSignals{IsQuestion: true})

	res := w.ProcessCycle()
	if res.Submissions != 2 {
		t.Errorf("expected 2 submissions, got %d", res.Submissions)
	}
	if len(res.Broadcasts) != 2 {
		t.Errorf("expected 2 broadcasts, got %d", len(res.Broadcasts))
	}
	if res.Competition.Capacity != cfg.Capacity {
		t.Errorf("summary capacity = %d, want %d", res.Competition.Capacity, cfg.Capacity)
	}

	// Queues must be fully drained.
	if got := len(ep.Process()); got != 0 {
		t.Errorf("emotion queue not drained: %d left", got)
	}
	if got := len(lp.Process()); got != 0 {
		t.Errorf("language queue not drained: %d left", got)
	}
}
