package workspace

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Config controls arbitration behavior.
type Config struct {
	// Capacity is how many units can be active simultaneously.
	Capacity int `json:"capacity"`
	// DecayRate is the fraction of activation lost per cycle.
	DecayRate float64 `json:"decay_rate"`
	// Threshold is the minimum priority required to enter the active
	// set. Distinct from DecayFloor, the survival bar.
	Threshold float64 `json:"threshold"`
	// DecayFloor is the activation at or below which an active unit is
	// evicted.
	DecayFloor float64 `json:"decay_floor"`
	// MaxPoolRounds bounds how many competition rounds a pending unit
	// may lose before it is dropped from the pool. Zero retries
	// forever.
	MaxPoolRounds int `json:"max_pool_rounds"`
}

// DefaultConfig returns the reference arbitration parameters.
func DefaultConfig() Config {
	return Config{
		Capacity:   3,
		DecayRate:  0.15,
		Threshold:  0.5,
		DecayFloor: 0.2,
	}
}

func (c Config) validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("workspace capacity must be >= 1, got %d", c.Capacity)
	}
	if c.DecayRate < 0 || c.DecayRate >= 1 {
		return fmt.Errorf("decay rate must be in [0,1), got %v", c.DecayRate)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("competition threshold must be in [0,1], got %v", c.Threshold)
	}
	if c.DecayFloor < 0 || c.DecayFloor >= 1 {
		return fmt.Errorf("decay floor must be in [0,1), got %v", c.DecayFloor)
	}
	if c.MaxPoolRounds < 0 {
		return fmt.Errorf("max pool rounds must be >= 0, got %d", c.MaxPoolRounds)
	}
	return nil
}

// Workspace is the capacity-bounded broadcast channel at the center of
// the simulation. Each cycle it collects submissions from every
// registered processor, admits the highest-priority units, broadcasts
// them to all processors and decays what is already active.
//
// All methods must be called from a single goroutine; submission is not
// safe for concurrent mutation.
type Workspace struct {
	cfg Config

	active  []*Unit
	pool    []*Unit
	procs   []Processor
	index   map[string]int
	history []*Broadcast

	now    func() time.Time
	logger *zap.Logger
}

// New creates a workspace, rejecting invalid configuration.
func New(cfg Config, logger *zap.Logger) (*Workspace, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workspace{
		cfg:    cfg,
		index:  make(map[string]int),
		now:    time.Now,
		logger: logger,
	}, nil
}

// Register adds a processor. Registering the same name twice replaces
// the earlier processor in place; this is recoverable misuse, so it is
// logged rather than rejected.
func (w *Workspace) Register(p Processor) {
	if i, ok := w.index[p.Name()]; ok {
		w.logger.Warn("processor already registered, replacing",
			zap.String("processor", p.Name()))
		w.procs[i] = p
		return
	}
	w.index[p.Name()] = len(w.procs)
	w.procs = append(w.procs, p)
}

// Processors returns registered processors in registration order.
func (w *Workspace) Processors() []Processor {
	out := make([]Processor, len(w.procs))
	copy(out, w.procs)
	return out
}

// Submit places a unit into the competition pool. Always succeeds; the
// unit's activation is seeded from its current priority.
func (w *Workspace) Submit(u *Unit) {
	u.Activation = u.Priority(w.now())
	w.pool = append(w.pool, u)
}

// CompetitionCycle runs one round of priority-ranked admission.
// Winners move into the active set and are broadcast synchronously to
// every processor in registration order, most important first. Losers
// stay pooled for the next round unless they exceed MaxPoolRounds.
func (w *Workspace) CompetitionCycle() []*Broadcast {
	if len(w.pool) == 0 {
		return nil
	}
	now := w.now()

	// Recency decays with wall-clock time, so pooled priorities change
	// between rounds.
	for _, u := range w.pool {
		u.Activation = u.Priority(now)
	}

	// Stable: equal-priority units keep pool insertion order.
	sort.SliceStable(w.pool, func(i, j int) bool {
		return w.pool[i].Activation > w.pool[j].Activation
	})

	slots := w.cfg.Capacity - len(w.active)
	var winners []*Unit
	for i, u := range w.pool {
		if i >= slots {
			break
		}
		if u.Activation < w.cfg.Threshold {
			break // sorted descending, nothing further qualifies
		}
		winners = append(winners, u)
	}

	rest := w.pool[len(winners):]
	w.pool = make([]*Unit, 0, len(rest))
	for _, u := range rest {
		u.lostRounds++
		if w.cfg.MaxPoolRounds > 0 && u.lostRounds >= w.cfg.MaxPoolRounds {
			w.logger.Debug("dropping starved candidate",
				zap.String("source", u.Source),
				zap.Int("rounds", u.lostRounds))
			continue
		}
		w.pool = append(w.pool, u)
	}

	var broadcasts []*Broadcast
	for _, u := range winners {
		w.active = append(w.active, u)
		b := &Broadcast{
			ID:       u.ID,
			Source:   u.Source,
			Content:  u.Content,
			Priority: u.Activation,
			SentAt:   now,
		}
		for _, p := range w.procs {
			p.Receive(b)
			b.Reached = append(b.Reached, p.Name())
		}
		broadcasts = append(broadcasts, b)
		w.history = append(w.history, b)
	}
	return broadcasts
}

// Decay shrinks every active unit's activation and silently evicts
// units at or below the floor. No broadcast occurs on eviction.
func (w *Workspace) Decay() {
	kept := w.active[:0]
	evicted := 0
	for _, u := range w.active {
		u.Activation *= 1.0 - w.cfg.DecayRate
		if u.Activation > w.cfg.DecayFloor {
			kept = append(kept, u)
		} else {
			evicted++
		}
	}
	w.active = kept
	if evicted > 0 {
		w.logger.Debug("evicted faded units", zap.Int("count", evicted))
	}
}

// BroadcastSummary describes one broadcast made during a cycle.
type BroadcastSummary struct {
	Source   string  `json:"source"`
	Content  string  `json:"content"`
	Priority float64 `json:"priority"`
}

// ActiveSummary describes one currently active unit.
type ActiveSummary struct {
	Source     string  `json:"source"`
	Content    string  `json:"content"`
	Activation float64 `json:"activation"`
	AgeSeconds float64 `json:"age_seconds"`
}

// CompetitionSummary describes the outcome of one competition round.
type CompetitionSummary struct {
	Competitors int `json:"total_competitors"`
	Winners     int `json:"winners"`
	Occupancy   int `json:"workspace_occupancy"`
	Capacity    int `json:"workspace_capacity"`
}

// CycleResult is the per-turn summary returned by ProcessCycle.
type CycleResult struct {
	Submissions int                `json:"submissions"`
	Broadcasts  []BroadcastSummary `json:"broadcasts"`
	Contents    []ActiveSummary    `json:"workspace_contents"`
	Competition CompetitionSummary `json:"competition_summary"`
}

// ProcessCycle is the per-turn driver: drain every processor, run the
// competition, broadcast winners, decay the active set and report. This
// is the only method external callers should invoke per turn.
func (w *Workspace) ProcessCycle() *CycleResult {
	res := &CycleResult{
		Broadcasts: []BroadcastSummary{},
		Contents:   []ActiveSummary{},
	}

	for _, p := range w.procs {
		for _, u := range p.Process() {
			w.Submit(u)
			res.Submissions++
		}
	}

	broadcasts := w.CompetitionCycle()
	for _, b := range broadcasts {
		res.Broadcasts = append(res.Broadcasts, BroadcastSummary{
			Source:   b.Source,
			Content:  b.Content,
			Priority: b.Priority,
		})
	}

	w.Decay()

	now := w.now()
	for _, u := range w.active {
		res.Contents = append(res.Contents, ActiveSummary{
			Source:     u.Source,
			Content:    truncate(u.Content, 100),
			Activation: u.Activation,
			AgeSeconds: u.Age(now).Seconds(),
		})
	}
	res.Competition = CompetitionSummary{
		Competitors: len(w.pool) + len(broadcasts),
		Winners:     len(broadcasts),
		Occupancy:   len(w.active),
		Capacity:    w.cfg.Capacity,
	}
	return res
}

// ConsciousContent lists the text of every active unit.
func (w *Workspace) ConsciousContent() []string {
	out := make([]string, len(w.active))
	for i, u := range w.active {
		out[i] = u.Content
	}
	return out
}

// AttentionFocus returns the active unit with the highest activation,
// or nil when the workspace is empty. Order is undefined on exact ties.
func (w *Workspace) AttentionFocus() *Unit {
	if len(w.active) == 0 {
		return nil
	}
	focus := w.active[0]
	for _, u := range w.active[1:] {
		if u.Activation > focus.Activation {
			focus = u
		}
	}
	return focus
}

// Contents returns summaries of the active set ordered by activation,
// highest first.
func (w *Workspace) Contents() []ActiveSummary {
	now := w.now()
	out := make([]ActiveSummary, len(w.active))
	for i, u := range w.active {
		out[i] = ActiveSummary{
			Source:     u.Source,
			Content:    u.Content,
			Activation: u.Activation,
			AgeSeconds: u.Age(now).Seconds(),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Activation > out[j].Activation
	})
	return out
}

// History returns up to limit most recent broadcasts.
func (w *Workspace) History(limit int) []*Broadcast {
	if limit <= 0 || limit > len(w.history) {
		limit = len(w.history)
	}
	return w.history[len(w.history)-limit:]
}

// PoolSize reports how many candidates are awaiting admission.
func (w *Workspace) PoolSize() int { return len(w.pool) }

// Occupancy reports how many units are currently active.
func (w *Workspace) Occupancy() int { return len(w.active) }

// Capacity reports the configured active-set bound.
func (w *Workspace) Capacity() int { return w.cfg.Capacity }

// Clear empties the active set and the competition pool. Used on
// session reset.
func (w *Workspace) Clear() {
	w.active = nil
	w.pool = nil
}
