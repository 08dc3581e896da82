// Package maintenance runs the periodic decay pass: workspace
// activations fade and long-term concept activations sweep toward
// their floor, so attention and memory both require ongoing
// reinforcement to persist.
package maintenance

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/whisperengine-ai/ai-research/internal/memory"
	"github.com/whisperengine-ai/ai-research/internal/session"
)

// SweepStats summarizes one maintenance pass.
type SweepStats struct {
	Sessions        int `json:"sessions"`
	ConceptsDecayed int `json:"concepts_decayed"`
}

// Runner fires decay sweeps on a fixed wall-clock interval.
type Runner struct {
	interval time.Duration
	mgr      *session.Manager
	memory   *memory.Store
	decay    memory.DecayConfig
	logger   *zap.Logger

	mu      sync.Mutex
	stop    chan struct{}
	stopped sync.WaitGroup
}

// New creates a runner. The memory store is optional; without it the
// sweep only decays live workspaces.
func New(interval time.Duration, mgr *session.Manager, mem *memory.Store, logger *zap.Logger) *Runner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		interval: interval,
		mgr:      mgr,
		memory:   mem,
		decay:    memory.DefaultDecayConfig(),
		logger:   logger,
	}
}

// Start launches the background sweep loop. Calling Start twice is a
// no-op until Stop is called.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop != nil {
		return
	}
	r.stop = make(chan struct{})
	r.stopped.Add(1)

	go func(stop chan struct{}) {
		defer r.stopped.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				stats := r.SweepNow(ctx)
				cancel()
				r.logger.Debug("Decay sweep complete",
					zap.Int("sessions", stats.Sessions),
					zap.Int("concepts_decayed", stats.ConceptsDecayed))
			case <-stop:
				return
			}
		}
	}(r.stop)
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stop == nil {
		r.mu.Unlock()
		return
	}
	close(r.stop)
	r.stop = nil
	r.mu.Unlock()
	r.stopped.Wait()
}

// SweepNow runs one pass immediately, bypassing the interval.
func (r *Runner) SweepNow(ctx context.Context) SweepStats {
	var stats SweepStats
	for _, id := range r.mgr.List() {
		s, ok := r.mgr.Get(id)
		if !ok {
			continue
		}
		s.DecayTick()
		stats.Sessions++

		if r.memory != nil {
			n, err := r.memory.DecaySweep(ctx, id, r.decay)
			if err != nil {
				r.logger.Warn("Concept decay failed",
					zap.String("session", id), zap.Error(err))
				continue
			}
			stats.ConceptsDecayed += n
		}
	}
	return stats
}
