package maintenance

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/whisperengine-ai/ai-research/internal/session"
)

func TestSweepDecaysLiveWorkspaces(t *testing.T) {
	mgr := session.NewManager(session.DefaultConfig(), session.Deps{Logger: zap.NewNop()})
	s, err := mgr.GetOrCreate(context.Background(), "sweep-test")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := s.ProcessTurn(context.Background(), "something to think about"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}

	r := New(time.Minute, mgr, nil, zap.NewNop())
	stats := r.SweepNow(context.Background())
	if stats.Sessions != 1 {
		t.Errorf("Sessions = %d, want 1", stats.Sessions)
	}
	if stats.ConceptsDecayed != 0 {
		t.Errorf("ConceptsDecayed = %d without a memory store", stats.ConceptsDecayed)
	}
}

func TestRepeatedSweepsEmptyWorkspace(t *testing.T) {
	mgr := session.NewManager(session.DefaultConfig(), session.Deps{Logger: zap.NewNop()})
	s, err := mgr.GetOrCreate(context.Background(), "drain-test")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := s.ProcessTurn(context.Background(), "hold this in mind"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}

	r := New(time.Minute, mgr, nil, zap.NewNop())
	for i := 0; i < 50; i++ {
		r.SweepNow(context.Background())
	}
	if occ := s.WorkspaceView().Occupancy; occ != 0 {
		t.Errorf("occupancy after repeated decay = %d, want 0", occ)
	}
}

// Exercises sweeps racing live turns on the same session. The race
// detector fails this test if decay ever bypasses the session lock.
func TestSweepRunsAlongsideTurns(t *testing.T) {
	mgr := session.NewManager(session.DefaultConfig(), session.Deps{Logger: zap.NewNop()})
	s, err := mgr.GetOrCreate(context.Background(), "race-test")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	r := New(time.Minute, mgr, nil, zap.NewNop())
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				r.SweepNow(context.Background())
			}
		}
	}()

	for i := 0; i < 20; i++ {
		if _, err := s.ProcessTurn(context.Background(), "keep the workspace busy"); err != nil {
			t.Fatalf("ProcessTurn: %v", err)
		}
	}
	close(done)
	wg.Wait()

	v := s.WorkspaceView()
	if v.Occupancy > v.Capacity {
		t.Errorf("occupancy %d exceeds capacity %d", v.Occupancy, v.Capacity)
	}
}

func TestStartStopIdempotent(t *testing.T) {
	mgr := session.NewManager(session.DefaultConfig(), session.Deps{Logger: zap.NewNop()})
	r := New(10*time.Millisecond, mgr, nil, zap.NewNop())
	r.Start()
	r.Start()
	time.Sleep(30 * time.Millisecond)
	r.Stop()
	r.Stop()
}
