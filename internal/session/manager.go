package session

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Manager keeps one live Session per conversation ID so concurrent
// callers over HTTP share cognitive state.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	deps     Deps
	sessions map[string]*Session
	logger   *zap.Logger
}

// NewManager creates a session registry sharing one set of deps.
func NewManager(cfg Config, deps Deps) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:      cfg,
		deps:     deps,
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Get returns an existing session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, creating it on first use.
// An empty id creates a session under a fresh UUID.
func (m *Manager) GetOrCreate(ctx context.Context, id string) (*Session, error) {
	if id != "" {
		if s, ok := m.Get(id); ok {
			return s, nil
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if id != "" {
		if s, ok := m.sessions[id]; ok {
			return s, nil
		}
	}

	s, err := New(id, m.cfg, m.deps)
	if err != nil {
		return nil, err
	}
	m.sessions[s.ID()] = s

	if m.deps.Store != nil {
		if err := m.deps.Store.TouchSession(ctx, s.ID()); err != nil {
			m.logger.Warn("Session row upsert failed", zap.Error(err))
		}
	}
	m.logger.Info("Session created", zap.String("session", s.ID()))
	return s, nil
}

// Remove drops a session from the registry.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// List returns the IDs of live sessions, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len reports how many sessions are live.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
