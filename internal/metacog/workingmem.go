package metacog

import (
	"fmt"
	"sort"
)

// WorkingMemory is a small FIFO buffer of recent thoughts with per-item
// attention weights. Capacity defaults to 7 (Miller's 7±2). Eviction is
// strictly oldest-first, never priority-based.
type WorkingMemory struct {
	capacity int
	buffer   []Thought
	weights  []float64
}

// NewWorkingMemory creates a buffer holding at most capacity thoughts.
func NewWorkingMemory(capacity int) (*WorkingMemory, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("working memory capacity must be >= 1, got %d", capacity)
	}
	return &WorkingMemory{capacity: capacity}, nil
}

// Add inserts a thought with its attention weight, evicting the oldest
// entry once capacity is exceeded.
func (m *WorkingMemory) Add(t Thought, attention float64) {
	m.buffer = append(m.buffer, t)
	m.weights = append(m.weights, attention)
	if len(m.buffer) > m.capacity {
		m.buffer = m.buffer[1:]
		m.weights = m.weights[1:]
	}
}

// Recent returns up to n most recent thoughts, oldest first.
func (m *WorkingMemory) Recent(n int) []Thought {
	if n <= 0 || n > len(m.buffer) {
		n = len(m.buffer)
	}
	out := make([]Thought, n)
	copy(out, m.buffer[len(m.buffer)-n:])
	return out
}

// Attended returns up to n thoughts ordered by attention weight,
// highest first.
func (m *WorkingMemory) Attended(n int) []Thought {
	if len(m.buffer) == 0 {
		return nil
	}
	idx := make([]int, len(m.buffer))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return m.weights[idx[a]] > m.weights[idx[b]]
	})
	if n <= 0 || n > len(idx) {
		n = len(idx)
	}
	out := make([]Thought, n)
	for i := 0; i < n; i++ {
		out[i] = m.buffer[idx[i]]
	}
	return out
}

// Len reports how many thoughts are buffered.
func (m *WorkingMemory) Len() int { return len(m.buffer) }

// Capacity reports the configured bound.
func (m *WorkingMemory) Capacity() int { return m.capacity }

// Clear empties the buffer and weights together.
func (m *WorkingMemory) Clear() {
	m.buffer = nil
	m.weights = nil
}
