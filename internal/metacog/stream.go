package metacog

// Stream is the consciousness stream: a bounded ring of recent thoughts
// across all recursion levels. The original design appended forever;
// bounding it caps memory for long sessions, and a Sink can externalize
// every thought as it is recorded.
type Stream struct {
	ring  []Thought
	next  int
	full  bool
	total int
}

// DefaultStreamSize bounds the in-memory consciousness stream.
const DefaultStreamSize = 256

// NewStream creates a ring holding the most recent size thoughts.
func NewStream(size int) *Stream {
	if size < 1 {
		size = DefaultStreamSize
	}
	return &Stream{ring: make([]Thought, size)}
}

// Append records a thought, overwriting the oldest once full.
func (s *Stream) Append(t Thought) {
	s.ring[s.next] = t
	s.next = (s.next + 1) % len(s.ring)
	if s.next == 0 {
		s.full = true
	}
	s.total++
}

// Recent returns up to n most recent thoughts, oldest first.
func (s *Stream) Recent(n int) []Thought {
	size := s.Len()
	if n <= 0 || n > size {
		n = size
	}
	out := make([]Thought, 0, n)
	start := s.next - n
	if !s.full && start < 0 {
		start = 0
	}
	for i := 0; i < n; i++ {
		out = append(out, s.ring[((start+i)%len(s.ring)+len(s.ring))%len(s.ring)])
	}
	return out
}

// Cap reports the ring size.
func (s *Stream) Cap() int { return len(s.ring) }

// Len reports how many thoughts are retained in memory.
func (s *Stream) Len() int {
	if s.full {
		return len(s.ring)
	}
	return s.next
}

// Total reports how many thoughts were ever recorded, including those
// rotated out of the ring.
func (s *Stream) Total() int { return s.total }
