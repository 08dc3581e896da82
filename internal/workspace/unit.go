package workspace

import (
	"time"

	"github.com/google/uuid"
)

// Priority weighting: salience and relevance dominate, recency gives
// newer submissions a slight edge.
const (
	salienceWeight  = 0.4
	relevanceWeight = 0.4
	recencyWeight   = 0.2
)

// Unit is a scored, timestamped piece of content competing for
// conscious access. It lives in a processor's outbound queue, then in
// the competition pool, then (if it wins) in the active set.
type Unit struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Content    string    `json:"content"`
	Salience   float64   `json:"salience"`
	Relevance  float64   `json:"relevance"`
	Timestamp  time.Time `json:"timestamp"`
	Activation float64   `json:"activation"`

	// rounds this unit has lost while sitting in the competition pool
	lostRounds int
}

// NewUnit creates a unit originating from the named source.
func NewUnit(source, content string, salience, relevance float64) *Unit {
	return &Unit{
		ID:        uuid.New().String(),
		Source:    source,
		Content:   content,
		Salience:  clamp01(salience),
		Relevance: clamp01(relevance),
		Timestamp: time.Now(),
	}
}

// Priority computes the unit's standing in arbitration at the given
// instant. The recency term decays continuously with age and never
// reaches zero instantaneously.
func (u *Unit) Priority(now time.Time) float64 {
	age := now.Sub(u.Timestamp).Seconds()
	if age < 0 {
		age = 0
	}
	recency := 1.0 / (1.0 + age)
	return u.Salience*salienceWeight + u.Relevance*relevanceWeight + recency*recencyWeight
}

// Age returns how long the unit has existed.
func (u *Unit) Age(now time.Time) time.Duration {
	return now.Sub(u.Timestamp)
}

// Broadcast is a snapshot of a unit that won the competition, delivered
// to every registered processor. It carries values, not a reference to
// the active-set unit, so recipients never alias workspace state.
type Broadcast struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Content  string    `json:"content"`
	Priority float64   `json:"priority"`
	SentAt   time.Time `json:"sent_at"`
	Reached  []string  `json:"reached"`
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
