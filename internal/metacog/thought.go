package metacog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of thought produced at a recursion level.
type Type string

const (
	TypeResponse      Type = "response"
	TypeObservation   Type = "observation"
	TypeEvaluation    Type = "evaluation"
	TypeIntrospection Type = "introspection"
)

// MetaType tags reflections at depths beyond the three named levels.
func MetaType(depth int) Type {
	return Type(fmt.Sprintf("meta-%d", depth))
}

// Thought is a single entry in the consciousness stream. Never mutated
// after creation.
type Thought struct {
	ID        string    `json:"id"`
	Level     int       `json:"level"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Type      Type      `json:"type"`
}

// NewThought creates a thought at the given recursion level.
func NewThought(level int, content string, typ Type) Thought {
	return Thought{
		ID:        uuid.New().String(),
		Level:     level,
		Content:   content,
		Timestamp: time.Now(),
		Type:      typ,
	}
}
