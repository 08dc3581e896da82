package memory

import (
	"time"
)

// Concept is a consolidated topic node. Episodes cluster under
// concepts as conversations repeat themes.
type Concept struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	ActivationLevel float64   `json:"activation_level"`
	Strength        float64   `json:"strength"`
	CreatedAt       time.Time `json:"created_at"`
	LastActivated   time.Time `json:"last_activated"`
}

// Episode is one remembered conversation moment.
type Episode struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Content     string    `json:"content"`
	Emotion     string    `json:"emotion"`
	Importance  float64   `json:"importance"`
	AccessCount int       `json:"access_count"`
	CreatedAt   time.Time `json:"created_at"`
}
