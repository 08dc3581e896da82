package session

import (
	"fmt"
	"strings"

	"github.com/whisperengine-ai/ai-research/internal/linguistics"
	"github.com/whisperengine-ai/ai-research/internal/metrics"
	"github.com/whisperengine-ai/ai-research/internal/neurochem"
)

const personaPrompt = "You are a conversational agent with a simulated cognitive " +
	"architecture: a global workspace, recursive self-reflection and a " +
	"neurochemical mood model. Respond naturally and let your current " +
	"internal state color tone and word choice. Keep responses concise."

// buildPrompt assembles the generation prompt: internal state, prior
// metric feedback, remembered context and the recent conversation
// window, ending with the new user input.
func (s *Session) buildPrompt(input string, features linguistics.Features, mods neurochem.Modulation, mood string, lastScore metrics.Score, hasScore bool, recalled []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[Internal state] mood: %s; creativity %.2f, empathy %.2f, positivity %.2f, caution %.2f\n",
		mood, mods.Creativity, mods.Empathy, mods.Positivity, mods.Caution)

	if hasScore {
		fmt.Fprintf(&b, "[Self-assessment] previous consciousness score %.2f", lastScore.Overall)
		switch {
		case lastScore.Overall < 0.3:
			b.WriteString("; attend more closely to the conversation\n")
		case lastScore.Overall > 0.7:
			b.WriteString("; integration is high, stay engaged\n")
		default:
			b.WriteString("\n")
		}
	}

	if len(recalled) > 0 {
		b.WriteString("[Remembered context]\n")
		for _, m := range recalled {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}

	recent := s.convo
	if len(recent) > promptTurns {
		recent = recent[len(recent)-promptTurns:]
	}
	if len(recent) > 0 {
		b.WriteString("[Recent conversation]\n")
		for _, t := range recent {
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", t.User, t.Assistant)
		}
	}

	if features.IsQuestion {
		b.WriteString("[Note] the user is asking a question; answer it directly\n")
	}

	fmt.Fprintf(&b, "User: %s\nAssistant:", input)
	return b.String()
}
