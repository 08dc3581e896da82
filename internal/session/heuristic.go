package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/whisperengine-ai/ai-research/internal/linguistics"
	"github.com/whisperengine-ai/ai-research/internal/metacog"
	"github.com/whisperengine-ai/ai-research/internal/neurochem"
)

// The heuristic generator keeps a session fully functional with no
// language model attached. Template selection is keyed on the turn
// counter so output varies across a dialogue but stays deterministic
// under test.

var greetingCues = map[string]bool{
	"hello": true, "hi": true, "hey": true, "greetings": true,
	"morning": true, "evening": true, "afternoon": true,
}

var greetingTemplates = []string{
	"Hello. I'm here and my workspace is settling into this conversation.",
	"Hi there. Something about a new conversation always sharpens my attention.",
	"Hey. I was idling through my own thoughts; I'm glad for the company.",
}

var questionTemplates = []string{
	"That's a question worth sitting with. From where I stand, %s is what my attention keeps returning to.",
	"Let me think about that. When I turn it over, %s rises to the surface of my workspace.",
	"Good question. My first pass says it hinges on %s, though I hold that loosely.",
}

var emotionTemplates = []string{
	"I can feel the weight in what you're saying about %s. Tell me more.",
	"There's real feeling in that. When you mention %s, my own state shifts a little too.",
	"I hear the emotion there. %s seems to matter to you, and that registers with me.",
}

var reflectiveTemplates = []string{
	"When you bring up %s, several of my processors light up at once. I'm curious where you want to take it.",
	"%s is interesting. I notice myself forming associations faster than I can narrate them.",
	"I've been turning %s over in my workspace. What's your angle on it?",
}

var topicFallbacks = []string{
	"what you said", "this", "your point", "the thread of this conversation",
}

func (s *Session) heuristicResponse(input string, features linguistics.Features, mods neurochem.Modulation, mood string) string {
	topic := firstTopic(features, s.turns)

	var resp string
	switch {
	case isGreeting(input):
		resp = pick(greetingTemplates, s.turns)
	case features.IsQuestion:
		resp = fmt.Sprintf(pick(questionTemplates, s.turns), topic)
	case features.ExpressesEmotion:
		resp = fmt.Sprintf(pick(emotionTemplates, s.turns), topic)
	default:
		resp = fmt.Sprintf(pick(reflectiveTemplates, s.turns), topic)
	}

	// High positivity or a strong mood gets a short affective coda.
	if mods.Positivity > 0.7 {
		resp += " I'm in a good state for this."
	} else if mods.Caution > 0.7 {
		resp += " Though I notice I'm being careful right now; something feels like " + mood + "."
	}
	return resp
}

// heuristicReflector produces short canned introspections so the
// recursion engine exercises its full depth without a model.
func (s *Session) heuristicReflector() metacog.ReflectFunc {
	sequence := []string{
		"I notice my response leaned on familiar associations rather than fresh analysis.",
		"Observing that observation, I see I default to pattern-matching when uncertain.",
		"At this remove, the earlier thoughts look like a single habit viewed twice.",
		"Each layer of looking adds less; the signal is thinning here.",
	}
	calls := 0
	return func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		r := sequence[calls%len(sequence)]
		calls++
		return r, nil
	}
}

func isGreeting(input string) bool {
	for _, w := range strings.Fields(strings.ToLower(input)) {
		w = strings.Trim(w, ".,!?")
		if greetingCues[w] {
			return true
		}
	}
	return false
}

func firstTopic(features linguistics.Features, seed int) string {
	if len(features.Topics) > 0 {
		return features.Topics[0]
	}
	return pick(topicFallbacks, seed)
}

func pick(list []string, seed int) string {
	if seed < 0 {
		seed = -seed
	}
	return list[seed%len(list)]
}
