// Package emotion classifies text into seven basic emotion labels with
// a weighted keyword lexicon. The classifier is deliberately simple;
// it only has to produce a label, a confidence, and a normalized score
// distribution for the chemistry and salience layers.
package emotion

import (
	"fmt"
	"sort"
	"strings"
)

// Canonical labels, matching the classification head the scoring and
// chemistry layers were tuned against.
const (
	Anger    = "anger"
	Disgust  = "disgust"
	Fear     = "fear"
	Joy      = "joy"
	Neutral  = "neutral"
	Sadness  = "sadness"
	Surprise = "surprise"
)

// Labels lists all emotions a Result may carry, in stable order.
var Labels = []string{Anger, Disgust, Fear, Joy, Neutral, Sadness, Surprise}

// Result is one classification outcome. Scores always sums to 1 and
// has an entry for every label.
type Result struct {
	Emotion    string             `json:"emotion"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
}

// lexicon maps emotion labels to weighted cue words. Weights reflect
// how strongly a cue signals the emotion on its own.
var lexicon = map[string]map[string]float64{
	Joy: {
		"happy": 1.0, "joy": 1.0, "glad": 0.8, "delighted": 1.0,
		"wonderful": 0.8, "great": 0.6, "love": 0.9, "loved": 0.9,
		"excited": 0.9, "amazing": 0.8, "awesome": 0.8, "fantastic": 0.9,
		"thrilled": 1.0, "grateful": 0.8, "thanks": 0.5, "thank": 0.5,
		"excellent": 0.7, "enjoy": 0.7, "fun": 0.6, "proud": 0.7,
	},
	Sadness: {
		"sad": 1.0, "unhappy": 0.9, "depressed": 1.0, "miserable": 1.0,
		"lonely": 0.9, "grief": 1.0, "crying": 0.9, "cried": 0.9,
		"heartbroken": 1.0, "down": 0.5, "hopeless": 0.9, "miss": 0.6,
		"lost": 0.5, "hurt": 0.6, "disappointed": 0.8, "regret": 0.7,
	},
	Anger: {
		"angry": 1.0, "furious": 1.0, "mad": 0.8, "hate": 0.9,
		"annoyed": 0.7, "irritated": 0.7, "rage": 1.0, "outraged": 1.0,
		"frustrated": 0.8, "frustrating": 0.8, "unfair": 0.6,
		"ridiculous": 0.5, "fed": 0.4, "sick": 0.4,
	},
	Fear: {
		"afraid": 1.0, "scared": 1.0, "terrified": 1.0, "fear": 0.9,
		"worried": 0.8, "anxious": 0.9, "nervous": 0.8, "panic": 1.0,
		"dread": 0.9, "frightened": 1.0, "threat": 0.6, "danger": 0.7,
	},
	Surprise: {
		"surprised": 1.0, "shocked": 0.9, "astonished": 1.0, "wow": 0.8,
		"unexpected": 0.8, "unbelievable": 0.8, "suddenly": 0.5,
		"incredible": 0.7, "whoa": 0.8, "stunned": 0.9,
	},
	Disgust: {
		"disgusting": 1.0, "disgusted": 1.0, "gross": 0.9, "revolting": 1.0,
		"nasty": 0.8, "awful": 0.6, "horrible": 0.6, "repulsive": 1.0,
		"vile": 0.9, "yuck": 0.9,
	},
}

// neutralPrior keeps weak signals from flipping the label; a single
// low-weight cue in a long message still reads as neutral.
const neutralPrior = 0.6

// Detect classifies text. Empty or whitespace-only input is neutral
// with full confidence.
func Detect(text string) Result {
	if strings.TrimSpace(text) == "" {
		return neutralResult()
	}

	raw := map[string]float64{}
	for _, tok := range tokenize(text) {
		for label, cues := range lexicon {
			if w, ok := cues[tok]; ok {
				raw[label] += w
			}
		}
	}
	raw[Neutral] = neutralPrior

	// Exclamation marks amplify whatever non-neutral signal exists.
	if bangs := strings.Count(text, "!"); bangs > 0 {
		boost := 1.0 + 0.15*float64(min(bangs, 3))
		for label := range raw {
			if label != Neutral {
				raw[label] *= boost
			}
		}
	}

	var total float64
	for _, v := range raw {
		total += v
	}

	scores := make(map[string]float64, len(Labels))
	for _, label := range Labels {
		scores[label] = raw[label] / total
	}

	best := Neutral
	for _, label := range Labels {
		if scores[label] > scores[best] {
			best = label
		}
	}
	return Result{Emotion: best, Confidence: scores[best], Scores: scores}
}

func neutralResult() Result {
	scores := make(map[string]float64, len(Labels))
	for _, label := range Labels {
		scores[label] = 0
	}
	scores[Neutral] = 1
	return Result{Emotion: Neutral, Confidence: 1, Scores: scores}
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	})
	for i, f := range fields {
		fields[i] = strings.Trim(f, "'")
	}
	return fields
}

// TurnAnalysis carries the classification of both sides of a turn.
type TurnAnalysis struct {
	User     Result  `json:"user"`
	Response *Result `json:"ai,omitempty"`
}

// AnalyzeTurn classifies the user message and, when non-empty, the
// generated response, for tracking emotional dynamics over a session.
func AnalyzeTurn(userInput, response string) TurnAnalysis {
	a := TurnAnalysis{User: Detect(userInput)}
	if response != "" {
		r := Detect(response)
		a.Response = &r
	}
	return a
}

// Report renders a short human-readable summary with the top three
// scores, used by chat commands.
func (r Result) Report() string {
	type pair struct {
		label string
		score float64
	}
	pairs := make([]pair, 0, len(r.Scores))
	for l, s := range r.Scores {
		pairs = append(pairs, pair{l, s})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		return pairs[i].label < pairs[j].label
	})

	var b strings.Builder
	b.WriteString("detected: ")
	b.WriteString(strings.ToUpper(r.Emotion))
	top := pairs
	if len(top) > 3 {
		top = top[:3]
	}
	b.WriteString(" (")
	for i, p := range top {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %.1f%%", p.label, p.score*100)
	}
	b.WriteString(")")
	return b.String()
}
