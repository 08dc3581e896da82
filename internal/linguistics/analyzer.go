// Package linguistics extracts lightweight text features from user
// input and generated responses: question detection, emotion signals,
// complexity, self-references, and topic overlap. Pure heuristics over
// tokenized text; no external NLP runtime.
package linguistics

import (
	"strings"
	"unicode"
)

// Features summarizes one utterance.
type Features struct {
	WordCount        int      `json:"word_count"`
	SentenceCount    int      `json:"sentence_count"`
	IsQuestion       bool     `json:"is_question"`
	IsExclamation    bool     `json:"is_exclamation"`
	ExpressesEmotion bool     `json:"expresses_emotion"`
	SelfReferences   int      `json:"self_references"`
	Complexity       float64  `json:"complexity"`
	Topics           []string `json:"topics"`
	IntentSignals    []string `json:"intent_signals"`
	PersonalPronouns int      `json:"personal_pronouns"`
	HedgeDensity     float64  `json:"hedge_density"`
}

var questionWords = map[string]bool{
	"what": true, "why": true, "how": true, "when": true,
	"where": true, "who": true, "which": true, "whose": true,
}

var emotionWords = map[string]bool{
	"feel": true, "feeling": true, "feelings": true, "felt": true,
	"emotion": true, "emotions": true, "emotional": true,
	"happy": true, "sad": true, "angry": true, "scared": true,
	"afraid": true, "excited": true, "anxious": true, "worried": true,
	"love": true, "hate": true, "upset": true, "frustrated": true,
	"lonely": true, "depressed": true, "thrilled": true,
}

var selfPronouns = map[string]bool{
	"i": true, "me": true, "my": true, "mine": true, "myself": true,
}

var hedgeWords = map[string]bool{
	"might": true, "could": true, "may": true, "would": true,
	"probably": true, "possibly": true, "perhaps": true, "maybe": true,
	"think": true, "believe": true, "seem": true, "seems": true,
	"appear": true, "suppose": true, "about": true, "around": true,
	"approximately": true, "roughly": true,
}

// stopwords excluded from topic extraction.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "to": true, "of": true, "in": true,
	"on": true, "at": true, "for": true, "with": true, "it": true,
	"this": true, "that": true, "these": true, "those": true,
	"i": true, "you": true, "he": true, "she": true, "we": true,
	"they": true, "my": true, "your": true, "me": true, "so": true,
	"do": true, "does": true, "did": true, "have": true, "has": true,
	"had": true, "not": true, "no": true, "yes": true, "if": true,
	"as": true, "by": true, "from": true, "about": true, "can": true,
	"will": true, "just": true, "very": true, "really": true,
	"what": true, "why": true, "how": true, "when": true,
	"where": true, "who": true, "which": true, "am": true,
}

type intentRule struct {
	name string
	cues []string
}

var intentRules = []intentRule{
	{"requesting_help", []string{"help", "can you", "could you", "would you", "please"}},
	{"expressing_emotion", []string{"feel", "feeling", "felt", "emotion", "emotional"}},
	{"seeking_information", []string{"what", "why", "how", "when", "where", "who", "which"}},
	{"sharing_experience", []string{"i am", "i'm", "i was", "i have", "i've", "my"}},
	{"expressing_opinion", []string{"i think", "i believe", "in my opinion", "i feel that"}},
	{"greeting", []string{"hello", "hi ", "hey", "greetings", "good morning", "good afternoon"}},
	{"thanking", []string{"thank", "thanks", "appreciate", "grateful"}},
}

// Analyze extracts all features from an utterance.
func Analyze(text string) Features {
	trimmed := strings.TrimSpace(text)
	words := Tokenize(trimmed)
	lower := strings.ToLower(trimmed)

	f := Features{
		WordCount:     len(words),
		SentenceCount: countSentences(trimmed),
		IsQuestion:    isQuestion(trimmed, words),
		IsExclamation: strings.Contains(trimmed, "!"),
		Complexity:    complexity(words),
		Topics:        topics(words),
	}

	var hedges int
	for _, w := range words {
		if emotionWords[w] {
			f.ExpressesEmotion = true
		}
		if selfPronouns[w] {
			f.SelfReferences++
			f.PersonalPronouns++
		}
		if hedgeWords[w] {
			hedges++
		}
	}
	if len(words) > 0 {
		f.HedgeDensity = float64(hedges) / float64(len(words))
	}

	for _, rule := range intentRules {
		for _, cue := range rule.cues {
			if strings.Contains(lower, cue) {
				f.IntentSignals = append(f.IntentSignals, rule.name)
				break
			}
		}
	}
	return f
}

// Tokenize lowercases and splits on non-alphanumeric runes, keeping
// in-word apostrophes.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func countSentences(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	n := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

func isQuestion(text string, words []string) bool {
	if strings.HasSuffix(strings.TrimSpace(text), "?") {
		return true
	}
	if len(words) > 0 && questionWords[words[0]] {
		return true
	}
	return false
}

// complexity blends average word length with vocabulary diversity onto
// a 0..1 scale.
func complexity(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	var chars int
	seen := map[string]bool{}
	for _, w := range words {
		chars += len(w)
		seen[w] = true
	}
	avgLen := float64(chars) / float64(len(words))
	diversity := float64(len(seen)) / float64(len(words))
	c := (avgLen/10 + diversity) / 2
	if c > 1 {
		return 1
	}
	return c
}

// topics returns content words in order of first appearance, deduped.
func topics(words []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, w := range words {
		if len(w) < 3 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// TopicOverlap counts content words shared by two utterances. Used to
// judge whether a response stays on the user's topic.
func TopicOverlap(a, b string) int {
	ta := topics(Tokenize(a))
	tb := map[string]bool{}
	for _, w := range topics(Tokenize(b)) {
		tb[w] = true
	}
	n := 0
	for _, w := range ta {
		if tb[w] {
			n++
		}
	}
	return n
}

// FocusReport aggregates the dominant concepts across recent thoughts,
// approximating what the system is attending to.
type FocusReport struct {
	KeyConcepts      []ConceptCount `json:"key_concepts"`
	AttentionBreadth int            `json:"attention_breadth"`
}

type ConceptCount struct {
	Concept string `json:"concept"`
	Count   int    `json:"count"`
}

// AnalyzeFocus counts topic frequencies across thoughts and returns the
// top concepts, most frequent first, ties by first appearance.
func AnalyzeFocus(thoughts []string, top int) FocusReport {
	counts := map[string]int{}
	var order []string
	for _, th := range thoughts {
		for _, w := range topics(Tokenize(th)) {
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	report := FocusReport{AttentionBreadth: len(order)}
	for len(report.KeyConcepts) < top {
		best := ""
		for _, w := range order {
			if counts[w] == 0 {
				continue
			}
			if best == "" || counts[w] > counts[best] {
				best = w
			}
		}
		if best == "" {
			break
		}
		report.KeyConcepts = append(report.KeyConcepts, ConceptCount{Concept: best, Count: counts[best]})
		counts[best] = 0
	}
	return report
}
