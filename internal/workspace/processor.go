package workspace

import "fmt"

// Processor is a cognitive module: a source of units and a recipient of
// broadcasts. Domain processors differ only in what they submit, never
// in how submission or broadcast delivery works.
type Processor interface {
	Name() string
	Receive(b *Broadcast)
	// Process drains the outbound queue. The queue only grows between
	// workspace cycles and is fully cleared by each call.
	Process() []*Unit
}

// Base carries the mailbox, the outbound queue and the submission
// helper shared by every processor. Domain processors embed it and call
// Submit from their own methods.
type Base struct {
	name   string
	inbox  []*Broadcast
	outbox []*Unit
}

// NewBase creates processor plumbing for the given source name.
func NewBase(name string) *Base {
	return &Base{name: name}
}

func (b *Base) Name() string { return b.name }

// Receive appends a broadcast to the inbound mailbox.
func (b *Base) Receive(bc *Broadcast) {
	b.inbox = append(b.inbox, bc)
}

// Inbox returns broadcasts received so far.
func (b *Base) Inbox() []*Broadcast {
	return b.inbox
}

// Process copies out and clears the outbound queue.
func (b *Base) Process() []*Unit {
	out := make([]*Unit, len(b.outbox))
	copy(out, b.outbox)
	b.outbox = b.outbox[:0]
	return out
}

// Submit queues content to compete for workspace access.
func (b *Base) Submit(content string, salience, relevance float64) {
	b.outbox = append(b.outbox, NewUnit(b.name, content, salience, relevance))
}

// TextSignals are the language features a LanguageProcessor weighs when
// scoring an input. Extraction itself happens upstream.
type TextSignals struct {
	IsQuestion       bool
	ExpressesEmotion bool
}

// EmotionProcessor submits emotional state changes. Strong emotions are
// more salient.
type EmotionProcessor struct {
	*Base
}

func NewEmotionProcessor() *EmotionProcessor {
	return &EmotionProcessor{Base: NewBase("emotion")}
}

// ProcessEmotion scores a detected emotion and queues it.
func (p *EmotionProcessor) ProcessEmotion(emotion string, intensity float64, context string) {
	salience := intensity
	relevance := 0.5
	if intensity > 0.6 {
		relevance = 0.8
	}
	content := fmt.Sprintf("Feeling %s (intensity: %.2f) - %s", emotion, intensity, context)
	p.Submit(content, salience, relevance)
}

// LanguageProcessor submits salient features of user language.
// Questions grab attention; emotional content raises relevance.
type LanguageProcessor struct {
	*Base
}

func NewLanguageProcessor() *LanguageProcessor {
	return &LanguageProcessor{Base: NewBase("language")}
}

// ProcessInput scores a user utterance and queues it.
func (p *LanguageProcessor) ProcessInput(text string, sig TextSignals) {
	salience := 0.6
	if sig.IsQuestion {
		salience = 0.9
	}
	relevance := 0.6
	if sig.ExpressesEmotion {
		relevance = 0.8
	}
	content := fmt.Sprintf("Language input: %q", truncate(text, 100))
	p.Submit(content, salience, relevance)
}

// MemoryProcessor submits recalled long-term memories.
type MemoryProcessor struct {
	*Base
}

func NewMemoryProcessor() *MemoryProcessor {
	return &MemoryProcessor{Base: NewBase("memory")}
}

// RecallRelevant queues the most recent recalled memory, if any.
func (p *MemoryProcessor) RecallRelevant(query string, memories []string) {
	if len(memories) == 0 {
		return
	}
	content := fmt.Sprintf("Memory recall: %s", truncate(memories[len(memories)-1], 100))
	p.Submit(content, 0.7, 0.8)
}

// MetaCognitiveProcessor submits self-reflections. Deeper levels are
// more abstract and less salient.
type MetaCognitiveProcessor struct {
	*Base
}

func NewMetaCognitiveProcessor() *MetaCognitiveProcessor {
	return &MetaCognitiveProcessor{Base: NewBase("metacognition")}
}

// SubmitReflection queues a reflection produced at the given recursion
// level.
func (p *MetaCognitiveProcessor) SubmitReflection(reflection string, level int) {
	salience := 0.8 - float64(level)*0.15
	if salience < 0.3 {
		salience = 0.3
	}
	content := fmt.Sprintf("Meta-thought (L%d): %s", level, reflection)
	p.Submit(content, salience, 0.7)
}

// truncate cuts s to at most n runes. Cutting by byte could split a
// multibyte character and leave invalid UTF-8 in summaries.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
