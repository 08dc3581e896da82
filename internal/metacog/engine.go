package metacog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ReflectFunc generates a short meta-reflection for a prompt. Supplied
// by the caller; usually backed by an LLM, by a heuristic generator, or
// by a stub in tests.
type ReflectFunc func(ctx context.Context, prompt string, maxTokens int) (string, error)

// Sink receives every thought as it enters the consciousness stream,
// so long sessions can externalize thoughts instead of retaining them.
type Sink interface {
	RecordThought(ctx context.Context, t Thought) error
}

// Reflection is one node of the nested reflection tree. Meta holds the
// reflection on this reflection, one level deeper, or nil at the leaf.
type Reflection struct {
	Level   int         `json:"level"`
	Content string      `json:"content"`
	Type    Type        `json:"type"`
	Meta    *Reflection `json:"meta_reflection"`
}

// FlatThought is one entry of a flattened reflection tree.
type FlatThought struct {
	Level   int    `json:"level"`
	Type    Type   `json:"type"`
	Content string `json:"content"`
}

// reflectionBudget is the output-length budget handed to the reflect
// function. Deeper reflections are deliberately terse.
const reflectionBudget = 30

// fallbackReflection substitutes a failed reflect call so the chain
// continues instead of aborting the turn.
const fallbackReflection = "(reflection unavailable)"

// Engine drives bounded recursive self-reflection: each level's output
// becomes the next level's input, terminating at maxDepth.
type Engine struct {
	maxDepth int
	wm       *WorkingMemory
	stream   *Stream
	sink     Sink
	logger   *zap.Logger
}

// NewEngine creates an engine with the given recursion ceiling.
func NewEngine(maxDepth int, logger *zap.Logger) (*Engine, error) {
	if maxDepth < 0 {
		return nil, fmt.Errorf("max recursion depth must be >= 0, got %d", maxDepth)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	wm, err := NewWorkingMemory(7)
	if err != nil {
		return nil, err
	}
	return &Engine{
		maxDepth: maxDepth,
		wm:       wm,
		stream:   NewStream(DefaultStreamSize),
		logger:   logger,
	}, nil
}

// SetSink attaches an externalization sink for recorded thoughts.
func (e *Engine) SetSink(s Sink) { e.sink = s }

// WorkingMemory exposes the bounded thought buffer.
func (e *Engine) WorkingMemory() *WorkingMemory { return e.wm }

// Stream exposes the consciousness stream.
func (e *Engine) Stream() *Stream { return e.stream }

// MaxDepth reports the configured recursion ceiling.
func (e *Engine) MaxDepth() int { return e.maxDepth }

// Reflect processes a response through the full recursion, starting at
// depth 0 with thought type "response".
func (e *Engine) Reflect(ctx context.Context, thought string, fn ReflectFunc) *Reflection {
	return e.reflect(ctx, thought, fn, 0, TypeResponse)
}

// reflect is true recursion: each call reflects on the previous call's
// output, building thoughts about thoughts about thoughts.
func (e *Engine) reflect(ctx context.Context, thought string, fn ReflectFunc, depth int, typ Type) *Reflection {
	// Base case: ceiling reached, no deeper reflection.
	if depth >= e.maxDepth {
		return &Reflection{Level: depth, Content: thought, Type: typ}
	}

	e.record(ctx, NewThought(depth, thought, typ), attentionAt(depth))

	prompt, nextType := reflectionPrompt(thought, depth)
	meta, err := fn(ctx, prompt, reflectionBudget)
	if err != nil || meta == "" {
		// A failed reflection must never abort the primary response;
		// substitute a placeholder and keep descending.
		e.logger.Warn("reflection generation failed",
			zap.Int("depth", depth), zap.Error(err))
		meta = fallbackReflection
	}

	deeper := e.reflect(ctx, meta, fn, depth+1, nextType)

	return &Reflection{
		Level:   depth,
		Content: thought,
		Type:    typ,
		Meta:    deeper,
	}
}

// record stores a thought in working memory (may evict the oldest) and
// appends it to the consciousness stream.
func (e *Engine) record(ctx context.Context, t Thought, attention float64) {
	e.wm.Add(t, attention)
	e.stream.Append(t)
	if e.sink != nil {
		if err := e.sink.RecordThought(ctx, t); err != nil {
			e.logger.Warn("thought externalization failed", zap.Error(err))
		}
	}
}

// attentionAt decreases monotonically with depth; deeper reflections
// receive strictly less attention, floored at 0.2.
func attentionAt(depth int) float64 {
	a := 1.0 - float64(depth)*0.2
	if a < 0.2 {
		return 0.2
	}
	return a
}

// reflectionPrompt selects the depth-keyed reflection strategy and the
// type of thought the answer will be recorded as.
func reflectionPrompt(thought string, depth int) (string, Type) {
	// Cut at a rune boundary so a multibyte character at the limit
	// never feeds invalid UTF-8 into the prompt.
	excerpt := thought
	if r := []rune(excerpt); len(r) > 150 {
		excerpt = string(r[:150])
	}
	switch depth {
	case 0:
		return fmt.Sprintf("Response: %q\n\nMeta-observation (8 words max): What aspect of this response stands out most to you?", excerpt),
			TypeObservation
	case 1:
		return fmt.Sprintf("You noticed: %q\n\nMeta-evaluation (8 words max): Rate confidence in this observation (0-10) and explain briefly:", excerpt),
			TypeEvaluation
	case 2:
		return fmt.Sprintf("You evaluated: %q\n\nMeta-introspection (10 words max): What cognitive pattern or bias might explain this evaluation?", excerpt),
			TypeIntrospection
	default:
		return fmt.Sprintf("Reflect on: %q\n\nBrief meta-thought (8 words max):", excerpt),
			MetaType(depth + 1)
	}
}

// Flatten converts the nested reflection tree into a flat sequence in
// increasing-depth order, level 0 first. Iterative, so any configured
// depth is safe.
func Flatten(root *Reflection) []FlatThought {
	var out []FlatThought
	for node := root; node != nil; node = node.Meta {
		out = append(out, FlatThought{
			Level:   node.Level,
			Type:    node.Type,
			Content: node.Content,
		})
	}
	return out
}

// Clear resets working memory. The consciousness stream is retained;
// it is a log, not a state.
func (e *Engine) Clear() {
	e.wm.Clear()
}
