// Package session runs the full cognitive loop for one conversation:
// linguistic analysis, emotion detection, workspace competition,
// recursive reflection, chemical modulation and metric scoring, with
// optional persistence to the graph, vector and relational stores.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/whisperengine-ai/ai-research/internal/emotion"
	"github.com/whisperengine-ai/ai-research/internal/journal"
	"github.com/whisperengine-ai/ai-research/internal/linguistics"
	"github.com/whisperengine-ai/ai-research/internal/memory"
	"github.com/whisperengine-ai/ai-research/internal/metacog"
	"github.com/whisperengine-ai/ai-research/internal/metrics"
	"github.com/whisperengine-ai/ai-research/internal/neurochem"
	"github.com/whisperengine-ai/ai-research/internal/provider"
	"github.com/whisperengine-ai/ai-research/internal/store"
	"github.com/whisperengine-ai/ai-research/internal/vectorstore"
	"github.com/whisperengine-ai/ai-research/internal/workspace"
)

const (
	// historyLimit bounds the retained conversation turns.
	historyLimit = 20
	// promptTurns is how many recent turns go into the prompt.
	promptTurns = 10
	// recallLimit bounds graph recalls per turn.
	recallLimit = 5
	// similarLimit bounds vector recalls per turn.
	similarLimit = 3

	minTemperature = 0.3
	maxTemperature = 1.2
)

// Config controls the cognitive architecture of a session.
type Config struct {
	Workspace workspace.Config `json:"workspace"`
	MaxDepth  int              `json:"max_reflection_depth"`
}

// DefaultConfig mirrors the reference architecture: a three-slot
// workspace and three levels of recursion.
func DefaultConfig() Config {
	return Config{
		Workspace: workspace.DefaultConfig(),
		MaxDepth:  3,
	}
}

// Deps are the external services a session may use. All are optional;
// a session with no deps still runs the full loop with the heuristic
// generator and no persistence.
type Deps struct {
	Router   *provider.Router
	Model    string
	Memory   *memory.Store
	Episodes *vectorstore.EpisodeIndex
	Journal  *journal.Journal
	Store    *store.Store
	Logger   *zap.Logger
}

// ConvTurn is one exchanged pair in the conversation history.
type ConvTurn struct {
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	Timestamp time.Time `json:"timestamp"`
}

// Turn is the observable result of processing one user input.
type Turn struct {
	SessionID   string                 `json:"session_id"`
	Input       string                 `json:"input"`
	Response    string                 `json:"response"`
	UserEmotion emotion.Result         `json:"user_emotion"`
	BotEmotion  emotion.Result         `json:"bot_emotion"`
	Mood        string                 `json:"mood"`
	Temperature float64                `json:"temperature"`
	Reflections []metacog.FlatThought  `json:"reflections"`
	Recalled    []string               `json:"recalled_memories,omitempty"`
	Cycle       *workspace.CycleResult `json:"cycle"`
	Score       metrics.Score          `json:"score"`
	Modulation  neurochem.Modulation   `json:"modulation"`
}

// Session owns one conversation's cognitive state.
type Session struct {
	id   string
	deps Deps

	mu      sync.Mutex
	ws      *workspace.Workspace
	engine  *metacog.Engine
	chem    *neurochem.System
	tracker *metrics.Tracker
	convo   []ConvTurn
	turns   int

	emotionProc *workspace.EmotionProcessor
	langProc    *workspace.LanguageProcessor
	memoryProc  *workspace.MemoryProcessor
	metaProc    *workspace.MetaCognitiveProcessor

	logger *zap.Logger
}

// New assembles a session with the four standard processors registered
// on a fresh workspace.
func New(id string, cfg Config, deps Deps) (*Session, error) {
	if id == "" {
		id = uuid.New().String()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session", id))

	ws, err := workspace.New(cfg.Workspace, logger)
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}
	engine, err := metacog.NewEngine(cfg.MaxDepth, logger)
	if err != nil {
		return nil, fmt.Errorf("metacog engine: %w", err)
	}
	if deps.Journal != nil {
		engine.SetSink(deps.Journal.Sink(id))
	}

	s := &Session{
		id:          id,
		deps:        deps,
		ws:          ws,
		engine:      engine,
		chem:        neurochem.NewSystem(),
		tracker:     metrics.NewTracker(),
		emotionProc: workspace.NewEmotionProcessor(),
		langProc:    workspace.NewLanguageProcessor(),
		memoryProc:  workspace.NewMemoryProcessor(),
		metaProc:    workspace.NewMetaCognitiveProcessor(),
		logger:      logger,
	}
	ws.Register(s.emotionProc)
	ws.Register(s.langProc)
	ws.Register(s.memoryProc)
	ws.Register(s.metaProc)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// TurnCount reports how many turns have been processed.
func (s *Session) TurnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns
}

// History returns a copy of the retained conversation turns.
func (s *Session) History() []ConvTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ConvTurn, len(s.convo))
	copy(out, s.convo)
	return out
}

// ProcessTurn runs one full cognitive cycle over a user input and
// returns the response together with the internal trace. Persistence
// failures are logged, never fatal: the conversation continues with
// whatever stores remain reachable.
func (s *Session) ProcessTurn(ctx context.Context, input string) (*Turn, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty input")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	features := linguistics.Analyze(input)
	userEmo := emotion.Detect(input)

	s.emotionProc.ProcessEmotion(userEmo.Emotion, userEmo.Confidence, "user message")
	s.langProc.ProcessInput(input, workspace.TextSignals{
		IsQuestion:       features.IsQuestion,
		ExpressesEmotion: features.ExpressesEmotion,
	})

	mods := s.chem.Modulation()
	mood := s.chem.EmotionalState()
	lastScore, hasScore := s.tracker.Last()

	recalled := s.recall(ctx, input, features.Topics)
	if len(recalled) > 0 {
		s.memoryProc.RecallRelevant(input, recalled)
	}

	prompt := s.buildPrompt(input, features, mods, mood, lastScore, hasScore, recalled)
	temp := clampTemp(0.7 + (mods.Creativity-0.5)*0.4)
	response := s.generate(ctx, input, features, prompt, temp, mods, mood)

	botEmo := emotion.Detect(response)
	s.chem.ApplyEmotion(botEmo.Emotion, botEmo.Confidence)
	s.emotionProc.ProcessEmotion(botEmo.Emotion, botEmo.Confidence, "own response")

	s.convo = append(s.convo, ConvTurn{User: input, Assistant: response, Timestamp: time.Now()})
	if len(s.convo) > historyLimit {
		s.convo = s.convo[len(s.convo)-historyLimit:]
	}

	root := s.engine.Reflect(ctx, response, s.reflector(mods))
	flat := metacog.Flatten(root)
	for _, ft := range flat {
		s.metaProc.SubmitReflection(ft.Content, ft.Level)
	}

	cycle := s.ws.ProcessCycle()
	s.chem.Decay()

	score := s.tracker.ComputeAll(s.metricInputs(cycle, len(flat)))
	s.turns++

	turn := &Turn{
		SessionID:   s.id,
		Input:       input,
		Response:    response,
		UserEmotion: userEmo,
		BotEmotion:  botEmo,
		Mood:        mood,
		Temperature: temp,
		Reflections: flat,
		Recalled:    recalled,
		Cycle:       cycle,
		Score:       score,
		Modulation:  mods,
	}
	s.persist(ctx, turn, features.Topics)
	return turn, nil
}

// recall gathers remembered context from the concept graph and the
// episode vector index. Both stores are optional and failures degrade
// to an empty recall.
func (s *Session) recall(ctx context.Context, input string, topics []string) []string {
	var out []string
	if s.deps.Memory != nil && len(topics) > 0 {
		blocks, err := s.deps.Memory.BuildContext(ctx, s.id, topics, memory.ContextBudget{
			MaxTokens: 500,
			MaxBlocks: recallLimit,
		})
		if err != nil {
			s.logger.Warn("Graph recall failed", zap.Error(err))
		} else {
			for _, b := range blocks {
				out = append(out, b.Content)
			}
		}
	}
	if s.deps.Episodes != nil {
		eps, err := s.deps.Episodes.Similar(ctx, s.id, input, similarLimit)
		if err != nil {
			s.logger.Warn("Episode recall failed", zap.Error(err))
		} else {
			for _, ep := range eps {
				out = append(out, ep.Content)
			}
		}
	}
	return dedupe(out)
}

// generate produces the assistant response, falling back to the
// heuristic generator when no provider is configured or the call
// fails.
func (s *Session) generate(ctx context.Context, input string, features linguistics.Features, prompt string, temp float64, mods neurochem.Modulation, mood string) string {
	if s.deps.Router != nil {
		resp, err := s.deps.Router.Route(ctx, s.id, &provider.ChatRequest{
			Model: s.deps.Model,
			Messages: []provider.Message{
				{Role: "system", Content: personaPrompt},
				{Role: "user", Content: prompt},
			},
			Temperature: temp,
			MaxTokens:   400,
		})
		if err == nil && strings.TrimSpace(resp.Content) != "" {
			return strings.TrimSpace(resp.Content)
		}
		if err != nil {
			s.logger.Warn("Provider generation failed, using heuristic", zap.Error(err))
		}
	}
	return s.heuristicResponse(input, features, mods, mood)
}

// reflector picks the introspection backend: the language model when
// one is routed, otherwise the deterministic heuristic reflector.
func (s *Session) reflector(mods neurochem.Modulation) metacog.ReflectFunc {
	if s.deps.Router != nil {
		return provider.ReflectFunc(s.deps.Router, s.id, s.deps.Model, func() float64 {
			return mods.Creativity
		})
	}
	return s.heuristicReflector()
}

func (s *Session) metricInputs(cycle *workspace.CycleResult, reflections int) metrics.Inputs {
	sources := make([]string, 0, len(cycle.Contents))
	for _, c := range cycle.Contents {
		sources = append(sources, c.Source)
	}
	procs := len(s.ws.Processors())
	reach := 0
	if len(cycle.Broadcasts) > 0 {
		reach = procs
	}
	focus := ""
	if u := s.ws.AttentionFocus(); u != nil {
		focus = u.Source
	}
	return metrics.Inputs{
		ActiveCount:     s.ws.Occupancy(),
		Capacity:        s.ws.Capacity(),
		ActiveSources:   sources,
		ProcessorCount:  procs,
		BroadcastReach:  reach,
		ReflectionCount: reflections,
		MaxDepth:        s.engine.MaxDepth(),
		WorkingMemUsed:  s.engine.WorkingMemory().Len(),
		WorkingMemCap:   s.engine.WorkingMemory().Capacity(),
		FocusSource:     focus,
		Cortisol:        s.chem.Levels().Cortisol,
	}
}

// persist writes the turn to every configured store on a best-effort
// basis.
func (s *Session) persist(ctx context.Context, turn *Turn, topics []string) {
	if s.deps.Memory != nil {
		res, err := s.deps.Memory.Record(ctx, s.id, turn.Input, turn.UserEmotion.Emotion, topics, turn.Score.Overall)
		if err != nil {
			s.logger.Warn("Memory consolidation failed", zap.Error(err))
		} else if s.deps.Episodes != nil {
			if err := s.deps.Episodes.Index(ctx, s.id, res.EpisodeID, turn.Input); err != nil {
				s.logger.Warn("Episode indexing failed", zap.Error(err))
			}
		}
	}
	if s.deps.Store != nil {
		rec := store.TurnRecord{
			SessionID:   s.id,
			UserInput:   turn.Input,
			Response:    turn.Response,
			UserEmotion: turn.UserEmotion.Emotion,
			BotEmotion:  turn.BotEmotion.Emotion,
			Temperature: turn.Temperature,
			Score:       &turn.Score,
		}
		if err := s.deps.Store.SaveTurn(ctx, rec); err != nil {
			s.logger.Warn("Turn persistence failed", zap.Error(err))
		}
	}
}

// Reset clears the session's transient cognitive state: workspace,
// working memory, chemistry and conversation history. The metric
// history and persisted stores are untouched.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws.Clear()
	s.engine.Clear()
	s.chem.Reset()
	s.convo = nil
	if s.deps.Journal != nil {
		if err := s.deps.Journal.Drop(ctx, s.id); err != nil {
			s.logger.Warn("Journal drop failed", zap.Error(err))
		}
	}
	s.logger.Info("Session reset")
}

func clampTemp(t float64) float64 {
	if t < minTemperature {
		return minTemperature
	}
	if t > maxTemperature {
		return maxTemperature
	}
	return t
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, v := range in {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
