package provider

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

type stubProvider struct {
	id      string
	reply   string
	err     error
	lastReq *ChatRequest
}

func (s *stubProvider) ID() string   { return s.id }
func (s *stubProvider) Name() string { return s.id }
func (s *stubProvider) Chat(_ context.Context, req *ChatRequest) (*ChatResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &ChatResponse{Content: s.reply}, nil
}
func (s *stubProvider) ListModels(context.Context) ([]Model, error) { return nil, s.err }
func (s *stubProvider) HealthCheck(context.Context) error           { return s.err }

func TestRouterDefaultsToFirstRegistered(t *testing.T) {
	r := NewRouter(zap.NewNop())
	r.Register(&stubProvider{id: "a", reply: "from a"})
	r.Register(&stubProvider{id: "b", reply: "from b"})

	resp, err := r.Route(context.Background(), "s1", &ChatRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "from a" {
		t.Errorf("content = %q, want default provider's reply", resp.Content)
	}
}

func TestRouterBindingAndFallback(t *testing.T) {
	r := NewRouter(zap.NewNop())
	broken := &stubProvider{id: "primary", err: errors.New("down")}
	backup := &stubProvider{id: "backup", reply: "rescued"}
	r.Register(broken)
	r.Register(backup)
	r.Bind("s1", "primary")
	r.SetFallbacks("s1", []string{"backup"})

	resp, err := r.Route(context.Background(), "s1", &ChatRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "rescued" {
		t.Errorf("content = %q, want fallback reply", resp.Content)
	}
}

func TestRouterAllFailed(t *testing.T) {
	r := NewRouter(zap.NewNop())
	r.Register(&stubProvider{id: "only", err: errors.New("down")})
	if _, err := r.Route(context.Background(), "s1", &ChatRequest{}); err == nil {
		t.Fatal("expected error when every provider fails")
	}
}

func TestOpenAIProviderChat(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, req *http.Request) {
		var in ChatRequest
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if in.Model != "test-model" {
			t.Errorf("model = %q, want configured default", in.Model)
		}
		json.NewEncoder(w).Encode(openAIChatResponse{
			ID:    "resp-1",
			Model: in.Model,
			Choices: []openAIChoice{
				{Message: Message{Role: "assistant", Content: "hello there"}, FinishReason: "stop"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewOpenAIProvider(Config{
		ID:       "test",
		Endpoint: srv.URL,
		Model:    "test-model",
	}, zap.NewNop())

	resp, err := p.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "hello there" {
		t.Errorf("content = %q", resp.Content)
	}
}

func TestOpenAIProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(Config{ID: "test", Endpoint: srv.URL}, zap.NewNop())
	if _, err := p.Chat(context.Background(), &ChatRequest{}); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestReflectFuncTemperatureTracksCreativity(t *testing.T) {
	r := NewRouter(zap.NewNop())
	stub := &stubProvider{id: "llm", reply: "a thought"}
	r.Register(stub)

	fn := ReflectFunc(r, "s1", "m", func() float64 { return 1.0 })
	out, err := fn(context.Background(), "prompt", 30)
	if err != nil {
		t.Fatal(err)
	}
	if out != "a thought" {
		t.Errorf("reflection = %q", out)
	}
	if got := stub.lastReq.Temperature; math.Abs(got-0.9) > 1e-9 {
		t.Errorf("temperature = %v, want 0.9 for full creativity", got)
	}
	if stub.lastReq.MaxTokens != 30 {
		t.Errorf("max tokens = %d, want 30", stub.lastReq.MaxTokens)
	}
}
