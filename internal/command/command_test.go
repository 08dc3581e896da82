package command

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/whisperengine-ai/ai-research/internal/session"
)

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Command{
		Name:        "ping",
		Description: "Ping test",
		Usage:       "/ping",
		Handler: func(ctx context.Context, args string, cc *CommandContext) (*CommandResult, error) {
			return &CommandResult{Content: "pong: " + args}, nil
		},
	})

	ctx := context.Background()
	cc := &CommandContext{SessionID: "test"}

	// Test known command
	result, err := reg.Dispatch(ctx, "/ping hello", cc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "pong: hello" {
		t.Errorf("got %q, want %q", result.Content, "pong: hello")
	}

	// Test unknown command
	result, err = reg.Dispatch(ctx, "/unknown", cc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content == "" {
		t.Error("expected error message for unknown command")
	}
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Command{Name: "beta"})
	reg.Register(&Command{Name: "alpha"})

	list := reg.List()
	if len(list) != 2 {
		t.Fatalf("got %d commands, want 2", len(list))
	}
	if list[0].Name != "alpha" {
		t.Errorf("got %q first, want %q", list[0].Name, "alpha")
	}
}

func builtinContext(t *testing.T) *CommandContext {
	t.Helper()
	mgr := session.NewManager(session.DefaultConfig(), session.Deps{Logger: zap.NewNop()})
	s, err := mgr.GetOrCreate(context.Background(), "cmd-test")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := s.ProcessTurn(context.Background(), "hello, how are you feeling?"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	return &CommandContext{SessionID: s.ID(), Session: s, Manager: mgr}
}

func TestBuiltinCommands(t *testing.T) {
	reg := NewRegistry()
	RegisterBuiltins(reg)
	cc := builtinContext(t)
	ctx := context.Background()

	cases := []struct {
		input string
		want  string
	}{
		{"/help", "/workspace"},
		{"/workspace", "slots occupied"},
		{"/metrics", "Consciousness metrics"},
		{"/chemistry", "Mood:"},
		{"/stream", "thoughts"},
		{"/sessions", "cmd-test"},
	}
	for _, tc := range cases {
		res, err := reg.Dispatch(ctx, tc.input, cc)
		if err != nil {
			t.Fatalf("%s: %v", tc.input, err)
		}
		if !strings.Contains(res.Content, tc.want) {
			t.Errorf("%s output %q missing %q", tc.input, res.Content, tc.want)
		}
	}
}

func TestResetCommandClearsWorkspace(t *testing.T) {
	reg := NewRegistry()
	RegisterBuiltins(reg)
	cc := builtinContext(t)

	if _, err := reg.Dispatch(context.Background(), "/reset", cc); err != nil {
		t.Fatalf("/reset: %v", err)
	}
	if occ := cc.Session.WorkspaceView().Occupancy; occ != 0 {
		t.Errorf("occupancy after /reset = %d", occ)
	}
}

func TestCommandsWithoutSession(t *testing.T) {
	reg := NewRegistry()
	RegisterBuiltins(reg)
	res, err := reg.Dispatch(context.Background(), "/workspace", &CommandContext{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !strings.Contains(res.Content, "No active session") {
		t.Errorf("got %q", res.Content)
	}
}
