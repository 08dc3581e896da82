package command

import (
	"context"
	"fmt"
	"strings"
)

// RegisterBuiltins wires up the introspection slash commands. Every
// command operates on the session carried in the CommandContext.
func RegisterBuiltins(reg *Registry) {
	reg.Register(helpCommand(reg))
	reg.Register(workspaceCommand())
	reg.Register(metricsCommand())
	reg.Register(chemistryCommand())
	reg.Register(streamCommand())
	reg.Register(resetCommand())
	reg.Register(sessionsCommand())
}

func helpCommand(reg *Registry) *Command {
	return &Command{
		Name:        "help",
		Description: "List available commands",
		Usage:       "/help",
		Handler: func(ctx context.Context, args string, cc *CommandContext) (*CommandResult, error) {
			var b strings.Builder
			b.WriteString("Available commands:\n")
			for _, cmd := range reg.List() {
				fmt.Fprintf(&b, "  %-12s %s\n", "/"+cmd.Name, cmd.Description)
			}
			return &CommandResult{Content: b.String()}, nil
		},
	}
}

func workspaceCommand() *Command {
	return &Command{
		Name:        "workspace",
		Description: "Show current global workspace contents and attention focus",
		Usage:       "/workspace",
		Handler: func(ctx context.Context, args string, cc *CommandContext) (*CommandResult, error) {
			if cc.Session == nil {
				return &CommandResult{Content: "No active session."}, nil
			}
			v := cc.Session.WorkspaceView()

			var b strings.Builder
			fmt.Fprintf(&b, "Workspace: %d/%d slots occupied, %d units pooled\n",
				v.Occupancy, v.Capacity, v.Pooled)
			for _, c := range v.Contents {
				fmt.Fprintf(&b, "  [%s] %.2f  %s\n", c.Source, c.Activation, c.Content)
			}
			if v.Focus != nil {
				fmt.Fprintf(&b, "Attention focus: [%s] %s\n", v.Focus.Source, v.Focus.Content)
			} else {
				b.WriteString("Attention focus: none\n")
			}
			return &CommandResult{Content: b.String(), Data: v.Contents}, nil
		},
	}
}

func metricsCommand() *Command {
	return &Command{
		Name:        "metrics",
		Description: "Show consciousness metric summary",
		Usage:       "/metrics [n]",
		Handler: func(ctx context.Context, args string, cc *CommandContext) (*CommandResult, error) {
			if cc.Session == nil {
				return &CommandResult{Content: "No active session."}, nil
			}
			n := 10
			if args != "" {
				fmt.Sscanf(args, "%d", &n)
			}
			res := &CommandResult{Content: cc.Session.MetricsSummary(n)}
			if v := cc.Session.MetricsView(n); v.Last != nil {
				res.Data = *v.Last
			}
			return res, nil
		},
	}
}

func chemistryCommand() *Command {
	return &Command{
		Name:        "chemistry",
		Description: "Show neurochemical levels and current mood",
		Usage:       "/chemistry",
		Handler: func(ctx context.Context, args string, cc *CommandContext) (*CommandResult, error) {
			if cc.Session == nil {
				return &CommandResult{Content: "No active session."}, nil
			}
			content := cc.Session.ChemistryReport()
			return &CommandResult{Content: content, Data: cc.Session.ChemistryView().Levels}, nil
		},
	}
}

func streamCommand() *Command {
	return &Command{
		Name:        "stream",
		Description: "Show recent thoughts from the consciousness stream",
		Usage:       "/stream [n]",
		Handler: func(ctx context.Context, args string, cc *CommandContext) (*CommandResult, error) {
			if cc.Session == nil {
				return &CommandResult{Content: "No active session."}, nil
			}
			n := 10
			if args != "" {
				fmt.Sscanf(args, "%d", &n)
			}
			thoughts := cc.Session.StreamView(n).Thoughts
			if len(thoughts) == 0 {
				return &CommandResult{Content: "Stream is empty."}, nil
			}
			var b strings.Builder
			fmt.Fprintf(&b, "Last %d thoughts:\n", len(thoughts))
			for _, t := range thoughts {
				fmt.Fprintf(&b, "  L%d %-14s %s\n", t.Level, string(t.Type), t.Content)
			}
			return &CommandResult{Content: b.String(), Data: thoughts}, nil
		},
	}
}

func resetCommand() *Command {
	return &Command{
		Name:        "reset",
		Description: "Clear workspace, working memory, chemistry and conversation",
		Usage:       "/reset",
		Handler: func(ctx context.Context, args string, cc *CommandContext) (*CommandResult, error) {
			if cc.Session == nil {
				return &CommandResult{Content: "No active session."}, nil
			}
			cc.Session.Reset(ctx)
			return &CommandResult{Content: "Session state cleared."}, nil
		},
	}
}

func sessionsCommand() *Command {
	return &Command{
		Name:        "sessions",
		Description: "List live sessions",
		Usage:       "/sessions",
		Handler: func(ctx context.Context, args string, cc *CommandContext) (*CommandResult, error) {
			if cc.Manager == nil {
				return &CommandResult{Content: "No session manager."}, nil
			}
			ids := cc.Manager.List()
			if len(ids) == 0 {
				return &CommandResult{Content: "No live sessions."}, nil
			}
			var b strings.Builder
			fmt.Fprintf(&b, "%d live sessions:\n", len(ids))
			for _, id := range ids {
				marker := "  "
				if id == cc.SessionID {
					marker = "* "
				}
				fmt.Fprintf(&b, "%s%s\n", marker, id)
			}
			return &CommandResult{Content: b.String(), Data: ids}, nil
		},
	}
}
