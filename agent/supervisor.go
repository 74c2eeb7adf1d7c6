package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cordonlabs/cordon/core"
	"github.com/cordonlabs/cordon/logging"
	"github.com/cordonlabs/cordon/storage"
	"github.com/cordonlabs/cordon/tool"
	"golang.org/x/sync/errgroup"
)

// DefaultDelegationMaxRecursions is the tool round budget for a supervisor's
// lead agent. Delegation conversations legitimately run many rounds, so this
// is far larger than DefaultMaxRecursions.
const DefaultDelegationMaxRecursions = 40

const supervisorPrompt = `You are the supervisor of a team of specialist agents.
You never do specialist work yourself; you delegate it.

Your team:
{{TEAM_ROSTER}}

Guidelines:
- Break the user's request into messages for the right specialists.
- Use the send_messages tool to delegate. You may message several agents
  in one call; they work in parallel.
- Each message must be self-contained: a specialist only sees what you send.
- When replies come back, decide whether follow-up messages are needed.
- Finish by synthesizing the team's work into one answer for the user.

What the team has done so far in this session:
{{AGENTS_MEMORY}}`

// scopeKey carries the request's user/session identity to the delegation tool.
type scopeKey struct{}

type requestScope struct {
	userID    string
	sessionID string
}

// SupervisorOptions configure a Supervisor.
type SupervisorOptions struct {
	// ChatStore persists team conversations and feeds the shared session
	// memory. Nil disables both.
	ChatStore storage.ChatStore
	// MaxRecursions bounds the lead's delegation rounds.
	// Zero means DefaultDelegationMaxRecursions.
	MaxRecursions int
	Logger        logging.Logger
}

// Supervisor coordinates a team of agents through a lead agent. The lead
// receives a send_messages tool for delegating work; recipients run
// concurrently and their replies are returned to the lead as the tool
// result. The supervisor itself implements Agent, so it can be nested
// inside larger teams.
type Supervisor struct {
	mu      sync.Mutex
	lead    ToolConfigurable
	members map[string]Agent
	order   []string
	store   storage.ChatStore
	logger  logging.Logger
}

// NewSupervisor wires a lead agent to its team. The lead must not have a
// tool configuration yet; the supervisor installs the delegation tool.
func NewSupervisor(lead ToolConfigurable, team []Agent, optFns ...func(o *SupervisorOptions)) (*Supervisor, error) {
	if lead == nil {
		return nil, fmt.Errorf("supervisor: lead agent must not be nil")
	}
	if lead.ToolConfig() != nil {
		return nil, fmt.Errorf("supervisor: lead agent %s already has a tool configuration", lead.Name())
	}
	if len(team) == 0 {
		return nil, fmt.Errorf("supervisor: team must not be empty")
	}

	opts := SupervisorOptions{
		MaxRecursions: DefaultDelegationMaxRecursions,
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxRecursions <= 0 {
		opts.MaxRecursions = DefaultDelegationMaxRecursions
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	s := &Supervisor{
		lead:    lead,
		members: make(map[string]Agent, len(team)),
		store:   opts.ChatStore,
		logger:  opts.Logger,
	}

	for _, member := range team {
		if member == nil {
			return nil, fmt.Errorf("supervisor: team member must not be nil")
		}
		if _, exists := s.members[member.Name()]; exists {
			return nil, fmt.Errorf("supervisor: duplicate team member name %q", member.Name())
		}
		s.members[member.Name()] = member
		s.order = append(s.order, member.Name())
	}

	if err := lead.SetToolConfig(ToolConfig{
		Tools:         map[string]tool.Tool{"send_messages": s.delegationTool()},
		MaxRecursions: opts.MaxRecursions,
	}); err != nil {
		return nil, fmt.Errorf("supervisor: %w", err)
	}

	return s, nil
}

// Name implements Agent by mirroring the lead.
func (s *Supervisor) Name() string { return s.lead.Name() }

// Description implements Agent by mirroring the lead.
func (s *Supervisor) Description() string { return s.lead.Description() }

// SetSystemPrompt implements Agent by forwarding to the lead. Most callers
// should rely on the built-in delegation prompt instead.
func (s *Supervisor) SetSystemPrompt(template string, vars map[string]any) {
	s.lead.SetSystemPrompt(template, vars)
}

// StreamingEnabled implements Agent by mirroring the lead.
func (s *Supervisor) StreamingEnabled() bool { return s.lead.StreamingEnabled() }

// SaveChat implements Agent by mirroring the lead.
func (s *Supervisor) SaveChat() bool { return s.lead.SaveChat() }

// TeamMembers returns the member names in registration order.
func (s *Supervisor) TeamMembers() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// ProcessRequest implements Agent. It refreshes the lead's delegation prompt
// with the session's team memory and hands the request to the lead. The
// rendered prompt lives on the lead and is shared across requests, so the
// lock is held through the lead call: one session's memory must not serve
// another session's request.
func (s *Supervisor) ProcessRequest(ctx context.Context, req Request) (*core.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lead.SetSystemPrompt(supervisorPrompt, map[string]any{
		"TEAM_ROSTER":   s.roster(),
		"AGENTS_MEMORY": s.teamMemory(ctx, req.UserID, req.SessionID),
	})

	ctx = context.WithValue(ctx, scopeKey{}, requestScope{
		userID:    req.UserID,
		sessionID: req.SessionID,
	})

	return s.lead.ProcessRequest(ctx, req)
}

// roster renders the team list for the delegation prompt.
func (s *Supervisor) roster() string {
	var sb strings.Builder
	for _, name := range s.order {
		fmt.Fprintf(&sb, "- %s: %s\n", name, s.members[name].Description())
	}
	return strings.TrimRight(sb.String(), "\n")
}

// teamMemory summarizes every member conversation stored for the session.
func (s *Supervisor) teamMemory(ctx context.Context, userID, sessionID string) string {
	if s.store == nil || userID == "" || sessionID == "" {
		return "(nothing yet)"
	}

	msgs, err := s.store.FetchAllChats(ctx, userID, sessionID)
	if err != nil {
		s.logger.Warn("supervisor.memory.fetch_failed", "error", err.Error())
		return "(nothing yet)"
	}
	if len(msgs) == 0 {
		return "(nothing yet)"
	}

	var sb strings.Builder
	for _, msg := range msgs {
		text := msg.TextContent()
		if text == "" {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", msg.Role, text)
	}
	if sb.Len() == 0 {
		return "(nothing yet)"
	}
	return strings.TrimRight(sb.String(), "\n")
}

// delegation is one entry in a send_messages call.
type delegation struct {
	Recipient string
	Content   string
}

// delegationTool builds the send_messages tool the lead uses to fan work
// out to the team.
func (s *Supervisor) delegationTool() tool.Tool {
	return tool.NewFunctionTool(
		"send_messages",
		"Send one message to each selected team member and collect their replies",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"messages": map[string]any{
					"type":        "array",
					"description": "Messages to deliver, at most one per recipient",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"recipient": map[string]any{
								"type":        "string",
								"description": "Name of the team member",
							},
							"content": map[string]any{
								"type":        "string",
								"description": "Self-contained instruction or question",
							},
						},
						"required": []string{"recipient", "content"},
					},
				},
			},
			"required": []string{"messages"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			delegations, err := parseDelegations(args)
			if err != nil {
				return nil, err
			}
			return s.dispatch(ctx, delegations)
		},
	)
}

// parseDelegations decodes and validates the send_messages arguments.
func parseDelegations(args map[string]any) ([]delegation, error) {
	raw, ok := args["messages"].([]any)
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("messages must be a non-empty array")
	}

	seen := map[string]struct{}{}
	out := make([]delegation, 0, len(raw))
	for i, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("messages[%d] must be an object", i)
		}
		recipient, _ := m["recipient"].(string)
		content, _ := m["content"].(string)
		if recipient == "" || content == "" {
			return nil, fmt.Errorf("messages[%d] requires recipient and content", i)
		}
		if _, dup := seen[recipient]; dup {
			return nil, fmt.Errorf("duplicate recipient %q in one delegation", recipient)
		}
		seen[recipient] = struct{}{}
		out = append(out, delegation{Recipient: recipient, Content: content})
	}
	return out, nil
}

// dispatch delivers delegations concurrently and assembles replies in the
// original message order. Any member failure fails the whole delegation.
func (s *Supervisor) dispatch(ctx context.Context, delegations []delegation) (string, error) {
	scope, _ := ctx.Value(scopeKey{}).(requestScope)

	// Resolve every recipient before any member starts. A bad recipient must
	// not leave earlier members running (and persisting chat) behind an error
	// the lead has already received.
	members := make([]Agent, len(delegations))
	for i, d := range delegations {
		member, ok := s.members[d.Recipient]
		if !ok {
			return "", fmt.Errorf("unknown team member %q", d.Recipient)
		}
		members[i] = member
	}

	replies := make([]string, len(delegations))
	g, gctx := errgroup.WithContext(ctx)

	for i, d := range delegations {
		member := members[i]

		g.Go(func() error {
			s.logger.Debug("supervisor.dispatch", "recipient", d.Recipient)

			var history []core.Message
			persist := s.store != nil && member.SaveChat() && scope.userID != ""
			if persist {
				var err error
				history, err = s.store.FetchChat(gctx, scope.userID, scope.sessionID, d.Recipient)
				if err != nil {
					return fmt.Errorf("fetch chat for %s: %w", d.Recipient, err)
				}
			}

			reply, err := member.ProcessRequest(gctx, Request{
				Input:     d.Content,
				UserID:    scope.userID,
				SessionID: scope.sessionID,
				History:   history,
			})
			if err != nil {
				return fmt.Errorf("team member %s: %w", d.Recipient, err)
			}

			if persist {
				err = s.store.SaveMessages(gctx, scope.userID, scope.sessionID, d.Recipient, []core.Message{
					core.NewUserMessage(d.Content),
					*reply,
				})
				if err != nil {
					return fmt.Errorf("save chat for %s: %w", d.Recipient, err)
				}
			}

			replies[i] = fmt.Sprintf("%s: %s", d.Recipient, reply.TextContent())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	return strings.Join(replies, "\n\n"), nil
}
