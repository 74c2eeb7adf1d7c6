package team

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cordonlabs/cordon/agent"
	"github.com/cordonlabs/cordon/core"
	"github.com/cordonlabs/cordon/logging"
	"github.com/cordonlabs/cordon/shell"
	"github.com/cordonlabs/cordon/storage"
)

// Options configure a Team.
type Options struct {
	// Classifier decomposes requests and routes them. Nil falls back to
	// deterministic splitting and keyword matching.
	Classifier agent.Agent
	// Sandbox executes command tasks. Nil gets a default (disabled) sandbox.
	Sandbox *shell.Sandbox
	// ChatStore persists conversations for agents that opt in via SaveChat.
	ChatStore storage.ChatStore
	// Progress receives pipeline events.
	Progress ProgressSink
	Logger   logging.Logger
}

// Team owns the agent registry, availability map, task log and the services
// used to process requests. Construct one per orchestration domain; there is
// no process-wide instance.
type Team struct {
	mu         sync.RWMutex
	agents     map[string]agent.Agent
	order      []string
	busy       map[string]bool
	classifier agent.Agent
	sandbox    *shell.Sandbox
	store      storage.ChatStore
	progress   ProgressSink
	logger     logging.Logger
	tasks      []*Task
	results    []TaskResult
}

// New creates an empty team.
func New(optFns ...func(o *Options)) *Team {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Sandbox == nil {
		opts.Sandbox = shell.NewSandbox(func(o *shell.Options) { o.Logger = opts.Logger })
	}

	return &Team{
		agents:     make(map[string]agent.Agent),
		busy:       make(map[string]bool),
		classifier: opts.Classifier,
		sandbox:    opts.Sandbox,
		store:      opts.ChatStore,
		progress:   opts.Progress,
		logger:     opts.Logger,
	}
}

// AddAgent registers an agent. Names must be unique within the team.
func (t *Team) AddAgent(a agent.Agent) error {
	if a == nil {
		return fmt.Errorf("team: agent must not be nil")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	name := a.Name()
	if _, exists := t.agents[name]; exists {
		return fmt.Errorf("team: agent %q already registered", name)
	}
	t.agents[name] = a
	t.order = append(t.order, name)
	t.busy[name] = false

	t.logger.Info("team.agent.added", "agent", name)
	return nil
}

// RemoveAgent deregisters an agent. Pending tasks assigned to it lose their
// assignment and will be re-resolved or skipped.
func (t *Team) RemoveAgent(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.agents[name]; !exists {
		return fmt.Errorf("team: agent %q not registered", name)
	}
	delete(t.agents, name)
	delete(t.busy, name)
	for i, n := range t.order {
		if n == name {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	for _, task := range t.tasks {
		if task.Status == StatusPending && task.AssignedAgent == name {
			task.AssignedAgent = ""
		}
	}

	t.logger.Info("team.agent.removed", "agent", name)
	return nil
}

// Agents returns the registered agent names in registration order.
func (t *Team) Agents() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// SetClassifier installs or replaces the classifier agent.
func (t *Team) SetClassifier(a agent.Agent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.classifier = a
}

// Sandbox exposes the command sandbox for configuration.
func (t *Team) Sandbox() *shell.Sandbox { return t.sandbox }

// Tasks returns the task log for inspection.
func (t *Team) Tasks() []*Task {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Task, len(t.tasks))
	copy(out, t.tasks)
	return out
}

// Results returns the result log for inspection.
func (t *Team) Results() []TaskResult {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]TaskResult, len(t.results))
	copy(out, t.results)
	return out
}

// HandleRequest runs the full pipeline for one request: decompose, assign,
// execute sequentially, then merge results into the final reply.
func (t *Team) HandleRequest(ctx context.Context, request string) (string, error) {
	if strings.TrimSpace(request) == "" {
		return "", fmt.Errorf("team: empty request")
	}

	t.emit(ProgressEvent{Type: EventTaskSplitting, Message: "decomposing request into tasks"})

	tasks := t.Decompose(ctx, request)
	t.emit(ProgressEvent{
		Type:    EventTasksCreated,
		Message: fmt.Sprintf("created %d tasks", len(tasks)),
	})

	t.Assign(tasks)
	results := t.ExecuteSequential(ctx, tasks)

	t.mu.Lock()
	t.tasks = append(t.tasks, tasks...)
	t.results = append(t.results, results...)
	t.mu.Unlock()

	return Coordinate(tasks, results), nil
}

// RouteRequest sends the whole request to the single most suitable agent
// instead of decomposing it. The classifier picks the agent when available;
// otherwise the assignment heuristics decide. Agents that opt into SaveChat
// converse with history from the chat store.
func (t *Team) RouteRequest(ctx context.Context, request, userID, sessionID string) (*RoutedResponse, error) {
	target := t.classifyAgent(ctx, request)
	if target == nil {
		return nil, fmt.Errorf("team: no agent available for request")
	}

	req := agent.Request{Input: request, UserID: userID, SessionID: sessionID}

	persist := t.store != nil && target.SaveChat() && userID != ""
	if persist {
		history, err := t.store.FetchChat(ctx, userID, sessionID, target.Name())
		if err != nil {
			return nil, fmt.Errorf("team: fetch chat: %w", err)
		}
		req.History = history
	}

	reply, err := target.ProcessRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("team: agent %s: %w", target.Name(), err)
	}

	if persist {
		err = t.store.SaveMessages(ctx, userID, sessionID, target.Name(), []core.Message{
			core.NewUserMessage(request),
			*reply,
		})
		if err != nil {
			return nil, fmt.Errorf("team: save chat: %w", err)
		}
	}

	return &RoutedResponse{AgentName: target.Name(), Output: reply.TextContent()}, nil
}

// classifyAgent asks the classifier to name the best agent for the request,
// falling back to keyword heuristics and finally the first registered agent.
func (t *Team) classifyAgent(ctx context.Context, request string) agent.Agent {
	t.mu.RLock()
	classifier := t.classifier
	t.mu.RUnlock()

	if classifier != nil {
		prompt := t.routingPrompt(request)
		reply, err := classifier.ProcessRequest(ctx, agent.Request{Input: prompt})
		if err != nil {
			t.logger.Warn("team.route.classifier_failed", "error", err.Error())
		} else {
			name := strings.TrimSpace(reply.TextContent())
			t.mu.RLock()
			a, ok := t.agents[name]
			t.mu.RUnlock()
			if ok {
				return a
			}
			t.logger.Warn("team.route.unknown_agent", "agent", name)
		}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if name := t.matchAgentLocked(request); name != "" {
		return t.agents[name]
	}
	if len(t.order) > 0 {
		return t.agents[t.order[0]]
	}
	return nil
}

// routingPrompt builds the single-agent routing instruction.
func (t *Team) routingPrompt(request string) string {
	var sb strings.Builder
	sb.WriteString("Pick the single best agent for this request.\n\nAgents:\n")
	t.mu.RLock()
	for _, name := range t.order {
		fmt.Fprintf(&sb, "- %s: %s\n", name, t.agents[name].Description())
	}
	t.mu.RUnlock()
	sb.WriteString("\nRequest: ")
	sb.WriteString(request)
	sb.WriteString("\n\nReply with only the agent name, nothing else.")
	return sb.String()
}
