// Package cordon provides a high-level façade over the team orchestration
// engine and its services (chat storage, command sandbox & logging) enabling
// rapid construction of multi-agent systems. Most applications interact with
// this package by:
//  1. Creating a Cordon via New() (optionally overriding default in-memory services)
//  2. Registering one or more agents (LLM-backed, callable, researcher, supervisor)
//  3. Handling requests through the full pipeline (HandleRequest) or by
//     routing to a single best agent (Route)
//
// The façade delegates orchestration to team.Team while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a durable chat store and
// a structured logger.
package cordon

import (
	"context"

	"github.com/cordonlabs/cordon/agent"
	"github.com/cordonlabs/cordon/logging"
	"github.com/cordonlabs/cordon/shell"
	"github.com/cordonlabs/cordon/storage"
	"github.com/cordonlabs/cordon/team"
)

// Options configures the Cordon instance.
type Options struct {
	// Classifier decomposes and routes requests. Without one the pipeline
	// uses deterministic sentence splitting and keyword matching.
	Classifier agent.Agent

	// ChatStore persists agent conversations (defaults to in-memory).
	ChatStore storage.ChatStore

	// EnableCommands opts into shell command execution for command tasks.
	EnableCommands bool

	// CommandWorkDir sets the working directory for sandboxed commands.
	CommandWorkDir string

	// Progress receives orchestration events. Must be non-blocking.
	Progress team.ProgressSink

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Cordon is the high-level façade aggregating the team engine and services.
type Cordon struct {
	opts Options
	team *team.Team
}

// New creates a new Cordon instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *Cordon {
	opts := Options{
		ChatStore: storage.NewInMemoryStore(),
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	sandbox := shell.NewSandbox(func(o *shell.Options) {
		o.Enabled = opts.EnableCommands
		o.WorkDir = opts.CommandWorkDir
		o.Logger = opts.Logger
	})

	t := team.New(func(o *team.Options) {
		o.Classifier = opts.Classifier
		o.Sandbox = sandbox
		o.ChatStore = opts.ChatStore
		o.Progress = opts.Progress
		o.Logger = opts.Logger
	})

	return &Cordon{opts: opts, team: t}
}

// RegisterAgent adds an agent to the underlying team.
func (c *Cordon) RegisterAgent(a agent.Agent) error { return c.team.AddAgent(a) }

// RemoveAgent deregisters an agent by name.
func (c *Cordon) RemoveAgent(name string) error { return c.team.RemoveAgent(name) }

// SetClassifier installs or replaces the classifier agent.
func (c *Cordon) SetClassifier(a agent.Agent) { c.team.SetClassifier(a) }

// Team exposes the underlying orchestration engine for advanced use.
func (c *Cordon) Team() *team.Team { return c.team }

// HandleRequest runs the full decompose/assign/execute/coordinate pipeline
// and returns the aggregated reply.
func (c *Cordon) HandleRequest(ctx context.Context, request string) (string, error) {
	return c.team.HandleRequest(ctx, request)
}

// Route sends the request to the single most suitable agent and returns its
// labeled response.
func (c *Cordon) Route(ctx context.Context, request, userID, sessionID string) (*team.RoutedResponse, error) {
	return c.team.RouteRequest(ctx, request, userID, sessionID)
}
