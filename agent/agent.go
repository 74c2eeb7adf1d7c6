// Package agent defines the agent contract and the built-in agent
// implementations: model-backed agents with tool calling, callable agents
// wrapping plain functions, a researcher with web tools and a supervisor
// that delegates work to a team.
package agent

import (
	"context"
	"sync"

	"github.com/cordonlabs/cordon/core"
	"github.com/cordonlabs/cordon/internal/util"
	"github.com/cordonlabs/cordon/tool"
)

// Request carries one unit of work to an agent.
type Request struct {
	// Input is the instruction or question for the agent.
	Input string
	// UserID / SessionID scope conversation history.
	UserID    string
	SessionID string
	// History is prior conversation to prepend, oldest first.
	History []core.Message
	// Params carries optional string metadata for custom agents.
	Params map[string]string
}

// Agent is the contract every orchestratable worker fulfills. Implementations
// must be safe for concurrent ProcessRequest calls: a supervisor may fan out
// to several agents at once.
type Agent interface {
	// Name is the unique identity used for routing and delegation.
	Name() string

	// Description tells classifiers and supervisors what this agent is for.
	Description() string

	// SetSystemPrompt installs a prompt template with {{VARIABLE}} placeholders
	// resolved from vars. Unknown placeholders are left intact.
	SetSystemPrompt(template string, vars map[string]any)

	// StreamingEnabled reports whether the agent requests token streaming
	// from its model.
	StreamingEnabled() bool

	// SaveChat reports whether the orchestrator should persist this agent's
	// conversations to the chat store.
	SaveChat() bool

	// ProcessRequest handles one request and returns the agent's reply.
	ProcessRequest(ctx context.Context, req Request) (*core.Message, error)
}

// ToolConfig bundles the tools available to an agent with the recursion
// budget governing how many consecutive tool rounds one request may use.
type ToolConfig struct {
	// Tools is the registry keyed by tool name.
	Tools map[string]tool.Tool
	// MaxRecursions bounds consecutive model calls within a request.
	// Zero means the agent's default.
	MaxRecursions int
}

// ToolConfigurable is implemented by agents whose tool set can be extended
// after construction, such as a supervisor's lead agent receiving its
// delegation tool.
type ToolConfigurable interface {
	Agent

	// SetToolConfig installs the tool configuration. Implementations may
	// reject a second configuration.
	SetToolConfig(cfg ToolConfig) error

	// ToolConfig returns the current configuration, nil when unset.
	ToolConfig() *ToolConfig
}

// BaseAgent supplies the identity, prompt template and persistence flag
// shared by concrete agents. Embed it and implement ProcessRequest.
type BaseAgent struct {
	mu             sync.RWMutex
	name           string
	description    string
	promptTemplate string
	promptVars     map[string]any
	streaming      bool
	saveChat       bool
}

// NewBaseAgent creates the shared agent base.
func NewBaseAgent(name, description string) BaseAgent {
	return BaseAgent{name: name, description: description}
}

// Name implements Agent.
func (a *BaseAgent) Name() string { return a.name }

// Description implements Agent.
func (a *BaseAgent) Description() string { return a.description }

// SetSystemPrompt implements Agent.
func (a *BaseAgent) SetSystemPrompt(template string, vars map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.promptTemplate = template
	a.promptVars = vars
}

// SystemPrompt renders the installed template with its variables.
func (a *BaseAgent) SystemPrompt() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.promptTemplate == "" {
		return ""
	}
	return util.ReplacePlaceholders(a.promptTemplate, a.promptVars)
}

// StreamingEnabled implements Agent.
func (a *BaseAgent) StreamingEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.streaming
}

// SetStreaming toggles token streaming.
func (a *BaseAgent) SetStreaming(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.streaming = enabled
}

// SaveChat implements Agent.
func (a *BaseAgent) SaveChat() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.saveChat
}

// SetSaveChat toggles conversation persistence for this agent.
func (a *BaseAgent) SetSaveChat(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saveChat = enabled
}
