package agent

import (
	"context"
	"fmt"

	"github.com/cordonlabs/cordon/core"
)

// GenerateFunc produces a reply for a request without a backing model.
type GenerateFunc func(ctx context.Context, req Request) (string, error)

// CallableAgent adapts a plain Go function into an Agent. It is the cheapest
// way to add deterministic workers (lookups, computations, adapters to other
// systems) to a team alongside model-backed agents.
type CallableAgent struct {
	BaseAgent
	fn      GenerateFunc
	toolCfg *ToolConfig
}

// NewCallableAgent wraps fn as an agent. The function must be non-nil and
// safe for concurrent calls.
func NewCallableAgent(name, description string, fn GenerateFunc) (*CallableAgent, error) {
	if fn == nil {
		return nil, fmt.Errorf("callable agent %q: generate function must not be nil", name)
	}
	return &CallableAgent{
		BaseAgent: NewBaseAgent(name, description),
		fn:        fn,
	}, nil
}

// ProcessRequest implements Agent by delegating to the wrapped function.
func (a *CallableAgent) ProcessRequest(ctx context.Context, req Request) (*core.Message, error) {
	out, err := a.fn(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", a.Name(), err)
	}
	msg := core.NewAssistantMessage(out)
	return &msg, nil
}

// SetToolConfig implements ToolConfigurable. The configuration is stored for
// the wrapped function to inspect; CallableAgent runs no tool loop itself.
func (a *CallableAgent) SetToolConfig(cfg ToolConfig) error {
	a.toolCfg = &cfg
	return nil
}

// ToolConfig implements ToolConfigurable.
func (a *CallableAgent) ToolConfig() *ToolConfig {
	return a.toolCfg
}
