package agent

import (
	"context"
	"fmt"
	"sort"

	"github.com/cordonlabs/cordon/core"
	"github.com/cordonlabs/cordon/logging"
	"github.com/cordonlabs/cordon/model"
	"github.com/cordonlabs/cordon/retriever"
	"github.com/cordonlabs/cordon/tool"
)

// DefaultMaxRecursions bounds consecutive tool rounds for a single request.
const DefaultMaxRecursions = 5

// LLMAgentOptions configure an LLMAgent.
type LLMAgentOptions struct {
	// SystemPrompt and SystemPromptVars seed the initial prompt template.
	SystemPrompt     string
	SystemPromptVars map[string]any
	// Tools registers an initial tool configuration.
	Tools map[string]tool.Tool
	// MaxRecursions bounds tool rounds; zero means DefaultMaxRecursions.
	MaxRecursions int
	// Streaming requests token streaming from the model.
	Streaming bool
	// SaveChat marks this agent's conversations for persistence.
	SaveChat bool
	// Retriever, when set, augments the system prompt with query context.
	Retriever retriever.Retriever
	// OnToken receives streamed text deltas.
	OnToken func(token string)
	Logger  logging.Logger
}

// LLMAgent is a model-backed agent with optional tool calling and knowledge
// retrieval. One ProcessRequest may span several model calls: each round the
// model either answers in text (terminating the loop) or requests tools,
// whose results are fed back for the next round. The rounds are bounded by
// MaxRecursions; on exhaustion the agent degrades to the last textual
// content rather than erroring.
type LLMAgent struct {
	BaseAgent
	model     model.Model
	toolCfg   *ToolConfig
	retriever retriever.Retriever
	onToken   func(string)
	logger    logging.Logger
	maxRec    int
}

// NewLLMAgent creates a model-backed agent.
func NewLLMAgent(name, description string, m model.Model, optFns ...func(o *LLMAgentOptions)) *LLMAgent {
	opts := LLMAgentOptions{
		MaxRecursions: DefaultMaxRecursions,
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxRecursions <= 0 {
		opts.MaxRecursions = DefaultMaxRecursions
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	a := &LLMAgent{
		BaseAgent: NewBaseAgent(name, description),
		model:     m,
		retriever: opts.Retriever,
		onToken:   opts.OnToken,
		logger:    opts.Logger,
		maxRec:    opts.MaxRecursions,
	}

	if opts.SystemPrompt != "" {
		a.SetSystemPrompt(opts.SystemPrompt, opts.SystemPromptVars)
	}
	if opts.Streaming {
		a.SetStreaming(true)
	}
	if opts.SaveChat {
		a.SetSaveChat(true)
	}
	if len(opts.Tools) > 0 {
		a.toolCfg = &ToolConfig{Tools: opts.Tools, MaxRecursions: opts.MaxRecursions}
	}

	return a
}

// SetToolConfig implements ToolConfigurable. A second configuration is
// rejected so delegation wiring cannot silently clobber existing tools.
func (a *LLMAgent) SetToolConfig(cfg ToolConfig) error {
	if a.toolCfg != nil {
		return fmt.Errorf("agent %s: tool configuration already set", a.Name())
	}
	if cfg.MaxRecursions > 0 {
		a.maxRec = cfg.MaxRecursions
	}
	a.toolCfg = &cfg
	return nil
}

// ToolConfig implements ToolConfigurable.
func (a *LLMAgent) ToolConfig() *ToolConfig {
	return a.toolCfg
}

// ProcessRequest implements Agent.
func (a *LLMAgent) ProcessRequest(ctx context.Context, req Request) (*core.Message, error) {
	system := a.SystemPrompt()

	if a.retriever != nil {
		retrieved, err := a.retriever.Retrieve(ctx, req.Input)
		switch {
		case err != nil:
			a.logger.Warn("agent.retrieve.failed", "agent", a.Name(), "error", err.Error())
		case retrieved != "":
			system += "\n\nRelevant context:\n" + retrieved
		}
	}

	messages := make([]core.Message, 0, len(req.History)+1)
	messages = append(messages, req.History...)
	messages = append(messages, core.NewUserMessage(req.Input))

	var toolDefs []model.ToolDefinition
	var registry map[string]tool.Tool
	if a.toolCfg != nil {
		registry = a.toolCfg.Tools
		toolDefs = buildToolDefinitions(registry)
	}

	var last *core.Message
	for round := 0; round < a.maxRec; round++ {
		reply, err := a.generateOnce(ctx, model.Request{
			System:   system,
			Messages: messages,
			Tools:    toolDefs,
			Stream:   a.StreamingEnabled(),
		})
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", a.Name(), err)
		}
		last = reply

		uses := reply.ToolUses()
		if len(uses) == 0 || len(registry) == 0 {
			return reply, nil
		}

		results := make([]core.ToolResultPart, 0, len(uses))
		for _, use := range uses {
			a.logger.Debug("agent.tool.invoke", "agent", a.Name(), "tool", use.Name, "round", round)
			out, err := tool.Execute(ctx, registry, use.Name, use.Arguments)
			if err != nil {
				return nil, fmt.Errorf("agent %s: tool %s: %w", a.Name(), use.Name, err)
			}
			results = append(results, core.ToolResultPart{
				ID:      use.ID,
				Name:    use.Name,
				Content: out,
			})
		}

		messages = append(messages, *reply, core.NewToolResultMessage(results...))
	}

	// Recursion budget exhausted: degrade to the last textual content
	// instead of failing the whole request.
	a.logger.Warn("agent.recursion.exhausted", "agent", a.Name(), "max_recursions", a.maxRec)

	text := ""
	if last != nil {
		text = last.TextContent()
	}
	if text == "" {
		text = "Maximum tool recursion depth reached before the task completed."
	}
	msg := core.NewAssistantMessage(text)
	return &msg, nil
}

// generateOnce performs one model call, forwarding streamed deltas to the
// token callback and returning the final complete message.
func (a *LLMAgent) generateOnce(ctx context.Context, req model.Request) (*core.Message, error) {
	out, errCh := a.model.Generate(ctx, req)

	var final *core.Message
	for resp := range out {
		if resp.Partial {
			if a.onToken != nil && resp.Delta != "" {
				a.onToken(resp.Delta)
			}
			continue
		}
		msg := resp.Message
		final = &msg
	}

	if err := <-errCh; err != nil {
		return nil, err
	}
	if final == nil {
		return nil, fmt.Errorf("model returned no response")
	}
	return final, nil
}

// buildToolDefinitions converts the registry into model tool declarations
// in deterministic name order.
func buildToolDefinitions(registry map[string]tool.Tool) []model.ToolDefinition {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]model.ToolDefinition, 0, len(names))
	for _, name := range names {
		t := registry[name]
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}
