package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/cordonlabs/cordon/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input produced by agents.
type Request struct {
	System   string           `json:"system"`   // System prompt / instructions
	Messages []core.Message   `json:"messages"` // Conversation converted to provider messages
	Tools    []ToolDefinition `json:"tools,omitempty"`
	Stream   bool             `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
//
// Streaming providers emit zero or more Partial responses carrying Delta text
// followed by exactly one final response whose Message holds the fully
// accumulated content (including any tool-use parts). Non-streaming providers
// emit the final response only.
type Response struct {
	Partial    bool         `json:"partial"`
	Delta      string       `json:"delta,omitempty"` // Incremental text for partial responses
	Message    core.Message `json:"message"`         // Complete content, set on the final response
	StopReason string       `json:"stop_reason"`     // "stop", "tool_use", "length", etc.
	Usage      *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "anthropic", "openai", "scripted", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by agents to drive generation.
//
// Generate must be safe to call from any goroutine; both channels are closed
// once generation completes. Implementations must respect ctx cancellation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// ScriptedModel is a lightweight in-memory Model useful for tests & examples.
// It replays a fixed sequence of replies; once the script is exhausted the
// last reply repeats, so a script of one tool-use message models a model that
// requests tools forever.
type ScriptedModel struct {
	mu      sync.Mutex
	info    Info
	script  []core.Message
	cursor  int
	calls   int
	failErr error
}

// NewScriptedModel constructs a ScriptedModel replaying the given replies in order.
func NewScriptedModel(replies ...core.Message) *ScriptedModel {
	return &ScriptedModel{
		info:   Info{Name: "scripted", Provider: "scripted", SupportsTools: true},
		script: replies,
	}
}

// FailWith makes every subsequent Generate call report err instead of a reply.
func (m *ScriptedModel) FailWith(err error) { m.mu.Lock(); defer m.mu.Unlock(); m.failErr = err }

// Calls reports how many times Generate has been invoked.
func (m *ScriptedModel) Calls() int { m.mu.Lock(); defer m.mu.Unlock(); return m.calls }

func (m *ScriptedModel) next() (core.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failErr != nil {
		return core.Message{}, m.failErr
	}
	if len(m.script) == 0 {
		return core.NewAssistantMessage("scripted response"), nil
	}
	reply := m.script[m.cursor]
	if m.cursor < len(m.script)-1 {
		m.cursor++
	}
	return reply, nil
}

// Generate implements Model; emits optional streaming text deltas then the final response.
func (m *ScriptedModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if len(req.Messages) == 0 {
			errCh <- fmt.Errorf("no messages provided")
			return
		}

		reply, err := m.next()
		if err != nil {
			errCh <- err
			return
		}

		if req.Stream {
			for _, r := range reply.TextContent() {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Delta: string(r)}:
				}
			}
		}

		stop := "stop"
		if reply.HasToolUse() {
			stop = "tool_use"
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{Message: reply, StopReason: stop}:
		}
	}()

	return respCh, errCh
}

// Info implements Model interface.
func (m *ScriptedModel) Info() Info { return m.info }
