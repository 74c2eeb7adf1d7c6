// Package core defines the shared conversation data model: role-based
// messages composed of a closed set of content parts (text, tool-use,
// tool-result, reasoning) plus unique identifier helpers.
package core

import "github.com/google/uuid"

// Role identifies the author of a Message within a conversation.
type Role string

const (
	// RoleUser marks content authored by a human or a calling system.
	RoleUser Role = "user"
	// RoleAssistant marks content produced by a model-backed agent.
	RoleAssistant Role = "assistant"
)

// Part represents a polymorphic segment of message content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string
}

func (TextPart) isPart() {}

// ReasoningPart carries model thinking/reasoning output kept separate from
// the user-visible text.
type ReasoningPart struct {
	Text string
}

func (ReasoningPart) isPart() {}

// ToolUsePart is a model-issued request to invoke a named tool. Arguments is
// the raw JSON payload exactly as produced by the model.
type ToolUsePart struct {
	ID        string
	Name      string
	Arguments string
}

func (ToolUsePart) isPart() {}

// ToolResultPart carries the outcome of a previously requested tool use.
// ID matches the originating ToolUsePart.
//
// Invariant: within one exchange every ToolUsePart must be answered by a
// matching ToolResultPart before the exchange is considered resolved.
type ToolResultPart struct {
	ID      string
	Name    string
	Content string
	IsError bool
}

func (ToolResultPart) isPart() {}

// Message holds a role plus ordered heterogeneous content parts.
type Message struct {
	Role  Role
	Parts []Part
}

// NewUserMessage builds a single-text-part user message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Parts: []Part{TextPart{Text: text}}}
}

// NewAssistantMessage builds a single-text-part assistant message.
func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Parts: []Part{TextPart{Text: text}}}
}

// NewToolResultMessage wraps tool results into a user-role message, the shape
// providers expect tool outputs to be returned in.
func NewToolResultMessage(results ...ToolResultPart) Message {
	parts := make([]Part, 0, len(results))
	for _, r := range results {
		parts = append(parts, r)
	}
	return Message{Role: RoleUser, Parts: parts}
}

// TextContent concatenates all plain text parts preserving their order.
// Reasoning, tool-use and tool-result parts are excluded.
func (m Message) TextContent() string {
	var out string
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			out += tp.Text
		}
	}
	return out
}

// ToolUses returns any tool-use parts preserving their original order.
func (m Message) ToolUses() []ToolUsePart {
	var uses []ToolUsePart
	for _, p := range m.Parts {
		if tu, ok := p.(ToolUsePart); ok {
			uses = append(uses, tu)
		}
	}
	return uses
}

// ToolResults returns any tool-result parts preserving their original order.
func (m Message) ToolResults() []ToolResultPart {
	var results []ToolResultPart
	for _, p := range m.Parts {
		if tr, ok := p.(ToolResultPart); ok {
			results = append(results, tr)
		}
	}
	return results
}

// HasToolUse reports whether the message contains at least one tool-use part.
func (m Message) HasToolUse() bool {
	for _, p := range m.Parts {
		if _, ok := p.(ToolUsePart); ok {
			return true
		}
	}
	return false
}

// NewID generates a new unique identifier for tasks, messages and tool calls.
func NewID() string { return uuid.NewString() }
