// Package tool implements the function / tool calling subsystem that lets agents
// invoke structured capabilities (APIs, computations, side-effects) with schema
// validated arguments, consistent error handling and rich metadata for LLM guidance.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cordonlabs/cordon/internal/util"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tools can be registered with agents to enable function calling, allowing
// agents to perform actions beyond text generation such as API calls, calculations,
// shell commands, or any other programmatic operations.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Handle errors gracefully
//   - Be thread-safe if used concurrently
type Tool interface {
	// Name returns the unique identifier for this tool.
	// Names should be descriptive and follow function naming conventions (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this tool does.
	// This description is provided to the LLM to help it understand when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	// This schema is used for parameter validation and LLM function calling.
	Parameters() map[string]any

	// Call executes the tool with structured arguments.
	// Arguments are parsed from JSON and validated against the tool's schema.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// Execute looks up a tool by name in the registry, decodes its raw JSON
// arguments and invokes it. The result is rendered as a string suitable
// for feeding back to the model as a tool result.
func Execute(ctx context.Context, registry map[string]Tool, name, rawArgs string) (string, error) {
	t, ok := registry[name]
	if !ok {
		return "", NewToolError(name, "tool not found", "UNKNOWN_TOOL")
	}

	args := map[string]any{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return "", &ToolError{
				Tool:    name,
				Message: fmt.Sprintf("invalid tool arguments: %v", err),
				Code:    "VALIDATION_ERROR",
				Details: rawArgs,
			}
		}
	}

	result, err := t.Call(ctx, args)
	if err != nil {
		return "", err
	}

	return Stringify(result), nil
}

// Stringify renders a tool result as text. Strings pass through unchanged,
// everything else is JSON encoded with a fmt fallback.
func Stringify(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", v)
	}
}
