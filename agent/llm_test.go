package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cordonlabs/cordon/core"
	"github.com/cordonlabs/cordon/model"
	"github.com/cordonlabs/cordon/retriever"
	"github.com/cordonlabs/cordon/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool(t *testing.T, calls *[]string) tool.Tool {
	t.Helper()
	return tool.NewFunctionTool(
		"echo",
		"Echo the input back",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			text := args["text"].(string)
			if calls != nil {
				*calls = append(*calls, text)
			}
			return "echo: " + text, nil
		},
	)
}

func toolUseReply(name, args string) core.Message {
	return core.Message{
		Role: core.RoleAssistant,
		Parts: []core.Part{
			core.ToolUsePart{ID: core.NewID(), Name: name, Arguments: args},
		},
	}
}

func TestLLMAgent_PlainReply(t *testing.T) {
	m := model.NewScriptedModel(core.NewAssistantMessage("hi there"))
	a := NewLLMAgent("helper", "general helper", m)

	reply, err := a.ProcessRequest(context.Background(), Request{Input: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply.TextContent())
	assert.Equal(t, 1, m.Calls())
}

func TestLLMAgent_ToolRound(t *testing.T) {
	var calls []string
	m := model.NewScriptedModel(
		toolUseReply("echo", `{"text":"ping"}`),
		core.NewAssistantMessage("done, the tool said echo: ping"),
	)
	a := NewLLMAgent("helper", "general helper", m, func(o *LLMAgentOptions) {
		o.Tools = map[string]tool.Tool{"echo": echoTool(t, &calls)}
	})

	reply, err := a.ProcessRequest(context.Background(), Request{Input: "use the tool"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ping"}, calls)
	assert.Contains(t, reply.TextContent(), "echo: ping")
	assert.Equal(t, 2, m.Calls())
}

func TestLLMAgent_RecursionBudget(t *testing.T) {
	// Script repeats its last entry, so the model requests tools forever.
	m := model.NewScriptedModel(toolUseReply("echo", `{"text":"again"}`))
	a := NewLLMAgent("looper", "loops", m, func(o *LLMAgentOptions) {
		o.Tools = map[string]tool.Tool{"echo": echoTool(t, nil)}
		o.MaxRecursions = 3
	})

	reply, err := a.ProcessRequest(context.Background(), Request{Input: "go"})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Calls())
	assert.Contains(t, reply.TextContent(), "Maximum tool recursion depth")
}

func TestLLMAgent_ToolFailurePropagates(t *testing.T) {
	failing := tool.NewFunctionTool(
		"broken",
		"Always fails",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, errors.New("no luck")
		},
	)
	m := model.NewScriptedModel(toolUseReply("broken", `{}`))
	a := NewLLMAgent("helper", "general helper", m, func(o *LLMAgentOptions) {
		o.Tools = map[string]tool.Tool{"broken": failing}
	})

	_, err := a.ProcessRequest(context.Background(), Request{Input: "try"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no luck")
}

func TestLLMAgent_ModelErrorPropagates(t *testing.T) {
	m := model.NewScriptedModel()
	m.FailWith(errors.New("api unavailable"))
	a := NewLLMAgent("helper", "general helper", m)

	_, err := a.ProcessRequest(context.Background(), Request{Input: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api unavailable")
}

func TestLLMAgent_RetrieverAugmentsPrompt(t *testing.T) {
	r := retriever.NewKeywordRetriever(1)
	r.Add(retriever.Document{ID: "1", Content: "Deployments roll out on Tuesdays."})

	m := model.NewScriptedModel(core.NewAssistantMessage("answered"))
	a := NewLLMAgent("helper", "general helper", m, func(o *LLMAgentOptions) {
		o.SystemPrompt = "You are {{NAME}}."
		o.SystemPromptVars = map[string]any{"NAME": "helper"}
		o.Retriever = r
	})

	_, err := a.ProcessRequest(context.Background(), Request{Input: "when do deployments happen"})
	require.NoError(t, err)
	// Retrieval must not alter the installed template itself.
	assert.Equal(t, "You are helper.", a.SystemPrompt())
}

func TestLLMAgent_StreamingTokens(t *testing.T) {
	var sb strings.Builder
	m := model.NewScriptedModel(core.NewAssistantMessage("abc"))
	a := NewLLMAgent("helper", "general helper", m, func(o *LLMAgentOptions) {
		o.Streaming = true
		o.OnToken = func(token string) { sb.WriteString(token) }
	})

	reply, err := a.ProcessRequest(context.Background(), Request{Input: "stream it"})
	require.NoError(t, err)
	assert.Equal(t, "abc", reply.TextContent())
	assert.Equal(t, "abc", sb.String())
}

func TestLLMAgent_SetToolConfigOnce(t *testing.T) {
	a := NewLLMAgent("helper", "general helper", model.NewScriptedModel())

	require.NoError(t, a.SetToolConfig(ToolConfig{Tools: map[string]tool.Tool{}}))
	err := a.SetToolConfig(ToolConfig{Tools: map[string]tool.Tool{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already set")
}

func TestCallableAgent(t *testing.T) {
	a, err := NewCallableAgent("upper", "uppercases input", func(_ context.Context, req Request) (string, error) {
		return strings.ToUpper(req.Input), nil
	})
	require.NoError(t, err)

	reply, err := a.ProcessRequest(context.Background(), Request{Input: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "HELLO", reply.TextContent())

	_, err = NewCallableAgent("bad", "nil fn", nil)
	require.Error(t, err)
}
