package model

import (
	"context"
	"errors"
	"testing"

	"github.com/cordonlabs/cordon/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateSync(t *testing.T, m Model, req Request) (Response, []string, error) {
	t.Helper()

	out, errCh := m.Generate(context.Background(), req)
	var final Response
	var deltas []string
	for resp := range out {
		if resp.Partial {
			deltas = append(deltas, resp.Delta)
			continue
		}
		final = resp
	}
	return final, deltas, <-errCh
}

func TestScriptedModel_ReplaysScript(t *testing.T) {
	m := NewScriptedModel(
		core.NewAssistantMessage("first"),
		core.NewAssistantMessage("second"),
	)
	req := Request{Messages: []core.Message{core.NewUserMessage("hi")}}

	final, _, err := generateSync(t, m, req)
	require.NoError(t, err)
	assert.Equal(t, "first", final.Message.TextContent())
	assert.Equal(t, "stop", final.StopReason)

	final, _, err = generateSync(t, m, req)
	require.NoError(t, err)
	assert.Equal(t, "second", final.Message.TextContent())

	// Exhausted script repeats the last entry.
	final, _, err = generateSync(t, m, req)
	require.NoError(t, err)
	assert.Equal(t, "second", final.Message.TextContent())
	assert.Equal(t, 3, m.Calls())
}

func TestScriptedModel_ToolUseStopReason(t *testing.T) {
	m := NewScriptedModel(core.Message{
		Role: core.RoleAssistant,
		Parts: []core.Part{
			core.ToolUsePart{ID: "t1", Name: "lookup", Arguments: "{}"},
		},
	})

	final, _, err := generateSync(t, m, Request{Messages: []core.Message{core.NewUserMessage("go")}})
	require.NoError(t, err)
	assert.Equal(t, "tool_use", final.StopReason)
	assert.True(t, final.Message.HasToolUse())
}

func TestScriptedModel_Streaming(t *testing.T) {
	m := NewScriptedModel(core.NewAssistantMessage("abc"))

	final, deltas, err := generateSync(t, m, Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
		Stream:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, deltas)
	assert.Equal(t, "abc", final.Message.TextContent())
}

func TestScriptedModel_FailWith(t *testing.T) {
	m := NewScriptedModel(core.NewAssistantMessage("never seen"))
	m.FailWith(errors.New("provider outage"))

	_, _, err := generateSync(t, m, Request{Messages: []core.Message{core.NewUserMessage("hi")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider outage")
}
