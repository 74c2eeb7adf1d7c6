package cordon

import (
	"context"
	"testing"

	"github.com/cordonlabs/cordon/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCordon_PipelineWithoutClassifier(t *testing.T) {
	c := New()

	worker, err := agent.NewCallableAgent("worker", "handles everything", func(_ context.Context, req agent.Request) (string, error) {
		return "done: " + req.Input, nil
	})
	require.NoError(t, err)
	require.NoError(t, c.RegisterAgent(worker))

	out, err := c.HandleRequest(context.Background(), "first step. second step")
	require.NoError(t, err)

	assert.Contains(t, out, "## Successful Tasks")
	assert.Contains(t, out, "first step (agent: worker)")
	assert.Contains(t, out, "second step (agent: worker)")
	assert.Len(t, c.Team().Results(), 2)
}

func TestCordon_RouteAndRemove(t *testing.T) {
	c := New()

	research, err := agent.NewCallableAgent("researcher", "researches topics", func(_ context.Context, req agent.Request) (string, error) {
		return "findings on " + req.Input, nil
	})
	require.NoError(t, err)
	require.NoError(t, c.RegisterAgent(research))

	resp, err := c.Route(context.Background(), "research solar panels", "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "researcher", resp.AgentName)
	assert.Contains(t, resp.Output, "solar panels")

	require.NoError(t, c.RemoveAgent("researcher"))
	_, err = c.Route(context.Background(), "anything", "u1", "s1")
	require.Error(t, err)
}

func TestCordon_CommandsDisabledByDefault(t *testing.T) {
	c := New()

	worker, err := agent.NewCallableAgent("command_runner", "runs commands", func(_ context.Context, req agent.Request) (string, error) {
		return req.Input, nil
	})
	require.NoError(t, err)
	require.NoError(t, c.RegisterAgent(worker))

	out, err := c.HandleRequest(context.Background(), "run: echo hi")
	require.NoError(t, err)
	assert.Contains(t, out, "## Failed Tasks")
	assert.Contains(t, out, "disabled")
}
