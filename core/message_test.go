package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_TextContent(t *testing.T) {
	msg := Message{
		Role: RoleAssistant,
		Parts: []Part{
			TextPart{Text: "Hello, "},
			ReasoningPart{Text: "thinking..."},
			TextPart{Text: "world"},
			ToolUsePart{ID: "tc-1", Name: "lookup", Arguments: `{"q":"x"}`},
		},
	}

	assert.Equal(t, "Hello, world", msg.TextContent())
}

func TestMessage_ToolUses(t *testing.T) {
	tests := []struct {
		name     string
		msg      Message
		expected int
	}{
		{
			name:     "plain text message has no tool uses",
			msg:      NewAssistantMessage("done"),
			expected: 0,
		},
		{
			name: "mixed content preserves tool use order",
			msg: Message{
				Role: RoleAssistant,
				Parts: []Part{
					TextPart{Text: "running tools"},
					ToolUsePart{ID: "a", Name: "first"},
					ToolUsePart{ID: "b", Name: "second"},
				},
			},
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uses := tt.msg.ToolUses()
			require.Len(t, uses, tt.expected)
			if tt.expected == 2 {
				assert.Equal(t, "first", uses[0].Name)
				assert.Equal(t, "second", uses[1].Name)
			}
			assert.Equal(t, tt.expected > 0, tt.msg.HasToolUse())
		})
	}
}

func TestNewToolResultMessage(t *testing.T) {
	msg := NewToolResultMessage(
		ToolResultPart{ID: "a", Name: "first", Content: "ok"},
		ToolResultPart{ID: "b", Name: "second", Content: "boom", IsError: true},
	)

	assert.Equal(t, RoleUser, msg.Role)
	results := msg.ToolResults()
	require.Len(t, results, 2)
	assert.True(t, results[1].IsError)
}

func TestNewID_Unique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}
