package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplacePlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]any
		want     string
	}{
		{
			name:     "simple substitution",
			template: "Hello {{NAME}}, welcome to {{PLACE}}.",
			vars:     map[string]any{"NAME": "Ada", "PLACE": "the lab"},
			want:     "Hello Ada, welcome to the lab.",
		},
		{
			name:     "unknown markers left intact",
			template: "Known {{A}} unknown {{MISSING}}",
			vars:     map[string]any{"A": "yes"},
			want:     "Known yes unknown {{MISSING}}",
		},
		{
			name:     "string slice joined with newlines",
			template: "Items:\n{{ITEMS}}",
			vars:     map[string]any{"ITEMS": []string{"one", "two"}},
			want:     "Items:\none\ntwo",
		},
		{
			name:     "non-string values formatted",
			template: "Count: {{N}}",
			vars:     map[string]any{"N": 3},
			want:     "Count: 3",
		},
		{
			name:     "nil vars",
			template: "Nothing {{HERE}}",
			vars:     nil,
			want:     "Nothing {{HERE}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReplacePlaceholders(tt.template, tt.vars))
		})
	}
}
