package team

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCoordinate_Empty(t *testing.T) {
	assert.Equal(t, "No tasks were executed.", Coordinate(nil, nil))
}

func TestCoordinate_Partitions(t *testing.T) {
	good := NewTask("summarize the report", 0)
	bad := NewTask("fetch the data", 1)
	results := []TaskResult{
		{TaskID: good.ID, Success: true, Output: "summary text", Metadata: map[string]string{"agent": "researcher"}},
		{TaskID: bad.ID, Success: false, Error: "connection refused"},
	}

	out := Coordinate([]*Task{good, bad}, results)

	assert.Contains(t, out, "## Successful Tasks")
	assert.Contains(t, out, "summarize the report (agent: researcher)")
	assert.Contains(t, out, "summary text")
	assert.Contains(t, out, "## Failed Tasks")
	assert.Contains(t, out, "fetch the data")
	assert.Contains(t, out, "Error: connection refused")
}

func TestCoordinate_OnlyFailures(t *testing.T) {
	task := NewTask("doomed", 0)
	out := Coordinate([]*Task{task}, []TaskResult{
		{TaskID: task.ID, Success: false, Error: "nope"},
	})

	assert.NotContains(t, out, "## Successful Tasks")
	assert.Contains(t, out, "## Failed Tasks")
}

func TestCoordinate_TruncatesLongOutput(t *testing.T) {
	task := NewTask("verbose", 0)
	long := strings.Repeat("x", 500)
	out := Coordinate([]*Task{task}, []TaskResult{
		{TaskID: task.ID, Success: true, Output: long, Metadata: map[string]string{"agent": "worker"}},
	})

	assert.Contains(t, out, strings.Repeat("x", outputPreviewLimit)+"...")
	assert.NotContains(t, out, strings.Repeat("x", outputPreviewLimit+1))
}

func TestCoordinate_PreviewKeepsRunesIntact(t *testing.T) {
	task := NewTask("multibyte output", 0)
	out := Coordinate([]*Task{task}, []TaskResult{
		{TaskID: task.ID, Success: true, Output: strings.Repeat("界", 100), Metadata: map[string]string{"agent": "worker"}},
	})

	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, "界")
	assert.Contains(t, out, "...")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "abc", truncateRunes("abc", 10))

	s := strings.Repeat("界", 3)
	assert.Equal(t, "界", truncateRunes(s, 5))
	assert.True(t, utf8.ValidString(truncateRunes(s, 4)))
}
