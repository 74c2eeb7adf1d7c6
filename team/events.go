package team

import "unicode/utf8"

// Progress event types emitted by the orchestration pipeline.
const (
	EventTaskSplitting        = "task_splitting"
	EventTasksCreated         = "tasks_created"
	EventTaskAssigned         = "task_assigned"
	EventTaskReassigned       = "task_reassigned"
	EventTaskAssignmentFailed = "task_assignment_failed"
	EventTaskStarted          = "task_started"
	EventCommandExecution     = "command_execution"
	EventTerminalOutput       = "terminal_output"
	EventTaskCompleted        = "task_completed"
	EventTaskFailed           = "task_failed"
)

// ProgressEvent describes one observable step of request processing.
// Events for a given task are emitted start -> (command events) ->
// completion-or-failure and never interleave with another task's events.
type ProgressEvent struct {
	Type    string `json:"type"`
	TaskID  string `json:"task_id,omitempty"`
	Agent   string `json:"agent,omitempty"`
	Message string `json:"message,omitempty"`
	// Output carries command/terminal output, truncated for event payloads.
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ProgressSink receives progress events. The engine never waits on the sink,
// so implementations must be non-blocking (or buffer internally).
type ProgressSink func(event ProgressEvent)

// eventOutputLimit truncates command output embedded in events; the stored
// TaskResult keeps the full output.
const eventOutputLimit = 500

func (t *Team) emit(event ProgressEvent) {
	if t.progress == nil {
		return
	}
	if len(event.Output) > eventOutputLimit {
		event.Output = truncateRunes(event.Output, eventOutputLimit) + "..."
	}
	t.progress(event)
}

// truncateRunes shortens s to at most limit bytes without splitting a
// multi-byte rune at the cut point.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
