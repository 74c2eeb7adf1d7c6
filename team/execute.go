package team

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cordonlabs/cordon/agent"
)

// ExecuteSequential runs tasks strictly in input order and returns one
// result per task, same order. Failures are recorded per task and never
// abort the pipeline. Cancellation is checked between tasks; once the
// context is done the remaining tasks fail without executing.
func (t *Team) ExecuteSequential(ctx context.Context, tasks []*Task) []TaskResult {
	results := make([]TaskResult, 0, len(tasks))
	for _, task := range tasks {
		results = append(results, t.executeOne(ctx, task))
	}
	return results
}

func (t *Team) executeOne(ctx context.Context, task *Task) TaskResult {
	now := time.Now()
	task.Status = StatusRunning
	task.StartedAt = &now

	if err := ctx.Err(); err != nil {
		return t.failTask(task, fmt.Sprintf("canceled before execution: %v", err))
	}

	if task.AssignedAgent == "" {
		return t.failTask(task, "no agent assigned to task")
	}

	t.mu.RLock()
	a, known := t.agents[task.AssignedAgent]
	t.mu.RUnlock()
	if !known {
		return t.failTask(task, fmt.Sprintf("assigned agent %q is not registered", task.AssignedAgent))
	}

	t.emit(ProgressEvent{
		Type:    EventTaskStarted,
		TaskID:  task.ID,
		Agent:   task.AssignedAgent,
		Message: task.Description,
	})

	t.setBusy(task.AssignedAgent, true)
	defer t.setBusy(task.AssignedAgent, false)

	var output string
	var err error
	if isCommandTask(task.Description) {
		command, found := extractCommand(task.Description)
		if !found {
			return t.failTask(task, "no command found in task")
		}
		output, err = t.runCommand(ctx, task, command)
	} else {
		output, err = t.runAgent(ctx, task, a)
	}

	if err != nil {
		return t.failTask(task, err.Error())
	}

	done := time.Now()
	task.Status = StatusCompleted
	task.OutputData = output
	task.CompletedAt = &done

	t.emit(ProgressEvent{
		Type:    EventTaskCompleted,
		TaskID:  task.ID,
		Agent:   task.AssignedAgent,
		Output:  output,
		Message: "task completed",
	})

	return TaskResult{
		TaskID:   task.ID,
		Success:  true,
		Output:   output,
		Metadata: map[string]string{"agent": task.AssignedAgent},
	}
}

// runCommand executes a command task through the sandbox.
func (t *Team) runCommand(ctx context.Context, task *Task, command string) (string, error) {
	t.emit(ProgressEvent{
		Type:    EventCommandExecution,
		TaskID:  task.ID,
		Agent:   task.AssignedAgent,
		Message: command,
	})

	result := t.sandbox.Run(ctx, command)

	t.emit(ProgressEvent{
		Type:   EventTerminalOutput,
		TaskID: task.ID,
		Agent:  task.AssignedAgent,
		Output: result.Output(),
	})

	if !result.Success {
		return "", fmt.Errorf("command failed (exit %d): %s", result.ExitCode, result.Output())
	}
	return result.Stdout, nil
}

// runAgent executes a regular task through the assigned agent's model path.
// Each task gets a synthetic identity and an empty history: inter-task
// context flows only through task descriptions and outputs.
func (t *Team) runAgent(ctx context.Context, task *Task, a agent.Agent) (string, error) {
	reply, err := a.ProcessRequest(ctx, agent.Request{
		Input:     task.Description,
		UserID:    "task_user",
		SessionID: "task_" + task.ID,
	})
	if err != nil {
		return "", err
	}
	return reply.TextContent(), nil
}

func (t *Team) failTask(task *Task, errMsg string) TaskResult {
	done := time.Now()
	task.Status = StatusFailed
	task.ErrorMessage = errMsg
	task.CompletedAt = &done

	t.emit(ProgressEvent{
		Type:   EventTaskFailed,
		TaskID: task.ID,
		Agent:  task.AssignedAgent,
		Error:  errMsg,
	})
	t.logger.Warn("team.task.failed", "task_id", task.ID, "error", errMsg)

	result := TaskResult{TaskID: task.ID, Success: false, Error: errMsg}
	if task.AssignedAgent != "" {
		result.Metadata = map[string]string{"agent": task.AssignedAgent}
	}
	return result
}

func (t *Team) setBusy(name string, busy bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, known := t.busy[name]; known {
		t.busy[name] = busy
	}
}

// Busy reports whether the named agent is currently executing a task.
func (t *Team) Busy(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.busy[name]
}

var commandMarkers = []string{"run:", "execute:"}

// isCommandTask detects descriptions meant for the sandbox: an explicit
// "run:"/"execute:" marker, or command phrasing without one (which fails
// later with "no command found" rather than going to an agent).
func isCommandTask(description string) bool {
	lower := strings.ToLower(description)
	for _, marker := range commandMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return strings.Contains(lower, "command")
}

// extractCommand returns the command line after a "run:" or "execute:"
// marker. Descriptions without a marker carry no command, no matter what
// other colons they contain.
func extractCommand(description string) (string, bool) {
	lower := strings.ToLower(description)
	for _, marker := range commandMarkers {
		if idx := strings.Index(lower, marker); idx >= 0 {
			return strings.TrimSpace(description[idx+len(marker):]), true
		}
	}
	return "", false
}
