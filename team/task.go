// Package team implements the task orchestration engine: it decomposes a
// user request into subtasks, assigns each to a registered agent, executes
// them strictly in order and merges the outcomes into one reply.
package team

import (
	"time"

	"github.com/cordonlabs/cordon/core"
)

// Status is the lifecycle state of a Task. Transitions are one-directional:
// Pending -> Running -> Completed or Failed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Task is one decomposed unit of work. Tasks are created by the decomposer
// and mutated only by the execution engine; one task is in flight at a time.
type Task struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	// AssignedAgent names the agent that should execute this task.
	// Empty means unassigned.
	AssignedAgent string `json:"assigned_agent,omitempty"`
	Status        Status `json:"status"`
	// Priority orders tasks within one decomposition batch, lower first.
	Priority     int        `json:"priority"`
	OutputData   string     `json:"output_data,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// NewTask creates a pending task.
func NewTask(description string, priority int) *Task {
	return &Task{
		ID:          core.NewID(),
		Description: description,
		Status:      StatusPending,
		Priority:    priority,
		CreatedAt:   time.Now(),
	}
}

// TaskResult is the immutable outcome record for one task. Results are
// produced in task order, one per task.
type TaskResult struct {
	TaskID  string `json:"task_id"`
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
	// Metadata carries at minimum the executing agent's name under "agent".
	Metadata map[string]string `json:"metadata,omitempty"`
}

// RoutedResponse is the outcome of routing one request directly to a single
// agent instead of the decompose/execute pipeline.
type RoutedResponse struct {
	AgentName string `json:"agent_name"`
	Output    string `json:"output"`
}
