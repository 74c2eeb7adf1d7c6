package team

import "strings"

// matchRule pairs description keywords with an agent-name fragment.
// Rules are tried in order; the first rule whose keywords appear in the
// description and whose fragment appears in a registered agent's name wins.
type matchRule struct {
	keywords     []string
	nameFragment string
}

var matchRules = []matchRule{
	{keywords: []string{"research", "analyze", "analyse"}, nameFragment: "research"},
	{keywords: []string{"code", "program", "develop", "write"}, nameFragment: "coder"},
	{keywords: []string{"run", "execute", "command"}, nameFragment: "command"},
}

// Assign resolves each task to a concrete agent, mutating tasks in place.
// A task naming a known agent keeps it; an unknown name is recomputed via
// the keyword heuristics; an unmatched task falls back to the first
// available agent. Tasks that still cannot be assigned stay unassigned and
// are reported through a progress event (non-fatal; execution skips them).
func (t *Team) Assign(tasks []*Task) {
	var events []ProgressEvent

	t.mu.Lock()
	for _, task := range tasks {
		if task.AssignedAgent != "" {
			if _, known := t.agents[task.AssignedAgent]; known {
				events = append(events, ProgressEvent{
					Type:    EventTaskAssigned,
					TaskID:  task.ID,
					Agent:   task.AssignedAgent,
					Message: "classifier assignment accepted",
				})
				continue
			}
			t.logger.Warn("team.assign.unknown_agent",
				"task_id", task.ID, "agent", task.AssignedAgent)
			task.AssignedAgent = ""
		}

		if name := t.matchAgentLocked(task.Description); name != "" {
			task.AssignedAgent = name
			events = append(events, ProgressEvent{
				Type:    EventTaskReassigned,
				TaskID:  task.ID,
				Agent:   name,
				Message: "assigned via keyword match",
			})
			continue
		}

		if name := t.firstAvailableLocked(); name != "" {
			task.AssignedAgent = name
			events = append(events, ProgressEvent{
				Type:    EventTaskReassigned,
				TaskID:  task.ID,
				Agent:   name,
				Message: "assigned to first available agent",
			})
			continue
		}

		events = append(events, ProgressEvent{
			Type:    EventTaskAssignmentFailed,
			TaskID:  task.ID,
			Message: "no agent available for task",
		})
		t.logger.Warn("team.assign.failed", "task_id", task.ID)
	}
	t.mu.Unlock()

	for _, event := range events {
		t.emit(event)
	}
}

// matchAgentLocked applies the keyword heuristics. Caller holds t.mu.
func (t *Team) matchAgentLocked(description string) string {
	desc := strings.ToLower(description)
	for _, rule := range matchRules {
		if !containsAny(desc, rule.keywords) {
			continue
		}
		for _, name := range t.order {
			if strings.Contains(strings.ToLower(name), rule.nameFragment) {
				return name
			}
		}
	}
	return ""
}

// firstAvailableLocked returns the first registered agent not marked busy.
// Caller holds t.mu.
func (t *Team) firstAvailableLocked() string {
	for _, name := range t.order {
		if !t.busy[name] {
			return name
		}
	}
	return ""
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
