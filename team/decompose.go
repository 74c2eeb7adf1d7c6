package team

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cordonlabs/cordon/agent"
)

// taskSpec is the classifier's JSON shape for one decomposed task.
type taskSpec struct {
	Description   string `json:"description"`
	AssignedAgent string `json:"assigned_agent"`
	Priority      int    `json:"priority"`
}

var (
	jsonArrayPattern  = regexp.MustCompile(`(?s)\[.*\]`)
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	codeFencePattern  = regexp.MustCompile("(?m)^```[a-zA-Z]*\\s*$")
)

// Decompose turns one request into an ordered task list. It prefers the
// classifier agent's structured output; any classifier or parse failure
// degrades to the deterministic sentence splitter, never to an error.
func (t *Team) Decompose(ctx context.Context, request string) []*Task {
	t.mu.RLock()
	classifier := t.classifier
	t.mu.RUnlock()

	if classifier == nil {
		t.logger.Debug("team.decompose.no_classifier")
		return fallbackSplit(request)
	}

	prompt := t.decompositionPrompt(request)
	reply, err := classifier.ProcessRequest(ctx, agent.Request{Input: prompt})
	if err != nil {
		t.logger.Warn("team.decompose.classifier_failed", "error", err.Error())
		return fallbackSplit(request)
	}

	specs, err := parseTaskSpecs(reply.TextContent())
	if err != nil {
		t.logger.Warn("team.decompose.parse_failed", "error", err.Error())
		return fallbackSplit(request)
	}

	sort.SliceStable(specs, func(i, j int) bool { return specs[i].Priority < specs[j].Priority })

	tasks := make([]*Task, 0, len(specs))
	for _, spec := range specs {
		desc := strings.TrimSpace(spec.Description)
		if desc == "" {
			continue
		}
		task := NewTask(desc, spec.Priority)
		task.AssignedAgent = spec.AssignedAgent
		tasks = append(tasks, task)
	}
	if len(tasks) == 0 {
		return fallbackSplit(request)
	}
	return tasks
}

// decompositionPrompt enumerates the roster and demands a bare JSON array.
func (t *Team) decompositionPrompt(request string) string {
	var sb strings.Builder
	sb.WriteString("Break the following request into an ordered list of subtasks.\n\n")
	sb.WriteString("Available agents:\n")
	t.mu.RLock()
	for _, name := range t.order {
		fmt.Fprintf(&sb, "- %s: %s\n", name, t.agents[name].Description())
	}
	t.mu.RUnlock()
	sb.WriteString("\nRequest: ")
	sb.WriteString(request)
	sb.WriteString("\n\nRespond with ONLY a JSON array of objects shaped like\n")
	sb.WriteString(`[{"description": "...", "assigned_agent": "...", "priority": 0}]`)
	sb.WriteString("\nwhere priority orders the tasks (lower runs first). No other text.")
	return sb.String()
}

// parseTaskSpecs extracts the task array from free-form model text.
// It tries, in order: the first bracketed JSON array, a lone JSON object
// wrapped into an array, then one retry with markdown code fences stripped.
func parseTaskSpecs(raw string) ([]taskSpec, error) {
	specs, err := parseOnce(raw)
	if err == nil {
		return specs, nil
	}

	stripped := codeFencePattern.ReplaceAllString(raw, "")
	if stripped != raw {
		return parseOnce(stripped)
	}
	return nil, err
}

func parseOnce(raw string) ([]taskSpec, error) {
	if match := jsonArrayPattern.FindString(raw); match != "" {
		var specs []taskSpec
		if err := json.Unmarshal([]byte(match), &specs); err == nil {
			return specs, nil
		}
	}
	if match := jsonObjectPattern.FindString(raw); match != "" {
		var spec taskSpec
		if err := json.Unmarshal([]byte(match), &spec); err == nil {
			return []taskSpec{spec}, nil
		}
	}
	return nil, fmt.Errorf("no parsable task JSON in classifier output")
}

// fallbackSplit deterministically splits the request on sentence boundaries,
// producing one unassigned task per non-empty fragment.
func fallbackSplit(request string) []*Task {
	var tasks []*Task
	for _, fragment := range strings.Split(request, ".") {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		tasks = append(tasks, NewTask(fragment, len(tasks)))
	}
	return tasks
}
