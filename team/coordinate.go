package team

import (
	"fmt"
	"strings"
)

// outputPreviewLimit bounds task output embedded in the final report.
const outputPreviewLimit = 200

// Coordinate merges task results into the final human-readable reply,
// partitioned into successful and failed sections. Pure aggregation, no
// recovery. Tasks and results correspond by index.
func Coordinate(tasks []*Task, results []TaskResult) string {
	if len(results) == 0 {
		return "No tasks were executed."
	}

	descriptions := make(map[string]string, len(tasks))
	for _, task := range tasks {
		descriptions[task.ID] = task.Description
	}

	var succeeded, failed []TaskResult
	for _, r := range results {
		if r.Success {
			succeeded = append(succeeded, r)
		} else {
			failed = append(failed, r)
		}
	}

	var sb strings.Builder

	if len(succeeded) > 0 {
		sb.WriteString("## Successful Tasks\n\n")
		for _, r := range succeeded {
			fmt.Fprintf(&sb, "- %s (agent: %s)\n", descriptions[r.TaskID], r.Metadata["agent"])
			if preview := previewOutput(r.Output); preview != "" {
				fmt.Fprintf(&sb, "  %s\n", preview)
			}
		}
	}

	if len(failed) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("## Failed Tasks\n\n")
		for _, r := range failed {
			fmt.Fprintf(&sb, "- %s\n  Error: %s\n", descriptions[r.TaskID], r.Error)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func previewOutput(output string) string {
	output = strings.TrimSpace(output)
	if len(output) > outputPreviewLimit {
		return truncateRunes(output, outputPreviewLimit) + "..."
	}
	return output
}
