package util

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ReplacePlaceholders substitutes {{NAME}} markers in a prompt template with
// the matching variable value. Unknown markers are left untouched so partially
// resolved templates can be rendered again later (e.g. a supervisor filling
// {{AGENTS_MEMORY}} per request). Slice values are joined with newlines.
func ReplacePlaceholders(template string, variables map[string]any) string {
	if len(variables) == 0 || !strings.Contains(template, "{{") {
		return template
	}

	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		value, ok := variables[key]
		if !ok {
			return match
		}
		switch v := value.(type) {
		case string:
			return v
		case []string:
			return strings.Join(v, "\n")
		default:
			return fmt.Sprintf("%v", v)
		}
	})
}
