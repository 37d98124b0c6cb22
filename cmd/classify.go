package cmd

import "strings"

// classifyPriority infers a task priority from its title using keyword heuristics.
// High keywords are checked before low keywords. Defaults to "medium".
func classifyPriority(title string) string {
	lower := strings.ToLower(title)

	highKeywords := []string{
		"critical", "urgent", "asap", "blocker", "today",
		"deadline", "overdue", "important", "must",
	}
	for _, kw := range highKeywords {
		if strings.Contains(lower, kw) {
			return "high"
		}
	}

	lowKeywords := []string{
		"someday", "maybe", "nice to have", "eventually",
		"low priority", "if time", "optional",
	}
	for _, kw := range lowKeywords {
		if strings.Contains(lower, kw) {
			return "low"
		}
	}

	return "medium"
}
