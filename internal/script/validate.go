package script

import (
	"fmt"
	"strings"

	"aircheck/internal/content"
)

// Result reports structural validation of a sanitized script.
type Result struct {
	OK         bool
	WordCount  int
	Violations []string
}

// Validate checks a sanitized script against the structural rules of
// its content policy. It does not judge quality; that is the audit's
// job.
func Validate(text string, policy content.Policy) Result {
	result := Result{WordCount: WordCount(text)}

	if strings.TrimSpace(text) == "" {
		result.Violations = append(result.Violations, "script is empty")
		return result
	}
	if policy.MinWords > 0 && result.WordCount < policy.MinWords {
		result.Violations = append(result.Violations,
			fmt.Sprintf("too short: %d words, minimum %d", result.WordCount, policy.MinWords))
	}
	if policy.MaxWords > 0 && result.WordCount > policy.MaxWords {
		result.Violations = append(result.Violations,
			fmt.Sprintf("too long: %d words, maximum %d", result.WordCount, policy.MaxWords))
	}
	if strings.ContainsAny(text, "*#[]`") {
		result.Violations = append(result.Violations, "markup characters remain after sanitizing")
	}
	result.OK = len(result.Violations) == 0
	return result
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
