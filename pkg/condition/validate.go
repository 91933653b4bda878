package condition

import (
	"regexp"
	"strings"

	"github.com/ccollicutt/siftlog/pkg/sifterr"
)

// ValidationResult is the validate_condition command's return value.
type ValidationResult struct {
	Valid       bool   `json:"valid"`
	Message     string `json:"message,omitempty"`
	Offset      int    `json:"offset,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

var whereWord = regexp.MustCompile(`(?i)\bWHERE\b`)

// Validate parses condition and reports a human-readable diagnostic on
// failure, per §4.3.3: unbalanced parentheses, unknown operator, trailing
// operator, empty IN list, unterminated string literal, a spurious WHERE
// keyword.
func Validate(cond string) ValidationResult {
	if _, err := Parse(cond); err != nil {
		result := ValidationResult{Valid: false, Offset: -1}

		var synErr *sifterr.SyntaxError
		if se, ok := err.(*sifterr.SyntaxError); ok {
			synErr = se
			result.Offset = se.Offset
			result.Message = se.Msg
		} else {
			result.Message = err.Error()
		}

		if whereWord.MatchString(cond) {
			result.Suggestions = append(result.Suggestions,
				"conditions do not use a leading WHERE keyword; start directly with the field path")
			if synErr == nil || strings.Contains(strings.ToUpper(result.Message), "PATH") ||
				strings.HasPrefix(strings.ToUpper(strings.TrimSpace(cond)), "WHERE") {
				result.Message = "unexpected \"WHERE\" keyword: " + result.Message
			}
		}
		if strings.Count(cond, "(") != strings.Count(cond, ")") {
			result.Suggestions = append(result.Suggestions, "parentheses are not balanced")
		}

		return result
	}
	return ValidationResult{Valid: true}
}
