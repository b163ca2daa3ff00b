// Package strings shortens tool output and error messages for terminal
// display.
package strings

import (
	"strconv"
	"strings"
)

// DefaultSummaryLen is the default maximum length of a one-line summary.
const DefaultSummaryLen = 60

// MinSummaryLen is the minimum maxLen value for Summarize.
// Values smaller than this would not leave room for content plus "...".
const MinSummaryLen = 4

// Summarize collapses s onto a single line and truncates it to maxLen runes,
// ending with "..." when truncated. maxLen is clamped to MinSummaryLen.
func Summarize(s string, maxLen int) string {
	if maxLen < MinSummaryLen {
		maxLen = MinSummaryLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// Tail returns the last n non-blank lines of s. When lines were dropped the
// result starts with a marker saying how many.
func Tail(s string, n int) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if n <= 0 || len(lines) <= n {
		return strings.Join(lines, "\n")
	}

	dropped := len(lines) - n
	return "... (" + strconv.Itoa(dropped) + " earlier lines omitted)\n" + strings.Join(lines[dropped:], "\n")
}
