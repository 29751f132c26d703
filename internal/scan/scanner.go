package scan

import (
	"regexp"
	"strings"

	"github.com/ericfisherdev/jenkinsinsights/internal/domain/model"
)

// dedupWindow is how close (in lines) two same-category matches must be for
// the later one to be dropped as part of the same stack trace or log burst.
const dedupWindow = 5

// Issue is one classified console line. Line numbers are 1-based.
type Issue struct {
	Line     int
	Text     string
	Type     string
	Severity model.Severity
}

// Scan tests every pattern against every line of text. The first matching
// pattern wins, so a line is never multi-labeled. Issues come back in line
// order with their text trimmed.
func Scan(text string, patterns []Pattern) []Issue {
	var issues []Issue
	for i, line := range strings.Split(text, "\n") {
		for _, p := range patterns {
			if p.re.MatchString(line) {
				issues = append(issues, Issue{
					Line:     i + 1,
					Text:     strings.TrimSpace(line),
					Type:     p.Type,
					Severity: p.Severity,
				})
				break
			}
		}
	}
	return issues
}

// ScanOptimized produces the same issues as Scan but first filters
// candidate lines with a single combined regex, so most lines of a large
// log are rejected by one match attempt instead of one per pattern.
func ScanOptimized(text string, patterns []Pattern) []Issue {
	combined := combine(patterns)

	var issues []Issue
	for i, line := range strings.Split(text, "\n") {
		if !combined.MatchString(line) {
			continue
		}
		for _, p := range patterns {
			if p.re.MatchString(line) {
				issues = append(issues, Issue{
					Line:     i + 1,
					Text:     strings.TrimSpace(line),
					Type:     p.Type,
					Severity: p.Severity,
				})
				break
			}
		}
	}
	return issues
}

// combine builds the logical OR of all pattern sources.
func combine(patterns []Pattern) *regexp.Regexp {
	sources := make([]string, 0, len(patterns))
	for _, p := range patterns {
		sources = append(sources, p.Expr)
	}
	return regexp.MustCompile("(?i)" + strings.Join(sources, "|"))
}

// Deduplicate collapses bursts of same-category matches: a match is dropped
// when it shares a category with the most recently kept match and sits
// within dedupWindow lines of it. Only the last kept match is compared
// against, so a long stack trace collapses to its first line.
func Deduplicate(issues []Issue) []Issue {
	if len(issues) == 0 {
		return issues
	}

	kept := make([]Issue, 0, len(issues))
	var lastType string
	var lastLine int

	for _, issue := range issues {
		if issue.Type == lastType && issue.Line-lastLine <= dedupWindow {
			continue
		}
		kept = append(kept, issue)
		lastType = issue.Type
		lastLine = issue.Line
	}
	return kept
}
