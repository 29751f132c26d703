// Package scan classifies console log text against ordered error-pattern
// catalogs and masks sensitive values before the text leaves the server.
package scan

import (
	"fmt"
	"regexp"

	"github.com/ericfisherdev/jenkinsinsights/internal/domain/model"
)

// Pattern is one classification rule: a case-insensitive regular expression
// with a category key and a severity.
type Pattern struct {
	Expr     string
	Type     string
	Severity model.Severity

	re *regexp.Regexp
}

// NewPattern compiles expr case-insensitively and validates the severity.
func NewPattern(expr, typ string, severity model.Severity) (Pattern, error) {
	switch severity {
	case model.SeverityHigh, model.SeverityMedium, model.SeverityLow:
	default:
		return Pattern{}, fmt.Errorf("pattern %q: invalid severity %q", typ, severity)
	}

	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern %q: %w", typ, err)
	}
	return Pattern{Expr: expr, Type: typ, Severity: severity, re: re}, nil
}

func mustPattern(expr, typ string, severity model.Severity) Pattern {
	p, err := NewPattern(expr, typ, severity)
	if err != nil {
		panic(err)
	}
	return p
}

// detailedCatalog is ordered high, then medium, then low severity; within a
// scan the first matching pattern wins, so order is significant.
var detailedCatalog = []Pattern{
	mustPattern(`exception in thread|java\.lang\.[a-z]+exception`, "java", model.SeverityHigh),
	mustPattern(`out of memory|java\.lang\.outofmemoryerror`, "memory", model.SeverityHigh),
	mustPattern(`fatal error|build failed|build terminated`, "build", model.SeverityHigh),
	mustPattern(`segmentation fault|core dumped`, "system", model.SeverityHigh),

	mustPattern(`error:|failure:|failed:`, "general", model.SeverityMedium),
	mustPattern(`npm err!|cannot find module|syntax error`, "javascript", model.SeverityMedium),
	mustPattern(`importerror:|modulenotfounderror:|syntaxerror:`, "python", model.SeverityMedium),
	mustPattern(`connection refused|timeout|unreachable`, "network", model.SeverityMedium),
	mustPattern(`permission denied|access denied|unauthorized`, "permission", model.SeverityMedium),

	mustPattern(`warning:|deprecated:`, "warning", model.SeverityLow),
	mustPattern(`could not find|not found`, "missing", model.SeverityLow),
}

// quickCatalog is the smaller ruleset used by the URL troubleshooting path.
// It is intentionally kept separate from the detailed catalog; call sites
// select between the two.
var quickCatalog = []Pattern{
	mustPattern(`exception in thread|java\.lang\.[a-z]+exception`, "java", model.SeverityHigh),
	mustPattern(`error:|exception:|failure:|failed:`, "general", model.SeverityMedium),
	mustPattern(`warning:`, "warning", model.SeverityLow),
}

// Detailed returns the full multi-category pattern catalog. Callers must
// not modify the returned slice.
func Detailed() []Pattern {
	return detailedCatalog
}

// Quick returns the three-rule catalog for quick scans. Callers must not
// modify the returned slice.
func Quick() []Pattern {
	return quickCatalog
}
