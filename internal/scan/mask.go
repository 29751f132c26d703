package scan

import "regexp"

// maskRules cover the value-assignment shapes that leak credentials into
// console logs, plus bearer Authorization headers. The field name survives
// masking so the log still reads sensibly.
var maskRules = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)password=['"][^'"]*['"]?`), `password="****"`},
	{regexp.MustCompile(`(?i)token=['"][^'"]*['"]?`), `token="****"`},
	{regexp.MustCompile(`(?i)key=['"][^'"]*['"]?`), `key="****"`},
	{regexp.MustCompile(`(?i)secret=['"][^'"]*['"]?`), `secret="****"`},
	{regexp.MustCompile(`(?i)credential=['"][^'"]*['"]?`), `credential="****"`},
	{regexp.MustCompile(`(?i)authorization:\s*bearer\s+[^\s]+`), `Authorization: Bearer ****`},
}

// MaskSensitiveData replaces credential value assignments and bearer tokens
// with a fixed mask. Applied to any console text before it is surfaced
// externally.
func MaskSensitiveData(text string) string {
	if text == "" {
		return ""
	}
	for _, rule := range maskRules {
		text = rule.re.ReplaceAllString(text, rule.replacement)
	}
	return text
}
