package scan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/jenkinsinsights/internal/domain/model"
)

// patternYAML is one entry of an operator-supplied catalog file.
type patternYAML struct {
	Pattern  string `yaml:"pattern"`
	Type     string `yaml:"type"`
	Severity string `yaml:"severity"`
}

// LoadCatalogFile reads extra patterns from a YAML file. Entries are
// returned in file order; callers append them to one of the built-in
// catalogs, so file order decides their precedence among themselves.
func LoadCatalogFile(path string) ([]Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern catalog %s: %w", path, err)
	}

	var entries []patternYAML
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse pattern catalog %s: %w", path, err)
	}

	patterns := make([]Pattern, 0, len(entries))
	for i, e := range entries {
		if e.Pattern == "" || e.Type == "" {
			return nil, fmt.Errorf("pattern catalog %s: entry %d: pattern and type are required", path, i+1)
		}
		p, err := NewPattern(e.Pattern, e.Type, model.Severity(e.Severity))
		if err != nil {
			return nil, fmt.Errorf("pattern catalog %s: entry %d: %w", path, i+1, err)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}
