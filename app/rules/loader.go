package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type rulesFile struct {
	Keywords []string `yaml:"keywords"`
	Authors  []string `yaml:"authors"`
}

// Load reads and validates a rules file. A file that lists no rules at all is
// valid and yields an empty set.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var parsed rulesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	set, err := build(&parsed)
	if err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}

	return set, nil
}

func build(parsed *rulesFile) (*Set, error) {
	rules := make([]Rule, 0, len(parsed.Keywords)+len(parsed.Authors))

	for i, keyword := range parsed.Keywords {
		pattern := strings.TrimSpace(keyword)
		if pattern == "" {
			return nil, fmt.Errorf("keyword at index %d is empty", i)
		}
		rules = append(rules, Rule{Kind: KindKeyword, Pattern: pattern})
	}

	for i, author := range parsed.Authors {
		pattern := strings.TrimSpace(author)
		if pattern == "" {
			return nil, fmt.Errorf("author at index %d is empty", i)
		}
		rules = append(rules, Rule{Kind: KindAuthor, Pattern: pattern})
	}

	return NewSet(rules), nil
}
