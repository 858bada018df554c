package logsweep

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule is one sweep definition in a rules file.
type Rule struct {
	// Name labels the rule in output. Optional; defaults to the path.
	Name string `yaml:"name"`
	// Path is the directory to sweep. Required.
	Path string `yaml:"path"`
	// Days is the age threshold. Omitted means DefaultDays.
	Days *int `yaml:"days"`
	// Extensions overrides the default suffix set.
	Extensions []string `yaml:"extensions"`
	// Recursive enables descending into subdirectories.
	Recursive bool `yaml:"recursive"`
}

// Label returns the rule's display name.
func (r Rule) Label() string {
	if r.Name != "" {
		return r.Name
	}

	return r.Path
}

// Options converts the rule into sweep options, applying defaults.
func (r Rule) Options() Options {
	days := DefaultDays
	if r.Days != nil {
		days = *r.Days
	}

	return Options{
		Path:       r.Path,
		Days:       days,
		Extensions: r.Extensions,
		Recursive:  r.Recursive,
	}
}

// RuleSet is the parsed form of a rules file.
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads and validates a YAML rules file.
func LoadRules(path string) (*RuleSet, error) {
	if path == "" {
		return nil, &ConfigError{Reason: "rules file path is required"}
	}

	if _, err := os.Stat(path); err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("rules file not found: %s", path)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var set RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	if err := set.validate(); err != nil {
		return nil, err
	}

	return &set, nil
}

func (s *RuleSet) validate() error {
	if len(s.Rules) == 0 {
		return &ConfigError{Reason: "rules file defines no rules"}
	}

	for i, rule := range s.Rules {
		if rule.Path == "" {
			return &ConfigError{Reason: fmt.Sprintf("rule %d (%s): path is required", i+1, rule.Label())}
		}

		if rule.Days != nil && *rule.Days < 0 {
			return &ConfigError{Reason: fmt.Sprintf("rule %d (%s): days cannot be negative", i+1, rule.Label())}
		}
	}

	return nil
}
