package tidy

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Rule maps senders (or a raw search query) to a label action.
//
// Exactly one matcher kind is used: when Query is set it wins over From.
// A rule with neither matcher, or without a label, is inert and skipped.
type Rule struct {
	Label   string   `json:"label"`
	From    []string `json:"from,omitempty"`
	Query   string   `json:"query,omitempty"`
	Archive *bool    `json:"archive,omitempty"`
}

// Inert reports whether the rule has no usable matcher and must be skipped.
func (r Rule) Inert() bool {
	return r.Label == "" || (len(r.From) == 0 && r.Query == "")
}

// ArchiveEnabled reports whether matched messages should also be removed
// from the inbox. Defaults to true when unset.
func (r Rule) ArchiveEnabled() bool {
	return r.Archive == nil || *r.Archive
}

// BuildQuery composes the search expression for the rule. Pattern rules
// become a brace group (logical OR over senders) conjoined with the inbox
// restriction; raw-query rules are used verbatim inside it.
func (r Rule) BuildQuery() string {
	if r.Query != "" {
		return "in:inbox " + r.Query
	}
	clauses := make([]string, 0, len(r.From))
	for _, p := range r.From {
		clauses = append(clauses, "from:"+p)
	}
	return fmt.Sprintf("in:inbox {%s}", strings.Join(clauses, " "))
}

// RuleConfig is the persisted rule file: {"rules": [...]}.
type RuleConfig struct {
	Rules []Rule `json:"rules"`
}

// LoadRules reads and parses the rule file. A missing or unparsable file is
// a fatal configuration error for the caller.
func LoadRules(path string) (*RuleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}
	var cfg RuleConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rule file %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the configuration back, preserving all rules. Untouched
// entries round-trip without data loss (key order may normalize).
func (c *RuleConfig) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode rule file: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write rule file %s: %w", path, err)
	}
	return nil
}

// AddSenderPattern merges a learned (label, sender pattern) pair into the
// configuration. If a rule with the same label exists (case-insensitive),
// the pattern is appended to it unless already present; otherwise a new
// rule is appended. Reports whether the configuration changed.
func (c *RuleConfig) AddSenderPattern(label, pattern string, archive bool) bool {
	for i := range c.Rules {
		if !strings.EqualFold(c.Rules[i].Label, label) {
			continue
		}
		for _, p := range c.Rules[i].From {
			if strings.EqualFold(p, pattern) {
				return false
			}
		}
		c.Rules[i].From = append(c.Rules[i].From, pattern)
		return true
	}
	rule := Rule{Label: label, From: []string{pattern}}
	if !archive {
		rule.Archive = &archive
	}
	c.Rules = append(c.Rules, rule)
	return true
}
