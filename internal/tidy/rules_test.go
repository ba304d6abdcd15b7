package tidy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleInert(t *testing.T) {
	tests := []struct {
		name     string
		rule     Rule
		expected bool
	}{
		{
			name:     "no label",
			rule:     Rule{From: []string{"a@b.com"}},
			expected: true,
		},
		{
			name:     "no matcher",
			rule:     Rule{Label: "News"},
			expected: true,
		},
		{
			name:     "from matcher",
			rule:     Rule{Label: "News", From: []string{"a@b.com"}},
			expected: false,
		},
		{
			name:     "query matcher",
			rule:     Rule{Label: "Old", Query: "older_than:1y"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.rule.Inert())
		})
	}
}

func TestRuleBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		rule     Rule
		expected string
	}{
		{
			name:     "single sender",
			rule:     Rule{Label: "News", From: []string{"news@acme.com"}},
			expected: "in:inbox {from:news@acme.com}",
		},
		{
			name:     "multiple senders",
			rule:     Rule{Label: "News", From: []string{"a@x.com", "b@y.com"}},
			expected: "in:inbox {from:a@x.com from:b@y.com}",
		},
		{
			name:     "raw query",
			rule:     Rule{Label: "Old", Query: "older_than:1y label:promotions"},
			expected: "in:inbox older_than:1y label:promotions",
		},
		{
			name:     "query wins over from",
			rule:     Rule{Label: "Old", From: []string{"a@x.com"}, Query: "is:unread"},
			expected: "in:inbox is:unread",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.rule.BuildQuery())
		})
	}
}

func TestRuleArchiveEnabled(t *testing.T) {
	yes := true
	no := false

	assert.True(t, Rule{}.ArchiveEnabled(), "unset defaults to true")
	assert.True(t, Rule{Archive: &yes}.ArchiveEnabled())
	assert.False(t, Rule{Archive: &no}.ArchiveEnabled())
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tidy-rules.json")

	content := `{
  "rules": [
    {"label": "Newsletters", "from": ["news@acme.com", "updates@shop.io"]},
    {"label": "Receipts", "from": ["billing@acme.com"], "archive": false},
    {"label": "Old promos", "query": "older_than:1y label:promotions"}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 3)

	assert.Equal(t, "Newsletters", cfg.Rules[0].Label)
	assert.Equal(t, []string{"news@acme.com", "updates@shop.io"}, cfg.Rules[0].From)
	assert.True(t, cfg.Rules[0].ArchiveEnabled())

	require.NotNil(t, cfg.Rules[1].Archive)
	assert.False(t, *cfg.Rules[1].Archive)

	assert.Equal(t, "older_than:1y label:promotions", cfg.Rules[2].Query)
}

func TestLoadRulesMissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadRulesInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{rules:"), 0644))

	_, err := LoadRules(path)
	assert.Error(t, err)
}

func TestRuleConfigSaveRoundTrip(t *testing.T) {
	no := false
	original := &RuleConfig{Rules: []Rule{
		{Label: "Newsletters", From: []string{"news@acme.com"}},
		{Label: "Receipts", From: []string{"billing@acme.com"}, Archive: &no},
		{Label: "Old", Query: "older_than:1y"},
	}}

	path := filepath.Join(t.TempDir(), "tidy-rules.json")
	require.NoError(t, original.Save(path))

	loaded, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, original.Rules, loaded.Rules)
}

func TestAddSenderPattern(t *testing.T) {
	tests := []struct {
		name          string
		initial       []Rule
		label         string
		pattern       string
		archive       bool
		changed       bool
		expectedRules int
	}{
		{
			name:          "new rule",
			initial:       nil,
			label:         "Acme",
			pattern:       "acme.com",
			archive:       true,
			changed:       true,
			expectedRules: 1,
		},
		{
			name:          "merge into existing label case-insensitively",
			initial:       []Rule{{Label: "acme", From: []string{"news@acme.com"}}},
			label:         "Acme",
			pattern:       "acme.com",
			archive:       true,
			changed:       true,
			expectedRules: 1,
		},
		{
			name:          "duplicate pattern is a no-op",
			initial:       []Rule{{Label: "Acme", From: []string{"ACME.com"}}},
			label:         "Acme",
			pattern:       "acme.com",
			archive:       true,
			changed:       false,
			expectedRules: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &RuleConfig{Rules: tt.initial}
			changed := cfg.AddSenderPattern(tt.label, tt.pattern, tt.archive)
			assert.Equal(t, tt.changed, changed)
			assert.Len(t, cfg.Rules, tt.expectedRules)
		})
	}
}

func TestAddSenderPatternPreservesArchiveChoice(t *testing.T) {
	cfg := &RuleConfig{}

	cfg.AddSenderPattern("Keep", "keep.com", false)
	require.Len(t, cfg.Rules, 1)
	require.NotNil(t, cfg.Rules[0].Archive)
	assert.False(t, *cfg.Rules[0].Archive)

	cfg.AddSenderPattern("File", "file.com", true)
	require.Len(t, cfg.Rules, 2)
	assert.Nil(t, cfg.Rules[1].Archive, "archive=true stays the implicit default")
}
