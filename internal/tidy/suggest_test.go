package tidy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupKey(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		expected string
	}{
		{
			name:     "corporate sender groups by domain",
			from:     "news@acme.com",
			expected: "acme.com",
		},
		{
			name:     "display name form",
			from:     `"Acme News" <news@acme.com>`,
			expected: "acme.com",
		},
		{
			name:     "personal domain keeps full address",
			from:     "alice@gmail.com",
			expected: "alice@gmail.com",
		},
		{
			name:     "another personal sender stays distinct",
			from:     "bob@gmail.com",
			expected: "bob@gmail.com",
		},
		{
			name:     "mixed case normalized",
			from:     "News <News@ACME.com>",
			expected: "acme.com",
		},
		{
			name:     "subdomains are distinct domains",
			from:     "x@mail.acme.com",
			expected: "mail.acme.com",
		},
		{
			name:     "unparsable header",
			from:     "not an address",
			expected: "",
		},
		{
			name:     "empty header",
			from:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GroupKey(tt.from))
		})
	}
}

func TestSenderGroupDomain(t *testing.T) {
	assert.Equal(t, "acme.com", SenderGroup{Key: "acme.com"}.Domain())
	assert.Equal(t, "gmail.com", SenderGroup{Key: "alice@gmail.com"}.Domain())
}

func TestSuggestLabel(t *testing.T) {
	tests := []struct {
		name     string
		domain   string
		expected string
	}{
		{
			name:     "plain domain",
			domain:   "acme.com",
			expected: "Acme",
		},
		{
			name:     "generic prefix stripped",
			domain:   "notifications.amazon.com",
			expected: "Amazon",
		},
		{
			name:     "mail prefix stripped",
			domain:   "mail.my-shop.io",
			expected: "My-shop",
		},
		{
			name:     "only one prefix stripped",
			domain:   "mail.notifications.acme.com",
			expected: "Notifications",
		},
		{
			name:     "short generic prefix",
			domain:   "e.newsletter-weekly.com",
			expected: "Newsletter-weekly",
		},
		{
			name:     "uppercase input",
			domain:   "NEWS.ACME.COM",
			expected: "Acme",
		},
		{
			name:     "empty domain",
			domain:   "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SuggestLabel(tt.domain))
		})
	}
}

func TestGroupUncovered(t *testing.T) {
	messages := []MessageSummary{
		{ID: "m1", From: "news@acme.com"},
		{ID: "m2", From: "deals@acme.com"},
		{ID: "m3", From: "updates@acme.com"},
		{ID: "m4", From: "hello@shop.io"},
		{ID: "m5", From: "billing@covered.com"},
		{ID: "m6", From: "alice@gmail.com"},
		{ID: "m7", From: "bob@gmail.com"},
	}
	rules := []Rule{{Label: "Bills", From: []string{"covered.com"}}}

	groups := GroupUncovered(messages, rules)
	require.Len(t, groups, 4)

	assert.Equal(t, "acme.com", groups[0].Key, "most populous group first")
	assert.Len(t, groups[0].Messages, 3)

	// Ties keep first-encounter order.
	assert.Equal(t, "shop.io", groups[1].Key)
	assert.Equal(t, "alice@gmail.com", groups[2].Key)
	assert.Equal(t, "bob@gmail.com", groups[3].Key)
}

func TestGroupUncoveredCoverageMatching(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		rules   []Rule
		covered bool
	}{
		{
			name:    "pattern matches from header substring",
			from:    "Acme News <news@acme.com>",
			rules:   []Rule{{Label: "News", From: []string{"news@acme.com"}}},
			covered: true,
		},
		{
			name:    "pattern matches domain",
			from:    "anything@sub.acme.com",
			rules:   []Rule{{Label: "News", From: []string{"acme.com"}}},
			covered: true,
		},
		{
			name:    "case-insensitive",
			from:    "News <NEWS@ACME.COM>",
			rules:   []Rule{{Label: "News", From: []string{"acme.com"}}},
			covered: true,
		},
		{
			name:    "unrelated pattern",
			from:    "news@acme.com",
			rules:   []Rule{{Label: "Other", From: []string{"other.org"}}},
			covered: false,
		},
		{
			name:    "query-only rule never covers",
			from:    "news@acme.com",
			rules:   []Rule{{Label: "Old", Query: "older_than:1y"}},
			covered: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := GroupUncovered([]MessageSummary{{ID: "m1", From: tt.from}}, tt.rules)
			if tt.covered {
				assert.Empty(t, groups)
			} else {
				assert.Len(t, groups, 1)
			}
		})
	}
}

func TestGroupUncoveredSkipsUnparsableSenders(t *testing.T) {
	groups := GroupUncovered([]MessageSummary{{ID: "m1", From: "not an address"}}, nil)
	assert.Empty(t, groups)
}
