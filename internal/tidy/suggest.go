package tidy

import (
	"net/mail"
	"sort"
	"strings"
	"unicode"
)

// personalDomains enumerates large personal-mail providers. Senders on
// these domains are grouped by their full address so distinct individuals
// on the same free provider are never merged.
var personalDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
	"yahoo.com":      true,
	"hotmail.com":    true,
	"outlook.com":    true,
	"live.com":       true,
	"icloud.com":     true,
	"me.com":         true,
	"aol.com":        true,
	"proton.me":      true,
	"protonmail.com": true,
	"gmx.de":         true,
	"gmx.net":        true,
	"web.de":         true,
}

// genericPrefixes lists subdomain prefixes stripped before deriving a label
// suggestion from a domain. Only the first matching prefix is stripped,
// never iteratively.
var genericPrefixes = []string{
	"mail.",
	"email.",
	"mailer.",
	"news.",
	"newsletters.",
	"newsletter.",
	"notifications.",
	"notification.",
	"notify.",
	"no-reply.",
	"noreply.",
	"reply.",
	"info.",
	"updates.",
	"update.",
	"alerts.",
	"alert.",
	"hello.",
	"support.",
	"marketing.",
	"promo.",
	"bounces.",
	"bounce.",
	"em.",
	"e.",
	"m.",
	"mg.",
	"mta.",
}

// SenderGroup is a cluster of messages sharing a grouping key: the bare
// sender address for personal-mail domains, otherwise the sending domain.
type SenderGroup struct {
	Key      string
	Messages []MessageSummary
}

// Domain returns the domain the group's key refers to.
func (g SenderGroup) Domain() string {
	if at := strings.LastIndexByte(g.Key, '@'); at >= 0 {
		return g.Key[at+1:]
	}
	return g.Key
}

// senderAddress extracts the bare, lowercased email address from a From
// header value like `"Name" <user@Example.COM>`. Returns empty when no
// address can be parsed.
func senderAddress(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil || addr == nil {
		// Fall back to a crude scan for an addr-spec token.
		for _, field := range strings.Fields(from) {
			field = strings.Trim(field, "<>\",;")
			if strings.Count(field, "@") == 1 {
				return strings.ToLower(field)
			}
		}
		return ""
	}
	return strings.ToLower(strings.TrimSpace(addr.Address))
}

// GroupKey derives the deterministic grouping key for a From header value:
// the full bare address for senders on personal-mail domains, else the
// sending domain. Returns empty for unparsable headers.
func GroupKey(from string) string {
	address := senderAddress(from)
	if address == "" {
		return ""
	}
	at := strings.LastIndexByte(address, '@')
	if at < 0 {
		return ""
	}
	domain := address[at+1:]
	if personalDomains[domain] {
		return address
	}
	return domain
}

// coveredByRules reports whether a message's From header or extracted
// domain is already matched by any rule's sender patterns. Matching is a
// case-insensitive substring test, intentionally liberal so senders already
// handled are never re-suggested.
func coveredByRules(from string, rules []Rule) bool {
	fromLower := strings.ToLower(from)
	domain := ""
	if address := senderAddress(from); address != "" {
		if at := strings.LastIndexByte(address, '@'); at >= 0 {
			domain = address[at+1:]
		}
	}

	for _, rule := range rules {
		for _, pattern := range rule.From {
			p := strings.ToLower(pattern)
			if p == "" {
				continue
			}
			if strings.Contains(fromLower, p) {
				return true
			}
			if domain != "" && strings.Contains(domain, p) {
				return true
			}
		}
	}
	return false
}

// GroupUncovered clusters messages not covered by any existing rule into
// sender groups, most populous first. Ties preserve first-encounter order.
func GroupUncovered(messages []MessageSummary, rules []Rule) []SenderGroup {
	index := make(map[string]int)
	var groups []SenderGroup

	for _, m := range messages {
		if coveredByRules(m.From, rules) {
			continue
		}
		key := GroupKey(m.From)
		if key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, SenderGroup{Key: key})
		}
		groups[i].Messages = append(groups[i].Messages, m)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return len(groups[a].Messages) > len(groups[b].Messages)
	})
	return groups
}

// SuggestLabel proposes a label name for a domain: strip one generic
// subdomain prefix (first match wins), take the first remaining
// dot-separated segment, capitalize it. A heuristic only; always confirmed
// by the operator before use.
func SuggestLabel(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	for _, prefix := range genericPrefixes {
		if strings.HasPrefix(domain, prefix) && len(domain) > len(prefix) {
			domain = domain[len(prefix):]
			break
		}
	}

	segment := domain
	if dot := strings.IndexByte(domain, '.'); dot > 0 {
		segment = domain[:dot]
	}
	if segment == "" {
		return ""
	}

	runes := []rune(segment)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
