package feed

import (
	"fmt"
	"strings"

	"delphiwatch/app/rules"
)

// Matcher decides whether a post is interesting under the current rule set.
// Pure: no I/O, no side effects. Any upstream filtering the forum's search API
// might do is treated as an optimization; this is the authoritative check.
type Matcher struct{}

func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match reports whether the post satisfies at least one rule, and which
// pattern matched. Keyword rules are case-insensitive substring checks against
// title and excerpt; author rules are case-insensitive equality against the
// author display name. An empty set matches nothing.
func (m *Matcher) Match(post Post, set *rules.Set) (bool, string) {
	if set == nil || set.Empty() {
		return false, ""
	}

	for _, rule := range set.Rules() {
		switch rule.Kind {
		case rules.KindKeyword:
			if containsFold(post.Title, rule.Pattern) || containsFold(post.Excerpt, rule.Pattern) {
				return true, fmt.Sprintf("keyword '%s'", rule.Pattern)
			}
		case rules.KindAuthor:
			if strings.EqualFold(post.Author, rule.Pattern) {
				return true, fmt.Sprintf("author '%s'", rule.Pattern)
			}
		}
	}

	return false, ""
}

func containsFold(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}
