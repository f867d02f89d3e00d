package rules

type Kind string

const (
	KindKeyword Kind = "keyword"
	KindAuthor  Kind = "author"
)

type Rule struct {
	Kind    Kind
	Pattern string
}

// Set is an immutable snapshot of the configured matching rules.
// A new Set replaces the previous one wholesale on reload; no partial updates.
type Set struct {
	rules []Rule
}

func NewSet(rules []Rule) *Set {
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &Set{rules: copied}
}

func (s *Set) Rules() []Rule {
	copied := make([]Rule, len(s.rules))
	copy(copied, s.rules)
	return copied
}

func (s *Set) Len() int {
	return len(s.rules)
}

// Empty reports whether the set contains no rules. An empty set matches
// nothing: posts are dropped, never broadcast.
func (s *Set) Empty() bool {
	return len(s.rules) == 0
}

func (s *Set) CountByKind(kind Kind) int {
	count := 0
	for _, r := range s.rules {
		if r.Kind == kind {
			count++
		}
	}
	return count
}
