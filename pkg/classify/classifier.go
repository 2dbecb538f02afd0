package classify

import "strings"

// Rule pairs a category with the substrings that select it.
type Rule struct {
	Category string
	Keywords []string
}

// RuleSet is an ordered keyword classifier: rules are evaluated in order,
// the first rule with a matching keyword wins, and texts that match nothing
// fall back to a fixed category. Matching is case-insensitive substring
// containment, which keeps the rule lists swappable per language without
// touching callers.
type RuleSet struct {
	rules    []Rule
	fallback string
}

func NewRuleSet(fallback string, rules ...Rule) *RuleSet {
	return &RuleSet{rules: rules, fallback: fallback}
}

// Classify returns the category of the first matching rule, or the fallback.
func (rs *RuleSet) Classify(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range rs.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return rule.Category
			}
		}
	}
	return rs.fallback
}

// Matches reports whether any rule keyword occurs in the text.
func (rs *RuleSet) Matches(text string) bool {
	lower := strings.ToLower(text)
	for _, rule := range rs.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}
