package domain

import "strings"

// SubstringMatcher reports the first of its terms contained in a text,
// ignoring case. It is a heuristic: aliases slip through, and a term inside a
// string literal or comment still counts.
type SubstringMatcher struct {
	terms []string
	upper []string
}

func NewSubstringMatcher(terms []string) *SubstringMatcher {
	m := &SubstringMatcher{}
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		m.terms = append(m.terms, t)
		m.upper = append(m.upper, strings.ToUpper(t))
	}
	return m
}

// Match returns the first term (in configured order) found in text.
func (m *SubstringMatcher) Match(text string) (string, bool) {
	upper := strings.ToUpper(text)
	for i, t := range m.upper {
		if strings.Contains(upper, t) {
			return m.terms[i], true
		}
	}
	return "", false
}

// Terms returns a copy of the configured terms.
func (m *SubstringMatcher) Terms() []string {
	return append([]string(nil), m.terms...)
}

// Matcher is the subset of port.TopicMatcher the validator needs. Declared
// here so domain does not import port.
type Matcher interface {
	Match(text string) (string, bool)
}

// RelevanceValidator accepts SQL that mentions at least one allow-listed table.
type RelevanceValidator struct {
	tables Matcher
}

func NewRelevanceValidator(tables Matcher) *RelevanceValidator {
	return &RelevanceValidator{tables: tables}
}

// Validate returns ErrEmptyQuery for blank SQL and ErrOffTopic when no
// allow-listed table name appears in it.
func (v *RelevanceValidator) Validate(sql string) error {
	if strings.TrimSpace(sql) == "" {
		return ErrEmptyQuery
	}
	if _, ok := v.tables.Match(sql); !ok {
		return ErrOffTopic
	}
	return nil
}

func (v *RelevanceValidator) IsRelevant(sql string) bool {
	return v.Validate(sql) == nil
}
