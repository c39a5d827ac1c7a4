package domain

import (
	"regexp"
	"strings"
)

// Step is a single named text transform applied to raw model output.
type Step struct {
	Name  string
	Apply func(string) string
}

// DefaultSteps is the cleanup chain applied to generated SQL, in order.
var DefaultSteps = []Step{
	{Name: "strip-fences", Apply: StripFences},
	{Name: "trim", Apply: strings.TrimSpace},
	{Name: "cut-to-select", Apply: CutToSelect},
	{Name: "repair-aggregate", Apply: RepairAggregate},
}

// PostProcess runs raw generation text through DefaultSteps.
func PostProcess(raw string) string {
	return RunSteps(raw, DefaultSteps)
}

// RunSteps applies steps in order, feeding each output into the next.
func RunSteps(text string, steps []Step) string {
	for _, s := range steps {
		text = s.Apply(text)
	}
	return text
}

var (
	fencePattern = regexp.MustCompile("(?i)```(sql)?")

	// Lead-in phrases models prepend despite being told not to.
	leadInPattern = regexp.MustCompile(`(?i)(the answer would be:|la respuesta ser[ií]a:|aqu[ií] tienes:|respuesta:|response:|sql:)`)
)

// StripFences removes markdown code fences and known boilerplate lead-ins.
func StripFences(s string) string {
	s = fencePattern.ReplaceAllString(s, "")
	return leadInPattern.ReplaceAllString(s, "")
}

// CutToSelect drops everything before the first SELECT keyword. The search is
// case-insensitive; the kept text keeps its original case. Text without a
// SELECT is returned unchanged.
func CutToSelect(s string) string {
	// ToUpper may change byte lengths for some non-ASCII runes, so search
	// with an ASCII-only fold to keep indexes aligned with s.
	idx := indexFoldASCII(s, "SELECT")
	if idx < 0 {
		return s
	}
	return s[idx:]
}

func indexFoldASCII(s, upperNeedle string) int {
	n := len(upperNeedle)
	for i := 0; i+n <= len(s); i++ {
		match := true
		for j := 0; j < n; j++ {
			c := s[i+j]
			if 'a' <= c && c <= 'z' {
				c -= 'a' - 'A'
			}
			if c != upperNeedle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

var aggregatePattern = regexp.MustCompile(`(?i)\b(SUM|AVG|MIN|MAX|COUNT)\s+([A-Za-z_][A-Za-z0-9_.]*)`)

// A function word right after AS or BY is an alias being referenced, not a call.
var aliasContext = regexp.MustCompile(`(?i)\b(AS|BY)\s*$`)

var aggregateReserved = map[string]bool{
	"DISTINCT": true, "ALL": true, "AS": true, "FROM": true,
	"ASC": true, "DESC": true, "CASE": true, "WHEN": true, "THEN": true,
	"ELSE": true, "END": true, "WHERE": true, "GROUP": true, "ORDER": true,
	"BY": true, "ON": true, "JOIN": true, "TOP": true, "HAVING": true,
	"AND": true, "OR": true, "NOT": true, "NULL": true, "LIMIT": true,
	"UNION": true, "INNER": true, "LEFT": true, "RIGHT": true, "OVER": true,
}

// RepairAggregate rewrites the one malformation shape "FUNC col" (parentheses
// omitted) into "FUNC(col)". Keywords are never captured and aliases named
// like a function are left alone. It is idempotent.
func RepairAggregate(s string) string {
	matches := aggregatePattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		fn, col := s[m[2]:m[3]], s[m[4]:m[5]]
		if aggregateReserved[strings.ToUpper(col)] || aliasContext.MatchString(s[:m[0]]) {
			continue
		}
		sb.WriteString(s[last:m[0]])
		sb.WriteString(fn + "(" + col + ")")
		last = m[1]
	}
	sb.WriteString(s[last:])
	return sb.String()
}
