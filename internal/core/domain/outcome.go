package domain

import (
	"regexp"
	"strings"
)

// ResultKind classifies what an execution produced.
type ResultKind string

const (
	ResultRows            ResultKind = "rows"
	ResultNoResults       ResultKind = "no_results"
	ResultKeywordMismatch ResultKind = "keyword_mismatch"
	ResultSQLError        ResultKind = "sql_error"
	ResultDryRun          ResultKind = "dry_run"
)

// ExecutionResult is the outcome of running one generated query. Only
// ResultRows carries text that may be summarized.
type ExecutionResult struct {
	Kind    ResultKind
	Text    string
	Keyword string
}

// Usable reports whether the result may be handed to the summarizer.
func (r ExecutionResult) Usable() bool {
	return r.Kind == ResultRows
}

const rowsAffectedFooter = "rows affected"

var zeroRowsFooter = regexp.MustCompile(`(?i)^\(\s*0\s+rows?\s+affected\s*\)$`)

// ClassifyOutput turns raw tabular output from the database client into an
// ExecutionResult. The layout is the sqlcmd one: header, separator, data
// lines, then an "(N rows affected)" footer.
func ClassifyOutput(output, keyword string) ExecutionResult {
	if strings.TrimSpace(output) == "" ||
		!strings.Contains(strings.ToLower(output), rowsAffectedFooter) {
		return ExecutionResult{Kind: ResultNoResults, Keyword: keyword}
	}

	lines := nonBlankLines(output)
	if len(lines) <= 2 {
		return ExecutionResult{Kind: ResultNoResults, Keyword: keyword}
	}

	var data []string
	for _, l := range lines[2:] {
		if zeroRowsFooter.MatchString(l) {
			return ExecutionResult{Kind: ResultNoResults, Keyword: keyword}
		}
		if isFooter(l) {
			continue
		}
		data = append(data, l)
	}

	if keyword != "" {
		kw := strings.ToLower(keyword)
		found := false
		for _, l := range data {
			if strings.Contains(strings.ToLower(l), kw) {
				found = true
				break
			}
		}
		if !found {
			return ExecutionResult{Kind: ResultKeywordMismatch, Keyword: keyword}
		}
	}

	return ExecutionResult{Kind: ResultRows, Text: output, Keyword: keyword}
}

func isFooter(line string) bool {
	return strings.HasPrefix(line, "(") && strings.Contains(strings.ToLower(line), rowsAffectedFooter)
}

func nonBlankLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
