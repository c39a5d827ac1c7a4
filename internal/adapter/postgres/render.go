package postgres

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// renderTable lays rows out the way `sqlcmd -W -s <delim>` prints them: a
// header line, a dash line, one line per row, a blank line and the
// "(N rows affected)" footer.
func renderTable(columns []string, rows [][]string, delim string) string {
	var b strings.Builder

	b.WriteString(strings.Join(columns, delim))
	b.WriteByte('\n')

	dashes := make([]string, len(columns))
	for i, c := range columns {
		dashes[i] = strings.Repeat("-", max(utf8.RuneCountInString(c), 1))
	}
	b.WriteString(strings.Join(dashes, delim))
	b.WriteByte('\n')

	for _, row := range rows {
		b.WriteString(strings.Join(row, delim))
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\n(%d rows affected)", len(rows))
	return b.String()
}
