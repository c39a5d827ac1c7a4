package postgres

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/guillermoBallester/asksql/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// rowsToTable drains rows into column names and text cells.
func rowsToTable(rows pgx.Rows) ([]string, [][]string, error) {
	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}

	var table [][]string
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, nil, fmt.Errorf("reading row values: %w", err)
		}
		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = formatCell(v)
		}
		table = append(table, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating rows: %w", err)
	}
	return columns, table, nil
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return domain.NullCell
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		if val {
			return "1"
		}
		return "0"
	case time.Time:
		return val.Format("2006-01-02 15:04:05.000")
	case [16]byte:
		return uuid.UUID(val).String()
	case driver.Valuer:
		// pgtype values (numeric, interval, ...) render through their driver value.
		dv, err := val.Value()
		if err != nil {
			return fmt.Sprint(v)
		}
		return formatCell(dv)
	default:
		return fmt.Sprint(val)
	}
}
