package domain

import (
	"crypto/sha256"
	"fmt"
)

// MaskType is a column masking strategy declared in the catalog file.
type MaskType string

const (
	MaskRedact  MaskType = "redact"
	MaskHash    MaskType = "hash"
	MaskPartial MaskType = "partial"
	MaskNull    MaskType = "null"
)

// Valid accepts the known strategies and "" (no mask).
func (m MaskType) Valid() bool {
	switch m {
	case MaskRedact, MaskHash, MaskPartial, MaskNull, "":
		return true
	}
	return false
}

// MaskCell transforms one rendered cell. NULL cells stay NULL.
func MaskCell(cell string, mask MaskType) string {
	if cell == NullCell {
		return cell
	}
	switch mask {
	case MaskRedact:
		return "***"
	case MaskHash:
		return fmt.Sprintf("%x", sha256.Sum256([]byte(cell)))
	case MaskPartial:
		return maskPartial(cell)
	case MaskNull:
		return NullCell
	default:
		return cell
	}
}

// NullCell is how SQL NULL is rendered in tabular output.
const NullCell = "NULL"

// maskPartial keeps the last 4 runes visible.
func maskPartial(s string) string {
	runes := []rune(s)
	if len(runes) <= 4 {
		return "***" + s
	}
	for i := 0; i < len(runes)-4; i++ {
		runes[i] = '*'
	}
	return string(runes)
}

// MaskColumns applies masks (keyed by column name) to rows in place.
func MaskColumns(columns []string, rows [][]string, masks map[string]MaskType) {
	if len(masks) == 0 {
		return
	}
	for i, col := range columns {
		mask, ok := masks[col]
		if !ok {
			continue
		}
		for _, row := range rows {
			if i < len(row) {
				row[i] = MaskCell(row[i], mask)
			}
		}
	}
}
