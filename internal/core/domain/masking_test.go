package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskType_Valid(t *testing.T) {
	t.Parallel()
	for _, mt := range []MaskType{"", MaskRedact, MaskHash, MaskPartial, MaskNull} {
		assert.True(t, mt.Valid(), "expected %q to be valid", mt)
	}
	for _, mt := range []MaskType{"encrypt", "REDACT", "sha256"} {
		assert.False(t, mt.Valid(), "expected %q to be invalid", mt)
	}
}

func TestMaskCell(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "***", MaskCell("ana@adventure-works.com", MaskRedact))
	assert.Len(t, MaskCell("ana@adventure-works.com", MaskHash), 64)
	assert.Equal(t, MaskCell("x", MaskHash), MaskCell("x", MaskHash))
	assert.Equal(t, "********1234", MaskCell("555-123-1234", MaskPartial))
	assert.Equal(t, "***abc", MaskCell("abc", MaskPartial))
	assert.Equal(t, "*andú", MaskCell("ñandú", MaskPartial))
	assert.Equal(t, NullCell, MaskCell("secret", MaskNull))
	assert.Equal(t, NullCell, MaskCell(NullCell, MaskRedact))
	assert.Equal(t, "plain", MaskCell("plain", ""))
}

func TestMaskColumns(t *testing.T) {
	t.Parallel()
	cols := []string{"FirstName", "EmailAddress"}
	rows := [][]string{
		{"Orlando", "orlando0@adventure-works.com"},
		{"Keith", NullCell},
	}
	MaskColumns(cols, rows, map[string]MaskType{"EmailAddress": MaskRedact})

	assert.Equal(t, "Orlando", rows[0][0])
	assert.Equal(t, "***", rows[0][1])
	assert.Equal(t, NullCell, rows[1][1])
}
