package catalog

import (
	"strings"

	"github.com/guillermoBallester/asksql/internal/core/domain"
)

// The accessors below are nil-safe: a nil or partial catalog falls back to
// the compiled-in defaults section by section.

// AllowList returns the qualified table names in file order.
func (c *Catalog) AllowList() []string {
	if c == nil || len(c.Tables) == 0 {
		return append([]string(nil), domain.DefaultAllowList...)
	}
	out := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		out[i] = strings.TrimSpace(t.Name)
	}
	return out
}

// TableNotes pairs every allow-listed table with its description.
func (c *Catalog) TableNotes() []domain.TableNote {
	if c == nil || len(c.Tables) == 0 {
		notes := make([]domain.TableNote, len(domain.DefaultAllowList))
		for i, name := range domain.DefaultAllowList {
			notes[i] = domain.TableNote{Name: name}
		}
		return notes
	}
	notes := make([]domain.TableNote, len(c.Tables))
	for i, t := range c.Tables {
		notes[i] = domain.TableNote{Name: strings.TrimSpace(t.Name), Description: t.Description}
	}
	return notes
}

// Masks extracts a column-name → mask map for query result masking.
func (c *Catalog) Masks() map[string]domain.MaskType {
	masks := make(map[string]domain.MaskType)
	if c == nil {
		return masks
	}
	for _, t := range c.Tables {
		for col, cc := range t.Columns {
			if cc.Mask != "" {
				masks[col] = cc.Mask
			}
		}
	}
	return masks
}

func (c *Catalog) KeywordTerms() []string {
	if c == nil || len(c.Keywords) == 0 {
		return append([]string(nil), domain.DefaultKeywords...)
	}
	out := make([]string, len(c.Keywords))
	for i, kw := range c.Keywords {
		out[i] = strings.TrimSpace(kw)
	}
	return out
}

func (c *Catalog) FewShot() []domain.Example {
	if c == nil || len(c.Examples) == 0 {
		return append([]domain.Example(nil), domain.DefaultExamples...)
	}
	return append([]domain.Example(nil), c.Examples...)
}
