package catalog

import (
	"fmt"

	"github.com/guillermoBallester/asksql/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// Catalog holds operator-controlled configuration loaded from a YAML file:
// the table allow-list with business descriptions and column masks, the
// keyword-of-interest terms, and few-shot examples for the generation prompt.
type Catalog struct {
	Tables   []TableEntry     `yaml:"tables"`
	Keywords []string         `yaml:"keywords"`
	Examples []domain.Example `yaml:"examples"`
}

// TableEntry is one allow-listed table, qualified as schema.table.
type TableEntry struct {
	Name        string                   `yaml:"name"`
	Description string                   `yaml:"description"`
	Columns     map[string]ColumnContext `yaml:"columns"`
}

// ColumnContext holds a column's business description and optional mask directive.
type ColumnContext struct {
	Description string          `yaml:"description"`
	Mask        domain.MaskType `yaml:"mask,omitempty"`
}

// UnmarshalYAML supports both the struct format and the plain-string format.
//
//	columns:
//	  Phone: "Contact phone"        # plain string → ColumnContext{Description: "Contact phone"}
//	  EmailAddress:                 # struct with optional mask
//	    description: "Email"
//	    mask: "redact"
func (cc *ColumnContext) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		cc.Description = value.Value
		return nil
	}
	type alias ColumnContext
	var a alias
	if err := value.Decode(&a); err != nil {
		return fmt.Errorf("decoding column context: %w", err)
	}
	*cc = ColumnContext(a)
	return nil
}
