package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromFile reads a YAML catalog file and returns a validated Catalog.
func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}

	if err := validate(&cat); err != nil {
		return nil, fmt.Errorf("validating catalog: %w", err)
	}

	return &cat, nil
}

func validate(cat *Catalog) error {
	seen := make(map[string]bool, len(cat.Tables))
	for i, t := range cat.Tables {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return fmt.Errorf("tables[%d].name is empty", i)
		}
		key := strings.ToUpper(name)
		if seen[key] {
			return fmt.Errorf("tables[%d].name: duplicate table %q", i, name)
		}
		seen[key] = true
		for col, cc := range t.Columns {
			if col == "" {
				return fmt.Errorf("tables[%q].columns contains an empty key", name)
			}
			if !cc.Mask.Valid() {
				return fmt.Errorf("tables[%q].columns[%q].mask: invalid value %q (allowed: redact, hash, partial, null)", name, col, cc.Mask)
			}
		}
	}
	for i, kw := range cat.Keywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("keywords[%d] is empty", i)
		}
	}
	for i, ex := range cat.Examples {
		if strings.TrimSpace(ex.Question) == "" || strings.TrimSpace(ex.SQL) == "" {
			return fmt.Errorf("examples[%d] needs both question and sql", i)
		}
	}
	return nil
}
