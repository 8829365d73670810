package models

// Category represents a transaction category
type Category struct {
	Name        string
	Description string
}

// CategoryConfig is one entry of the ordered keyword table.
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// ColumnSynonyms lists the header spellings accepted for a canonical column.
type ColumnSynonyms struct {
	Field string   `yaml:"field"`
	Names []string `yaml:"names"`
}

// RuleSet is the classification and column-mapping vocabulary. It is data,
// loaded from the rules file, so that merchant names and bank phrasing can
// change without touching the code. Slice order is significant.
type RuleSet struct {
	TransferPhrases   []string         `yaml:"transfer_phrases"`
	TransferCategory  string           `yaml:"transfer_category"`
	IncomeCategory    string           `yaml:"income_category"`
	FallbackCategory  string           `yaml:"fallback_category"`
	Keywords          []CategoryConfig `yaml:"keywords"`
	Synonyms          []ColumnSynonyms `yaml:"synonyms"`
	DefaultCategories []string         `yaml:"default_categories"`
}

// CategoryNames returns every category named by the rule set, in order and
// without duplicates.
func (r RuleSet) CategoryNames() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, name := range r.DefaultCategories {
		add(name)
	}
	for _, kw := range r.Keywords {
		add(kw.Name)
	}
	add(r.TransferCategory)
	add(r.IncomeCategory)
	add(r.FallbackCategory)
	return names
}
