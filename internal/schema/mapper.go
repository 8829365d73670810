package schema

import (
	"strings"

	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/textutils"
)

// DefaultSynonyms is the column vocabulary used when the rules file does not
// provide one.
var DefaultSynonyms = []models.ColumnSynonyms{
	{Field: models.ColumnDate, Names: []string{
		"Date", "Date opération", "Date de valeur", "Effective Date", "Date op", "Date val",
		"Le", "Date de comptabilisation", "Date operation",
	}},
	{Field: models.ColumnName, Names: []string{
		"Nom", "Libelle simplifie", "Libellé", "Description", "Transaction",
		"Libellé de l'opération", "Détails", "Objet", "Type",
	}},
	{Field: models.ColumnAmount, Names: []string{
		"Montant", "Montant(EUROS)", "Valeur", "Amount", "Prix", "Montant net", "Somme",
	}},
	{Field: models.ColumnDebit, Names: []string{"Debit", "Débit"}},
	{Field: models.ColumnCredit, Names: []string{"Credit", "Crédit"}},
}

// Mapper renames source columns to canonical field names.
type Mapper struct {
	lookup map[string]string
}

// NewMapper builds a Mapper from an ordered synonym table. When a spelling
// is listed under several fields the first field wins.
func NewMapper(synonyms []models.ColumnSynonyms) *Mapper {
	if len(synonyms) == 0 {
		synonyms = DefaultSynonyms
	}
	m := &Mapper{lookup: make(map[string]string)}
	for _, entry := range synonyms {
		spellings := append([]string{entry.Field}, entry.Names...)
		for _, name := range spellings {
			key := textutils.NormalizeToken(name)
			if _, taken := m.lookup[key]; !taken && key != "" {
				m.lookup[key] = entry.Field
			}
		}
	}
	return m
}

// Canonical returns the canonical name for a source column, or the trimmed
// source name when no synonym matches.
func (m *Mapper) Canonical(column string) string {
	column = strings.TrimSpace(column)
	if field, ok := m.lookup[textutils.NormalizeToken(column)]; ok {
		return field
	}
	return column
}

// Mapping is a header after renaming. Column positions refer to the raw
// records of the file.
type Mapping struct {
	// Columns lists the kept column names in file order.
	Columns []string
	index   map[string]int
}

// Map renames every column. Whole names are compared, ignoring case and
// accents. When two columns end up with the same name only the first is kept.
func (m *Mapper) Map(columns []string) Mapping {
	mapping := Mapping{index: make(map[string]int, len(columns))}
	for i, column := range columns {
		name := m.Canonical(column)
		if _, dup := mapping.index[name]; dup {
			continue
		}
		mapping.index[name] = i
		mapping.Columns = append(mapping.Columns, name)
	}
	return mapping
}

// Has reports whether a column survived mapping under name.
func (mp Mapping) Has(name string) bool {
	_, ok := mp.index[name]
	return ok
}

// Value returns the trimmed cell of record under column name, or "" when the
// column is unknown or the record is short.
func (mp Mapping) Value(record []string, name string) string {
	i, ok := mp.index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// DescriptionColumn returns the column holding the transaction description:
// Name when mapped, otherwise the column at fallbackIndex, otherwise the
// first column.
func (mp Mapping) DescriptionColumn(fallbackIndex int) string {
	if mp.Has(models.ColumnName) {
		return models.ColumnName
	}
	if fallbackIndex >= 0 && fallbackIndex < len(mp.Columns) {
		return mp.Columns[fallbackIndex]
	}
	if len(mp.Columns) > 0 {
		return mp.Columns[0]
	}
	return ""
}

// HasAmount reports whether a single signed amount column is mapped.
func (mp Mapping) HasAmount() bool {
	return mp.Has(models.ColumnAmount)
}

// HasDebitCredit reports whether both a debit and a credit column are mapped.
func (mp Mapping) HasDebitCredit() bool {
	return mp.Has(models.ColumnDebit) && mp.Has(models.ColumnCredit)
}
