package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()

	assert.Equal(t, models.CategoryInternalTransfer, rules.TransferCategory)
	assert.Equal(t, models.CategoryOtherIncome, rules.IncomeCategory)
	assert.Equal(t, models.CategoryUncategorized, rules.FallbackCategory)
	assert.Contains(t, rules.TransferPhrases, "VIREMENT INTERNE")
	require.NotEmpty(t, rules.Keywords)
	assert.Equal(t, "💰 Salaire", rules.Keywords[0].Name)
	assert.Equal(t, "🌐 Web/Énergie", rules.Keywords[len(rules.Keywords)-1].Name)
	assert.Len(t, rules.Synonyms, 5)
	assert.Contains(t, rules.DefaultCategories, models.CategoryUncategorized)
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "rules.yaml")
	writeFile(t, file, "keywords: []")

	s := NewRuleStore("", logging.NewMockLogger())

	found, err := s.FindConfigFile(file)
	require.NoError(t, err)
	assert.Equal(t, file, found)

	_, err = s.FindConfigFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRules(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		s := NewRuleStore(filepath.Join(t.TempDir(), "rules.yaml"), logging.NewMockLogger())
		rules, err := s.LoadRules()
		require.NoError(t, err)
		assert.Equal(t, DefaultRules(), rules)
	})

	t.Run("partial file keeps defaults for absent sections", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "rules.yaml")
		writeFile(t, file, `
transfer_phrases: ["virement epargne"]
keywords:
  - name: Courses
    keywords: [lidl, " aldi "]
  - name: Loisirs
    keywords: [cinema]
`)
		rules, err := NewRuleStore(file, logging.NewMockLogger()).LoadRules()
		require.NoError(t, err)

		assert.Equal(t, []string{"VIREMENT EPARGNE"}, rules.TransferPhrases)
		require.Len(t, rules.Keywords, 2)
		assert.Equal(t, []string{"LIDL", "ALDI"}, rules.Keywords[0].Keywords)
		assert.Equal(t, "Loisirs", rules.Keywords[1].Name)
		assert.Equal(t, models.CategoryInternalTransfer, rules.TransferCategory)
		assert.Equal(t, DefaultRules().Synonyms, rules.Synonyms)
	})

	t.Run("explicitly empty lists are kept empty", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "rules.yaml")
		writeFile(t, file, "transfer_phrases: []\nkeywords: []\n")
		rules, err := NewRuleStore(file, logging.NewMockLogger()).LoadRules()
		require.NoError(t, err)
		assert.Empty(t, rules.TransferPhrases)
		assert.Empty(t, rules.Keywords)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "rules.yaml")
		writeFile(t, file, "keywords: [unclosed")
		_, err := NewRuleStore(file, logging.NewMockLogger()).LoadRules()
		assert.Error(t, err)
	})

	t.Run("keyword entry without name", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "rules.yaml")
		writeFile(t, file, "keywords:\n  - keywords: [X]\n")
		_, err := NewRuleStore(file, logging.NewMockLogger()).LoadRules()
		assert.Error(t, err)
	})
}

func TestExportDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "rules.yaml")
	s := NewRuleStore(file, logging.NewMockLogger())

	require.NoError(t, s.ExportDefaults(file, false))
	assert.Error(t, s.ExportDefaults(file, false))
	require.NoError(t, s.ExportDefaults(file, true))

	rules, err := s.LoadRules()
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestCategoryCatalog(t *testing.T) {
	file := filepath.Join(t.TempDir(), "categories.txt")
	catalog := NewCategoryCatalog(file, []string{"Loyer", "Courses"})

	list, err := catalog.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Courses", "Loyer"}, list)

	added, err := catalog.Add("  Vacances ")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = catalog.Add("Loyer")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = catalog.Add(" ")
	assert.ErrorIs(t, err, parsererror.ErrEmptyCategory)

	list, err = catalog.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Courses", "Loyer", "Vacances"}, list)

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "Vacances\n", string(content))

	ok, err := catalog.Contains("Vacances")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGroupCatalog(t *testing.T) {
	file := filepath.Join(t.TempDir(), "groups.txt")
	groups := NewGroupCatalog(file)

	list, err := groups.List()
	require.NoError(t, err)
	assert.Equal(t, []string{models.DefaultGroup}, list)

	require.NoError(t, groups.Add("Commun"))
	require.NoError(t, groups.Add("Commun"))
	list, err = groups.List()
	require.NoError(t, err)
	assert.Equal(t, []string{models.DefaultGroup, "Commun"}, list)

	require.NoError(t, groups.Remove(models.DefaultGroup))
	first, err := groups.First()
	require.NoError(t, err)
	assert.Equal(t, "Commun", first)

	assert.True(t, errors.Is(groups.Remove("Commun"), parsererror.ErrLastGroup))
	assert.True(t, errors.Is(groups.Remove("Inconnu"), parsererror.ErrGroupNotFound))
	assert.ErrorIs(t, groups.Add(""), parsererror.ErrEmptyGroup)
}
