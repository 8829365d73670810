// Package store provides the small file-backed stores around the ledger:
// the rules file, the learning map and the category and group catalogs.
package store

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/budget-csv/internal/fileutils"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/rules.yaml
var defaultRulesYAML []byte

// DefaultRulesYAML returns the embedded rules file.
func DefaultRulesYAML() []byte {
	out := make([]byte, len(defaultRulesYAML))
	copy(out, defaultRulesYAML)
	return out
}

// DefaultRules returns the embedded rule set.
func DefaultRules() models.RuleSet {
	rules, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded rules are invalid: %v", err))
	}
	return rules
}

// RuleStore loads the classification rules.
type RuleStore struct {
	RulesFile string
	logger    logging.Logger
}

// NewRuleStore creates a RuleStore reading rulesFile. An empty name means
// the embedded defaults.
func NewRuleStore(rulesFile string, logger logging.Logger) *RuleStore {
	return &RuleStore{RulesFile: rulesFile, logger: logging.OrDefault(logger)}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *RuleStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if fileutils.FileExists(filename) {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("data", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "budget-csv", filename))
	}

	for _, location := range locations {
		if fileutils.FileExists(location) {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadRules reads the rules file. Sections absent from the file keep their
// default value; an absent file means the embedded defaults.
func (s *RuleStore) LoadRules() (models.RuleSet, error) {
	defaults := DefaultRules()
	if s.RulesFile == "" {
		return defaults, nil
	}

	path, err := s.FindConfigFile(s.RulesFile)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debug("Rules file not found, using embedded defaults",
			logging.Field{Key: logging.FieldFile, Value: s.RulesFile})
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.RuleSet{}, &parsererror.StoreError{Store: "rules", Path: path, Op: "read", Err: err}
	}

	rules, err := ParseRules(data)
	if err != nil {
		return models.RuleSet{}, fmt.Errorf("error parsing rules file %s: %w", path, err)
	}
	rules = mergeRules(rules, defaults)

	s.logger.Debug("Rules loaded",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(rules.Keywords)})
	return rules, nil
}

// ExportDefaults writes the embedded rules to path so they can be edited.
// An existing file is left untouched unless overwrite is set.
func (s *RuleStore) ExportDefaults(path string, overwrite bool) error {
	if fileutils.FileExists(path) && !overwrite {
		return fmt.Errorf("rules file %s already exists", path)
	}
	if err := fileutils.WriteFileAtomic(path, defaultRulesYAML, fileutils.PermissionDataFile); err != nil {
		return &parsererror.StoreError{Store: "rules", Path: path, Op: "write", Err: err}
	}
	return nil
}

// ParseRules decodes a rules document. Transfer phrases and keywords are
// upper-cased since they are matched against upper-cased text.
func ParseRules(data []byte) (models.RuleSet, error) {
	var rules models.RuleSet
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return models.RuleSet{}, err
	}

	if rules.TransferPhrases != nil {
		rules.TransferPhrases = upperAll(rules.TransferPhrases)
	}
	for i, entry := range rules.Keywords {
		if strings.TrimSpace(entry.Name) == "" {
			return models.RuleSet{}, fmt.Errorf("keyword entry %d has no category name", i+1)
		}
		rules.Keywords[i].Name = strings.TrimSpace(entry.Name)
		rules.Keywords[i].Keywords = upperAll(entry.Keywords)
	}
	for i, entry := range rules.Synonyms {
		if strings.TrimSpace(entry.Field) == "" {
			return models.RuleSet{}, fmt.Errorf("synonym entry %d has no field", i+1)
		}
	}
	return rules, nil
}

func mergeRules(rules, defaults models.RuleSet) models.RuleSet {
	if rules.TransferPhrases == nil {
		rules.TransferPhrases = defaults.TransferPhrases
	}
	if rules.TransferCategory == "" {
		rules.TransferCategory = defaults.TransferCategory
	}
	if rules.IncomeCategory == "" {
		rules.IncomeCategory = defaults.IncomeCategory
	}
	if rules.FallbackCategory == "" {
		rules.FallbackCategory = defaults.FallbackCategory
	}
	if rules.Keywords == nil {
		rules.Keywords = defaults.Keywords
	}
	if len(rules.Synonyms) == 0 {
		rules.Synonyms = defaults.Synonyms
	}
	if rules.DefaultCategories == nil {
		rules.DefaultCategories = defaults.DefaultCategories
	}
	return rules
}

func upperAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToUpper(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
