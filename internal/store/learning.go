package store

import (
	"bytes"
	"sort"
	"strings"
	"sync"

	"fjacquet/budget-csv/internal/common"
	"fjacquet/budget-csv/internal/fileutils"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/parsererror"
	"fjacquet/budget-csv/internal/textutils"
)

type learningRow struct {
	Nom       string `csv:"Nom"`
	Categorie string `csv:"Categorie"`
}

// LearningEntry is one remembered category choice.
type LearningEntry struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// LearningStore persists the categories a user chose, keyed by simplified
// transaction name. The file is rewritten in full on every change.
type LearningStore struct {
	path     string
	writeBOM bool
	logger   logging.Logger

	mu      sync.RWMutex
	entries map[string]string
}

// NewLearningStore creates a LearningStore backed by path.
func NewLearningStore(path string, writeBOM bool, logger logging.Logger) *LearningStore {
	return &LearningStore{
		path:     path,
		writeBOM: writeBOM,
		logger:   logging.OrDefault(logger),
		entries:  make(map[string]string),
	}
}

// Path returns the backing file.
func (s *LearningStore) Path() string {
	return s.path
}

// Load reads the file into memory, replacing what was cached.
func (s *LearningStore) Load() error {
	entries, err := s.read()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

// Lookup returns the category remembered for a simplified name, from what
// the last Load, RecordAll or Forget left in memory. It never touches the
// file.
func (s *LearningStore) Lookup(simplifiedName string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	category, ok := s.entries[simplifiedName]
	return category, ok
}

// Record remembers category for rawName, which is simplified first. The last
// write for a name wins.
func (s *LearningStore) Record(rawName, category string) error {
	return s.RecordAll([]LearningEntry{{Name: rawName, Category: category}})
}

// RecordAll records several choices with a single rewrite of the file.
// Names are raw descriptions; they are simplified and applied in order, so
// when two of them share a simplified name the later choice wins.
func (s *LearningStore) RecordAll(choices []LearningEntry) error {
	if len(choices) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	for _, choice := range choices {
		category := strings.TrimSpace(choice.Category)
		if category == "" {
			return parsererror.ErrEmptyCategory
		}
		entries[textutils.SimplifyName(choice.Name)] = category
	}

	if err := s.write(entries); err != nil {
		return err
	}
	s.entries = entries

	s.logger.Debug("Learned categories saved",
		logging.Field{Key: logging.FieldFile, Value: s.path},
		logging.Field{Key: logging.FieldCount, Value: len(choices)})
	return nil
}

// Forget removes a simplified name. It reports whether the name was known.
func (s *LearningStore) Forget(simplifiedName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return false, err
	}
	if _, ok := entries[simplifiedName]; !ok {
		return false, nil
	}
	delete(entries, simplifiedName)
	if err := s.write(entries); err != nil {
		return false, err
	}
	s.entries = entries
	return true, nil
}

// Entries returns every remembered choice sorted by name.
func (s *LearningStore) Entries() ([]LearningEntry, error) {
	if err := s.Load(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedEntries(s.entries), nil
}

func (s *LearningStore) read() (map[string]string, error) {
	data, err := fileutils.ReadFileIfExists(s.path)
	if err != nil {
		return nil, &parsererror.StoreError{Store: "learning", Path: s.path, Op: "read", Err: err}
	}
	rows, err := common.ReadCSV[learningRow](data, ',', nil)
	if err != nil {
		return nil, &parsererror.StoreError{Store: "learning", Path: s.path, Op: "parse", Err: err}
	}

	entries := make(map[string]string, len(rows))
	for _, row := range rows {
		name, category := strings.TrimSpace(row.Nom), strings.TrimSpace(row.Categorie)
		if name == "" || category == "" {
			continue
		}
		entries[name] = category
	}
	return entries, nil
}

func (s *LearningStore) write(entries map[string]string) error {
	sorted := sortedEntries(entries)
	rows := make([]learningRow, len(sorted))
	for i, e := range sorted {
		rows[i] = learningRow{Nom: e.Name, Categorie: e.Category}
	}

	var buf bytes.Buffer
	if err := common.WriteCSV(&buf, rows, ',', s.writeBOM); err != nil {
		return &parsererror.StoreError{Store: "learning", Path: s.path, Op: "encode", Err: err}
	}
	if err := fileutils.WriteFileAtomic(s.path, buf.Bytes(), fileutils.PermissionDataFile); err != nil {
		return &parsererror.StoreError{Store: "learning", Path: s.path, Op: "write", Err: err}
	}
	return nil
}

func sortedEntries(entries map[string]string) []LearningEntry {
	out := make([]LearningEntry, 0, len(entries))
	for name, category := range entries {
		out = append(out, LearningEntry{Name: name, Category: category})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
