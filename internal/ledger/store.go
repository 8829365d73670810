// Package ledger persists every imported transaction in a single CSV file
// and merges new imports into it without creating duplicates.
package ledger

import (
	"fmt"
	"strings"
	"sync"

	"fjacquet/budget-csv/internal/fileutils"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"
)

const storeName = "ledger"

// Change records one category edit applied to the ledger.
type Change struct {
	Before models.Transaction
	After  models.Transaction
}

// Changed reports whether the edit modified the category.
func (c Change) Changed() bool {
	return c.Before.Category != c.After.Category
}

// Store is the file-backed ledger. Every update reads the whole file,
// computes the new state and replaces the file atomically; updates are
// serialised within the process.
type Store struct {
	path     string
	writeBOM bool
	logger   logging.Logger

	mu sync.Mutex
}

// NewStore creates a Store backed by path.
func NewStore(path string, writeBOM bool, logger logging.Logger) *Store {
	return &Store{path: path, writeBOM: writeBOM, logger: logging.OrDefault(logger)}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load returns every transaction of the ledger. A missing file is an empty
// ledger.
func (s *Store) Load() ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save replaces the ledger with transactions, sorted chronologically.
func (s *Store) Save(transactions []models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(transactions)
}

// Append merges incoming into the ledger and saves the result when at
// least one transaction was new.
func (s *Store) Append(incoming []models.Transaction) (MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load()
	if err != nil {
		return MergeResult{}, err
	}

	result := Merge(existing, incoming)
	if len(result.Inserted) == 0 {
		s.logger.Info("No new transactions to append",
			logging.Field{Key: logging.FieldFile, Value: s.path},
			logging.Field{Key: "duplicates", Value: result.Duplicates})
		return result, nil
	}

	if err := s.save(result.Transactions); err != nil {
		return MergeResult{}, err
	}
	s.logger.Info("Transactions appended to ledger",
		logging.Field{Key: logging.FieldFile, Value: s.path},
		logging.Field{Key: logging.FieldCount, Value: len(result.Inserted)},
		logging.Field{Key: "duplicates", Value: result.Duplicates})
	return result, nil
}

// UpdateCategories applies edits by transaction ID. Nothing is written when
// any ID is unknown or any category is empty.
func (s *Store) UpdateCategories(edits []models.CategoryEdit) ([]Change, error) {
	if len(edits) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	transactions, err := s.load()
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(transactions))
	for i, tx := range transactions {
		index[tx.ID] = i
	}

	changes := make([]Change, 0, len(edits))
	for _, edit := range edits {
		category := strings.TrimSpace(edit.Category)
		if category == "" {
			return nil, fmt.Errorf("transaction %s: %w", edit.ID, parsererror.ErrEmptyCategory)
		}
		i, ok := index[edit.ID]
		if !ok {
			return nil, fmt.Errorf("transaction %s: %w", edit.ID, parsererror.ErrTransactionNotFound)
		}
		before := transactions[i]
		transactions[i].Category = category
		changes = append(changes, Change{Before: before, After: transactions[i]})
	}

	if err := s.save(transactions); err != nil {
		return nil, err
	}
	return changes, nil
}

// Delete removes transactions by ID and returns the removed rows. Nothing
// is written when any ID is unknown.
func (s *Store) Delete(ids []string) ([]models.Transaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	transactions, err := s.load()
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(transactions))
	for _, tx := range transactions {
		present[tx.ID] = true
	}
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !present[id] {
			return nil, fmt.Errorf("transaction %s: %w", id, parsererror.ErrTransactionNotFound)
		}
		remove[id] = true
	}

	kept := make([]models.Transaction, 0, len(transactions))
	var removed []models.Transaction
	for _, tx := range transactions {
		if remove[tx.ID] {
			removed = append(removed, tx)
			continue
		}
		kept = append(kept, tx)
	}

	if err := s.save(kept); err != nil {
		return nil, err
	}
	s.logger.Info("Transactions deleted from ledger",
		logging.Field{Key: logging.FieldFile, Value: s.path},
		logging.Field{Key: logging.FieldCount, Value: len(removed)})
	return removed, nil
}

func (s *Store) load() ([]models.Transaction, error) {
	data, err := fileutils.ReadFileIfExists(s.path)
	if err != nil {
		return nil, &parsererror.StoreError{Store: storeName, Path: s.path, Op: "read", Err: err}
	}
	transactions, diagnostics, err := decode(data, s.path, s.logger)
	if err != nil {
		return nil, &parsererror.StoreError{Store: storeName, Path: s.path, Op: "parse", Err: err}
	}
	s.logger.Debug("Ledger loaded",
		logging.Field{Key: logging.FieldFile, Value: s.path},
		logging.Field{Key: logging.FieldCount, Value: len(transactions)},
		logging.Field{Key: "diagnostics", Value: len(diagnostics)})
	return transactions, nil
}

func (s *Store) save(transactions []models.Transaction) error {
	sorted := make([]models.Transaction, len(transactions))
	copy(sorted, transactions)
	Sort(sorted)

	data, err := encode(sorted, s.writeBOM)
	if err != nil {
		return &parsererror.StoreError{Store: storeName, Path: s.path, Op: "encode", Err: err}
	}
	if err := fileutils.WriteFileAtomic(s.path, data, fileutils.PermissionDataFile); err != nil {
		return &parsererror.StoreError{Store: storeName, Path: s.path, Op: "write", Err: err}
	}
	return nil
}
