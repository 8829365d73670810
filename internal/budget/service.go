// Package budget is the single owner of the ledger, the account
// configuration, the learning map and the catalogs. Commands and any other
// front end go through Service rather than touching the stores.
package budget

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"fjacquet/budget-csv/internal/accounts"
	"fjacquet/budget-csv/internal/categorizer"
	"fjacquet/budget-csv/internal/importer"
	"fjacquet/budget-csv/internal/ledger"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/store"

	"github.com/shopspring/decimal"
)

// Dependencies lists what a Service is built from.
type Dependencies struct {
	Ledger      *ledger.Store
	Accounts    *accounts.Store
	Learning    *store.LearningStore
	Categories  *store.CategoryCatalog
	Groups      *store.GroupCatalog
	Categorizer *categorizer.Categorizer
	Importer    *importer.Importer
	LearnOnEdit bool
	Logger      logging.Logger
}

// Service exposes the operations of the tool. Every operation that writes
// runs under one process-wide lock.
type Service struct {
	ledger      *ledger.Store
	accounts    *accounts.Store
	learning    *store.LearningStore
	categories  *store.CategoryCatalog
	groups      *store.GroupCatalog
	categorizer *categorizer.Categorizer
	importer    *importer.Importer
	learnOnEdit bool
	logger      logging.Logger

	mu sync.Mutex
}

// AccountBalance is an account configuration with its current balance.
type AccountBalance struct {
	Config       models.AccountConfig `json:"config"`
	Balance      decimal.Decimal      `json:"balance"`
	Transactions int                  `json:"transactions"`
}

// NewService checks deps and returns a Service.
func NewService(deps Dependencies) (*Service, error) {
	switch {
	case deps.Ledger == nil:
		return nil, errors.New("budget service: ledger store is required")
	case deps.Accounts == nil:
		return nil, errors.New("budget service: account store is required")
	case deps.Learning == nil:
		return nil, errors.New("budget service: learning store is required")
	case deps.Categories == nil || deps.Groups == nil:
		return nil, errors.New("budget service: category and group catalogs are required")
	case deps.Categorizer == nil || deps.Importer == nil:
		return nil, errors.New("budget service: categorizer and importer are required")
	}

	return &Service{
		ledger:      deps.Ledger,
		accounts:    deps.Accounts,
		learning:    deps.Learning,
		categories:  deps.Categories,
		groups:      deps.Groups,
		categorizer: deps.Categorizer,
		importer:    deps.Importer,
		learnOnEdit: deps.LearnOnEdit,
		logger:      logging.OrDefault(deps.Logger),
	}, nil
}

// LearnOnEdit reports whether category edits are learned by default.
func (s *Service) LearnOnEdit() bool {
	return s.learnOnEdit
}

// Ledger returns the transactions matching filter in chronological order.
func (s *Service) Ledger(filter models.TransactionFilter) ([]models.Transaction, error) {
	transactions, err := s.ledger.Load()
	if err != nil {
		return nil, err
	}
	filtered := ledger.Filter(transactions, filter)
	ledger.Sort(filtered)
	return filtered, nil
}

// ImportFile imports the bank export at path into account.
func (s *Service) ImportFile(ctx context.Context, path, account string) (*models.ImportResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading input file: %w", err)
	}
	return s.ImportBytes(ctx, path, raw, account)
}

// ImportBytes imports the content of one bank export into account. A
// structural problem fails the import before anything is written; rows
// already in the ledger are skipped.
func (s *Service) ImportBytes(ctx context.Context, name string, raw []byte, account string) (*models.ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.learning.Load(); err != nil {
		s.logger.WithError(err).Error("Import failed",
			logging.Field{Key: logging.FieldFile, Value: name},
			logging.Field{Key: logging.FieldAccount, Value: account})
		return nil, err
	}

	batch, err := s.importer.Parse(ctx, name, raw, account)
	if err != nil {
		s.logger.WithError(err).Error("Import failed",
			logging.Field{Key: logging.FieldFile, Value: name},
			logging.Field{Key: logging.FieldAccount, Value: account})
		return nil, err
	}

	merged, err := s.ledger.Append(batch.Transactions)
	if err != nil {
		return nil, err
	}

	created, err := s.ensureAccount(batch.Account)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{
		BatchID:        batch.ID,
		Source:         batch.Source,
		Account:        batch.Account,
		AccountCreated: created,
		Encoding:       batch.Encoding,
		Delimiter:      string(batch.Delimiter),
		HeaderLine:     batch.HeaderLine,
		Columns:        batch.Columns,
		Parsed:         batch.Parsed,
		Inserted:       len(merged.Inserted),
		Duplicates:     merged.Duplicates,
		DroppedRows:    batch.DroppedRows,
		AmountDefaults: batch.AmountDefaults,
		SkippedLines:   batch.SkippedLines,
		Stats:          batch.Stats,
	}
	for _, d := range batch.Diagnostics {
		reason := ""
		if d.Err != nil {
			reason = d.Err.Error()
		}
		result.Diagnostics = append(result.Diagnostics, models.Diagnostic{Row: d.Row, Field: d.Field, Value: d.Value, Reason: reason})
	}
	for _, tx := range batch.Transactions {
		if result.FirstDate.IsZero() || tx.Date.Before(result.FirstDate) {
			result.FirstDate = tx.Date
		}
		if tx.Date.After(result.LastDate) {
			result.LastDate = tx.Date
		}
	}

	s.logger.Info("Import completed",
		logging.Field{Key: logging.FieldFile, Value: name},
		logging.Field{Key: logging.FieldAccount, Value: result.Account},
		logging.Field{Key: logging.FieldBatchID, Value: result.BatchID},
		logging.Field{Key: "inserted", Value: result.Inserted},
		logging.Field{Key: "duplicates", Value: result.Duplicates})
	return result, nil
}

// ApplyCategoryEdit sets the category of one transaction. When learn is
// true and the category changed, the choice is remembered for the
// transaction's simplified name.
func (s *Service) ApplyCategoryEdit(id, category string, learn bool) (ledger.Change, error) {
	changes, err := s.ApplyCategoryEdits([]models.CategoryEdit{{ID: id, Category: category}}, learn)
	if err != nil {
		return ledger.Change{}, err
	}
	return changes[0], nil
}

// ApplyCategoryEdits applies several edits with one ledger rewrite and one
// learning rewrite. Categories not yet in the vocabulary are added to it.
func (s *Service) ApplyCategoryEdits(edits []models.CategoryEdit, learn bool) ([]ledger.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changes, err := s.ledger.UpdateCategories(edits)
	if err != nil {
		return nil, err
	}

	var choices []store.LearningEntry
	for _, change := range changes {
		if _, err := s.categories.Add(change.After.Category); err != nil {
			return changes, err
		}
		if learn && change.Changed() {
			choices = append(choices, store.LearningEntry{Name: change.After.RawName, Category: change.After.Category})
		}
	}
	if len(choices) > 0 {
		if err := s.learning.RecordAll(choices); err != nil {
			return changes, fmt.Errorf("category saved but not learned: %w", err)
		}
	}

	s.logger.Info("Category edits applied",
		logging.Field{Key: logging.FieldCount, Value: len(changes)},
		logging.Field{Key: "learned", Value: len(choices)})
	return changes, nil
}

// DeleteTransactions removes transactions from the ledger by ID.
func (s *Service) DeleteTransactions(ids []string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Delete(ids)
}

// Classify previews the category the engine would give a transaction,
// without writing to any store. An unreadable learning file is an error.
func (s *Service) Classify(ctx context.Context, rawName string, amount decimal.Decimal, account string) (categorizer.StrategyResult, error) {
	if err := s.learning.Load(); err != nil {
		return categorizer.StrategyResult{}, err
	}
	return s.categorizer.Categorize(ctx, categorizer.NewTransaction(rawName, amount, account, nil)), nil
}

// Explain runs every strategy over a transaction and reports each outcome.
func (s *Service) Explain(ctx context.Context, rawName string, amount decimal.Decimal, account string) (categorizer.StrategyResults, error) {
	if err := s.learning.Load(); err != nil {
		return categorizer.StrategyResults{}, err
	}
	return s.categorizer.Explain(ctx, categorizer.NewTransaction(rawName, amount, account, nil)), nil
}

// Accounts returns every account configuration sorted by name.
func (s *Service) Accounts() ([]models.AccountConfig, error) {
	return s.accounts.List()
}

// Account returns the configuration of one account.
func (s *Service) Account(name string) (models.AccountConfig, error) {
	return s.accounts.Get(name)
}

// CreateAccount creates the default configuration for name unless it exists.
// An empty group means the first managed group.
func (s *Service) CreateAccount(name, group string) (models.AccountConfig, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, err := s.resolveGroup(group)
	if err != nil {
		return models.AccountConfig{}, false, err
	}
	return s.accounts.Ensure(name, group)
}

// UpdateAccount replaces the configuration of cfg.Name, registering its
// group when new.
func (s *Service) UpdateAccount(cfg models.AccountConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, err := s.resolveGroup(cfg.Group)
	if err != nil {
		return err
	}
	cfg.Group = group
	return s.accounts.Set(cfg)
}

// DeleteAccount removes an account configuration; its transactions stay.
func (s *Service) DeleteAccount(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.Delete(name)
}

// Balances returns every configured account with its balance, plus any
// account that only appears in the ledger, using a default configuration.
func (s *Service) Balances() ([]AccountBalance, error) {
	configs, err := s.accounts.List()
	if err != nil {
		return nil, err
	}
	transactions, err := s.ledger.Load()
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(configs))
	for _, cfg := range configs {
		known[cfg.Name] = true
	}
	for _, tx := range transactions {
		if tx.Account != "" && !known[tx.Account] {
			known[tx.Account] = true
			configs = append(configs, models.NewAccountConfig(tx.Account, ""))
		}
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Name < configs[j].Name })

	balances := make([]AccountBalance, 0, len(configs))
	for _, cfg := range configs {
		count := 0
		for _, tx := range transactions {
			if tx.Account == cfg.Name {
				count++
			}
		}
		balances = append(balances, AccountBalance{Config: cfg, Balance: cfg.Balance(transactions), Transactions: count})
	}
	return balances, nil
}

// Groups returns the managed group names.
func (s *Service) Groups() ([]string, error) {
	return s.groups.List()
}

// AddGroup adds a group name.
func (s *Service) AddGroup(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups.Add(name)
}

// RemoveGroup removes a group name; the last group cannot be removed.
func (s *Service) RemoveGroup(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups.Remove(name)
}

// Categories returns the category vocabulary.
func (s *Service) Categories() ([]string, error) {
	return s.categories.List()
}

// AddCategory adds a category to the vocabulary and reports whether it was
// new.
func (s *Service) AddCategory(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories.Add(name)
}

// LearnedCategories returns the learning map.
func (s *Service) LearnedCategories() ([]store.LearningEntry, error) {
	return s.learning.Entries()
}

// ForgetLearned removes one simplified name from the learning map.
func (s *Service) ForgetLearned(simplifiedName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.learning.Forget(strings.TrimSpace(simplifiedName))
}

func (s *Service) ensureAccount(name string) (bool, error) {
	group, err := s.groups.First()
	if err != nil {
		return false, err
	}
	_, created, err := s.accounts.Ensure(name, group)
	return created, err
}

func (s *Service) resolveGroup(group string) (string, error) {
	group = strings.TrimSpace(group)
	if group == "" {
		return s.groups.First()
	}
	if err := s.groups.Add(group); err != nil {
		return "", err
	}
	return group, nil
}
