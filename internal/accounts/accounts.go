// Package accounts persists the per-account configuration: group, opening
// balance, savings target and display colour.
package accounts

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"

	"fjacquet/budget-csv/internal/common"
	"fjacquet/budget-csv/internal/currencyutils"
	"fjacquet/budget-csv/internal/fileutils"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"

	"github.com/shopspring/decimal"
)

const storeName = "accounts"

type row struct {
	Compte   string `csv:"Compte"`
	Groupe   string `csv:"Groupe"`
	Solde    string `csv:"Solde"`
	Objectif string `csv:"Objectif"`
	Couleur  string `csv:"Couleur"`
}

// patchHeader names the index column, which spreadsheet tools and data
// frame exports leave blank or call "Unnamed: 0".
func patchHeader(header []string) {
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 && (header[0] == "" || strings.HasPrefix(header[0], "Unnamed")) {
		header[0] = "Compte"
	}
}

// Store is the file-backed account configuration, indexed by account name.
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

// List returns every account configuration sorted by name.
func (s *Store) List() ([]models.AccountConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.read()
	if err != nil {
		return nil, err
	}
	return sorted(configs), nil
}

// Get returns the configuration of one account.
func (s *Store) Get(name string) (models.AccountConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.read()
	if err != nil {
		return models.AccountConfig{}, err
	}
	cfg, ok := configs[strings.TrimSpace(name)]
	if !ok {
		return models.AccountConfig{}, fmt.Errorf("%q: %w", name, parsererror.ErrAccountNotFound)
	}
	return cfg, nil
}

// Ensure creates the default configuration for name, in group, unless the
// account already exists. It reports whether an entry was created.
func (s *Store) Ensure(name, group string) (models.AccountConfig, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.AccountConfig{}, false, parsererror.ErrEmptyAccountName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.read()
	if err != nil {
		return models.AccountConfig{}, false, err
	}
	if cfg, ok := configs[name]; ok {
		return cfg, false, nil
	}

	cfg := models.NewAccountConfig(name, group)
	configs[name] = cfg
	if err := s.write(configs); err != nil {
		return models.AccountConfig{}, false, err
	}
	s.logger.Info("Account created",
		logging.Field{Key: logging.FieldAccount, Value: name},
		logging.Field{Key: "group", Value: cfg.Group})
	return cfg, true, nil
}

// Set creates or replaces the configuration of cfg.Name.
func (s *Store) Set(cfg models.AccountConfig) error {
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		return parsererror.ErrEmptyAccountName
	}
	if cfg.Group == "" {
		cfg.Group = models.DefaultGroup
	}
	if cfg.Color == "" {
		cfg.Color = models.DefaultAccountColor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.read()
	if err != nil {
		return err
	}
	configs[cfg.Name] = cfg
	return s.write(configs)
}

// Delete removes the configuration of name. Transactions that reference the
// account are left alone.
func (s *Store) Delete(name string) error {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := configs[name]; !ok {
		return fmt.Errorf("%q: %w", name, parsererror.ErrAccountNotFound)
	}
	delete(configs, name)
	if err := s.write(configs); err != nil {
		return err
	}
	s.logger.Info("Account configuration deleted", logging.Field{Key: logging.FieldAccount, Value: name})
	return nil
}

func (s *Store) read() (map[string]models.AccountConfig, error) {
	data, err := fileutils.ReadFileIfExists(s.path)
	if err != nil {
		return nil, &parsererror.StoreError{Store: storeName, Path: s.path, Op: "read", Err: err}
	}
	rows, err := common.ReadCSV[row](data, ',', patchHeader)
	if err != nil {
		return nil, &parsererror.StoreError{Store: storeName, Path: s.path, Op: "parse", Err: err}
	}

	configs := make(map[string]models.AccountConfig, len(rows))
	for _, r := range rows {
		name := strings.TrimSpace(r.Compte)
		if name == "" {
			continue
		}
		cfg := models.NewAccountConfig(name, strings.TrimSpace(r.Groupe))
		cfg.OpeningBalance = s.amount(name, "Solde", r.Solde)
		cfg.Target = s.amount(name, "Objectif", r.Objectif)
		if color := strings.TrimSpace(r.Couleur); color != "" {
			cfg.Color = color
		}
		configs[name] = cfg
	}
	return configs, nil
}

func (s *Store) amount(account, field, raw string) decimal.Decimal {
	value, err := currencyutils.NormalizeAmount(raw)
	if err != nil {
		s.logger.WithError(err).Warn("Account amount unreadable, using zero",
			logging.Field{Key: logging.FieldAccount, Value: account},
			logging.Field{Key: logging.FieldField, Value: field},
			logging.Field{Key: logging.FieldRawValue, Value: raw})
	}
	return value
}

func (s *Store) write(configs map[string]models.AccountConfig) error {
	list := sorted(configs)
	rows := make([]row, len(list))
	for i, cfg := range list {
		rows[i] = row{
			Compte:   cfg.Name,
			Groupe:   cfg.Group,
			Solde:    cfg.OpeningBalance.String(),
			Objectif: cfg.Target.String(),
			Couleur:  cfg.Color,
		}
	}

	var buf bytes.Buffer
	if err := common.WriteCSV(&buf, rows, ',', s.writeBOM); err != nil {
		return &parsererror.StoreError{Store: storeName, Path: s.path, Op: "encode", Err: err}
	}
	if err := fileutils.WriteFileAtomic(s.path, buf.Bytes(), fileutils.PermissionDataFile); err != nil {
		return &parsererror.StoreError{Store: storeName, Path: s.path, Op: "write", Err: err}
	}
	return nil
}

func sorted(configs map[string]models.AccountConfig) []models.AccountConfig {
	list := make([]models.AccountConfig, 0, len(configs))
	for _, cfg := range configs {
		list = append(list, cfg)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}
