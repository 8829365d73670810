package categorizer

import (
	"context"
	"strings"

	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
)

// TransferStrategy recognises movements between the user's own accounts.
// Some banks put the transfer wording in a secondary column, so the whole
// original row is searched as well as the description.
type TransferStrategy struct {
	phrases  []string
	category string
	logger   logging.Logger
}

// NewTransferStrategy creates a TransferStrategy. Phrases are matched
// case-insensitively.
func NewTransferStrategy(phrases []string, category string, logger logging.Logger) *TransferStrategy {
	upper := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			upper = append(upper, p)
		}
	}
	if category == "" {
		category = models.CategoryInternalTransfer
	}
	return &TransferStrategy{phrases: upper, category: category, logger: logging.OrDefault(logger)}
}

// Name returns the name of this strategy for logging and debugging.
func (s *TransferStrategy) Name() string {
	return models.StrategyTransfer
}

// Categorize returns the internal transfer category when a transfer phrase
// appears in the description or anywhere in the row.
func (s *TransferStrategy) Categorize(_ context.Context, tx Transaction) (models.Category, bool, error) {
	if len(s.phrases) == 0 {
		return models.Category{}, false, nil
	}

	name := tx.upperName()
	row := tx.upperRow()
	for _, phrase := range s.phrases {
		if strings.Contains(name, phrase) || (row != "" && strings.Contains(row, phrase)) {
			s.logger.Debug("Transaction categorized as internal transfer",
				logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
				logging.Field{Key: "phrase", Value: phrase},
				logging.Field{Key: logging.FieldAccount, Value: tx.Account})
			return categoryFromName(s.category), true, nil
		}
	}
	return models.Category{}, false, nil
}
