package categorizer

import (
	"context"
	"strings"

	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
)

// KeywordStrategy implements categorization using keyword pattern matching
// from the ordered keyword table of the rules file.
type KeywordStrategy struct {
	categories []models.CategoryConfig
	logger     logging.Logger
}

// NewKeywordStrategy creates a new KeywordStrategy instance. The table order
// is kept: the first entry with a matching keyword wins.
func NewKeywordStrategy(table []models.CategoryConfig, logger logging.Logger) *KeywordStrategy {
	categories := make([]models.CategoryConfig, 0, len(table))
	for _, entry := range table {
		if strings.TrimSpace(entry.Name) == "" {
			continue
		}
		keywords := make([]string, 0, len(entry.Keywords))
		for _, kw := range entry.Keywords {
			if kw = strings.ToUpper(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		categories = append(categories, models.CategoryConfig{Name: entry.Name, Keywords: keywords})
	}
	return &KeywordStrategy{categories: categories, logger: logging.OrDefault(logger)}
}

// Name returns the name of this strategy for logging and debugging.
func (s *KeywordStrategy) Name() string {
	return models.StrategyKeyword
}

// Categorize attempts to categorize a transaction using keyword pattern matching.
func (s *KeywordStrategy) Categorize(_ context.Context, tx Transaction) (models.Category, bool, error) {
	name := tx.upperName()
	if strings.TrimSpace(name) == "" {
		return models.Category{}, false, nil
	}

	for _, categoryConfig := range s.categories {
		for _, keyword := range categoryConfig.Keywords {
			if strings.Contains(name, keyword) {
				s.logger.Debug("Transaction categorized using keyword matching",
					logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
					logging.Field{Key: "keyword", Value: keyword},
					logging.Field{Key: logging.FieldCategory, Value: categoryConfig.Name})
				return categoryFromName(categoryConfig.Name), true, nil
			}
		}
	}
	return models.Category{}, false, nil
}
