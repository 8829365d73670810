package categorizer

import (
	"context"

	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
)

// LearningLookup is the read side of the learning map.
type LearningLookup interface {
	Lookup(simplifiedName string) (string, bool)
}

// LearnedStrategy returns the category the user last chose for the same
// simplified name. It never writes to the learning map.
type LearnedStrategy struct {
	learning LearningLookup
	logger   logging.Logger
}

// NewLearnedStrategy creates a new LearnedStrategy instance.
func NewLearnedStrategy(learning LearningLookup, logger logging.Logger) *LearnedStrategy {
	return &LearnedStrategy{learning: learning, logger: logging.OrDefault(logger)}
}

// Name returns the name of this strategy for logging and debugging.
func (s *LearnedStrategy) Name() string {
	return models.StrategyLearned
}

// Categorize looks the simplified name up in the learning map.
func (s *LearnedStrategy) Categorize(_ context.Context, tx Transaction) (models.Category, bool, error) {
	if s.learning == nil {
		return models.Category{}, false, nil
	}

	key := tx.key()
	category, ok := s.learning.Lookup(key)
	if !ok || category == "" {
		return models.Category{}, false, nil
	}

	s.logger.Debug("Transaction categorized from learned memory",
		logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
		logging.Field{Key: "name", Value: key},
		logging.Field{Key: logging.FieldCategory, Value: category})
	return categoryFromName(category), true, nil
}
