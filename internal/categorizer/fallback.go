package categorizer

import (
	"context"

	"fjacquet/budget-csv/internal/models"
)

// SignFallbackStrategy always answers: inbound money is generic income,
// everything else is uncategorized.
type SignFallbackStrategy struct {
	income   string
	fallback string
}

// NewSignFallbackStrategy creates a SignFallbackStrategy; empty names fall
// back to the built-in categories.
func NewSignFallbackStrategy(income, fallback string) *SignFallbackStrategy {
	if income == "" {
		income = models.CategoryOtherIncome
	}
	if fallback == "" {
		fallback = models.CategoryUncategorized
	}
	return &SignFallbackStrategy{income: income, fallback: fallback}
}

// Name returns the name of this strategy for logging and debugging.
func (s *SignFallbackStrategy) Name() string {
	return models.StrategyFallback
}

// Categorize picks a category from the sign of the amount.
func (s *SignFallbackStrategy) Categorize(_ context.Context, tx Transaction) (models.Category, bool, error) {
	if tx.Amount.IsPositive() {
		return categoryFromName(s.income), true, nil
	}
	return categoryFromName(s.fallback), true, nil
}
