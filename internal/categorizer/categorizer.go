// Package categorizer assigns a category to imported transactions by running
// an ordered chain of strategies; the first strategy that answers wins:
//  1. internal transfer phrases, searched in the description and the whole row
//  2. learned memory (the category the user last chose for the simplified name)
//  3. the ordered keyword table of the rules file
//  4. an optional AI service (Gemini), only when enabled
//  5. a sign-based fallback, which always answers
package categorizer

import (
	"context"

	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
)

// Categorizer runs the strategy chain. It holds no mutable state and never
// writes to the learning map; learning happens only on explicit user edits.
type Categorizer struct {
	strategies []CategorizationStrategy
	fallback   models.Category
	logger     logging.Logger
}

// NewCategorizer builds the standard chain from a rule set. aiClient may be
// nil, in which case the AI strategy is left out.
func NewCategorizer(rules models.RuleSet, learning LearningLookup, aiClient AIClient, logger logging.Logger) *Categorizer {
	logger = logging.OrDefault(logger)

	strategies := []CategorizationStrategy{
		NewTransferStrategy(rules.TransferPhrases, rules.TransferCategory, logger),
		NewLearnedStrategy(learning, logger),
		NewKeywordStrategy(rules.Keywords, logger),
	}
	if aiClient != nil {
		strategies = append(strategies, NewAIStrategy(aiClient, rules.CategoryNames(),
			[]string{rules.TransferCategory, rules.FallbackCategory}, logger))
	}
	strategies = append(strategies, NewSignFallbackStrategy(rules.IncomeCategory, rules.FallbackCategory))

	return NewCategorizerWithStrategies(strategies, rules.FallbackCategory, logger)
}

// NewCategorizerWithStrategies creates a Categorizer running strategies in
// the given order. fallback is returned when none of them answers.
func NewCategorizerWithStrategies(strategies []CategorizationStrategy, fallback string, logger logging.Logger) *Categorizer {
	if fallback == "" {
		fallback = models.CategoryUncategorized
	}
	return &Categorizer{
		strategies: strategies,
		fallback:   categoryFromName(fallback),
		logger:     logging.OrDefault(logger),
	}
}

// Strategies returns the names of the chain, in evaluation order.
func (c *Categorizer) Strategies() []string {
	names := make([]string, 0, len(c.strategies))
	for _, s := range c.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Categorize returns the first answer of the chain. Strategy errors are
// logged and skipped; the result always carries a non-empty category.
func (c *Categorizer) Categorize(ctx context.Context, tx Transaction) StrategyResult {
	for _, strategy := range c.strategies {
		if err := ctx.Err(); err != nil {
			return StrategyResult{Strategy: models.StrategyFallback, Category: c.fallback, Found: true, Error: err}
		}

		category, found, err := strategy.Categorize(ctx, tx)
		if err != nil {
			c.logger.WithError(err).Warn("Categorization strategy failed",
				logging.Field{Key: logging.FieldStrategy, Value: strategy.Name()},
				logging.Field{Key: "name", Value: tx.key()})
			continue
		}
		if found && category.Name != "" {
			return StrategyResult{Strategy: strategy.Name(), Category: category, Found: true}
		}
	}

	return StrategyResult{Strategy: models.StrategyFallback, Category: c.fallback, Found: true}
}

// CategorizeWithStats categorizes tx and records the outcome in stats.
func (c *Categorizer) CategorizeWithStats(ctx context.Context, tx Transaction, stats *models.CategorizationStats) StrategyResult {
	result := c.Categorize(ctx, tx)
	if stats != nil {
		if result.Error != nil {
			stats.RecordFailure()
		}
		stats.Record(result.Strategy)
	}
	return result
}

// Explain runs every strategy of the chain, without stopping at the first
// answer, so the user can see why a description lands where it does.
func (c *Categorizer) Explain(ctx context.Context, tx Transaction) StrategyResults {
	results := StrategyResults{Results: make([]StrategyResult, 0, len(c.strategies))}
	for _, strategy := range c.strategies {
		category, found, err := strategy.Categorize(ctx, tx)
		results.Results = append(results.Results, StrategyResult{
			Strategy: strategy.Name(),
			Category: category,
			Found:    found && category.Name != "",
			Error:    err,
		})
	}
	return results
}
