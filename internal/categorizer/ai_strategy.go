package categorizer

import (
	"context"
	"strings"

	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
)

// AIStrategy implements categorization using AI services.
// It uses the AIClient interface to interact with external AI services.
// Service failures are logged and treated as "no match" so that the sign
// fallback still answers.
type AIStrategy struct {
	aiClient   AIClient
	categories []string
	excluded   map[string]bool
	logger     logging.Logger
}

// NewAIStrategy creates a new AIStrategy instance. categories is the
// vocabulary offered to the service; excluded names are never accepted from it.
func NewAIStrategy(aiClient AIClient, categories []string, excluded []string, logger logging.Logger) *AIStrategy {
	skip := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		skip[name] = true
	}
	offered := make([]string, 0, len(categories))
	for _, name := range categories {
		if !skip[name] {
			offered = append(offered, name)
		}
	}
	return &AIStrategy{
		aiClient:   aiClient,
		categories: offered,
		excluded:   skip,
		logger:     logging.OrDefault(logger),
	}
}

// Name returns the name of this strategy for logging and debugging.
func (s *AIStrategy) Name() string {
	return models.StrategyAI
}

// Categorize attempts to categorize a transaction using AI services.
func (s *AIStrategy) Categorize(ctx context.Context, tx Transaction) (models.Category, bool, error) {
	log := s.logger.WithFields(
		logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
		logging.Field{Key: "name", Value: tx.key()},
	)

	if s.aiClient == nil {
		log.Debug("AI client not available, skipping AI categorization")
		return models.Category{}, false, nil
	}
	if strings.TrimSpace(tx.RawName) == "" || len(s.categories) == 0 {
		return models.Category{}, false, nil
	}

	category, err := s.aiClient.Categorize(ctx, tx, s.categories)
	if err != nil {
		log.WithError(err).Warn("AI categorization failed")
		return models.Category{}, false, nil
	}

	category = strings.TrimSpace(category)
	if category == "" || s.excluded[category] {
		log.Debug("AI returned uncategorized result",
			logging.Field{Key: "ai_category", Value: category})
		return models.Category{}, false, nil
	}

	log.Debug("Transaction categorized using AI",
		logging.Field{Key: logging.FieldCategory, Value: category})
	return categoryFromName(category), true, nil
}
