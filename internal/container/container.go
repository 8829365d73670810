// Package container provides dependency injection for the budget-csv
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"fmt"
	"io"
	"time"

	"fjacquet/budget-csv/internal/accounts"
	"fjacquet/budget-csv/internal/batch"
	"fjacquet/budget-csv/internal/budget"
	"fjacquet/budget-csv/internal/categorizer"
	"fjacquet/budget-csv/internal/config"
	"fjacquet/budget-csv/internal/importer"
	"fjacquet/budget-csv/internal/ledger"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/report"
	"fjacquet/budget-csv/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation: all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	rules       models.RuleSet
	ruleStore   *store.RuleStore
	aiClient    categorizer.AIClient
	categorizer *categorizer.Categorizer
	service     *budget.Service
	reports     *report.Generator
}

// NewContainer creates and wires all application dependencies with a logrus
// logger configured from cfg.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg)))
}

// NewContainerWithLogger wires the application around an existing logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger = logging.OrDefault(logger)

	ruleStore := store.NewRuleStore(cfg.RulesPath(), logger)
	rules, err := ruleStore.LoadRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	learning := store.NewLearningStore(cfg.LearningPath(), cfg.Data.WriteBOM, logger)

	var aiClient categorizer.AIClient
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		aiClient = categorizer.NewGeminiClient(cfg.AI.APIKey, cfg.AI.Model,
			time.Duration(cfg.AI.TimeoutSeconds)*time.Second, logger)
		logger.Info("AI categorization enabled", logging.Field{Key: "model", Value: cfg.AI.Model})
	} else {
		logger.Debug("AI categorization disabled")
	}

	cat := categorizer.NewCategorizer(rules, learning, aiClient, logger)

	imp, err := importer.New(importer.Options{
		Encodings:                 cfg.Import.Encodings,
		HeaderScanLines:           cfg.Import.HeaderScanLines,
		DescriptionColumnFallback: cfg.Import.DescriptionColumnFallback,
		Synonyms:                  rules.Synonyms,
	}, cat, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create importer: %w", err)
	}

	service, err := budget.NewService(budget.Dependencies{
		Ledger:      ledger.NewStore(cfg.LedgerPath(), cfg.Data.WriteBOM, logger),
		Accounts:    accounts.NewStore(cfg.AccountsPath(), cfg.Data.WriteBOM, logger),
		Learning:    learning,
		Categories:  store.NewCategoryCatalog(cfg.CategoriesPath(), rules.CategoryNames()),
		Groups:      store.NewGroupCatalog(cfg.GroupsPath()),
		Categorizer: cat,
		Importer:    imp,
		LearnOnEdit: cfg.Categorization.LearnOnEdit,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Container initialized successfully",
		logging.Field{Key: "data_directory", Value: cfg.Data.Directory},
		logging.Field{Key: "strategies", Value: cat.Strategies()},
		logging.Field{Key: "ai_enabled", Value: aiClient != nil})

	return &Container{
		logger:      logger,
		config:      cfg,
		rules:       rules,
		ruleStore:   ruleStore,
		aiClient:    aiClient,
		categorizer: cat,
		service:     service,
		reports:     report.NewGenerator(logger),
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRules returns the rule set the categorizer was built from.
func (c *Container) GetRules() models.RuleSet {
	return c.rules
}

// GetRuleStore returns the rules file store.
func (c *Container) GetRuleStore() *store.RuleStore {
	return c.ruleStore
}

// GetCategorizer returns the container's categorizer instance.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetAIClient returns the container's AI client instance.
// Returns nil if AI is not enabled.
func (c *Container) GetAIClient() categorizer.AIClient {
	return c.aiClient
}

// GetService returns the budget service.
func (c *Container) GetService() *budget.Service {
	return c.service
}

// GetReportGenerator returns the import report renderer.
func (c *Container) GetReportGenerator() *report.Generator {
	return c.reports
}

// NewBatchAggregator returns an aggregator importing through the service.
func (c *Container) NewBatchAggregator() *batch.Aggregator {
	return batch.NewAggregator(c.service, c.logger)
}

// Close releases the AI client connection, if any.
func (c *Container) Close() error {
	if closer, ok := c.aiClient.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close AI client: %w", err)
		}
	}
	c.logger.Debug("Container closed")
	return nil
}
