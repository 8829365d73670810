package categorizer

import (
	"context"
	"errors"
	"testing"

	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testRules() models.RuleSet {
	return models.RuleSet{
		TransferPhrases:  []string{"VIREMENT INTERNE", "VIREMENT VERS LIVRET A"},
		TransferCategory: "Transfer",
		IncomeCategory:   "Other income",
		FallbackCategory: "Uncategorized",
		Keywords: []models.CategoryConfig{
			{Name: "Subscriptions", Keywords: []string{"AMAZON PRIME", "NETFLIX"}},
			{Name: "Shopping", Keywords: []string{"AMAZON", "FNAC"}},
			{Name: "Food", Keywords: []string{"CARREFOUR", "monoprix"}},
		},
	}
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type mockAIClient struct {
	mock.Mock
}

func (m *mockAIClient) Categorize(ctx context.Context, tx Transaction, categories []string) (string, error) {
	args := m.Called(ctx, tx, categories)
	return args.String(0), args.Error(1)
}

type failingStrategy struct{}

func (failingStrategy) Name() string { return "Broken" }

func (failingStrategy) Categorize(context.Context, Transaction) (models.Category, bool, error) {
	return models.Category{}, false, errors.New("boom")
}

func TestCategorizer_Precedence(t *testing.T) {
	learning := store.NewMockLearningStore(map[string]string{"CARREFOUR": "Groceries"})
	c := NewCategorizer(testRules(), learning, nil, logging.NewMockLogger())

	tests := []struct {
		name         string
		tx           Transaction
		wantCategory string
		wantStrategy string
	}{
		{
			name:         "transfer phrase beats keyword",
			tx:           NewTransaction("VIREMENT INTERNE CARREFOUR", amount("-50"), "Main", nil),
			wantCategory: "Transfer",
			wantStrategy: models.StrategyTransfer,
		},
		{
			name:         "transfer phrase in a secondary column",
			tx:           NewTransaction("SOME LABEL", amount("-50"), "Main", []string{"01/02/2024", "SOME LABEL", "Virement vers Livret A", "-50"}),
			wantCategory: "Transfer",
			wantStrategy: models.StrategyTransfer,
		},
		{
			name:         "learned memory beats keyword",
			tx:           NewTransaction("ACHAT CB CARREFOUR 01/02", amount("-12.40"), "Main", nil),
			wantCategory: "Groceries",
			wantStrategy: models.StrategyLearned,
		},
		{
			name:         "keyword table order is significant",
			tx:           NewTransaction("AMAZON PRIME FR", amount("-6.99"), "Main", nil),
			wantCategory: "Subscriptions",
			wantStrategy: models.StrategyKeyword,
		},
		{
			name:         "later keyword entry",
			tx:           NewTransaction("AMAZON MKTPLACE", amount("-20"), "Main", nil),
			wantCategory: "Shopping",
			wantStrategy: models.StrategyKeyword,
		},
		{
			name:         "keywords match case-insensitively",
			tx:           NewTransaction("Monoprix Paris", amount("-8"), "Main", nil),
			wantCategory: "Food",
			wantStrategy: models.StrategyKeyword,
		},
		{
			name:         "unmatched credit falls back to income",
			tx:           NewTransaction("MYSTERY PAYMENT", amount("100"), "Main", nil),
			wantCategory: "Other income",
			wantStrategy: models.StrategyFallback,
		},
		{
			name:         "unmatched debit falls back to uncategorized",
			tx:           NewTransaction("MYSTERY PAYMENT", amount("-100"), "Main", nil),
			wantCategory: "Uncategorized",
			wantStrategy: models.StrategyFallback,
		},
		{
			name:         "zero amount is not income",
			tx:           NewTransaction("MYSTERY PAYMENT", decimal.Zero, "Main", nil),
			wantCategory: "Uncategorized",
			wantStrategy: models.StrategyFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Categorize(context.Background(), tt.tx)
			assert.True(t, result.Found)
			assert.Equal(t, tt.wantCategory, result.Category.Name)
			assert.Equal(t, tt.wantStrategy, result.Strategy)
		})
	}
}

func TestCategorizer_DoesNotLearn(t *testing.T) {
	learning := store.NewMockLearningStore(nil)
	c := NewCategorizer(testRules(), learning, nil, logging.NewMockLogger())

	c.Categorize(context.Background(), NewTransaction("FNAC PARIS", amount("-30"), "Main", nil))

	assert.Empty(t, learning.Recorded)
	assert.Empty(t, learning.Mappings)
}

func TestCategorizer_DefaultRules(t *testing.T) {
	c := NewCategorizer(store.DefaultRules(), nil, nil, logging.NewMockLogger())

	result := c.Categorize(context.Background(), NewTransaction("PRLV SEPA NETFLIX.COM", amount("-13.49"), "Main", nil))
	assert.Equal(t, models.StrategyKeyword, result.Strategy)
	assert.NotEmpty(t, result.Category.Name)

	result = c.Categorize(context.Background(), NewTransaction("Virement interne", amount("-200"), "Main", nil))
	assert.Equal(t, models.CategoryInternalTransfer, result.Category.Name)

	assert.Equal(t, []string{models.StrategyTransfer, models.StrategyLearned, models.StrategyKeyword, models.StrategyFallback}, c.Strategies())
}

func TestCategorizer_AIStrategyRunsBeforeFallback(t *testing.T) {
	ai := &mockAIClient{}
	ai.On("Categorize", mock.Anything, mock.Anything, mock.Anything).Return("Food", nil).Once()

	c := NewCategorizer(testRules(), nil, ai, logging.NewMockLogger())
	require.Equal(t, []string{models.StrategyTransfer, models.StrategyLearned, models.StrategyKeyword, models.StrategyAI, models.StrategyFallback}, c.Strategies())

	result := c.Categorize(context.Background(), NewTransaction("LE PETIT BISTROT", amount("-24"), "Main", nil))
	assert.Equal(t, "Food", result.Category.Name)
	assert.Equal(t, models.StrategyAI, result.Strategy)

	// Keyword matches never reach the AI service.
	result = c.Categorize(context.Background(), NewTransaction("FNAC", amount("-24"), "Main", nil))
	assert.Equal(t, models.StrategyKeyword, result.Strategy)

	ai.AssertExpectations(t)
}

func TestCategorizer_SkipsFailingStrategy(t *testing.T) {
	logger := logging.NewMockLogger()
	c := NewCategorizerWithStrategies([]CategorizationStrategy{
		failingStrategy{},
		NewSignFallbackStrategy("In", "Out"),
	}, "", logger)

	result := c.Categorize(context.Background(), NewTransaction("X", amount("1"), "Main", nil))
	assert.Equal(t, "In", result.Category.Name)
	assert.True(t, logger.HasEntry("WARN", "Categorization strategy failed"))
}

func TestCategorizer_NeverEmpty(t *testing.T) {
	c := NewCategorizerWithStrategies(nil, "", logging.NewMockLogger())
	result := c.Categorize(context.Background(), NewTransaction("X", amount("1"), "Main", nil))
	assert.Equal(t, models.CategoryUncategorized, result.Category.Name)
	assert.Equal(t, models.StrategyFallback, result.Strategy)
}

func TestCategorizer_CanceledContext(t *testing.T) {
	c := NewCategorizer(testRules(), nil, nil, logging.NewMockLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats := models.NewCategorizationStats()
	result := c.CategorizeWithStats(ctx, NewTransaction("FNAC", amount("-1"), "Main", nil), stats)
	assert.Equal(t, "Uncategorized", result.Category.Name)
	assert.Error(t, result.Error)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Total)
}

func TestCategorizer_CategorizeWithStats(t *testing.T) {
	c := NewCategorizer(testRules(), nil, nil, logging.NewMockLogger())
	stats := models.NewCategorizationStats()

	for _, raw := range []string{"FNAC", "NETFLIX", "UNKNOWN", "VIREMENT INTERNE"} {
		c.CategorizeWithStats(context.Background(), NewTransaction(raw, amount("-1"), "Main", nil), stats)
	}

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.ByStrategy[models.StrategyKeyword])
	assert.Equal(t, 1, stats.ByStrategy[models.StrategyFallback])
	assert.Equal(t, 1, stats.ByStrategy[models.StrategyTransfer])
	assert.Equal(t, 3, stats.Automatic())
}

func TestCategorizer_Explain(t *testing.T) {
	learning := store.NewMockLearningStore(map[string]string{"FNAC": "Books"})
	c := NewCategorizer(testRules(), learning, nil, logging.NewMockLogger())

	results := c.Explain(context.Background(), NewTransaction("FNAC", amount("-10"), "Main", nil))
	require.Len(t, results.Results, 4)
	assert.Equal(t, "Transfer:no_match, Learned:success, Keyword:success, SignFallback:success", results.Summary())

	best, ok := results.GetBestResult()
	require.True(t, ok)
	assert.Equal(t, "Books", best.Category.Name)
	assert.Empty(t, results.GetErrors())
}

func TestStrategyResults_GetErrors(t *testing.T) {
	results := StrategyResults{Results: []StrategyResult{
		{Strategy: "A", Error: errors.New("down")},
		{Strategy: "B", Found: true, Category: models.Category{Name: "X"}},
	}}

	errs := results.GetErrors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "A strategy")
	assert.Equal(t, "A:failed, B:success", results.Summary())
}

func TestCategoryDescriptionFromName(t *testing.T) {
	assert.Equal(t, "Salaire", categoryDescriptionFromName("💰 Salaire"))
	assert.Equal(t, "Groceries", categoryDescriptionFromName("Groceries"))
	assert.Equal(t, "Frais Bancaires", categoryDescriptionFromName(" 🏦 Frais Bancaires "))
}
