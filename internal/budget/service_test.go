package budget

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/budget-csv/internal/accounts"
	"fjacquet/budget-csv/internal/categorizer"
	"fjacquet/budget-csv/internal/importer"
	"fjacquet/budget-csv/internal/ledger"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"
	"fjacquet/budget-csv/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = "Date;Libellé;Montant\n" +
	"01/03/2024;CB CARREFOUR 01/03;-25,40\n" +
	"02/03/2024;VIR SALAIRE MARS;2500\n" +
	"03/03/2024;BOULANGERIE DU COIN;-3,20\n"

type fixture struct {
	dir     string
	service *Service
	logger  *logging.MockLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	logger := logging.NewMockLogger()

	rules := models.RuleSet{
		TransferPhrases:  []string{"VIREMENT INTERNE"},
		TransferCategory: "Transfer",
		IncomeCategory:   "Income",
		FallbackCategory: "Other",
		Keywords: []models.CategoryConfig{
			{Name: "Food", Keywords: []string{"CARREFOUR"}},
			{Name: "Salary", Keywords: []string{"SALAIRE"}},
		},
	}
	learning := store.NewLearningStore(filepath.Join(dir, "learning.csv"), false, logger)
	c := categorizer.NewCategorizer(rules, learning, nil, logger)
	im, err := importer.New(importer.Options{}, c, logger)
	require.NoError(t, err)

	svc, err := NewService(Dependencies{
		Ledger:      ledger.NewStore(filepath.Join(dir, "ledger.csv"), false, logger),
		Accounts:    accounts.NewStore(filepath.Join(dir, "accounts.csv"), false, logger),
		Learning:    learning,
		Categories:  store.NewCategoryCatalog(filepath.Join(dir, "categories.txt"), rules.CategoryNames()),
		Groups:      store.NewGroupCatalog(filepath.Join(dir, "groups.txt")),
		Categorizer: c,
		Importer:    im,
		LearnOnEdit: true,
		Logger:      logger,
	})
	require.NoError(t, err)
	return &fixture{dir: dir, service: svc, logger: logger}
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := NewService(Dependencies{})
	assert.Error(t, err)
}

func TestImportBytes_InsertsAndCreatesAccount(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.ImportBytes(context.Background(), "mars.csv", []byte(sampleExport), "Main")
	require.NoError(t, err)

	assert.NotEmpty(t, result.BatchID)
	assert.Equal(t, "Main", result.Account)
	assert.True(t, result.AccountCreated)
	assert.Equal(t, ";", result.Delimiter)
	assert.Equal(t, 3, result.Parsed)
	assert.Equal(t, 3, result.Inserted)
	assert.Equal(t, 0, result.Duplicates)
	assert.Equal(t, "2024-03-01", result.FirstDate.Format("2006-01-02"))
	assert.Equal(t, "2024-03-03", result.LastDate.Format("2006-01-02"))
	assert.True(t, f.logger.HasEntry("INFO", "Import completed"))

	cfg, err := f.service.Account("Main")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultGroup, cfg.Group)

	txs, err := f.service.Ledger(models.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "Food", txs[0].Category)
	assert.Equal(t, "Salary", txs[1].Category)
	assert.Equal(t, "Other", txs[2].Category)
}

func TestImportBytes_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.ImportBytes(ctx, "a.csv", []byte(sampleExport), "Main")
	require.NoError(t, err)

	again, err := f.service.ImportBytes(ctx, "a.csv", []byte(sampleExport), "Main")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Inserted)
	assert.Equal(t, 3, again.Duplicates)
	assert.False(t, again.AccountCreated)

	other, err := f.service.ImportBytes(ctx, "b.csv", []byte(sampleExport), "Joint")
	require.NoError(t, err)
	assert.Equal(t, 3, other.Inserted)

	txs, err := f.service.Ledger(models.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, 6)

	joint, err := f.service.Ledger(models.TransactionFilter{Account: "Joint"})
	require.NoError(t, err)
	assert.Len(t, joint, 3)
}

func TestImportBytes_StructuralFailureWritesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ImportBytes(context.Background(), "bad.csv", []byte("nothing;useful\n1;2\n"), "Main")
	require.Error(t, err)
	assert.True(t, parsererror.IsStructural(err))

	_, statErr := os.Stat(filepath.Join(f.dir, "ledger.csv"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(f.dir, "accounts.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestImportFile(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.dir, "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0o600))

	result, err := f.service.ImportFile(context.Background(), path, "Main")
	require.NoError(t, err)
	assert.Equal(t, path, result.Source)

	_, err = f.service.ImportFile(context.Background(), filepath.Join(f.dir, "missing.csv"), "Main")
	assert.Error(t, err)
}

func TestApplyCategoryEdit_LearnsAndAppliesToNextImport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.ImportBytes(ctx, "mars.csv", []byte(sampleExport), "Main")
	require.NoError(t, err)
	txs, err := f.service.Ledger(models.TransactionFilter{})
	require.NoError(t, err)
	bakery := txs[2]

	change, err := f.service.ApplyCategoryEdit(bakery.ID, "Bakery", true)
	require.NoError(t, err)
	assert.True(t, change.Changed())
	assert.Equal(t, "Other", change.Before.Category)
	assert.Equal(t, "Bakery", change.After.Category)

	entries, err := f.service.LearnedCategories()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, bakery.SimplifiedName, entries[0].Name)

	categories, err := f.service.Categories()
	require.NoError(t, err)
	assert.Contains(t, categories, "Bakery")

	next := "Date;Libellé;Montant\n10/03/2024;BOULANGERIE DU COIN;-4\n"
	_, err = f.service.ImportBytes(ctx, "next.csv", []byte(next), "Main")
	require.NoError(t, err)
	mainTxs, err := f.service.Ledger(models.TransactionFilter{Account: "Main"})
	require.NoError(t, err)
	assert.Equal(t, "Bakery", mainTxs[len(mainTxs)-1].Category)

	result, err := f.service.Classify(ctx, "BOULANGERIE DU COIN", decimal.NewFromInt(-1), "Main")
	require.NoError(t, err)
	assert.Equal(t, models.StrategyLearned, result.Strategy)
}

func TestApplyCategoryEdits_WithoutLearning(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.ImportBytes(context.Background(), "mars.csv", []byte(sampleExport), "Main")
	require.NoError(t, err)
	txs, err := f.service.Ledger(models.TransactionFilter{})
	require.NoError(t, err)

	changes, err := f.service.ApplyCategoryEdits([]models.CategoryEdit{
		{ID: txs[0].ID, Category: "Groceries"},
		{ID: txs[1].ID, Category: "Salary"},
	}, false)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.True(t, changes[0].Changed())
	assert.False(t, changes[1].Changed())

	entries, err := f.service.LearnedCategories()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApplyCategoryEdits_UnknownIDChangesNothing(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.ImportBytes(context.Background(), "mars.csv", []byte(sampleExport), "Main")
	require.NoError(t, err)
	txs, err := f.service.Ledger(models.TransactionFilter{})
	require.NoError(t, err)

	_, err = f.service.ApplyCategoryEdits([]models.CategoryEdit{
		{ID: txs[0].ID, Category: "Groceries"},
		{ID: "missing", Category: "Groceries"},
	}, true)
	assert.ErrorIs(t, err, parsererror.ErrTransactionNotFound)

	after, err := f.service.Ledger(models.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Food", after[0].Category)

	entries, err := f.service.LearnedCategories()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteTransactions(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.ImportBytes(context.Background(), "mars.csv", []byte(sampleExport), "Main")
	require.NoError(t, err)
	txs, err := f.service.Ledger(models.TransactionFilter{})
	require.NoError(t, err)

	removed, err := f.service.DeleteTransactions([]string{txs[0].ID})
	require.NoError(t, err)
	require.Len(t, removed, 1)

	left, err := f.service.Ledger(models.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, left, 2)

	_, err = f.service.DeleteTransactions([]string{txs[0].ID})
	assert.ErrorIs(t, err, parsererror.ErrTransactionNotFound)
}

func TestAccountsAndGroups(t *testing.T) {
	f := newFixture(t)

	cfg, created, err := f.service.CreateAccount("Savings", "Epargne")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Epargne", cfg.Group)

	groups, err := f.service.Groups()
	require.NoError(t, err)
	assert.Equal(t, []string{models.DefaultGroup, "Epargne"}, groups)

	cfg.OpeningBalance = decimal.NewFromInt(1000)
	require.NoError(t, f.service.UpdateAccount(cfg))

	_, err = f.service.ImportBytes(context.Background(), "mars.csv", []byte(sampleExport), "Savings")
	require.NoError(t, err)

	balances, err := f.service.Balances()
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "Savings", balances[0].Config.Name)
	assert.Equal(t, "3471.4", balances[0].Balance.String())
	assert.Equal(t, 3, balances[0].Transactions)

	require.NoError(t, f.service.DeleteAccount("Savings"))
	balances, err = f.service.Balances()
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, models.DefaultGroup, balances[0].Config.Group)
	assert.Equal(t, "2471.4", balances[0].Balance.String())

	require.NoError(t, f.service.RemoveGroup("Epargne"))
	assert.ErrorIs(t, f.service.RemoveGroup(models.DefaultGroup), parsererror.ErrLastGroup)
	require.NoError(t, f.service.AddGroup("Famille"))
}

func TestCategoriesAndLearningMaintenance(t *testing.T) {
	f := newFixture(t)

	added, err := f.service.AddCategory("Travel")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = f.service.AddCategory("Travel")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = f.service.ImportBytes(context.Background(), "mars.csv", []byte(sampleExport), "Main")
	require.NoError(t, err)
	txs, err := f.service.Ledger(models.TransactionFilter{})
	require.NoError(t, err)
	_, err = f.service.ApplyCategoryEdit(txs[0].ID, "Travel", true)
	require.NoError(t, err)

	forgotten, err := f.service.ForgetLearned(txs[0].SimplifiedName)
	require.NoError(t, err)
	assert.True(t, forgotten)
	forgotten, err = f.service.ForgetLearned(txs[0].SimplifiedName)
	require.NoError(t, err)
	assert.False(t, forgotten)
}

func TestExplain(t *testing.T) {
	f := newFixture(t)
	results, err := f.service.Explain(context.Background(), "CB CARREFOUR", decimal.NewFromInt(-5), "Main")
	require.NoError(t, err)
	best, ok := results.GetBestResult()
	require.True(t, ok)
	assert.Equal(t, "Food", best.Category.Name)
}

func TestImportBytes_UnreadableLearningStore(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Mkdir(filepath.Join(f.dir, "learning.csv"), 0o755))

	_, err := f.service.ImportBytes(context.Background(), "mars.csv", []byte(sampleExport), "Main")
	require.Error(t, err)
	var storeErr *parsererror.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "learning", storeErr.Store)

	txs, err := f.service.Ledger(models.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)
	accountList, err := f.service.Accounts()
	require.NoError(t, err)
	assert.Empty(t, accountList)

	_, err = f.service.Classify(context.Background(), "CB CARREFOUR", decimal.NewFromInt(-5), "Main")
	assert.ErrorAs(t, err, &storeErr)
}

func TestImportBytes_FailedAppendCreatesNoAccount(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Mkdir(filepath.Join(f.dir, "ledger.csv"), 0o755))

	_, err := f.service.ImportBytes(context.Background(), "mars.csv", []byte(sampleExport), "Fresh")
	require.Error(t, err)

	accountList, err := f.service.Accounts()
	require.NoError(t, err)
	assert.Empty(t, accountList)
}

func TestApplyCategoryEdits_LaterEditWinsForSharedName(t *testing.T) {
	f := newFixture(t)
	export := "Date;Libellé;Montant\n" +
		"01/02/2024;CB FOO 01/02;-10\n" +
		"03/04/2024;CB FOO 03/04;-12\n"
	_, err := f.service.ImportBytes(context.Background(), "foo.csv", []byte(export), "Main")
	require.NoError(t, err)

	txs, err := f.service.Ledger(models.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, txs[0].SimplifiedName, txs[1].SimplifiedName)

	_, err = f.service.ApplyCategoryEdits([]models.CategoryEdit{
		{ID: txs[0].ID, Category: "Alpha"},
		{ID: txs[1].ID, Category: "Beta"},
	}, true)
	require.NoError(t, err)

	learned, err := f.service.LearnedCategories()
	require.NoError(t, err)
	require.Len(t, learned, 1)
	assert.Equal(t, "FOO", learned[0].Name)
	assert.Equal(t, "Beta", learned[0].Category)
}
