// Package models provides the data structures shared by the import pipeline,
// the stores and the commands.
package models

import (
	"strings"
	"time"

	"fjacquet/budget-csv/internal/dateutils"
	"fjacquet/budget-csv/internal/textutils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one row of the ledger. Amount is positive for money coming
// in and negative for money going out.
type Transaction struct {
	ID             string          `json:"id"`
	Date           time.Time       `json:"date"`
	RawName        string          `json:"raw_name"`
	SimplifiedName string          `json:"simplified_name"`
	Amount         decimal.Decimal `json:"amount"`
	Account        string          `json:"account"`
	Category       string          `json:"category"`
	Month          string          `json:"month"`
	Year           int             `json:"year"`
}

// TransactionKey identifies the economic event behind a transaction. Two
// rows with the same key are duplicates whatever their ID or category.
type TransactionKey struct {
	Date    string
	Name    string
	Amount  string
	Account string
}

// NewTransaction builds a ledger row with a fresh ID and every derived field
// filled in.
func NewTransaction(date time.Time, rawName string, amount decimal.Decimal, account, category string) Transaction {
	tx := Transaction{
		ID:       uuid.NewString(),
		Date:     date,
		RawName:  strings.TrimSpace(rawName),
		Amount:   amount,
		Account:  strings.TrimSpace(account),
		Category: category,
	}
	tx.Derive()
	return tx
}

// Derive recomputes SimplifiedName, Month and Year from RawName and Date,
// and truncates Date to the calendar day.
func (t *Transaction) Derive() {
	t.Date = dateutils.Truncate(t.Date)
	t.SimplifiedName = textutils.SimplifyName(t.RawName)
	t.Month = dateutils.MonthName(t.Date.Month())
	t.Year = t.Date.Year()
}

// Key returns the identity key of the transaction. The amount is taken in
// its shortest form so that 12.30 and 12.3 compare equal.
func (t Transaction) Key() TransactionKey {
	return TransactionKey{
		Date:    dateutils.ToISODate(t.Date),
		Name:    t.SimplifiedName,
		Amount:  t.Amount.String(),
		Account: t.Account,
	}
}

// IsCredit reports whether money came into the account.
func (t Transaction) IsCredit() bool {
	return t.Amount.IsPositive()
}

// CategoryEdit is a request to set the category of one ledger row.
type CategoryEdit struct {
	ID       string `json:"id"`
	Category string `json:"category"`
}

// TransactionFilter narrows a ledger listing. Zero values match everything.
type TransactionFilter struct {
	Account string
	Year    int
	Month   time.Month
}

// Matches reports whether tx passes the filter.
func (f TransactionFilter) Matches(tx Transaction) bool {
	if f.Account != "" && !strings.EqualFold(f.Account, tx.Account) {
		return false
	}
	if f.Year != 0 && tx.Date.Year() != f.Year {
		return false
	}
	if f.Month != 0 && tx.Date.Month() != f.Month {
		return false
	}
	return true
}
