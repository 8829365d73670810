package categorizer

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/textutils"

	"github.com/shopspring/decimal"
)

// Transaction is the input of a categorization: what the import pipeline
// knows about one row before it becomes a ledger entry.
type Transaction struct {
	RawName        string          // description as found in the source file
	SimplifiedName string          // learning key; derived from RawName when empty
	Amount         decimal.Decimal // signed, positive is inbound
	Account        string
	Row            []string // every field of the original row, in file order
}

// NewTransaction builds a categorization input from raw import data.
func NewTransaction(rawName string, amount decimal.Decimal, account string, row []string) Transaction {
	return Transaction{
		RawName:        rawName,
		SimplifiedName: textutils.SimplifyName(rawName),
		Amount:         amount,
		Account:        account,
		Row:            row,
	}
}

func (t Transaction) key() string {
	if t.SimplifiedName != "" {
		return t.SimplifiedName
	}
	return textutils.SimplifyName(t.RawName)
}

func (t Transaction) upperName() string {
	return strings.ToUpper(t.RawName)
}

func (t Transaction) upperRow() string {
	return strings.ToUpper(strings.Join(t.Row, " "))
}

// CategorizationStrategy defines a method for categorizing transactions.
// Each strategy implements a specific approach to categorization (transfer
// phrases, learned memory, keywords, AI, sign fallback).
type CategorizationStrategy interface {
	// Categorize attempts to categorize a transaction using this strategy.
	// Returns the category, a boolean indicating if categorization was successful,
	// and any error encountered during the process.
	Categorize(ctx context.Context, tx Transaction) (models.Category, bool, error)

	// Name returns the name of this strategy for logging and debugging purposes.
	Name() string
}

func categoryFromName(name string) models.Category {
	return models.Category{Name: name, Description: categoryDescriptionFromName(name)}
}

// categoryDescriptionFromName drops a leading emoji marker so the
// description reads as plain text.
func categoryDescriptionFromName(name string) string {
	trimmed := strings.TrimSpace(name)
	first, _ := utf8.DecodeRuneInString(trimmed)
	if unicode.IsLetter(first) || unicode.IsDigit(first) {
		return trimmed
	}
	if idx := strings.IndexByte(trimmed, ' '); idx > 0 {
		return strings.TrimSpace(trimmed[idx+1:])
	}
	return trimmed
}
