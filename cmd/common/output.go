// Package common contains shared functionality for command handlers
package common

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"fjacquet/budget-csv/cmd/root"
	"fjacquet/budget-csv/internal/budget"
	"fjacquet/budget-csv/internal/currencyutils"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

// Output formats shared by the listing commands.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

var (
	positive = color.New(color.FgGreen).SprintFunc()
	negative = color.New(color.FgRed).SprintFunc()
	muted    = color.New(color.Faint).SprintFunc()
)

// Service returns the budget service of the running command.
func Service() (*budget.Service, error) {
	c, err := root.GetContainer()
	if err != nil {
		return nil, err
	}
	return c.GetService(), nil
}

// NewTable returns a tab-aligned writer; callers must Flush it.
func NewTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Amount formats an amount green when positive and red when negative.
// Colors are dropped when the output is not a terminal.
func Amount(amount decimal.Decimal) string {
	text := currencyutils.FormatAmount(amount, "")
	switch amount.Sign() {
	case 1:
		return positive(text)
	case -1:
		return negative(text)
	default:
		return text
	}
}

// Muted renders secondary information.
func Muted(text string) string {
	return muted(text)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

// CheckFormat rejects an output format outside allowed.
func CheckFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format: %s", format)
}
