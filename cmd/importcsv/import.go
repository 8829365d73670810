// Package importcsv handles the import of one bank export into the ledger
package importcsv

import (
	"fmt"
	"strings"

	"fjacquet/budget-csv/cmd/root"
	"fjacquet/budget-csv/internal/report"

	"github.com/spf13/cobra"
)

var (
	account string
	format  string
)

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a bank CSV export into an account",
	Long: `Import one bank CSV export into the ledger under the given account.

The encoding, the delimiter and the header line are detected, columns are
mapped to Date/Name/Amount (or Debit/Credit) and every row is categorized.
Rows already in the ledger are skipped, so importing the same file twice is
harmless. A file whose structure cannot be understood is rejected as a whole.

Example:
  budget-csv import releve-mars.csv --account "Compte Courant"`,
	Args: cobra.ExactArgs(1),
	RunE: importFunc,
}

func init() {
	Cmd.Flags().StringVarP(&account, "account", "a", "", "Account the transactions belong to")
	Cmd.Flags().StringVarP(&format, "format", "f", report.FormatText, "Report format (text or json)")
	_ = Cmd.MarkFlagRequired("account")
}

func importFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}

	result, err := c.GetService().ImportFile(cmd.Context(), args[0], strings.TrimSpace(account))
	if err != nil {
		return fmt.Errorf("import of %s failed: %w", args[0], err)
	}

	out, err := c.GetReportGenerator().ImportReport(result, format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
