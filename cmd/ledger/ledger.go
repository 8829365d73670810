// Package ledger contains the commands reading and editing the ledger
package ledger

import (
	"fmt"
	"strings"

	"fjacquet/budget-csv/cmd/common"
	"fjacquet/budget-csv/cmd/root"
	"fjacquet/budget-csv/internal/dateutils"
	ledgerstore "fjacquet/budget-csv/internal/ledger"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"

	"github.com/spf13/cobra"
)

var (
	account string
	year    int
	month   string
	format  string
)

// Cmd groups the ledger subcommands
var Cmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show and edit the ledger",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ledger transactions, oldest first",
	Long: `List ledger transactions sorted by date, account and name.

Example:
  budget-csv ledger list --account "Compte Courant" --year 2024 --month mars
  budget-csv ledger list --format csv > export.csv`,
	Args: cobra.NoArgs,
	RunE: listFunc,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete transactions by ID",
	Long: `Delete transactions by ID. Nothing is deleted when one of the IDs is
unknown.`,
	Args: cobra.MinimumNArgs(1),
	RunE: deleteFunc,
}

func init() {
	listCmd.Flags().StringVarP(&account, "account", "a", "", "Only this account")
	listCmd.Flags().IntVarP(&year, "year", "y", 0, "Only this year")
	listCmd.Flags().StringVarP(&month, "month", "m", "", "Only this month (number or French name)")
	listCmd.Flags().StringVarP(&format, "format", "f", common.FormatTable, "Output format (table, csv or json)")

	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(deleteCmd)
}

func buildFilter() (models.TransactionFilter, error) {
	filter := models.TransactionFilter{Account: strings.TrimSpace(account), Year: year}
	if month != "" {
		m, err := dateutils.ParseMonth(month)
		if err != nil {
			return filter, err
		}
		filter.Month = m
	}
	return filter, nil
}

func listFunc(cmd *cobra.Command, args []string) error {
	if err := common.CheckFormat(format, common.FormatTable, common.FormatCSV, common.FormatJSON); err != nil {
		return err
	}
	filter, err := buildFilter()
	if err != nil {
		return err
	}
	svc, err := common.Service()
	if err != nil {
		return err
	}
	transactions, err := svc.Ledger(filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case common.FormatCSV:
		return ledgerstore.Encode(out, transactions, false)
	case common.FormatJSON:
		if transactions == nil {
			transactions = []models.Transaction{}
		}
		return common.WriteJSON(out, transactions)
	}

	if len(transactions) == 0 {
		_, err := fmt.Fprintln(out, "No transactions.")
		return err
	}
	tw := common.NewTable(out)
	fmt.Fprintln(tw, "DATE\tACCOUNT\tNAME\tAMOUNT\tCATEGORY\tID")
	for _, tx := range transactions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			dateutils.ToISODate(tx.Date), tx.Account, tx.RawName, common.Amount(tx.Amount), tx.Category, common.Muted(tx.ID))
	}
	return tw.Flush()
}

func deleteFunc(cmd *cobra.Command, args []string) error {
	svc, err := common.Service()
	if err != nil {
		return err
	}
	removed, err := svc.DeleteTransactions(args)
	if err != nil {
		return err
	}
	root.GetLogger().Info("Transactions deleted", logging.Field{Key: logging.FieldCount, Value: len(removed)})
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d transactions deleted\n", len(removed))
	return err
}
