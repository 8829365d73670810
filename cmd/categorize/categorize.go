// Package categorize handles transaction categorization commands
package categorize

import (
	"fmt"
	"strings"

	"fjacquet/budget-csv/cmd/common"
	"fjacquet/budget-csv/cmd/root"
	"fjacquet/budget-csv/internal/currencyutils"
	"fjacquet/budget-csv/internal/logging"

	"github.com/spf13/cobra"
)

var (
	learn   bool
	amount  string
	account string
	explain bool
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Correct categories and preview the categorization engine",
	Long: `Correct the category of ledger transactions, preview the category the
engine would choose for a description, and manage the learned categories.`,
}

var setCmd = &cobra.Command{
	Use:   "set <id> <category>",
	Short: "Set the category of a transaction",
	Long: `Set the category of a ledger transaction. With --learn (the default comes
from categorization.learn_on_edit) the choice is remembered for every future
transaction with the same simplified name.

Example:
  budget-csv categorize set 6f1c... Alimentation --learn`,
	Args: cobra.ExactArgs(2),
	RunE: setFunc,
}

var previewCmd = &cobra.Command{
	Use:   "preview <description>",
	Short: "Show the category the engine would choose",
	Long: `Run the categorization chain over a description without changing any
store.

Example:
  budget-csv categorize preview "CB CARREFOUR 12/03" --amount -42.10 --explain`,
	Args: cobra.ExactArgs(1),
	RunE: previewFunc,
}

var learnedCmd = &cobra.Command{
	Use:   "learned",
	Short: "List the learned categories",
	Args:  cobra.NoArgs,
	RunE:  learnedFunc,
}

var forgetCmd = &cobra.Command{
	Use:   "forget <simplified name>",
	Short: "Forget a learned category",
	Args:  cobra.ExactArgs(1),
	RunE:  forgetFunc,
}

func init() {
	setCmd.Flags().BoolVarP(&learn, "learn", "l", true, "Remember the category for this name")

	previewCmd.Flags().StringVarP(&amount, "amount", "m", "0", "Signed amount of the transaction")
	previewCmd.Flags().StringVarP(&account, "account", "a", "", "Account of the transaction")
	previewCmd.Flags().BoolVarP(&explain, "explain", "e", false, "Show the outcome of every strategy")

	Cmd.AddCommand(setCmd, previewCmd, learnedCmd, forgetCmd)
}

func setFunc(cmd *cobra.Command, args []string) error {
	svc, err := common.Service()
	if err != nil {
		return err
	}
	shouldLearn := svc.LearnOnEdit()
	if cmd.Flags().Changed("learn") {
		shouldLearn = learn
	}

	change, err := svc.ApplyCategoryEdit(args[0], args[1], shouldLearn)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !change.Changed() {
		_, err = fmt.Fprintf(out, "%s is already in %s\n", change.After.RawName, change.After.Category)
		return err
	}
	_, err = fmt.Fprintf(out, "%s: %s -> %s\n", change.After.RawName, change.Before.Category, change.After.Category)
	if err == nil && shouldLearn {
		_, err = fmt.Fprintf(out, "learned for %s\n", change.After.SimplifiedName)
	}
	return err
}

func previewFunc(cmd *cobra.Command, args []string) error {
	value, err := currencyutils.NormalizeAmount(amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	svc, err := common.Service()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if !explain {
		result, err := svc.Classify(cmd.Context(), args[0], value, strings.TrimSpace(account))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s (%s)\n", result.Category.Name, result.Strategy)
		return err
	}

	results, err := svc.Explain(cmd.Context(), args[0], value, strings.TrimSpace(account))
	if err != nil {
		return err
	}
	tw := common.NewTable(out)
	fmt.Fprintln(tw, "STRATEGY\tRESULT\tCATEGORY")
	for _, r := range results.Results {
		status := "no match"
		switch {
		case r.Error != nil:
			status = "error: " + r.Error.Error()
		case r.Found:
			status = "match"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Strategy, status, r.Category.Name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if best, ok := results.GetBestResult(); ok {
		_, err = fmt.Fprintf(out, "\n%s (%s)\n", best.Category.Name, best.Strategy)
	}
	root.GetLogger().Debug("Categorization explained", logging.Field{Key: "summary", Value: results.Summary()})
	return err
}

func learnedFunc(cmd *cobra.Command, args []string) error {
	svc, err := common.Service()
	if err != nil {
		return err
	}
	entries, err := svc.LearnedCategories()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		_, err = fmt.Fprintln(out, "Nothing learned yet.")
		return err
	}
	tw := common.NewTable(out)
	fmt.Fprintln(tw, "NAME\tCATEGORY")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\n", e.Name, e.Category)
	}
	return tw.Flush()
}

func forgetFunc(cmd *cobra.Command, args []string) error {
	svc, err := common.Service()
	if err != nil {
		return err
	}
	removed, err := svc.ForgetLearned(args[0])
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("nothing learned for %q", args[0])
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "forgot %s\n", args[0])
	return err
}
