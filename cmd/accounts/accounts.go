// Package accounts contains the account configuration commands
package accounts

import (
	"errors"
	"fmt"
	"regexp"

	"fjacquet/budget-csv/cmd/common"
	"fjacquet/budget-csv/internal/currencyutils"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"

	"github.com/spf13/cobra"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var (
	format  string
	group   string
	balance string
	target  string
	color   string
)

// Cmd groups the account subcommands
var Cmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage account configuration and groups",
	Long: `Manage the configuration kept for every account: its group, opening
balance, savings target and display color. Accounts are also created
automatically by the first import into them.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts with their current balance",
	Args:  cobra.NoArgs,
	RunE:  listFunc,
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an account with the default configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  createFunc,
}

var setCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Change the configuration of an account",
	Long: `Change the configuration of an account, creating it when needed. Only the
given flags are changed.

Example:
  budget-csv accounts set "Livret A" --group Epargne --balance 1500 --target 10000`,
	Args: cobra.ExactArgs(1),
	RunE: setFunc,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete the configuration of an account",
	Long:  `Delete the configuration of an account. Its transactions stay in the ledger.`,
	Args:  cobra.ExactArgs(1),
	RunE:  deleteFunc,
}

func init() {
	listCmd.Flags().StringVarP(&format, "format", "f", common.FormatTable, "Output format (table or json)")
	createCmd.Flags().StringVarP(&group, "group", "g", "", "Group of the account (default: first group)")

	setCmd.Flags().StringVarP(&group, "group", "g", "", "Group of the account")
	setCmd.Flags().StringVarP(&balance, "balance", "b", "", "Opening balance")
	setCmd.Flags().StringVarP(&target, "target", "t", "", "Savings target")
	setCmd.Flags().StringVar(&color, "color", "", "Display color (#rrggbb)")

	Cmd.AddCommand(listCmd, createCmd, setCmd, deleteCmd, groupsCmd)
}

func listFunc(cmd *cobra.Command, args []string) error {
	if err := common.CheckFormat(format, common.FormatTable, common.FormatJSON); err != nil {
		return err
	}
	svc, err := common.Service()
	if err != nil {
		return err
	}
	balances, err := svc.Balances()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == common.FormatJSON {
		return common.WriteJSON(out, balances)
	}
	if len(balances) == 0 {
		_, err = fmt.Fprintln(out, "No accounts.")
		return err
	}
	tw := common.NewTable(out)
	fmt.Fprintln(tw, "ACCOUNT\tGROUP\tBALANCE\tTARGET\tTRANSACTIONS")
	for _, b := range balances {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			b.Config.Name, b.Config.Group, common.Amount(b.Balance),
			currencyutils.FormatAmount(b.Config.Target, ""), b.Transactions)
	}
	return tw.Flush()
}

func createFunc(cmd *cobra.Command, args []string) error {
	svc, err := common.Service()
	if err != nil {
		return err
	}
	cfg, created, err := svc.CreateAccount(args[0], group)
	if err != nil {
		return err
	}
	if !created {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s already exists in %s\n", cfg.Name, cfg.Group)
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s in %s\n", cfg.Name, cfg.Group)
	return err
}

func setFunc(cmd *cobra.Command, args []string) error {
	svc, err := common.Service()
	if err != nil {
		return err
	}
	cfg, err := svc.Account(args[0])
	if errors.Is(err, parsererror.ErrAccountNotFound) {
		cfg = models.NewAccountConfig(args[0], "")
		// resolved to the first managed group unless --group is given
		cfg.Group = ""
	} else if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("group") {
		cfg.Group = group
	}
	if flags.Changed("balance") {
		if cfg.OpeningBalance, err = currencyutils.NormalizeAmount(balance); err != nil {
			return fmt.Errorf("invalid balance: %w", err)
		}
	}
	if flags.Changed("target") {
		if cfg.Target, err = currencyutils.NormalizeAmount(target); err != nil {
			return fmt.Errorf("invalid target: %w", err)
		}
	}
	if flags.Changed("color") {
		if !colorPattern.MatchString(color) {
			return fmt.Errorf("invalid color %q: expected #rrggbb", color)
		}
		cfg.Color = color
	}

	if err := svc.UpdateAccount(cfg); err != nil {
		return err
	}
	updated, err := svc.Account(cfg.Name)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: group %s, opening balance %s, target %s, color %s\n",
		updated.Name, updated.Group, currencyutils.FormatAmount(updated.OpeningBalance, ""),
		currencyutils.FormatAmount(updated.Target, ""), updated.Color)
	return err
}

func deleteFunc(cmd *cobra.Command, args []string) error {
	svc, err := common.Service()
	if err != nil {
		return err
	}
	if err := svc.DeleteAccount(args[0]); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return err
}
