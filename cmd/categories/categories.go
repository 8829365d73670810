// Package categories contains the category vocabulary commands
package categories

import (
	"fmt"

	"fjacquet/budget-csv/cmd/common"
	"fjacquet/budget-csv/cmd/root"
	"fjacquet/budget-csv/internal/logging"

	"github.com/spf13/cobra"
)

var force bool

// Cmd groups the category subcommands
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage the category vocabulary and the rules file",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the known categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := common.Service()
		if err != nil {
			return err
		}
		names, err := svc.Categories()
		if err != nil {
			return err
		}
		for _, name := range names {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
				return err
			}
		}
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <category>",
	Short: "Add a category to the vocabulary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := common.Service()
		if err != nil {
			return err
		}
		added, err := svc.AddCategory(args[0])
		if err != nil {
			return err
		}
		if !added {
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is already known\n", args[0])
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", args[0])
		return err
	},
}

var exportRulesCmd = &cobra.Command{
	Use:   "export-rules [path]",
	Short: "Write the built-in rules file so it can be edited",
	Long: `Write the built-in rules (transfer phrases, keyword table, column synonyms)
to path, by default the configured rules file in the data directory.

Example:
  budget-csv categories export-rules
  budget-csv categories export-rules my-rules.yaml --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: exportRulesFunc,
}

func init() {
	exportRulesCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	Cmd.AddCommand(listCmd, addCmd, exportRulesCmd)
}

func exportRulesFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	path := c.GetConfig().RulesPath()
	if len(args) == 1 {
		path = args[0]
	}
	if err := c.GetRuleStore().ExportDefaults(path, force); err != nil {
		return err
	}
	c.GetLogger().Info("Rules exported", logging.Field{Key: logging.FieldFile, Value: path})
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "rules written to %s\n", path)
	return err
}
