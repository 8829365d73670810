package accounts

import (
	"fmt"

	"fjacquet/budget-csv/cmd/common"

	"github.com/spf13/cobra"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage the account groups",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the account groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := common.Service()
		if err != nil {
			return err
		}
		groups, err := svc.Groups()
		if err != nil {
			return err
		}
		for _, g := range groups {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), g); err != nil {
				return err
			}
		}
		return nil
	},
}

var groupsAddCmd = &cobra.Command{
	Use:   "add <group>",
	Short: "Add an account group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := common.Service()
		if err != nil {
			return err
		}
		return svc.AddGroup(args[0])
	},
}

var groupsRemoveCmd = &cobra.Command{
	Use:   "remove <group>",
	Short: "Remove an account group",
	Long:  `Remove an account group. The last group cannot be removed.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := common.Service()
		if err != nil {
			return err
		}
		return svc.RemoveGroup(args[0])
	},
}

func init() {
	groupsCmd.AddCommand(groupsListCmd, groupsAddCmd, groupsRemoveCmd)
}
