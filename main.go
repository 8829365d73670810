package main

import (
	"fmt"
	"os"

	"fjacquet/budget-csv/cmd/accounts"
	"fjacquet/budget-csv/cmd/batch"
	"fjacquet/budget-csv/cmd/categories"
	"fjacquet/budget-csv/cmd/categorize"
	"fjacquet/budget-csv/cmd/importcsv"
	"fjacquet/budget-csv/cmd/ledger"
	"fjacquet/budget-csv/cmd/root"
	"fjacquet/budget-csv/internal/config"
)

func init() {
	// .env first: it may hold GEMINI_API_KEY and BUDGET_* overrides that the
	// configuration reads when the root command starts.
	if _, err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	root.Init()

	root.Cmd.AddCommand(importcsv.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(ledger.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(accounts.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
